package homework

import (
	"time"

	"github.com/tmwangi/kazi/core"
)

// Roles supplied by the identity collaborator. The ledger trusts them;
// it only decides whether an operation is permitted for a role.
const (
	RoleTeacher = "Teacher"
	RoleStudent = "Student"
)

// Actor identifies the caller of every ledger operation.
type Actor struct {
	ID   string
	Name string
	Role string
}

func (a Actor) IsTeacher() bool { return a.Role == RoleTeacher }
func (a Actor) IsStudent() bool { return a.Role == RoleStudent }

// Difficulty levels
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Recurrence values; stored on the assignment but never expanded
// into scheduled instances.
const (
	RecurrenceNone    = "none"
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
)

// Derived statuses. An assignment's status reflects submission timing
// only and never reverts to "Not Submitted" once a submission exists.
const (
	StatusNotSubmitted = "Not Submitted"
	StatusSubmitted    = "Submitted"
	StatusLate         = "Late"
)

// Audit actions
const (
	AuditCreated = "Created"
	AuditUpdated = "Updated"
)

// AuditEntry is an immutable log record of a lifecycle action taken on
// an assignment. Entries are appended in chronological order and
// displayed oldest-first.
type AuditEntry struct {
	AssignmentID string    `json:"assignment_id"`
	Action       string    `json:"action"`
	Actor        string    `json:"actor"`
	At           time.Time `json:"at"` // UTC
}

type Assignment struct {
	ID           string       `json:"id"`
	Subject      string       `json:"subject"`
	ClassName    string       `json:"class_name"`
	Title        string       `json:"title"`
	Instructions string       `json:"instructions"`
	Due          time.Time    `json:"due"` // UTC
	Difficulty   string       `json:"difficulty"`
	Urgent       bool         `json:"urgent"`
	Recurrence   string       `json:"recurrence"`
	CreatedBy    string       `json:"created_by"`
	CreatedAt    time.Time    `json:"created_at"` // UTC
	AuditTrail   []AuditEntry `json:"audit_trail,omitempty"`
}

// Comment is an append-only remark on a submission. Private comments
// are teacher-only and hidden from student reads.
type Comment struct {
	ID      string    `json:"id"`
	Author  string    `json:"author"`
	Content string    `json:"content"`
	Private bool      `json:"private"`
	At      time.Time `json:"at"` // UTC
}

type Submission struct {
	ID           string     `json:"id"`
	AssignmentID string     `json:"assignment_id"`
	StudentID    string     `json:"student_id"`
	StudentName  string     `json:"student_name"`
	Text         string     `json:"text"`
	SubmittedAt  time.Time  `json:"submitted_at"` // UTC
	Status       string     `json:"status"`
	Marks        *float64   `json:"marks,omitempty"`
	Feedback     string     `json:"feedback,omitempty"`
	GradedBy     string     `json:"graded_by,omitempty"`
	GradedAt     *time.Time `json:"graded_at,omitempty"` // UTC
	Comments     []Comment  `json:"comments,omitempty"`
}

func (s *Submission) IsGraded() bool { return s.Marks != nil }
func (s *Submission) IsLate() bool   { return s.Status == StatusLate }

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	Subject      string    `json:"subject" validate:"required"`
	ClassName    string    `json:"class_name" validate:"required"`
	Title        string    `json:"title" validate:"required"`
	Instructions string    `json:"instructions"`
	Due          time.Time `json:"due" validate:"required"`
	Difficulty   string    `json:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
	Urgent       bool      `json:"urgent"`
	Recurrence   string    `json:"recurrence" validate:"omitempty,oneof=none daily weekly monthly"`
}

func (na *NewAssignment) Validate() error {
	na.Subject = core.CleanString(na.Subject)
	na.ClassName = core.CleanString(na.ClassName)
	na.Title = core.CleanString(na.Title)
	na.Instructions = core.CleanString(na.Instructions)
	if na.Difficulty == "" {
		na.Difficulty = DifficultyMedium
	}
	if na.Recurrence == "" {
		na.Recurrence = RecurrenceNone
	}
	return core.Validate.Struct(na)
}

// UpdateAssignment replaces all mutable fields of an existing Assignment.
type UpdateAssignment struct {
	Subject      string    `json:"subject" validate:"required"`
	ClassName    string    `json:"class_name" validate:"required"`
	Title        string    `json:"title" validate:"required"`
	Instructions string    `json:"instructions"`
	Due          time.Time `json:"due" validate:"required"`
	Difficulty   string    `json:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
	Urgent       bool      `json:"urgent"`
	Recurrence   string    `json:"recurrence" validate:"omitempty,oneof=none daily weekly monthly"`
}

func (ua *UpdateAssignment) Validate() error {
	ua.Subject = core.CleanString(ua.Subject)
	ua.ClassName = core.CleanString(ua.ClassName)
	ua.Title = core.CleanString(ua.Title)
	ua.Instructions = core.CleanString(ua.Instructions)
	if ua.Difficulty == "" {
		ua.Difficulty = DifficultyMedium
	}
	if ua.Recurrence == "" {
		ua.Recurrence = RecurrenceNone
	}
	return core.Validate.Struct(ua)
}

// NewSubmission contains a student's answer to an assignment.
type NewSubmission struct {
	AssignmentID string `json:"assignment_id" validate:"required"`
	Text         string `json:"text" validate:"required"`
}

func (ns *NewSubmission) Validate() error {
	// Text is deliberately NOT trimmed: the duplicate check compares
	// submitted content byte for byte.
	ns.AssignmentID = core.CleanString(ns.AssignmentID)
	return core.Validate.Struct(ns)
}

// Grade carries a grading actor's marks and feedback for a submission.
type Grade struct {
	Marks    *float64 `json:"marks" validate:"omitempty,gte=0,lte=100"`
	Feedback string   `json:"feedback"`
}

func (g *Grade) Validate() error {
	g.Feedback = core.CleanString(g.Feedback)
	return core.Validate.Struct(g)
}

// NewComment contains a remark to append to a submission.
type NewComment struct {
	Content string `json:"content" validate:"required"`
	Private bool   `json:"private"`
}

func (nc *NewComment) Validate() error {
	nc.Content = core.CleanString(nc.Content)
	return core.Validate.Struct(nc)
}

// Summary holds the simple per-assignment counts exposed to dashboards.
type Summary struct {
	AssignmentID string `json:"assignment_id"`
	Status       string `json:"status"`
	Submissions  int    `json:"submissions"`
	Late         int    `json:"late"`
	Graded       int    `json:"graded"`
	Students     int    `json:"students"`
}

// QueryFilter applies AND operation on available fields.
// Status matches the derived assignment status, case-insensitively.
type QueryFilter struct {
	Subject   string `query:"subject"`
	ClassName string `query:"class_name"`
	Status    string `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Subject == "" && qf.ClassName == "" && qf.Status == ""
}

func (qf *QueryFilter) Clean() {
	qf.Subject = core.CleanString(qf.Subject)
	qf.ClassName = core.CleanString(qf.ClassName)
	qf.Status = core.CleanString(qf.Status)
}
