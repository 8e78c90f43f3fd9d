package homework

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tmwangi/kazi/core"
)

// Store collection keys. Each key holds one whole serialized collection;
// mutations rewrite every affected collection in a single atomic save.
const (
	KeyAssignments = "homeworkAssignments"
	KeySubmissions = "homeworkSubmissions"
	KeyAuditLog    = "homeworkAuditLog"
)

// MaxAttempts is the per-student, per-assignment submission limit.
const MaxAttempts = 3

var (
	// errors
	ErrNotFound            = errors.New("assignment not found")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrAttemptLimit        = errors.New("submission attempt limit reached")
	ErrDuplicateSubmission = errors.New("an identical submission already exists for this assignment")
	ErrPermissionDenied    = errors.New("operation not permitted for this role")

	nowFunc = func() time.Time { return time.Now().UTC() } // mockable
	newID   = func() string { return uuid.New().String() } // mockable
)

// ledgerState holds the three owned collections. Slices keep insertion
// order; lookups go through the indices which are rebuilt on commit.
type ledgerState struct {
	assignments []Assignment
	submissions []Submission
	audit       []AuditEntry

	assignmentIdx map[string]int   // id -> assignments offset
	submissionIdx map[string]int   // id -> submissions offset
	byAssignment  map[string][]int // assignment id -> submissions offsets
}

func (st *ledgerState) reindex() {
	st.assignmentIdx = make(map[string]int, len(st.assignments))
	for i, a := range st.assignments {
		st.assignmentIdx[a.ID] = i
	}
	st.submissionIdx = make(map[string]int, len(st.submissions))
	st.byAssignment = make(map[string][]int)
	for i, sub := range st.submissions {
		st.submissionIdx[sub.ID] = i
		st.byAssignment[sub.AssignmentID] = append(st.byAssignment[sub.AssignmentID], i)
	}
}

// clone shallow-copies the collections so a staged mutation never
// touches the committed state before its save succeeds.
func (st *ledgerState) clone() *ledgerState {
	next := &ledgerState{
		assignments: make([]Assignment, len(st.assignments)),
		submissions: make([]Submission, len(st.submissions)),
		audit:       make([]AuditEntry, len(st.audit)),
	}
	copy(next.assignments, st.assignments)
	copy(next.submissions, st.submissions)
	copy(next.audit, st.audit)
	return next
}

// Service is the homework ledger: it owns the assignment, submission
// and audit collections, enforces the business rules and answers
// status queries. All operations are safe for concurrent use.
type Service struct {
	mu      sync.RWMutex
	state   *ledgerState
	store   core.KVStore
	mailSvc core.EmailService // optional; grading notices are skipped when nil
}

func NewService(store core.KVStore, mailSvc core.EmailService) (*Service, error) {
	svc := &Service{
		state:   &ledgerState{},
		store:   store,
		mailSvc: mailSvc,
	}
	if err := svc.load(); err != nil {
		return nil, err
	}
	return svc, nil
}

func (svc *Service) load() error {
	if err := loadCollection(svc.store, KeyAssignments, &svc.state.assignments); err != nil {
		return err
	}
	if err := loadCollection(svc.store, KeySubmissions, &svc.state.submissions); err != nil {
		return err
	}
	if err := loadCollection(svc.store, KeyAuditLog, &svc.state.audit); err != nil {
		return err
	}
	svc.state.reindex()
	return nil
}

func loadCollection(store core.KVStore, key string, dst interface{}) error {
	data, ok, err := store.Load(key)
	if err != nil {
		return core.NewPersistenceError(errors.Wrap(err, "loading "+key))
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return core.NewPersistenceError(errors.Wrap(err, "decoding "+key))
	}
	return nil
}

// commit persists the staged state and swaps it in. On a failed save the
// committed state is left untouched so the mutation never took place.
func (svc *Service) commit(next *ledgerState) error {
	entries := make(map[string][]byte, 3)
	for key, coll := range map[string]interface{}{
		KeyAssignments: next.assignments,
		KeySubmissions: next.submissions,
		KeyAuditLog:    next.audit,
	} {
		data, err := json.Marshal(coll)
		if err != nil {
			return core.NewPersistenceError(errors.Wrap(err, "encoding "+key))
		}
		entries[key] = data
	}
	if err := svc.store.Save(entries); err != nil {
		return core.NewPersistenceError(errors.Wrap(err, "saving ledger"))
	}
	next.reindex()
	svc.state = next
	return nil
}

// CreateAssignment issues a new assignment. Teacher-only.
func (svc *Service) CreateAssignment(actor Actor, na NewAssignment) (Assignment, error) {
	if !actor.IsTeacher() {
		return Assignment{}, ErrPermissionDenied
	}
	if err := na.Validate(); err != nil {
		return Assignment{}, err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	now := nowFunc()
	a := Assignment{
		ID:           newID(),
		Subject:      na.Subject,
		ClassName:    na.ClassName,
		Title:        na.Title,
		Instructions: na.Instructions,
		Due:          na.Due.UTC(),
		Difficulty:   na.Difficulty,
		Urgent:       na.Urgent,
		Recurrence:   na.Recurrence,
		CreatedBy:    actor.Name,
		CreatedAt:    now,
	}

	next := svc.state.clone()
	next.assignments = append(next.assignments, a)
	next.audit = append(next.audit, AuditEntry{AssignmentID: a.ID, Action: AuditCreated, Actor: actor.Name, At: now})
	if err := svc.commit(next); err != nil {
		return Assignment{}, err
	}
	return svc.projectAssignment(a), nil
}

// UpdateAssignment replaces all mutable fields of an assignment and
// appends an "Updated" audit entry. Existing submissions are untouched.
// Teacher-only.
func (svc *Service) UpdateAssignment(actor Actor, id string, ua UpdateAssignment) (Assignment, error) {
	if !actor.IsTeacher() {
		return Assignment{}, ErrPermissionDenied
	}
	if err := ua.Validate(); err != nil {
		return Assignment{}, err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	idx, ok := svc.state.assignmentIdx[id]
	if !ok {
		return Assignment{}, ErrNotFound
	}

	next := svc.state.clone()
	a := &next.assignments[idx]
	a.Subject = ua.Subject
	a.ClassName = ua.ClassName
	a.Title = ua.Title
	a.Instructions = ua.Instructions
	a.Due = ua.Due.UTC()
	a.Difficulty = ua.Difficulty
	a.Urgent = ua.Urgent
	a.Recurrence = ua.Recurrence
	next.audit = append(next.audit, AuditEntry{AssignmentID: id, Action: AuditUpdated, Actor: actor.Name, At: nowFunc()})
	if err := svc.commit(next); err != nil {
		return Assignment{}, err
	}
	return svc.projectAssignment(next.assignments[idx]), nil
}

// DeleteAssignment removes an assignment together with all its
// submissions and audit entries, in one atomic save. Teacher-only.
func (svc *Service) DeleteAssignment(actor Actor, id string) error {
	if !actor.IsTeacher() {
		return ErrPermissionDenied
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if _, ok := svc.state.assignmentIdx[id]; !ok {
		return ErrNotFound
	}

	next := svc.state.clone()
	assignments := next.assignments[:0]
	for _, a := range next.assignments {
		if a.ID != id {
			assignments = append(assignments, a)
		}
	}
	next.assignments = assignments

	submissions := next.submissions[:0]
	for _, sub := range next.submissions {
		if sub.AssignmentID != id {
			submissions = append(submissions, sub)
		}
	}
	next.submissions = submissions

	audit := next.audit[:0]
	for _, entry := range next.audit {
		if entry.AssignmentID != id {
			audit = append(audit, entry)
		}
	}
	next.audit = audit

	return svc.commit(next)
}

// SubmitHomework records a student's attempt at an assignment.
// Student-only. At most MaxAttempts submissions per (assignment, student);
// text identical to any existing submission of the assignment is rejected,
// regardless of which student authored the original.
func (svc *Service) SubmitHomework(actor Actor, ns NewSubmission) (Submission, error) {
	if !actor.IsStudent() {
		return Submission{}, ErrPermissionDenied
	}
	if err := ns.Validate(); err != nil {
		return Submission{}, err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	aIdx, ok := svc.state.assignmentIdx[ns.AssignmentID]
	if !ok {
		return Submission{}, ErrNotFound
	}
	a := svc.state.assignments[aIdx]

	var attempts int
	for _, i := range svc.state.byAssignment[a.ID] {
		sub := svc.state.submissions[i]
		if sub.StudentID == actor.ID {
			attempts++
		}
		if sub.Text == ns.Text {
			return Submission{}, ErrDuplicateSubmission
		}
	}
	if attempts >= MaxAttempts {
		return Submission{}, ErrAttemptLimit
	}

	now := nowFunc()
	status := StatusSubmitted
	if now.After(a.Due) {
		status = StatusLate
	}
	sub := Submission{
		ID:           newID(),
		AssignmentID: a.ID,
		StudentID:    actor.ID,
		StudentName:  actor.Name,
		Text:         ns.Text,
		SubmittedAt:  now,
		Status:       status,
	}

	next := svc.state.clone()
	next.submissions = append(next.submissions, sub)
	if err := svc.commit(next); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

// GradeSubmission sets marks and feedback on a submission. It never
// changes the submission's status: the Submitted/Late distinction
// reflects timing only. Teacher-only.
func (svc *Service) GradeSubmission(actor Actor, submissionID string, grade Grade) (Submission, error) {
	if !actor.IsTeacher() {
		return Submission{}, ErrPermissionDenied
	}
	if err := grade.Validate(); err != nil {
		return Submission{}, err
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	idx, ok := svc.state.submissionIdx[submissionID]
	if !ok {
		return Submission{}, ErrSubmissionNotFound
	}

	now := nowFunc()
	next := svc.state.clone()
	sub := &next.submissions[idx]
	sub.Marks = grade.Marks
	sub.Feedback = grade.Feedback
	sub.GradedBy = actor.Name
	sub.GradedAt = &now
	if err := svc.commit(next); err != nil {
		return Submission{}, err
	}

	graded := next.submissions[idx]
	svc.sendGradeNotice(graded)
	return graded, nil
}

// sendGradeNotice emails the student their grade when the identity
// collaborator supplied an email-shaped student id. Delivery failures
// are the email service's problem, never the grading caller's.
func (svc *Service) sendGradeNotice(sub Submission) {
	if svc.mailSvc == nil || !strings.Contains(sub.StudentID, "@") {
		return
	}
	a, err := svc.getAssignment(sub.AssignmentID)
	if err != nil {
		return
	}
	body := fmt.Sprintf("Your submission for %q (%s) has been graded.", a.Title, a.Subject)
	if sub.Marks != nil {
		body += fmt.Sprintf("\nMarks: %g/100", *sub.Marks)
	}
	if sub.Feedback != "" {
		body += "\nFeedback: " + sub.Feedback
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: sub.StudentName, Address: sub.StudentID}},
		Subject: "Homework graded: " + a.Title,
		Body:    body,
	})
}

// CommentSubmission appends a remark to a submission. Private comments
// are reserved for teachers.
func (svc *Service) CommentSubmission(actor Actor, submissionID string, nc NewComment) (Comment, error) {
	if !actor.IsTeacher() && !actor.IsStudent() {
		return Comment{}, ErrPermissionDenied
	}
	if err := nc.Validate(); err != nil {
		return Comment{}, err
	}
	if nc.Private && !actor.IsTeacher() {
		return Comment{}, core.NewValidationError(
			errors.New("private comments are teacher-only"),
			core.FieldError{Field: "private", Error: "private comments are teacher-only"},
		)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	idx, ok := svc.state.submissionIdx[submissionID]
	if !ok {
		return Comment{}, ErrSubmissionNotFound
	}

	comment := Comment{
		ID:      newID(),
		Author:  actor.Name,
		Content: nc.Content,
		Private: nc.Private,
		At:      nowFunc(),
	}
	next := svc.state.clone()
	sub := &next.submissions[idx]
	comments := make([]Comment, len(sub.Comments), len(sub.Comments)+1)
	copy(comments, sub.Comments)
	sub.Comments = append(comments, comment)
	if err := svc.commit(next); err != nil {
		return Comment{}, err
	}
	return comment, nil
}

// GetAssignment returns an assignment with its audit trail attached.
func (svc *Service) GetAssignment(id string) (Assignment, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.getAssignment(id)
}

func (svc *Service) getAssignment(id string) (Assignment, error) {
	idx, ok := svc.state.assignmentIdx[id]
	if !ok {
		return Assignment{}, ErrNotFound
	}
	return svc.projectAssignment(svc.state.assignments[idx]), nil
}

// QueryAll returns every assignment in insertion order (oldest first).
func (svc *Service) QueryAll() ([]Assignment, error) {
	return svc.Filter(QueryFilter{})
}

// Filter returns assignments matching every provided filter field,
// in stable insertion order (oldest first).
func (svc *Service) Filter(filter QueryFilter) ([]Assignment, error) {
	filter.Clean()

	svc.mu.RLock()
	defer svc.mu.RUnlock()

	res := make([]Assignment, 0, len(svc.state.assignments))
	for _, a := range svc.state.assignments {
		if filter.Subject != "" && a.Subject != filter.Subject {
			continue
		}
		if filter.ClassName != "" && a.ClassName != filter.ClassName {
			continue
		}
		if filter.Status != "" && !strings.EqualFold(svc.status(a.ID), filter.Status) {
			continue
		}
		res = append(res, svc.projectAssignment(a))
	}
	return res, nil
}

// Status derives the assignment's status from its submissions.
func (svc *Service) Status(assignmentID string) (string, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	if _, ok := svc.state.assignmentIdx[assignmentID]; !ok {
		return "", ErrNotFound
	}
	return svc.status(assignmentID), nil
}

func (svc *Service) status(assignmentID string) string {
	subs := svc.state.byAssignment[assignmentID]
	statuses := make([]string, 0, len(subs))
	for _, i := range subs {
		statuses = append(statuses, svc.state.submissions[i].Status)
	}
	return DeriveStatus(statuses)
}

// DeriveStatus computes an assignment status from its submissions'
// statuses: "Not Submitted" with none, "Late" when at least one
// submission was late, "Submitted" otherwise. Pure; recomputed on every
// query and never stored on the assignment.
func DeriveStatus(submissionStatuses []string) string {
	if len(submissionStatuses) == 0 {
		return StatusNotSubmitted
	}
	for _, s := range submissionStatuses {
		if s == StatusLate {
			return StatusLate
		}
	}
	return StatusSubmitted
}

// QuerySubmissions returns an assignment's submissions in insertion
// order. Students do not see private comments.
func (svc *Service) QuerySubmissions(actor Actor, assignmentID string) ([]Submission, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	if _, ok := svc.state.assignmentIdx[assignmentID]; !ok {
		return nil, ErrNotFound
	}
	idxs := svc.state.byAssignment[assignmentID]
	res := make([]Submission, 0, len(idxs))
	for _, i := range idxs {
		res = append(res, svc.projectSubmission(svc.state.submissions[i], actor))
	}
	return res, nil
}

// GetSubmission returns a single submission. Students do not see
// private comments.
func (svc *Service) GetSubmission(actor Actor, id string) (Submission, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	idx, ok := svc.state.submissionIdx[id]
	if !ok {
		return Submission{}, ErrSubmissionNotFound
	}
	return svc.projectSubmission(svc.state.submissions[idx], actor), nil
}

// GetSummary returns the simple counts for one assignment.
func (svc *Service) GetSummary(assignmentID string) (Summary, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	if _, ok := svc.state.assignmentIdx[assignmentID]; !ok {
		return Summary{}, ErrNotFound
	}

	sum := Summary{AssignmentID: assignmentID, Status: svc.status(assignmentID)}
	students := make(map[string]struct{})
	for _, i := range svc.state.byAssignment[assignmentID] {
		sub := svc.state.submissions[i]
		sum.Submissions++
		if sub.IsLate() {
			sum.Late++
		}
		if sub.IsGraded() {
			sum.Graded++
		}
		students[sub.StudentID] = struct{}{}
	}
	sum.Students = len(students)
	return sum, nil
}

// projectAssignment attaches the audit trail, oldest entry first.
func (svc *Service) projectAssignment(a Assignment) Assignment {
	var trail []AuditEntry
	for _, entry := range svc.state.audit {
		if entry.AssignmentID == a.ID {
			trail = append(trail, entry)
		}
	}
	a.AuditTrail = trail
	return a
}

// projectSubmission returns a copy safe to hand out; private comments
// are stripped for students.
func (svc *Service) projectSubmission(sub Submission, actor Actor) Submission {
	comments := make([]Comment, 0, len(sub.Comments))
	for _, c := range sub.Comments {
		if c.Private && !actor.IsTeacher() {
			continue
		}
		comments = append(comments, c)
	}
	if len(comments) == 0 {
		comments = nil
	}
	sub.Comments = comments
	return sub
}
