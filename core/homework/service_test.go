package homework

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/tmwangi/kazi/core"
	emailsvc "github.com/tmwangi/kazi/services/email"
	inmemstore "github.com/tmwangi/kazi/storage/inmem"
)

var (
	teacher  = Actor{ID: "t-1", Name: "Mr. Otieno", Role: RoleTeacher}
	student1 = Actor{ID: "s-1", Name: "Amina", Role: RoleStudent}
	student2 = Actor{ID: "s-2", Name: "Baraka", Role: RoleStudent}
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(inmemstore.New(), nil)
	if err != nil {
		t.Fatalf("NewService() failed: %v", err)
	}
	return svc
}

func newAssignment(due time.Time) NewAssignment {
	return NewAssignment{
		Subject:      "Mathematics",
		ClassName:    "Form 2A",
		Title:        "Worksheet 5",
		Instructions: "Answer all questions.",
		Due:          due,
	}
}

func createAssignment(t *testing.T, svc *Service, due time.Time) Assignment {
	t.Helper()
	a, err := svc.CreateAssignment(teacher, newAssignment(due))
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return a
}

func submitText(t *testing.T, svc *Service, actor Actor, assignmentID, text string) Submission {
	t.Helper()
	sub, err := svc.SubmitHomework(actor, NewSubmission{AssignmentID: assignmentID, Text: text})
	if err != nil {
		t.Fatalf("SubmitHomework(%q) failed: %v", text, err)
	}
	return sub
}

func setNow(t *testing.T, now time.Time) {
	t.Helper()
	nowFunc = func() time.Time { return now.UTC() }
	t.Cleanup(func() { nowFunc = func() time.Time { return time.Now().UTC() } })
}

func isValidationErr(err error) bool {
	switch errors.Cause(err).(type) {
	case validator.ValidationErrors, *core.ValidationError:
		return true
	}
	return false
}

func TestService_CreateAssignment(t *testing.T) {
	svc := newTestService(t)
	due := time.Now().UTC().Add(48 * time.Hour)

	a, err := svc.CreateAssignment(teacher, NewAssignment{
		Subject:   "Physics",
		ClassName: "Form 3B",
		Title:     "Pendulum lab",
		Due:       due,
		Urgent:    true,
	})
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	if a.ID == "" {
		t.Error("expected a generated id")
	}
	if a.CreatedBy != teacher.Name {
		t.Errorf("CreatedBy = %q; want %q", a.CreatedBy, teacher.Name)
	}
	if a.Difficulty != DifficultyMedium {
		t.Errorf("Difficulty = %q; want default %q", a.Difficulty, DifficultyMedium)
	}
	if a.Recurrence != RecurrenceNone {
		t.Errorf("Recurrence = %q; want default %q", a.Recurrence, RecurrenceNone)
	}
	if len(a.AuditTrail) != 1 || a.AuditTrail[0].Action != AuditCreated {
		t.Errorf("AuditTrail = %+v; want single %q entry", a.AuditTrail, AuditCreated)
	}

	t.Run("missing required fields", func(t *testing.T) {
		_, err := svc.CreateAssignment(teacher, NewAssignment{Title: "No subject"})
		if !isValidationErr(err) {
			t.Errorf("error = %v; want validation error", err)
		}
	})

	t.Run("students may not create", func(t *testing.T) {
		_, err := svc.CreateAssignment(student1, newAssignment(due))
		if err != ErrPermissionDenied {
			t.Errorf("error = %v; want ErrPermissionDenied", err)
		}
	})
}

func TestService_UpdateAssignment(t *testing.T) {
	svc := newTestService(t)
	a := createAssignment(t, svc, time.Now().UTC().Add(time.Hour))
	sub := submitText(t, svc, student1, a.ID, "my answer")

	upd := UpdateAssignment{
		Subject:    "Chemistry",
		ClassName:  "Form 2B",
		Title:      "Worksheet 6",
		Due:        a.Due.Add(24 * time.Hour),
		Difficulty: DifficultyHard,
	}
	got, err := svc.UpdateAssignment(teacher, a.ID, upd)
	if err != nil {
		t.Fatalf("UpdateAssignment() failed: %v", err)
	}
	if got.Subject != "Chemistry" || got.Title != "Worksheet 6" || got.Difficulty != DifficultyHard {
		t.Errorf("fields not replaced: %+v", got)
	}
	if len(got.AuditTrail) != 2 {
		t.Fatalf("AuditTrail len = %d; want 2", len(got.AuditTrail))
	}
	if got.AuditTrail[0].Action != AuditCreated || got.AuditTrail[1].Action != AuditUpdated {
		t.Errorf("AuditTrail order = %+v; want Created then Updated", got.AuditTrail)
	}

	// existing submissions are untouched
	after, err := svc.GetSubmission(teacher, sub.ID)
	if err != nil {
		t.Fatalf("GetSubmission() failed: %v", err)
	}
	if after.Status != sub.Status || after.Text != sub.Text {
		t.Errorf("submission changed by update: %+v", after)
	}

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.UpdateAssignment(teacher, "nope", upd)
		if err != ErrNotFound {
			t.Errorf("error = %v; want ErrNotFound", err)
		}
	})

	t.Run("students may not update", func(t *testing.T) {
		_, err := svc.UpdateAssignment(student1, a.ID, upd)
		if err != ErrPermissionDenied {
			t.Errorf("error = %v; want ErrPermissionDenied", err)
		}
	})
}

func TestService_DeleteAssignment(t *testing.T) {
	svc := newTestService(t)
	doomed := createAssignment(t, svc, time.Now().UTC().Add(time.Hour))
	kept := createAssignment(t, svc, time.Now().UTC().Add(time.Hour))

	doomedSub := submitText(t, svc, student1, doomed.ID, "doomed answer")
	keptSub := submitText(t, svc, student1, kept.ID, "kept answer")

	if err := svc.DeleteAssignment(teacher, doomed.ID); err != nil {
		t.Fatalf("DeleteAssignment() failed: %v", err)
	}

	all, err := svc.QueryAll()
	if err != nil {
		t.Fatalf("QueryAll() failed: %v", err)
	}
	if len(all) != 1 || all[0].ID != kept.ID {
		t.Errorf("QueryAll() = %+v; want only the kept assignment", all)
	}

	// cascade: grading a deleted assignment's submission is a NotFound
	if _, err := svc.GradeSubmission(teacher, doomedSub.ID, Grade{Marks: f64(50)}); err != ErrSubmissionNotFound {
		t.Errorf("GradeSubmission(deleted) error = %v; want ErrSubmissionNotFound", err)
	}
	if _, err := svc.QuerySubmissions(teacher, doomed.ID); err != ErrNotFound {
		t.Errorf("QuerySubmissions(deleted) error = %v; want ErrNotFound", err)
	}

	// the other assignment's submissions survive
	if _, err := svc.GetSubmission(teacher, keptSub.ID); err != nil {
		t.Errorf("GetSubmission(kept) failed: %v", err)
	}

	t.Run("unknown id", func(t *testing.T) {
		if err := svc.DeleteAssignment(teacher, "nope"); err != ErrNotFound {
			t.Errorf("error = %v; want ErrNotFound", err)
		}
	})

	t.Run("students may not delete", func(t *testing.T) {
		if err := svc.DeleteAssignment(student1, kept.ID); err != ErrPermissionDenied {
			t.Errorf("error = %v; want ErrPermissionDenied", err)
		}
	})
}

func TestService_SubmitHomework(t *testing.T) {
	svc := newTestService(t)
	due := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	a := createAssignment(t, svc, due)

	setNow(t, due.Add(-time.Hour)) // 08:00
	sub := submitText(t, svc, student1, a.ID, "on time answer")
	if sub.Status != StatusSubmitted {
		t.Errorf("Status = %q; want %q", sub.Status, StatusSubmitted)
	}
	if sub.StudentID != student1.ID || sub.StudentName != student1.Name {
		t.Errorf("student identity not recorded: %+v", sub)
	}

	setNow(t, due.Add(time.Hour)) // 10:00
	late := submitText(t, svc, student2, a.ID, "late answer")
	if late.Status != StatusLate {
		t.Errorf("Status = %q; want %q", late.Status, StatusLate)
	}

	t.Run("unknown assignment", func(t *testing.T) {
		_, err := svc.SubmitHomework(student1, NewSubmission{AssignmentID: "nope", Text: "x"})
		if err != ErrNotFound {
			t.Errorf("error = %v; want ErrNotFound", err)
		}
	})

	t.Run("teachers may not submit", func(t *testing.T) {
		_, err := svc.SubmitHomework(teacher, NewSubmission{AssignmentID: a.ID, Text: "x"})
		if err != ErrPermissionDenied {
			t.Errorf("error = %v; want ErrPermissionDenied", err)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		_, err := svc.SubmitHomework(student1, NewSubmission{AssignmentID: a.ID})
		if !isValidationErr(err) {
			t.Errorf("error = %v; want validation error", err)
		}
	})
}

func TestService_SubmitHomework_attemptLimit(t *testing.T) {
	svc := newTestService(t)
	a := createAssignment(t, svc, time.Now().UTC().Add(time.Hour))

	submitText(t, svc, student1, a.ID, "attempt one")
	submitText(t, svc, student1, a.ID, "attempt two")
	submitText(t, svc, student1, a.ID, "attempt three") // 3rd succeeds

	_, err := svc.SubmitHomework(student1, NewSubmission{AssignmentID: a.ID, Text: "attempt four"})
	if err != ErrAttemptLimit {
		t.Errorf("4th attempt error = %v; want ErrAttemptLimit", err)
	}

	// the limit is per student: another student may still submit
	submitText(t, svc, student2, a.ID, "other student attempt")
}

func TestService_SubmitHomework_duplicateText(t *testing.T) {
	svc := newTestService(t)
	a := createAssignment(t, svc, time.Now().UTC().Add(time.Hour))
	other := createAssignment(t, svc, time.Now().UTC().Add(time.Hour))

	submitText(t, svc, student1, a.ID, "the answer is 42")

	// identical text is rejected regardless of the submitting student
	for _, actor := range []Actor{student1, student2} {
		_, err := svc.SubmitHomework(actor, NewSubmission{AssignmentID: a.ID, Text: "the answer is 42"})
		if err != ErrDuplicateSubmission {
			t.Errorf("duplicate by %s error = %v; want ErrDuplicateSubmission", actor.Name, err)
		}
	}

	// the same text on a different assignment is fine
	submitText(t, svc, student1, other.ID, "the answer is 42")
}

func TestService_GradeSubmission(t *testing.T) {
	svc := newTestService(t)
	a := createAssignment(t, svc, time.Now().UTC().Add(time.Hour))
	sub := submitText(t, svc, student1, a.ID, "my answer")

	graded, err := svc.GradeSubmission(teacher, sub.ID, Grade{Marks: f64(85), Feedback: "Good work"})
	if err != nil {
		t.Fatalf("GradeSubmission() failed: %v", err)
	}
	if graded.Marks == nil || *graded.Marks != 85 {
		t.Errorf("Marks = %v; want 85", graded.Marks)
	}
	if graded.Feedback != "Good work" {
		t.Errorf("Feedback = %q; want %q", graded.Feedback, "Good work")
	}
	if graded.GradedBy != teacher.Name || graded.GradedAt == nil {
		t.Errorf("grading provenance not set: %+v", graded)
	}
	if graded.Status != StatusSubmitted {
		t.Errorf("Status = %q; grading must not change status", graded.Status)
	}

	// parent assignment status is unaffected by grading
	status, err := svc.Status(a.ID)
	if err != nil {
		t.Fatalf("Status() failed: %v", err)
	}
	if status != StatusSubmitted {
		t.Errorf("assignment status = %q; want %q", status, StatusSubmitted)
	}

	tests := []struct {
		name    string
		marks   *float64
		wantErr bool
	}{
		{name: "marks=0", marks: f64(0)},
		{name: "marks=100", marks: f64(100)},
		{name: "marks=-1", marks: f64(-1), wantErr: true},
		{name: "marks=101", marks: f64(101), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GradeSubmission(teacher, sub.ID, Grade{Marks: tt.marks})
			if tt.wantErr != isValidationErr(err) {
				t.Errorf("error = %v; wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("GradeSubmission() failed: %v", err)
			}
		})
	}

	t.Run("unknown submission", func(t *testing.T) {
		_, err := svc.GradeSubmission(teacher, "nope", Grade{Marks: f64(50)})
		if err != ErrSubmissionNotFound {
			t.Errorf("error = %v; want ErrSubmissionNotFound", err)
		}
	})

	t.Run("students may not grade", func(t *testing.T) {
		_, err := svc.GradeSubmission(student1, sub.ID, Grade{Marks: f64(50)})
		if err != ErrPermissionDenied {
			t.Errorf("error = %v; want ErrPermissionDenied", err)
		}
	})
}

func TestService_GradeSubmission_sendsNotice(t *testing.T) {
	svc, err := NewService(inmemstore.New(), emailsvc.NewConsoleServiceMock())
	if err != nil {
		t.Fatalf("NewService() failed: %v", err)
	}
	emailsvc.ClearSentMessages()

	mailStudent := Actor{ID: "amina@school.test", Name: "Amina", Role: RoleStudent}
	a := createAssignment(t, svc, time.Now().UTC().Add(time.Hour))
	sub := submitText(t, svc, mailStudent, a.ID, "my answer")

	if _, err := svc.GradeSubmission(teacher, sub.ID, Grade{Marks: f64(90), Feedback: "Well done"}); err != nil {
		t.Fatalf("GradeSubmission() failed: %v", err)
	}

	sent := emailsvc.GetSentMessages()
	if len(sent) != 1 {
		t.Fatalf("sent messages = %d; want 1", len(sent))
	}
	if sent[0].To[0].Address != mailStudent.ID {
		t.Errorf("notice recipient = %q; want %q", sent[0].To[0].Address, mailStudent.ID)
	}
}

func TestService_Status(t *testing.T) {
	svc := newTestService(t)
	due := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	a := createAssignment(t, svc, due)

	status, err := svc.Status(a.ID)
	if err != nil {
		t.Fatalf("Status() failed: %v", err)
	}
	if status != StatusNotSubmitted {
		t.Errorf("status = %q; want %q", status, StatusNotSubmitted)
	}

	setNow(t, due.Add(-time.Hour))
	submitText(t, svc, student1, a.ID, "on time")
	if status, _ = svc.Status(a.ID); status != StatusSubmitted {
		t.Errorf("status = %q; want %q", status, StatusSubmitted)
	}

	setNow(t, due.Add(time.Hour))
	submitText(t, svc, student2, a.ID, "too late")
	if status, _ = svc.Status(a.ID); status != StatusLate {
		t.Errorf("status = %q; want %q", status, StatusLate)
	}

	t.Run("unknown assignment", func(t *testing.T) {
		if _, err := svc.Status("nope"); err != ErrNotFound {
			t.Errorf("error = %v; want ErrNotFound", err)
		}
	})
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		want     string
	}{
		{name: "no submissions", want: StatusNotSubmitted},
		{name: "all on time", statuses: []string{StatusSubmitted, StatusSubmitted}, want: StatusSubmitted},
		{name: "one late", statuses: []string{StatusSubmitted, StatusLate, StatusSubmitted}, want: StatusLate},
		{name: "all late", statuses: []string{StatusLate}, want: StatusLate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveStatus(tt.statuses); got != tt.want {
				t.Errorf("DeriveStatus() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestService_Filter(t *testing.T) {
	svc := newTestService(t)
	due := time.Now().UTC().Add(time.Hour)

	math, err := svc.CreateAssignment(teacher, NewAssignment{Subject: "Mathematics", ClassName: "Form 2A", Title: "W1", Due: due})
	if err != nil {
		t.Fatal(err)
	}
	english, err := svc.CreateAssignment(teacher, NewAssignment{Subject: "English", ClassName: "Form 2A", Title: "W2", Due: due})
	if err != nil {
		t.Fatal(err)
	}
	physics, err := svc.CreateAssignment(teacher, NewAssignment{Subject: "Physics", ClassName: "Form 3B", Title: "W3", Due: time.Now().UTC().Add(-time.Hour)})
	if err != nil {
		t.Fatal(err)
	}

	submitText(t, svc, student1, english.ID, "english answer")
	submitText(t, svc, student1, physics.ID, "late physics answer") // past due

	ids := func(as []Assignment) []string {
		res := make([]string, 0, len(as))
		for _, a := range as {
			res = append(res, a.ID)
		}
		return res
	}
	eq := func(got, want []string) bool {
		if len(got) != len(want) {
			return false
		}
		for i := range got {
			if got[i] != want[i] {
				return false
			}
		}
		return true
	}

	tests := []struct {
		name   string
		filter QueryFilter
		want   []string
	}{
		{name: "no filter keeps insertion order", want: []string{math.ID, english.ID, physics.ID}},
		{name: "by subject", filter: QueryFilter{Subject: "Mathematics"}, want: []string{math.ID}},
		{name: "by class", filter: QueryFilter{ClassName: "Form 2A"}, want: []string{math.ID, english.ID}},
		{name: "by status not submitted", filter: QueryFilter{Status: StatusNotSubmitted}, want: []string{math.ID}},
		{name: "by status submitted", filter: QueryFilter{Status: StatusSubmitted}, want: []string{english.ID}},
		{name: "by status late", filter: QueryFilter{Status: StatusLate}, want: []string{physics.ID}},
		{name: "lowercase late", filter: QueryFilter{Status: "late"}, want: []string{physics.ID}},
		{name: "subject and class", filter: QueryFilter{Subject: "English", ClassName: "Form 2A"}, want: []string{english.ID}},
		{name: "no match", filter: QueryFilter{Subject: "History"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Filter(tt.filter)
			if err != nil {
				t.Fatalf("Filter() failed: %v", err)
			}
			if !eq(ids(got), tt.want) {
				t.Errorf("Filter() = %v; want %v", ids(got), tt.want)
			}
		})
	}
}

func TestService_CommentSubmission(t *testing.T) {
	svc := newTestService(t)
	a := createAssignment(t, svc, time.Now().UTC().Add(time.Hour))
	sub := submitText(t, svc, student1, a.ID, "my answer")

	if _, err := svc.CommentSubmission(student1, sub.ID, NewComment{Content: "is this right?"}); err != nil {
		t.Fatalf("CommentSubmission() failed: %v", err)
	}
	if _, err := svc.CommentSubmission(teacher, sub.ID, NewComment{Content: "check question 3", Private: true}); err != nil {
		t.Fatalf("CommentSubmission(private) failed: %v", err)
	}

	// students never see private comments
	asStudent, err := svc.GetSubmission(student1, sub.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(asStudent.Comments) != 1 || asStudent.Comments[0].Private {
		t.Errorf("student view comments = %+v; want only the public one", asStudent.Comments)
	}

	asTeacher, err := svc.GetSubmission(teacher, sub.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(asTeacher.Comments) != 2 {
		t.Errorf("teacher view comments = %d; want 2", len(asTeacher.Comments))
	}

	t.Run("students may not post private comments", func(t *testing.T) {
		_, err := svc.CommentSubmission(student1, sub.ID, NewComment{Content: "secret", Private: true})
		if !isValidationErr(err) {
			t.Errorf("error = %v; want validation error", err)
		}
	})

	t.Run("unknown submission", func(t *testing.T) {
		_, err := svc.CommentSubmission(teacher, "nope", NewComment{Content: "x"})
		if err != ErrSubmissionNotFound {
			t.Errorf("error = %v; want ErrSubmissionNotFound", err)
		}
	})
}

func TestService_GetSummary(t *testing.T) {
	svc := newTestService(t)
	due := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	a := createAssignment(t, svc, due)

	setNow(t, due.Add(-time.Hour))
	first := submitText(t, svc, student1, a.ID, "attempt one")
	submitText(t, svc, student1, a.ID, "attempt two")
	setNow(t, due.Add(time.Hour))
	submitText(t, svc, student2, a.ID, "late attempt")

	if _, err := svc.GradeSubmission(teacher, first.ID, Grade{Marks: f64(70)}); err != nil {
		t.Fatal(err)
	}

	sum, err := svc.GetSummary(a.ID)
	if err != nil {
		t.Fatalf("GetSummary() failed: %v", err)
	}
	want := Summary{AssignmentID: a.ID, Status: StatusLate, Submissions: 3, Late: 1, Graded: 1, Students: 2}
	if sum != want {
		t.Errorf("GetSummary() = %+v; want %+v", sum, want)
	}

	t.Run("unknown assignment", func(t *testing.T) {
		if _, err := svc.GetSummary("nope"); err != ErrNotFound {
			t.Errorf("error = %v; want ErrNotFound", err)
		}
	})
}

// failingStore wraps a store and fails every save once armed.
type failingStore struct {
	core.KVStore
	fail bool
}

func (s *failingStore) Save(entries map[string][]byte) error {
	if s.fail {
		return errors.New("disk on fire")
	}
	return s.KVStore.Save(entries)
}

func TestService_mutationsAreAtomic(t *testing.T) {
	store := &failingStore{KVStore: inmemstore.New()}
	svc, err := NewService(store, nil)
	if err != nil {
		t.Fatalf("NewService() failed: %v", err)
	}
	a := createAssignment(t, svc, time.Now().UTC().Add(time.Hour))

	store.fail = true

	if _, err := svc.CreateAssignment(teacher, newAssignment(time.Now().UTC())); !core.IsPersistence(err) {
		t.Errorf("CreateAssignment() error = %v; want persistence error", err)
	}
	if _, err := svc.SubmitHomework(student1, NewSubmission{AssignmentID: a.ID, Text: "x"}); !core.IsPersistence(err) {
		t.Errorf("SubmitHomework() error = %v; want persistence error", err)
	}
	if err := svc.DeleteAssignment(teacher, a.ID); !core.IsPersistence(err) {
		t.Errorf("DeleteAssignment() error = %v; want persistence error", err)
	}

	// failed mutations left no trace
	store.fail = false
	all, err := svc.QueryAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].ID != a.ID {
		t.Errorf("QueryAll() = %+v; want the original assignment only", all)
	}
	subs, err := svc.QuerySubmissions(teacher, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 0 {
		t.Errorf("QuerySubmissions() = %+v; want none", subs)
	}
}

func TestService_reloadsFromStore(t *testing.T) {
	store := inmemstore.New()
	svc, err := NewService(store, nil)
	if err != nil {
		t.Fatalf("NewService() failed: %v", err)
	}

	a := createAssignment(t, svc, time.Now().UTC().Add(time.Hour))
	sub := submitText(t, svc, student1, a.ID, "durable answer")

	// a fresh service over the same store sees the same ledger
	svc2, err := NewService(store, nil)
	if err != nil {
		t.Fatalf("NewService(reload) failed: %v", err)
	}
	got, err := svc2.GetAssignment(a.ID)
	if err != nil {
		t.Fatalf("GetAssignment() failed: %v", err)
	}
	if got.Title != a.Title || len(got.AuditTrail) != 1 {
		t.Errorf("reloaded assignment = %+v", got)
	}
	gotSub, err := svc2.GetSubmission(teacher, sub.ID)
	if err != nil {
		t.Fatalf("GetSubmission() failed: %v", err)
	}
	if gotSub.Text != "durable answer" {
		t.Errorf("reloaded submission = %+v", gotSub)
	}
}

func f64(v float64) *float64 { return &v }
