package grader

import (
	"context"
	"errors"
	"sync"

	"github.com/FreeMarketamilitia/classroom-grader/internal/classroom"
	"github.com/FreeMarketamilitia/classroom-grader/internal/extract"
	"github.com/FreeMarketamilitia/classroom-grader/internal/gmail"
)

type fakeClassroom struct {
	mu            sync.Mutex
	assignment    *classroom.Assignment
	assignmentErr error
	submissions   []classroom.Submission
	listErr       error
	profiles      map[string]*classroom.StudentProfile
	profileCalls  map[string]int
	patchErr      map[string]error
	returnErr     map[string]error
	patched       map[string]float64
	returned      []string
}

func newFakeClassroom() *fakeClassroom {
	return &fakeClassroom{
		assignment:   &classroom.Assignment{ID: "cw1", Title: "Essay 1"},
		profiles:     map[string]*classroom.StudentProfile{},
		profileCalls: map[string]int{},
		patchErr:     map[string]error{},
		returnErr:    map[string]error{},
		patched:      map[string]float64{},
	}
}

func (f *fakeClassroom) GetAssignment(_ context.Context, _, _ string) (*classroom.Assignment, error) {
	if f.assignmentErr != nil {
		return nil, f.assignmentErr
	}
	return f.assignment, nil
}

func (f *fakeClassroom) ListSubmissions(_ context.Context, _, _ string) ([]classroom.Submission, error) {
	return f.submissions, f.listErr
}

func (f *fakeClassroom) GetSubmission(_ context.Context, _, _, submissionID string) (*classroom.Submission, error) {
	for i := range f.submissions {
		if f.submissions[i].ID == submissionID {
			return &f.submissions[i], nil
		}
	}
	return nil, errors.New("submission not found")
}

func (f *fakeClassroom) PatchGrade(_ context.Context, _, _, submissionID string, grade float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.patchErr[submissionID]; err != nil {
		return err
	}
	f.patched[submissionID] = grade
	return nil
}

func (f *fakeClassroom) ReturnSubmission(_ context.Context, _, _, submissionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.returnErr[submissionID]; err != nil {
		return err
	}
	f.returned = append(f.returned, submissionID)
	return nil
}

func (f *fakeClassroom) GetStudentProfile(_ context.Context, userID string) (*classroom.StudentProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileCalls[userID]++
	p, ok := f.profiles[userID]
	if !ok {
		return nil, errors.New("profile not found")
	}
	return p, nil
}

// fakeExtractor returns content keyed by submission ID, failing for unknown IDs.
type fakeExtractor struct {
	content map[string]string
	emails  map[string]string
}

func (f *fakeExtractor) ExtractContent(_ context.Context, sub *classroom.Submission, studentEmail string) (string, error) {
	if f.emails != nil {
		f.emails[sub.ID] = studentEmail
	}
	text, ok := f.content[sub.ID]
	if !ok {
		return "", &extract.Error{Kind: extract.KindNotFoundLocally, Message: "No attachments found"}
	}
	return text, nil
}

type fakeGenerator struct {
	err error
}

func (f *fakeGenerator) Generate(_ context.Context, content string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "Feedback on: " + content, nil
}

type fakeMailer struct {
	sent []*gmail.EmailMessage
	err  map[string]error
}

func (f *fakeMailer) SendEmail(_ context.Context, msg *gmail.EmailMessage) (string, error) {
	if err := f.err[msg.To[0]]; err != nil {
		return "", err
	}
	f.sent = append(f.sent, msg)
	return "msg", nil
}
