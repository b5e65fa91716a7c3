package classroom

import (
	"fmt"
	"time"
)

// SubmissionState is the lifecycle state of a student submission.
type SubmissionState string

const (
	StateNew                SubmissionState = "NEW"
	StateCreated            SubmissionState = "CREATED"
	StateTurnedIn           SubmissionState = "TURNED_IN"
	StateReturned           SubmissionState = "RETURNED"
	StateReclaimedByStudent SubmissionState = "RECLAIMED_BY_STUDENT"
)

// Processable reports whether a submission in this state can be extracted and graded.
func (s SubmissionState) Processable() bool {
	return s == StateTurnedIn || s == StateCreated
}

// AttachmentKind tags which variant of an Attachment is populated.
type AttachmentKind int

const (
	KindUnknown AttachmentKind = iota
	KindDriveFile
	KindForm
	KindLink
)

func (k AttachmentKind) String() string {
	switch k {
	case KindDriveFile:
		return "drive_file"
	case KindForm:
		return "form"
	case KindLink:
		return "link"
	}
	return "unknown"
}

// DriveFileRef points at a file stored in Drive.
type DriveFileRef struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// FormRef points at a Google Form. ResponseURL is set once the student responded.
type FormRef struct {
	FormURL     string `json:"formUrl"`
	ResponseURL string `json:"responseUrl,omitempty"`
	Title       string `json:"title,omitempty"`
}

// LinkRef is an arbitrary hyperlink.
type LinkRef struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// Attachment is one unit of submitted material. Exactly one field is set;
// an attachment with none set (e.g. a YouTube video) is of unknown kind.
type Attachment struct {
	DriveFile *DriveFileRef `json:"driveFile,omitempty"`
	Form      *FormRef      `json:"form,omitempty"`
	Link      *LinkRef      `json:"link,omitempty"`
}

// Title returns the display title of whichever variant is set.
func (a Attachment) Title() string {
	switch {
	case a.DriveFile != nil:
		return a.DriveFile.Title
	case a.Form != nil:
		return a.Form.Title
	case a.Link != nil:
		return a.Link.Title
	}
	return ""
}

// Identifier returns the file ID, form URL or link URL of the populated variant.
func (a Attachment) Identifier() string {
	switch {
	case a.DriveFile != nil:
		return a.DriveFile.ID
	case a.Form != nil:
		return a.Form.FormURL
	case a.Link != nil:
		return a.Link.URL
	}
	return ""
}

// Course is a Classroom course the teacher owns.
type Course struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Section       string `json:"section,omitempty"`
	State         string `json:"state,omitempty"`
	AlternateLink string `json:"alternateLink,omitempty"`
}

// Assignment is a coursework item.
type Assignment struct {
	ID            string       `json:"id"`
	CourseID      string       `json:"courseId"`
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	State         string       `json:"state,omitempty"`
	WorkType      string       `json:"workType,omitempty"`
	MaxPoints     float64      `json:"maxPoints,omitempty"`
	DueDate       string       `json:"dueDate,omitempty"`
	AlternateLink string       `json:"alternateLink,omitempty"`
	UpdateTime    time.Time    `json:"updateTime,omitempty"`
	Materials     []Attachment `json:"materials,omitempty"`
}

// Submission is a student's submission for one assignment.
//
// A grade of exactly zero cannot be told apart from "no grade" in API
// responses, so it decodes as nil.
type Submission struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	CourseID      string          `json:"courseId"`
	CourseWorkID  string          `json:"courseWorkId"`
	State         SubmissionState `json:"state"`
	Late          bool            `json:"late,omitempty"`
	AssignedGrade *float64        `json:"assignedGrade,omitempty"`
	DraftGrade    *float64        `json:"draftGrade,omitempty"`
	AlternateLink string          `json:"alternateLink,omitempty"`
	UpdateTime    time.Time       `json:"updateTime,omitempty"`
	Attachments   []Attachment    `json:"attachments,omitempty"`
	// Materials are the assignment-level attachments, used only when the
	// student attached nothing.
	Materials []Attachment `json:"materials,omitempty"`
}

// AllAttachments returns the student's attachments, or the assignment
// materials when the student attached nothing. The result is a fresh slice.
func (s *Submission) AllAttachments() []Attachment {
	src := s.Attachments
	if len(src) == 0 {
		src = s.Materials
	}
	out := make([]Attachment, len(src))
	copy(out, src)
	return out
}

// CurrentGrade returns the assigned grade, else the draft grade, else nil.
func (s *Submission) CurrentGrade() *float64 {
	if s.AssignedGrade != nil {
		return s.AssignedGrade
	}
	return s.DraftGrade
}

// StudentProfile is the subset of a user profile the grader needs.
type StudentProfile struct {
	UserID   string `json:"userId"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
}

// DisplayName returns the student's name, or "Student" when unknown.
func (p StudentProfile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return "Student"
}

func (p StudentProfile) String() string {
	if p.Email == "" {
		return p.DisplayName()
	}
	return fmt.Sprintf("%s <%s>", p.DisplayName(), p.Email)
}
