package classroom

import (
	"fmt"
	"time"

	classroom "google.golang.org/api/classroom/v1"
)

func convertAttachment(a *classroom.Attachment) Attachment {
	switch {
	case a == nil:
		return Attachment{}
	case a.DriveFile != nil:
		return Attachment{DriveFile: &DriveFileRef{ID: a.DriveFile.Id, Title: a.DriveFile.Title}}
	case a.Form != nil:
		return Attachment{Form: &FormRef{FormURL: a.Form.FormUrl, ResponseURL: a.Form.ResponseUrl, Title: a.Form.Title}}
	case a.Link != nil:
		return Attachment{Link: &LinkRef{URL: a.Link.Url, Title: a.Link.Title}}
	}
	// YouTube videos and future attachment types
	return Attachment{}
}

func convertMaterial(m *classroom.Material) Attachment {
	switch {
	case m == nil:
		return Attachment{}
	case m.DriveFile != nil && m.DriveFile.DriveFile != nil:
		f := m.DriveFile.DriveFile
		return Attachment{DriveFile: &DriveFileRef{ID: f.Id, Title: f.Title}}
	case m.Form != nil:
		return Attachment{Form: &FormRef{FormURL: m.Form.FormUrl, ResponseURL: m.Form.ResponseUrl, Title: m.Form.Title}}
	case m.Link != nil:
		return Attachment{Link: &LinkRef{URL: m.Link.Url, Title: m.Link.Title}}
	}
	return Attachment{}
}

func convertMaterials(materials []*classroom.Material) []Attachment {
	if len(materials) == 0 {
		return nil
	}
	out := make([]Attachment, 0, len(materials))
	for _, m := range materials {
		out = append(out, convertMaterial(m))
	}
	return out
}

func convertCourse(c *classroom.Course) Course {
	return Course{
		ID:            c.Id,
		Name:          c.Name,
		Section:       c.Section,
		State:         c.CourseState,
		AlternateLink: c.AlternateLink,
	}
}

func convertAssignment(cw *classroom.CourseWork) Assignment {
	a := Assignment{
		ID:            cw.Id,
		CourseID:      cw.CourseId,
		Title:         cw.Title,
		Description:   cw.Description,
		State:         cw.State,
		WorkType:      cw.WorkType,
		MaxPoints:     cw.MaxPoints,
		AlternateLink: cw.AlternateLink,
		UpdateTime:    parseTime(cw.UpdateTime),
		Materials:     convertMaterials(cw.Materials),
	}
	if d := cw.DueDate; d != nil && d.Year > 0 {
		a.DueDate = fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
	return a
}

// convertSubmission builds a Submission. materials are the parent
// assignment's attachments and may be nil.
func convertSubmission(s *classroom.StudentSubmission, materials []Attachment) Submission {
	sub := Submission{
		ID:            s.Id,
		UserID:        s.UserId,
		CourseID:      s.CourseId,
		CourseWorkID:  s.CourseWorkId,
		State:         SubmissionState(s.State),
		Late:          s.Late,
		AssignedGrade: optionalGrade(s.AssignedGrade),
		DraftGrade:    optionalGrade(s.DraftGrade),
		AlternateLink: s.AlternateLink,
		UpdateTime:    parseTime(s.UpdateTime),
	}
	if s.AssignmentSubmission != nil {
		for _, a := range s.AssignmentSubmission.Attachments {
			sub.Attachments = append(sub.Attachments, convertAttachment(a))
		}
	}
	if len(materials) > 0 {
		sub.Materials = append([]Attachment(nil), materials...)
	}
	return sub
}

func convertProfile(p *classroom.UserProfile) StudentProfile {
	profile := StudentProfile{UserID: p.Id, Email: p.EmailAddress}
	if p.Name != nil {
		profile.FullName = p.Name.FullName
		if profile.FullName == "" {
			profile.FullName = p.Name.GivenName
		}
	}
	return profile
}

func optionalGrade(g float64) *float64 {
	if g == 0 {
		return nil
	}
	return &g
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
