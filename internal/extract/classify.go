package extract

import (
	"fmt"

	"github.com/FreeMarketamilitia/classroom-grader/internal/classroom"
)

// Classify returns the variant of an attachment. Variants are checked in
// the order Drive file, Form, Link so that a malformed attachment with
// several fields set is still classified deterministically.
func Classify(a classroom.Attachment) classroom.AttachmentKind {
	switch {
	case a.DriveFile != nil:
		return classroom.KindDriveFile
	case a.Form != nil:
		return classroom.KindForm
	case a.Link != nil:
		return classroom.KindLink
	}
	return classroom.KindUnknown
}

// Describe renders an attachment as "<kind> '<title>' (<identifier>)",
// omitting the parts that are empty.
func Describe(a classroom.Attachment) string {
	desc := Classify(a).String()
	if title := a.Title(); title != "" {
		desc += fmt.Sprintf(" '%s'", title)
	}
	if id := a.Identifier(); id != "" {
		desc += fmt.Sprintf(" (%s)", id)
	}
	return desc
}
