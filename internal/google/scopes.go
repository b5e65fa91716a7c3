package google

// DefaultOAuthScopes are the Google OAuth scopes the grader requests.
//
// The scopes provide access to:
//   - Classroom: read courses and rosters, read and grade student coursework
//   - Drive and Docs: read-only, for submitted files and linked documents
//   - Forms: read form structure and responses
//   - Gmail: send feedback emails
var DefaultOAuthScopes = []string{
	// Classroom scopes
	"https://www.googleapis.com/auth/classroom.courses.readonly",
	"https://www.googleapis.com/auth/classroom.coursework.students",
	"https://www.googleapis.com/auth/classroom.rosters.readonly",
	"https://www.googleapis.com/auth/classroom.profile.emails",

	// Drive and Docs scopes
	"https://www.googleapis.com/auth/drive.readonly",
	"https://www.googleapis.com/auth/documents.readonly",

	// Forms scopes
	"https://www.googleapis.com/auth/forms.body.readonly",
	"https://www.googleapis.com/auth/forms.responses.readonly",

	// Gmail scope
	"https://www.googleapis.com/auth/gmail.send",
}
