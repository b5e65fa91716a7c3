// Package extract turns the attachments of a Classroom submission into text.
//
// Each attachment is classified as a Drive file, a Google Form, or a link,
// and handed to the matching extractor:
//
//   - DriveExtractor exports Workspace-native files (documents and
//     presentations to plain text, spreadsheets to CSV) and downloads all
//     other files, accepting only textual content unless document
//     conversion is enabled.
//   - FormExtractor renders the student's form response as a transcript.
//   - LinkExtractor reads linked Google Docs.
//
// Extractor.ExtractContent runs them in attachment order. If any attachment
// produced text the submission succeeds; otherwise an *AggregateError lists
// every per-attachment *Error. Callers branch on KindOf(err) rather than on
// message text.
package extract
