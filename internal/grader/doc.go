// Package grader runs the grading workflow for a Classroom assignment.
//
// ProcessAssignment walks the submissions of an assignment in order. Each
// submission is checked for a processable state, its attachments are
// extracted to text, and AI feedback is generated when a generator is
// configured. The outcome of each submission is a Processed value whose
// Status tells later steps what to do with it:
//
//	ok                 content and feedback available
//	not_processable    the submission is not turned in
//	extraction_failed  no attachment yielded text
//	feedback_failed    the generator returned an error
//	feedback_skipped   no generator configured
//
// ApplyGrades and EmailFeedback act only on results with StatusOK. Student
// profiles are looked up through a NameCache that the caller creates for
// one run and passes to each step.
package grader
