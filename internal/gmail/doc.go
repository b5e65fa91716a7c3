// Package gmail sends email through the Gmail API.
//
// Only sending is supported: messages are rendered in RFC 2822 format with
// an RFC 2047 encoded subject and submitted base64url encoded through
// users.messages.send for the authenticated user ("me"). The grader uses it
// to deliver feedback to students, since the Classroom API offers no way to
// post private comments.
//
// Example usage:
//
//	client, err := gmail.NewClientForAccount(ctx, tokenProvider, "default", google.APIOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	msgID, err := client.SendEmail(ctx, &gmail.EmailMessage{
//	    To:      []string{"student@example.com"},
//	    Subject: "Your feedback",
//	    Body:    "<p>Well done.</p>",
//	    IsHTML:  true,
//	})
package gmail
