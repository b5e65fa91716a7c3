// Package google provides OAuth2 authentication and token management for the
// Google APIs the grader talks to.
//
// The OAuth client comes from a Google client secrets file. Tokens are stored
// per account under the user cache directory
// (e.g. ~/.cache/classroom-grader/google-default.token) and refreshed tokens
// are written back. The TokenProvider interface hides where tokens come from.
package google
