// Package docs reads linked Google Docs as plain text.
package docs
