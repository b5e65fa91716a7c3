package forms

import (
	"net/url"
	"strings"
)

// ParseFormID returns the form ID embedded in a Google Forms URL:
// the path segment after "/d/". Published URLs of the form
// /forms/d/e/<id>/viewform carry an extra "e" segment, which is skipped.
func ParseFormID(formURL string) string {
	u, err := url.Parse(formURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i < len(segments)-1; i++ {
		if segments[i] != "d" {
			continue
		}
		id := segments[i+1]
		if id == "e" && i+2 < len(segments) {
			id = segments[i+2]
		}
		if id == "e" {
			return ""
		}
		return id
	}
	return ""
}

// ParseResponseID returns the "id" query parameter of a /viewresponse URL,
// or "" for any other URL.
func ParseResponseID(responseURL string) string {
	if !strings.Contains(responseURL, "/viewresponse") {
		return ""
	}
	u, err := url.Parse(responseURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("id")
}
