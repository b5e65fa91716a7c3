// Package forms reads Google Forms structure and responses.
package forms
