package forms

// Question is one question item of a form, in display order.
type Question struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	// Type is a short tag: RADIO, CHECKBOX, DROP_DOWN, TEXT, PARAGRAPH_TEXT,
	// SCALE, DATE, TIME, FILE_UPLOAD, ROW or UNKNOWN.
	Type    string   `json:"type"`
	Options []string `json:"options,omitempty"`
	// CorrectAnswers and PointValue are only set for quiz forms.
	CorrectAnswers []string `json:"correctAnswers,omitempty"`
	PointValue     int64    `json:"pointValue,omitempty"`
}

// Structure is the question layout of a form.
type Structure struct {
	FormID    string     `json:"formId"`
	Title     string     `json:"title"`
	IsQuiz    bool       `json:"isQuiz,omitempty"`
	Questions []Question `json:"questions"`
}

// Response is one submitted form response.
type Response struct {
	ID              string `json:"responseId"`
	RespondentEmail string `json:"respondentEmail,omitempty"`
	// Answers maps question ID to the submitted text values.
	Answers    map[string][]string `json:"answers,omitempty"`
	TotalScore *float64            `json:"totalScore,omitempty"`
}
