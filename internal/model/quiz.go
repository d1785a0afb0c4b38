package model

// MCQItem is a single multiple-choice question. Choice labels are
// conventionally A-D; CorrectAnswer is not validated against the
// choice keys (the generation backend is trusted on that point).
type MCQItem struct {
	Question      string            `json:"question"`
	Choices       map[string]string `json:"choices"`
	CorrectAnswer string            `json:"correct_answer"`
}
