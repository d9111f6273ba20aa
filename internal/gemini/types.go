package gemini

// FixResponse is the structured body requested from the model. FixedText
// is nil when the field is missing or not a string.
type FixResponse struct {
	FixedText *string `json:"fixed_text"`
}

// UsageMetadata holds token usage information.
type UsageMetadata struct {
	PromptTokenCount     int32
	CandidatesTokenCount int32
	TotalTokenCount      int32
}

// Result is one completed fix.
type Result struct {
	Text  string
	Model string
	// Structured is false when the model ignored the schema and the raw
	// response text was used instead.
	Structured bool
	Usage      UsageMetadata
}
