package models

// ExtractionReport lists which record fields fell back to defaults while a
// draw page was being parsed. It is logged and counted, never persisted.
type ExtractionReport struct {
	DrawNo          int      `json:"draw_no"`
	ExtractedFields []string `json:"extracted_fields"`
	FailedFields    []string `json:"failed_fields"`
	FetchError      string   `json:"fetch_error,omitempty"`
	ParseError      string   `json:"parse_error,omitempty"`
}

// RecordExtracted marks a field as populated from the page.
func (r *ExtractionReport) RecordExtracted(field string) {
	r.ExtractedFields = append(r.ExtractedFields, field)
}

// RecordFallback marks a field as left at (or reset to) its default.
func (r *ExtractionReport) RecordFallback(field string) {
	r.FailedFields = append(r.FailedFields, field)
}

// HasFallbacks reports whether any field fell back to its default.
func (r *ExtractionReport) HasFallbacks() bool {
	return len(r.FailedFields) > 0 || r.FetchError != "" || r.ParseError != ""
}

// Panicked reports whether parsing stopped on a recovered panic.
func (r *ExtractionReport) Panicked() bool {
	return r.ParseError != ""
}

// Completeness returns the share of tracked fields that were extracted, in percent.
func (r *ExtractionReport) Completeness() float64 {
	total := len(r.ExtractedFields) + len(r.FailedFields)
	if total == 0 {
		return 0.0
	}
	return float64(len(r.ExtractedFields)) / float64(total) * 100.0
}
