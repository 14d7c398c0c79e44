package services

import (
	"strconv"
	"strings"
	"time"
)

const (
	koreanDateLayout = "2006년 1월 2일"
	isoDateLayout    = "2006-01-02"
)

// UtilityService provides the text cleanup and numeric parsing used by the draw extractor
type UtilityService struct{}

// NewUtilityService creates a new utility service instance
func NewUtilityService() *UtilityService {
	return &UtilityService{}
}

// CleanNoteText collapses every whitespace run (newlines and tabs included)
// into a single space and trims the result. Applying it twice is a no-op.
func (s *UtilityService) CleanNoteText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// ParseKoreanDateToISO converts "2024년 06월 01일" to "2024-06-01". Input that
// does not match the localized layout is returned trimmed but otherwise unchanged.
func (s *UtilityService) ParseKoreanDateToISO(dateText string) string {
	dateText = strings.TrimSpace(dateText)

	parsed, err := time.Parse(koreanDateLayout, s.CleanNoteText(dateText))
	if err != nil {
		return dateText
	}

	return parsed.Format(isoDateLayout)
}

// IsDigits reports whether text is non-empty and made only of ASCII digits.
func (s *UtilityService) IsDigits(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseAmount parses a currency cell such as "1,234,000원". Thousands
// separators and the 원 unit are stripped; anything still non-numeric yields 0.
func (s *UtilityService) ParseAmount(text string) int64 {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, "원", "")
	return s.parseDigits(cleaned)
}

// ParseCount parses a winner count cell such as "1,234"; non-numeric yields 0.
func (s *UtilityService) ParseCount(text string) int64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	return s.parseDigits(cleaned)
}

// ParseRank parses a tier label such as "1등". Labels without the 등 marker
// or with anything but digits left after stripping it yield 0.
func (s *UtilityService) ParseRank(text string) int {
	label := strings.TrimSpace(text)
	if !strings.Contains(label, "등") {
		return 0
	}
	return int(s.parseDigits(strings.ReplaceAll(label, "등", "")))
}

// ParseBallNumber parses a drawn ball label, reporting false for non-digit text.
func (s *UtilityService) ParseBallNumber(text string) (int, bool) {
	text = strings.TrimSpace(text)
	if !s.IsDigits(text) {
		return 0, false
	}
	value, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return value, true
}

func (s *UtilityService) parseDigits(text string) int64 {
	if !s.IsDigits(text) {
		return 0
	}
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0
	}
	return value
}
