package lesson

import (
	"fmt"
	"strconv"
	"strings"
)

// AnswerPayload is what an exercise widget reports for a slide.
type AnswerPayload struct {
	Value string
	// IsCorrect is nil when the slide has no notion of correctness.
	IsCorrect *bool
}

// CheckAnswer builds the payload for raw input on slide. Interactive
// slides are graded; polls and other types carry the value only.
//
// Normalization rules:
// - Whitespace is trimmed
// - Comparison is case-insensitive
// - Choices match by text or by 1-based index
// - Fractions accept equivalents ("2/4" matches "1/2")
// - Decimals ignore trailing zeros, integers leading zeros
func CheckAnswer(slide Slide, raw string) AnswerPayload {
	raw = strings.TrimSpace(raw)
	value := resolveChoice(slide.Content.Choices, raw)
	payload := AnswerPayload{Value: value}
	if !slide.Type.RequiresCorrectness() {
		return payload
	}

	correct := isCorrect(slide.Content, value)
	payload.IsCorrect = &correct
	return payload
}

// resolveChoice maps a 1-based index to its choice text.
func resolveChoice(choices []string, raw string) string {
	if idx, err := strconv.Atoi(raw); err == nil && idx >= 1 && idx <= len(choices) {
		return strings.TrimSpace(choices[idx-1])
	}
	return raw
}

func isCorrect(c Content, value string) bool {
	if value == "" {
		return false
	}
	if len(c.Choices) > 0 || c.AnswerType == "" || c.AnswerType == AnswerText {
		return strings.EqualFold(value, strings.TrimSpace(c.Answer))
	}

	got, err := normalizeAnswer(value, c.AnswerType)
	if err != nil {
		return false
	}
	want, err := normalizeAnswer(c.Answer, c.AnswerType)
	if err != nil {
		return false
	}
	return got == want
}

func normalizeAnswer(answer string, t AnswerType) (string, error) {
	answer = strings.TrimSpace(answer)

	switch t {
	case AnswerInteger:
		n, err := strconv.ParseInt(answer, 10, 64)
		if err != nil {
			return "", fmt.Errorf("invalid integer: %w", err)
		}
		return strconv.FormatInt(n, 10), nil

	case AnswerDecimal:
		f, err := strconv.ParseFloat(answer, 64)
		if err != nil {
			return "", fmt.Errorf("invalid decimal: %w", err)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil

	case AnswerFraction:
		num, den, err := parseFraction(answer)
		if err != nil {
			return "", err
		}
		if den == 0 {
			return "", fmt.Errorf("zero denominator")
		}
		if den < 0 {
			num, den = -num, -den
		}
		g := gcd(abs(num), den)
		if g == 0 {
			g = 1
		}
		return fmt.Sprintf("%d/%d", num/g, den/g), nil

	default:
		return strings.ToLower(answer), nil
	}
}

func parseFraction(s string) (int64, int64, error) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return 0, 0, fmt.Errorf("invalid fraction format: %q", s)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid numerator: %w", err)
	}
	d, err := strconv.ParseInt(strings.TrimSpace(den), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid denominator: %w", err)
	}
	return n, d, nil
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
