package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	rankPattern  = regexp.MustCompile(`\((\d+)\)`)
	floatPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	intPattern   = regexp.MustCompile(`^[+-]?\d+`)
)

// NormalizeTime converts "m:ss", "mm:ss" or "h:mm:ss" into "hh:mm:ss".
// Segments are re-padded but not range-checked, so "75:00" becomes "00:75:00".
// Returns nil for empty input.
func NormalizeTime(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ":")
	if len(parts) == 2 {
		parts = append([]string{"0"}, parts...)
	}

	for i, part := range parts {
		part = strings.TrimSpace(part)
		if n, err := strconv.Atoi(part); err == nil && n >= 0 {
			part = fmt.Sprintf("%02d", n)
		}
		parts[i] = part
	}

	normalized := strings.Join(parts, ":")
	return &normalized
}

// ExtractRank returns the first parenthesised integer in s, e.g. 4 for "1:02:33 (4)"
func ExtractRank(s string) *int {
	match := rankPattern.FindStringSubmatch(s)
	if match == nil {
		return nil
	}
	rank, err := strconv.Atoi(match[1])
	if err != nil {
		return nil
	}
	return &rank
}

// parseLeadingFloat parses the numeric prefix of s, ignoring trailing text
func parseLeadingFloat(s string) (float64, bool) {
	match := floatPattern.FindString(strings.TrimSpace(s))
	if match == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseLeadingInt parses the integer prefix of s, ignoring trailing text
func parseLeadingInt(s string) *int {
	match := intPattern.FindString(strings.TrimSpace(s))
	if match == "" {
		return nil
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &n
}
