package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

var errInvalidDate = errors.New("invalid createdAt")

// parseSeason reads the sale date of a legacy small cup. Staff usually only
// know the year, so a bare year (number or string) is accepted besides dates.
func parseSeason(raw json.RawMessage) (*time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, errInvalidDate
		}
	} else {
		text = string(raw)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if year, err := strconv.Atoi(text); err == nil {
		if year < 1900 || year > 9999 {
			return nil, errInvalidDate
		}
		season := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return &season, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, text); err == nil {
			parsed = parsed.UTC()
			return &parsed, nil
		}
	}
	return nil, errInvalidDate
}

// parseFlag treats "1", "true", "yes" and "on" as set.
func parseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// parseLimit returns 0 (no limit) for anything but a positive integer.
func parseLimit(raw string) int {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
