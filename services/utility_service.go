package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// UtilityService provides text parsing and normalization helpers shared by
// the upstream gateways and the board builders
type UtilityService struct{}

// NewUtilityService creates a new utility service instance
func NewUtilityService() *UtilityService {
	return &UtilityService{}
}

// ParseLenientFloat parses a raw upstream value as a float64
// Trims whitespace and strips thousands separators; empty strings,
// non-numeric strings, NaN and infinities all report not-ok. Never panics.
func (s *UtilityService) ParseLenientFloat(raw string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}

	return value, true
}

// SafeString renders an upstream field value as a trimmed display string
// Missing values render as the empty string
func (s *UtilityService) SafeString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// FindSymbolValue scans a comma-separated symbol feed for the given symbol
// and returns the lenient parse of the field that follows it. Records are
// separated by any whitespace; CRLF and LF inputs behave identically. The
// first record whose leading field equals the symbol wins.
func (s *UtilityService) FindSymbolValue(text, symbol string) (float64, bool) {
	records := strings.Fields(strings.ReplaceAll(text, "\r", "\n"))
	for _, record := range records {
		parts := strings.Split(record, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		if len(parts) >= 2 && parts[0] == symbol {
			return s.ParseLenientFloat(parts[1])
		}
	}

	return 0, false
}
