package services

import (
	"math"
	"strconv"
	"strings"
)

// Fixed board arithmetic. The divisor converts a troy-ounce quote to grams;
// the secondary multiplier applies to the two slots flagged for it.
const (
	quoteDivisor        = 31.1035
	baseMultiplier      = 3.674
	secondaryMultiplier = 0.916
	kiloMultiplier      = 32.15
)

// ValuationService converts upstream quote prices and stored adjustments into
// display values. Pure and stateless; all arithmetic is double precision.
type ValuationService struct{}

// NewValuationService creates a new valuation service instance
func NewValuationService() *ValuationService {
	return &ValuationService{}
}

// ComputeSlotValue computes the display value for one of the four gold slots
func (s *ValuationService) ComputeSlotValue(base, adjustment float64, useSecondary bool) float64 {
	result := (base / quoteDivisor) * baseMultiplier
	if useSecondary {
		result *= secondaryMultiplier
	}
	return result - adjustment
}

// ComputeDerivedValue computes a silver box value from the quote price and a
// signed delta. The buy delta is negative, the sell delta positive.
func (s *ValuationService) ComputeDerivedValue(base, signedDelta float64) float64 {
	return ((base + signedDelta) * baseMultiplier) * kiloMultiplier
}

// FormatDisplayValue renders a computed value as a decimal integer with comma
// thousands separators. Halves round to even.
func (s *ValuationService) FormatDisplayValue(value float64) string {
	digits := strconv.FormatInt(int64(math.RoundToEven(value)), 10)

	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	formatted := strings.Join(groups, ",")
	if negative {
		formatted = "-" + formatted
	}
	return formatted
}
