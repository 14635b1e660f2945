package tests

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/avjpriceboard/priceboard-backend/services"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var displayPattern = regexp.MustCompile(`^-?\d{1,3}(,\d{3})*$`)

// TestDisplayFormattingProperties checks the rounding and grouping rules of
// the board display format across a wide value range
func TestDisplayFormattingProperties(t *testing.T) {
	valuation := services.NewValuationService()

	properties := gopter.NewProperties(nil)

	properties.Property("Formatted values are comma-grouped integers with an optional sign", prop.ForAll(
		func(value float64) bool {
			formatted := valuation.FormatDisplayValue(value)
			if !displayPattern.MatchString(formatted) {
				t.Logf("Unexpected display shape for %v: %q", value, formatted)
				return false
			}
			return true
		},
		gen.Float64Range(-5000000, 5000000),
	))

	properties.Property("Formatted values parse back to the rounded input", prop.ForAll(
		func(value float64) bool {
			formatted := valuation.FormatDisplayValue(value)
			parsed, err := strconv.ParseFloat(strings.ReplaceAll(formatted, ",", ""), 64)
			if err != nil {
				t.Logf("Could not parse %q back: %v", formatted, err)
				return false
			}
			if parsed != math.RoundToEven(value) {
				t.Logf("Round-trip mismatch for %v: formatted %q parsed %v", value, formatted, parsed)
				return false
			}
			return true
		},
		gen.Float64Range(-5000000, 5000000),
	))

	properties.Property("Exact halves round to an even integer", prop.ForAll(
		func(n int) bool {
			formatted := valuation.FormatDisplayValue(float64(n) + 0.5)
			parsed, err := strconv.ParseInt(strings.ReplaceAll(formatted, ",", ""), 10, 64)
			if err != nil {
				t.Logf("Could not parse %q back: %v", formatted, err)
				return false
			}
			if parsed%2 != 0 {
				t.Logf("Half value %v.5 rounded to odd %d", n, parsed)
				return false
			}
			return true
		},
		gen.IntRange(-1000000, 1000000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// TestSlotValuationProperties checks ordering invariants of the slot pricing
// math that the board relies on
func TestSlotValuationProperties(t *testing.T) {
	valuation := services.NewValuationService()

	properties := gopter.NewProperties(nil)

	properties.Property("Raising the adjustment never raises the slot value", prop.ForAll(
		func(base, first, second float64, useSecondary bool) bool {
			low, high := first, second
			if low > high {
				low, high = high, low
			}

			lowAdjusted := valuation.ComputeSlotValue(base, low, useSecondary)
			highAdjusted := valuation.ComputeSlotValue(base, high, useSecondary)
			if lowAdjusted < highAdjusted {
				t.Logf("Adjustment %v priced above adjustment %v for base %v", high, low, base)
				return false
			}
			return true
		},
		gen.Float64Range(1, 1000000),
		gen.Float64Range(-1000, 1000),
		gen.Float64Range(-1000, 1000),
		gen.OneConstOf(true, false),
	))

	properties.Property("Secondary purity prices below primary for the same inputs", prop.ForAll(
		func(base, adjustment float64) bool {
			secondary := valuation.ComputeSlotValue(base, adjustment, true)
			primary := valuation.ComputeSlotValue(base, adjustment, false)
			if secondary >= primary {
				t.Logf("Secondary %v not below primary %v for base %v", secondary, primary, base)
				return false
			}
			return true
		},
		gen.Float64Range(1, 1000000),
		gen.Float64Range(-1000, 1000),
	))

	properties.Property("Raising the delta never lowers the derived value", prop.ForAll(
		func(base, first, second float64) bool {
			low, high := first, second
			if low > high {
				low, high = high, low
			}

			if valuation.ComputeDerivedValue(base, low) > valuation.ComputeDerivedValue(base, high) {
				t.Logf("Delta %v priced above delta %v for base %v", low, high, base)
				return false
			}
			return true
		},
		gen.Float64Range(1, 10000),
		gen.Float64Range(-100, 100),
		gen.Float64Range(-100, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// TestQuoteParsingProperties checks the lenient number parser and the symbol
// feed lookup against generated inputs
func TestQuoteParsingProperties(t *testing.T) {
	valuation := services.NewValuationService()
	utility := services.NewUtilityService()

	properties := gopter.NewProperties(nil)

	properties.Property("Plain decimal strings parse losslessly", prop.ForAll(
		func(value float64) bool {
			parsed, ok := utility.ParseLenientFloat(strconv.FormatFloat(value, 'f', -1, 64))
			if !ok || parsed != value {
				t.Logf("Parse round-trip failed for %v: got %v ok=%v", value, parsed, ok)
				return false
			}
			return true
		},
		gen.Float64Range(-1000000000, 1000000000),
	))

	properties.Property("Display-formatted integers survive the lenient parser", prop.ForAll(
		func(n int) bool {
			formatted := valuation.FormatDisplayValue(float64(n))
			parsed, ok := utility.ParseLenientFloat(formatted)
			if !ok || parsed != float64(n) {
				t.Logf("Lenient parse of %q gave %v ok=%v, want %d", formatted, parsed, ok, n)
				return false
			}
			return true
		},
		gen.IntRange(-100000000, 100000000),
	))

	properties.Property("Symbol lookup finds the quoted value at any feed position", prop.ForAll(
		func(value float64, position int, useCRLF bool) bool {
			quoted := strconv.FormatFloat(value, 'f', -1, 64)
			decoys := []string{"XAUAED,12.5", "LLGXYZ,9", "XAGUSD,77.1"}

			rows := make([]string, 0, len(decoys)+1)
			rows = append(rows, decoys[:position]...)
			rows = append(rows, "LLSUSD,"+quoted)
			rows = append(rows, decoys[position:]...)

			separator := "\n"
			if useCRLF {
				separator = "\r\n"
			}
			feed := strings.Join(rows, separator) + separator

			parsed, ok := utility.FindSymbolValue(feed, "LLSUSD")
			if !ok || parsed != value {
				t.Logf("Lookup in feed %q gave %v ok=%v, want %v", feed, parsed, ok, value)
				return false
			}
			return true
		},
		gen.Float64Range(0.01, 100000),
		gen.IntRange(0, 3),
		gen.OneConstOf(true, false),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
