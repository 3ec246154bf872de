package temporal

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/agentstation/cgvn/internal/utils/ptr"
	"github.com/agentstation/cgvn/pkg/constants"
	"github.com/agentstation/cgvn/pkg/errors"
)

// Sentinels is the set of placeholder markers that denote a missing value.
type Sentinels map[string]struct{}

// NewSentinels builds a sentinel set from markers.
func NewSentinels(markers ...string) Sentinels {
	s := make(Sentinels, len(markers))
	for _, m := range markers {
		s[m] = struct{}{}
	}
	return s
}

// DefaultSentinels returns the markers used by the equity exports.
func DefaultSentinels() Sentinels {
	return NewSentinels(constants.DefaultSentinels...)
}

// IsMissing reports whether raw text denotes a missing value. Blank and
// whitespace-only text is always missing.
func (s Sentinels) IsMissing(raw string) bool {
	if _, ok := s[raw]; ok {
		return true
	}
	return strings.TrimSpace(raw) == ""
}

// ParseValue converts a raw equity cell to a number. Sentinels, nil and
// NaN yield nil. Text that is neither a sentinel nor a finite number is a
// *errors.ValidationError.
func (s Sentinels) ParseValue(v any) (*float64, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return finite(x, v)
	case *float64:
		if x == nil {
			return nil, nil
		}
		return finite(*x, v)
	case int:
		return ptr.Float64(float64(x)), nil
	case int64:
		return ptr.Float64(float64(x)), nil
	case string:
		if s.IsMissing(x) {
			return nil, nil
		}
		f, err := parseNumber(strings.TrimSpace(x))
		if err != nil {
			return nil, errors.NewValidationError("equity", x, fmt.Sprintf("%q is neither a number nor a missing-value marker", x))
		}
		return finite(f, v)
	default:
		return nil, errors.NewValidationError("equity", v, fmt.Sprintf("unsupported value type %T", v))
	}
}

// finite maps NaN to a missing value and rejects infinities.
func finite(f float64, raw any) (*float64, error) {
	switch {
	case math.IsNaN(f):
		return nil, nil
	case math.IsInf(f, 0):
		return nil, errors.NewValidationError("equity", raw, fmt.Sprintf("%v is not a finite number", f))
	}
	return ptr.Float64(f), nil
}

// parseNumber accepts "1234.5" and, when no '.' is present, the comma
// decimal form "1234,5". A single comma followed by exactly three digits
// ("1,234") reads as a thousands separator just as well and is rejected.
func parseNumber(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err == nil {
		return f, nil
	}
	if strings.Count(s, ",") != 1 || strings.Contains(s, ".") {
		return 0, err
	}
	whole, frac, _ := strings.Cut(s, ",")
	if len(frac) == 3 {
		return 0, fmt.Errorf("ambiguous decimal separator in %q", s)
	}
	return strconv.ParseFloat(whole+"."+frac, 64)
}
