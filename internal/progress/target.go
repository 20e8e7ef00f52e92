package progress

import (
	"strings"

	"github.com/shopspring/decimal"
)

type TargetKind int

const (
	TargetUnset TargetKind = iota
	TargetNumeric
	TargetPercentage
)

func (k TargetKind) String() string {
	switch k {
	case TargetNumeric:
		return "numeric"
	case TargetPercentage:
		return "percentage"
	default:
		return "unset"
	}
}

// Target is a parsed target cell. Kind is decided once when reference data is
// loaded so the calculators never look at the raw cell again.
type Target struct {
	Kind  TargetKind `json:"kind"`
	Value float64    `json:"value"`
	Raw   string     `json:"raw,omitempty"`
}

func (t Target) IsSet() bool { return t.Kind != TargetUnset }

// Divisor returns the target value, or 1 when it is zero so ratios stay finite.
func (t Target) Divisor() float64 {
	if t.Value == 0 {
		return 1
	}
	return t.Value
}

type Targets struct {
	Q1     Target `json:"q1"`
	Q2     Target `json:"q2"`
	Q3     Target `json:"q3"`
	Q4     Target `json:"q4"`
	Annual Target `json:"annual"`
}

// ForQuarter returns the target of the quarter id ("q1".."q4"). Unknown ids
// yield an unset target.
func (t Targets) ForQuarter(quarterID string) Target {
	switch quarterID {
	case "q1":
		return t.Q1
	case "q2":
		return t.Q2
	case "q3":
		return t.Q3
	case "q4":
		return t.Q4
	default:
		return Target{}
	}
}

// ParseTargetValue converts a target cell (number, "85%", "1,685,230,763", "-")
// into a number. Anything that cannot be read as a number is 0.
func ParseTargetValue(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case uint64:
		return float64(n)
	case string:
		return parseTargetString(n)
	case *string:
		if n == nil {
			return 0
		}
		return parseTargetString(*n)
	default:
		return 0
	}
}

func parseTargetString(s string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return 0
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// ParseTarget classifies a raw target cell. Strings with a percent sign are
// percentages, strings without any digit (the "-" placeholder, "") are unset.
func ParseTarget(v any) Target {
	switch n := v.(type) {
	case nil:
		return Target{}
	case string:
		raw := strings.TrimSpace(n)
		if !strings.ContainsAny(raw, "0123456789") {
			return Target{Raw: raw}
		}
		kind := TargetNumeric
		if strings.Contains(raw, "%") {
			kind = TargetPercentage
		}
		return Target{Kind: kind, Value: parseTargetString(raw), Raw: raw}
	default:
		return Target{Kind: TargetNumeric, Value: ParseTargetValue(v)}
	}
}
