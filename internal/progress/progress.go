// Package progress computes quarter and annual performance of indicators from
// monthly entries. Every function here is pure: inputs are never modified and
// malformed targets degrade to defaults instead of failing.
package progress

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendSteady Trend = "steady"
)

type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// SubIndicatorRef links a sub-value key recorded on entries to the indicator
// record that carries the sub-component targets.
type SubIndicatorRef struct {
	Key         string `json:"key"`
	IndicatorID string `json:"indicatorId"`
}

type Indicator struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	IsDual        bool              `json:"isDual"`
	Targets       Targets           `json:"targets"`
	SubIndicators []SubIndicatorRef `json:"subIndicators,omitempty"`
}

func (i Indicator) IsComposite() bool { return i.IsDual && len(i.SubIndicators) > 0 }

type Quarter struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Months []string `json:"months"`
}

// Entry is one monthly data point as seen by the calculators.
type Entry struct {
	Month       string
	Value       float64
	TargetValue *float64
	SubValues   map[string]float64
	Timestamp   time.Time
}

// IndicatorLookup resolves sub-indicator records by id.
type IndicatorLookup func(id string) (Indicator, bool)

type SubIndicatorDetail struct {
	Key         string  `json:"key"`
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Actual      float64 `json:"actual"`
	Target      float64 `json:"target"`
	Performance float64 `json:"performance"`
}

type QuarterStats struct {
	QuarterID           string               `json:"quarterId"`
	TotalActual         float64              `json:"totalActual"`
	Target              float64              `json:"target"`
	TargetDefaulted     bool                 `json:"targetDefaulted"`
	Performance         float64              `json:"performance"`
	Trend               Trend                `json:"trend"`
	NextTarget          *float64             `json:"nextTarget,omitempty"`
	MonthlyValues       []float64            `json:"monthlyValues"`
	MonthlyTargets      []float64            `json:"monthlyTargets"`
	Months              []string             `json:"months"`
	SubIndicatorDetails []SubIndicatorDetail `json:"subIndicatorDetails,omitempty"`
}

var nextQuarter = map[string]string{
	"q1": "q2",
	"q2": "q3",
	"q3": "q4",
}

// ComputeQuarterProgress reports actual against target for one indicator in
// one quarter. Entries belong to the quarter when their month is one of
// months; the stored quarter id of an entry is not consulted.
func ComputeQuarterProgress(ind Indicator, entries []Entry, quarterID string, months []string, lookup IndicatorLookup) QuarterStats {
	stats := QuarterStats{
		QuarterID:      quarterID,
		Trend:          TrendSteady,
		Months:         append([]string{}, months...),
		MonthlyValues:  make([]float64, len(months)),
		MonthlyTargets: make([]float64, len(months)),
	}

	sums := make([]decimal.Decimal, len(months))
	seen := make([]bool, len(months))
	var inQuarter []Entry
	for _, e := range entries {
		idx := monthIndex(months, e.Month)
		if idx < 0 {
			continue
		}
		sums[idx] = sums[idx].Add(decimal.NewFromFloat(e.Value))
		seen[idx] = true
		inQuarter = append(inQuarter, e)
	}

	total := decimal.Zero
	for i, s := range sums {
		stats.MonthlyValues[i], _ = s.Float64()
		total = total.Add(s)
	}
	stats.TotalActual, _ = total.Float64()

	target := ind.Targets.ForQuarter(quarterID)
	stats.Target = target.Divisor()
	stats.TargetDefaulted = target.Value == 0
	stats.Performance = ratio(stats.TotalActual, stats.Target)
	stats.Trend = trend(stats.MonthlyValues, seen)

	if next, ok := nextQuarter[quarterID]; ok {
		v := ind.Targets.ForQuarter(next).Value
		stats.NextTarget = &v
	}

	stats.MonthlyTargets = monthlyTargets(ind, target, months, inQuarter)

	if ind.IsComposite() {
		stats.SubIndicatorDetails = subIndicatorDetails(ind, inQuarter, quarterID, lookup)
	}
	return stats
}

// ComputeAnnualProgress is the year-to-date completion of an indicator,
// clamped into [0, 100].
func ComputeAnnualProgress(ind Indicator, entries []Entry) float64 {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(decimal.NewFromFloat(e.Value))
	}
	actual, _ := total.Float64()
	return clamp(ratio(actual, ind.Targets.Annual.Divisor()), 0, 100)
}

func PerformanceBand(performance float64) Band {
	switch {
	case performance < 50:
		return BandLow
	case performance <= 75:
		return BandMedium
	default:
		return BandHigh
	}
}

func monthIndex(months []string, month string) int {
	for i, m := range months {
		if m == month {
			return i
		}
	}
	return -1
}

// trend compares the last month holding data with the month before it.
func trend(values []float64, seen []bool) Trend {
	last := -1
	for i := range seen {
		if seen[i] {
			last = i
		}
	}
	if last <= 0 {
		return TrendSteady
	}
	switch {
	case values[last] > values[last-1]:
		return TrendUp
	case values[last] < values[last-1]:
		return TrendDown
	default:
		return TrendSteady
	}
}

func monthlyTargets(ind Indicator, target Target, months []string, entries []Entry) []float64 {
	out := make([]float64, len(months))
	if len(months) == 0 {
		return out
	}
	if !ind.IsDual {
		share := target.Value / float64(len(months))
		for i := range out {
			out[i] = share
		}
		return out
	}

	latest := make([]time.Time, len(months))
	set := make([]bool, len(months))
	for _, e := range entries {
		if e.TargetValue == nil {
			continue
		}
		idx := monthIndex(months, e.Month)
		if set[idx] && e.Timestamp.Before(latest[idx]) {
			continue
		}
		out[idx] = *e.TargetValue
		latest[idx] = e.Timestamp
		set[idx] = true
	}
	for i := range out {
		if !set[i] {
			out[i] = target.Value
		}
	}
	return out
}

func subIndicatorDetails(ind Indicator, entries []Entry, quarterID string, lookup IndicatorLookup) []SubIndicatorDetail {
	details := make([]SubIndicatorDetail, 0, len(ind.SubIndicators))
	for _, ref := range ind.SubIndicators {
		actual := decimal.Zero
		for _, e := range entries {
			if v, ok := e.SubValues[ref.Key]; ok {
				actual = actual.Add(decimal.NewFromFloat(v))
			}
		}
		d := SubIndicatorDetail{Key: ref.Key, ID: ref.IndicatorID, Name: ref.Key}
		d.Actual, _ = actual.Float64()
		if lookup != nil {
			if sub, ok := lookup(ref.IndicatorID); ok {
				d.Name = sub.Name
				d.Target = sub.Targets.ForQuarter(quarterID).Value
			}
		}
		if d.Target > 0 {
			d.Performance = ratio(d.Actual, d.Target)
		}
		details = append(details, d)
	}
	return details
}

func ratio(actual, target float64) float64 {
	r := actual / target * 100
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
