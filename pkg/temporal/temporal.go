// Package temporal turns sparse quarterly equity observations into one
// annual value per ticker: sentinel markers become missing values, each
// ticker's series is forward-filled in period order, and each
// (year, ticker) group is reduced to the mean of its values.
//
// Forward-fill is scoped to a single ticker. A value never leaks from one
// ticker's series into another, whatever the input row order.
package temporal

import (
	"sort"

	"github.com/agentstation/cgvn/internal/utils/ptr"
)

// Observation is one equity figure for one ticker at one quarter.
type Observation struct {
	Period Period
	Ticker string
	Equity *float64
}

// AnnualEquity is the annual summary for one (year, ticker).
// Equity is nil when the year has no known value.
type AnnualEquity struct {
	Year   int
	Ticker string
	Equity *float64
}

// ForwardFill replaces each missing value with the most recent
// non-missing value before it. Leading missing values stay missing.
// The input slice is not modified.
func ForwardFill(values []*float64) []*float64 {
	out := make([]*float64, len(values))
	var last *float64
	for i, v := range values {
		if v != nil {
			last = ptr.Float64(*v)
		}
		if last != nil {
			out[i] = ptr.Float64(*last)
		}
	}
	return out
}

// Mean returns the arithmetic mean of the non-missing values, or nil when
// there are none.
func Mean(values []*float64) *float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return ptr.Float64(sum / float64(n))
}

// SortObservations returns a copy of obs ordered by (ticker, year,
// quarter, label). This is the order forward-fill walks.
func SortObservations(obs []Observation) []Observation {
	sorted := make([]Observation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Ticker != sorted[j].Ticker {
			return sorted[i].Ticker < sorted[j].Ticker
		}
		return sorted[i].Period.Less(sorted[j].Period)
	})
	return sorted
}

// FillForward sorts obs and forward-fills equity within each ticker.
func FillForward(obs []Observation) []Observation {
	sorted := SortObservations(obs)
	for start := 0; start < len(sorted); {
		end := start
		for end < len(sorted) && sorted[end].Ticker == sorted[start].Ticker {
			end++
		}
		series := make([]*float64, end-start)
		for i := range series {
			series[i] = sorted[start+i].Equity
		}
		for i, v := range ForwardFill(series) {
			sorted[start+i].Equity = v
		}
		start = end
	}
	return sorted
}

// Annualize groups observations by (year, ticker) and reduces each group
// to its mean. The result is ordered by (year, ticker).
func Annualize(obs []Observation) []AnnualEquity {
	type key struct {
		year   int
		ticker string
	}
	groups := make(map[key][]*float64)
	var keys []key
	for _, o := range obs {
		k := key{year: o.Period.Year, ticker: o.Ticker}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], o.Equity)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].ticker < keys[j].ticker
	})

	out := make([]AnnualEquity, len(keys))
	for i, k := range keys {
		out[i] = AnnualEquity{Year: k.year, Ticker: k.ticker, Equity: Mean(groups[k])}
	}
	return out
}

// Aggregate forward-fills each ticker's series and reduces it to annual means.
func Aggregate(obs []Observation) []AnnualEquity {
	return Annualize(FillForward(obs))
}
