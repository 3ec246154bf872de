// Package reconcile joins the pivoted governance table with the registry
// and the annual equity figures into one denormalized table keyed by
// (identifier, year, ticker).
//
// Two joins run in order:
//
//  1. inner join governance × registry on identifier; unmatched rows on
//     either side are dropped
//  2. left join with annual equity on (year, ticker); rows without a
//     figure are kept with equity unset
//
// Empty keys never match.
package reconcile

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/agentstation/cgvn/pkg/errors"
	"github.com/agentstation/cgvn/pkg/logging"
)

// Reconciler produces the final table from the three prepared inputs.
type Reconciler interface {
	Reconcile(governance Governance, registry []RegistryRecord, equity []AnnualEquity) (*Result, error)
}

// reconciler is the default implementation of Reconciler
type reconciler struct {
	logger *zerolog.Logger
}

// Option configures a Reconciler
type Option func(*reconciler) error

// WithLogger sets the logger used for join statistics.
func WithLogger(logger *zerolog.Logger) Option {
	return func(r *reconciler) error {
		if logger == nil {
			return errors.NewValidationError("logger", nil, "logger cannot be nil")
		}
		r.logger = logger
		return nil
	}
}

// New creates a new Reconciler with options
func New(opts ...Option) (Reconciler, error) {
	r := &reconciler{logger: logging.Default()}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Reconcile runs both joins. It fails only on structural problems: item
// columns that collide with the fixed prefix, rows whose item count
// disagrees with the item columns, or a repeated (year, ticker) equity key.
func (r *reconciler) Reconcile(governance Governance, registry []RegistryRecord, equity []AnnualEquity) (*Result, error) {
	if err := validateGovernance(governance); err != nil {
		return nil, err
	}

	equityIndex, err := indexEquity(equity)
	if err != nil {
		return nil, err
	}

	stats := Statistics{
		GovernanceRows: len(governance.Rows),
		RegistryRows:   len(registry),
		EquityRows:     len(equity),
	}

	tickers := make(map[string][]int, len(registry))
	for i, rec := range registry {
		if rec.Identifier == "" {
			continue
		}
		tickers[rec.Identifier] = append(tickers[rec.Identifier], i)
	}

	used := make([]bool, len(registry))
	records := make([]Record, 0, len(governance.Rows))
	for _, g := range governance.Rows {
		matches := tickers[g.Identifier]
		if g.Identifier == "" || len(matches) == 0 {
			stats.Unregistered++
			continue
		}
		for _, ri := range matches {
			used[ri] = true
			rec := Record{
				Identifier: g.Identifier,
				Year:       g.Year,
				Ticker:     registry[ri].Ticker,
				Items:      append([]any(nil), g.Items...),
			}
			if rec.Ticker != "" {
				if v, ok := equityIndex[equityKey(g.Year, rec.Ticker)]; ok && v != nil {
					e := *v
					rec.Equity = &e
				}
			}
			if rec.Equity == nil {
				stats.MissingEquity++
			}
			records = append(records, rec)
		}
	}

	for i, u := range used {
		if !u {
			stats.UnusedRegistry++
			r.logger.Trace().Str("identifier", registry[i].Identifier).Msg("Registry row matched no governance row")
		}
	}
	stats.Matched = len(records)
	stats.OutputRows = len(records)

	r.logger.Debug().
		Int("governance_rows", stats.GovernanceRows).
		Int("matched", stats.Matched).
		Int("unregistered", stats.Unregistered).
		Int("missing_equity", stats.MissingEquity).
		Msg("Reconciled governance with registry and equity")

	return &Result{
		ItemColumns: append([]string(nil), governance.ItemColumns...),
		Records:     records,
		Statistics:  stats,
	}, nil
}

func validateGovernance(g Governance) error {
	reserved := make(map[string]struct{}, len(Prefix))
	for _, c := range Prefix {
		reserved[c] = struct{}{}
	}
	for _, c := range g.ItemColumns {
		if _, clash := reserved[c]; clash {
			return errors.NewValidationError("item_columns", c,
				fmt.Sprintf("governance item %q collides with a reserved output column", c))
		}
	}
	for i, row := range g.Rows {
		if len(row.Items) != len(g.ItemColumns) {
			return errors.NewValidationError("items", i,
				fmt.Sprintf("governance row %d has %d items, want %d", i, len(row.Items), len(g.ItemColumns)))
		}
	}
	return nil
}

func indexEquity(equity []AnnualEquity) (map[string]*float64, error) {
	index := make(map[string]*float64, len(equity))
	first := make(map[string]int, len(equity))
	for i, e := range equity {
		k := equityKey(e.Year, e.Ticker)
		if j, dup := first[k]; dup {
			return nil, errors.NewStructuralConflictError("annual equity",
				[]string{strconv.Itoa(e.Year), e.Ticker}, "equity", j, i)
		}
		first[k] = i
		index[k] = e.Equity
	}
	return index, nil
}

func equityKey(year int, ticker string) string {
	return strconv.Itoa(year) + "\x00" + ticker
}
