package pipeline

import (
	stderrors "errors"
	"fmt"
	"slices"

	"github.com/agentstation/cgvn/pkg/constants"
	"github.com/agentstation/cgvn/pkg/errors"
	"github.com/agentstation/cgvn/pkg/normalize"
	"github.com/agentstation/cgvn/pkg/reconcile"
	"github.com/agentstation/cgvn/pkg/reshape"
	"github.com/agentstation/cgvn/pkg/sources"
	"github.com/agentstation/cgvn/pkg/table"
	"github.com/agentstation/cgvn/pkg/temporal"
)

// PrepareRegistry normalizes a canonical registry table.
func PrepareRegistry(t *table.Table) ([]reconcile.RegistryRecord, error) {
	if err := t.Require(constants.ColumnIdentifier, constants.ColumnTicker); err != nil {
		return nil, err
	}
	out := make([]reconcile.RegistryRecord, t.Len())
	for i := range out {
		out[i] = reconcile.RegistryRecord{
			Identifier: normalize.IdentifierValue(t.Get(i, constants.ColumnIdentifier)),
			Ticker:     normalize.TickerValue(t.Get(i, constants.ColumnTicker)),
		}
	}
	return out, nil
}

// PrepareGovernance pivots a canonical long governance table to one row per
// (identifier, period) with one column per item, and derives each row's
// year from its period. Rows are grouped on the identifier as read and
// normalized afterwards.
func PrepareGovernance(t *table.Table) (reconcile.Governance, error) {
	if err := t.Require(
		constants.ColumnIdentifier,
		constants.ColumnPeriod,
		constants.ColumnItemID,
		constants.ColumnPracticeValue,
	); err != nil {
		return reconcile.Governance{}, err
	}

	for i := 0; i < t.Len(); i++ {
		label := table.FormatValue(t.Get(i, constants.ColumnPeriod))
		if _, ok := temporal.ParseYear(label); !ok {
			return reconcile.Governance{}, errors.NewTemporalLabelError(sources.Governance.String(), i, label, "4-digit year")
		}
	}

	rowKeys := []string{constants.ColumnIdentifier, constants.ColumnPeriod}
	wide, err := reshape.Pivot(t, rowKeys, constants.ColumnItemID, constants.ColumnPracticeValue)
	if err != nil {
		var conflict *errors.StructuralConflictError
		if stderrors.As(err, &conflict) {
			conflict.Table = sources.Governance.String()
		}
		return reconcile.Governance{}, err
	}

	g := reconcile.Governance{
		ItemColumns: wide.Columns()[len(rowKeys):],
		Rows:        make([]reconcile.GovernanceRow, wide.Len()),
	}
	for i := range g.Rows {
		row := wide.Row(i)
		year, _ := temporal.ParseYear(table.FormatValue(row[1]))
		g.Rows[i] = reconcile.GovernanceRow{
			Identifier: normalize.IdentifierValue(row[0]),
			Year:       year,
			Items:      row[len(rowKeys):],
		}
	}
	return g, nil
}

// PrepareEquity melts a canonical wide equity table into one observation
// per (quarter, ticker). Sentinel cells become missing values.
func PrepareEquity(t *table.Table, sentinels temporal.Sentinels) ([]temporal.Observation, error) {
	if err := t.Require(constants.ColumnDateLabel); err != nil {
		return nil, err
	}

	periods := make([]temporal.Period, t.Len())
	for i := range periods {
		label := table.FormatValue(t.Get(i, constants.ColumnDateLabel))
		p, ok := temporal.ParseQuarterLabel(label)
		if !ok {
			return nil, errors.NewTemporalLabelError(sources.Equity.String(), i, label, "quarter label like 1T2020")
		}
		periods[i] = p
	}

	long, err := reshape.Melt(t, []string{constants.ColumnDateLabel}, nil, constants.ColumnTicker, constants.ColumnEquity)
	if err != nil {
		return nil, err
	}

	width := t.Width() - 1
	out := make([]temporal.Observation, long.Len())
	for i := range out {
		row := i / width
		ticker := normalize.TickerValue(long.Get(i, constants.ColumnTicker))
		raw := long.Get(i, constants.ColumnEquity)
		v, err := sentinels.ParseValue(raw)
		if err != nil {
			return nil, errors.NewValidationError(constants.ColumnEquity, raw,
				fmt.Sprintf("row %d ticker %s: %v", row, ticker, err))
		}
		out[i] = temporal.Observation{Period: periods[row], Ticker: ticker, Equity: v}
	}
	return out, nil
}

// IdentifierCollision is a normalized (identifier, period) pair that more
// than one spelling of the identifier pivoted into separate rows.
type IdentifierCollision struct {
	Identifier string   `json:"identifier" yaml:"identifier"`
	Period     string   `json:"period" yaml:"period"`
	Spellings  []string `json:"spellings" yaml:"spellings"`
}

// IdentifierCollisions lists, in order of first appearance, the
// (identifier, period) pairs of a canonical governance table whose
// identifier is written more than one way. Each of them yields duplicate
// (identifier, year) rows after the pivot.
func IdentifierCollisions(t *table.Table) []IdentifierCollision {
	type key struct{ identifier, period string }
	spellings := make(map[key][]string)
	var order []key
	for i := 0; i < t.Len(); i++ {
		raw := table.FormatValue(t.Get(i, constants.ColumnIdentifier))
		k := key{normalize.Identifier(raw), table.FormatValue(t.Get(i, constants.ColumnPeriod))}
		seen, ok := spellings[k]
		if !ok {
			order = append(order, k)
		}
		if !slices.Contains(seen, raw) {
			spellings[k] = append(seen, raw)
		}
	}

	var out []IdentifierCollision
	for _, k := range order {
		if s := spellings[k]; len(s) > 1 {
			out = append(out, IdentifierCollision{Identifier: k.identifier, Period: k.period, Spellings: s})
		}
	}
	return out
}
