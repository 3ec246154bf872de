package reconcile

import (
	"fmt"

	"github.com/agentstation/cgvn/pkg/constants"
	"github.com/agentstation/cgvn/pkg/table"
)

// Prefix is the fixed leading column order of the reconciled table.
var Prefix = []string{
	constants.ColumnIdentifier,
	constants.ColumnYear,
	constants.ColumnTicker,
	constants.ColumnEquity,
}

// Result represents the outcome of a reconciliation
type Result struct {
	// ItemColumns are the governance item columns in pivot order
	ItemColumns []string

	// Records are the reconciled rows in output order
	Records []Record

	// Statistics about the joins
	Statistics Statistics
}

// Statistics counts what each join kept and dropped. Unmatched rows are
// expected outcomes, reported here rather than as errors.
type Statistics struct {
	GovernanceRows int `json:"governance_rows" yaml:"governance_rows"`
	RegistryRows   int `json:"registry_rows" yaml:"registry_rows"`
	EquityRows     int `json:"equity_rows" yaml:"equity_rows"`

	// Matched is the row count after the inner join on identifier
	Matched int `json:"matched" yaml:"matched"`

	// Unregistered is the number of governance rows without a registry ticker
	Unregistered int `json:"unregistered" yaml:"unregistered"`

	// UnusedRegistry is the number of registry rows no governance row matched
	UnusedRegistry int `json:"unused_registry" yaml:"unused_registry"`

	// MissingEquity is the number of output rows whose equity is unset
	MissingEquity int `json:"missing_equity" yaml:"missing_equity"`

	// OutputRows is the final row count; always equal to Matched
	OutputRows int `json:"output_rows" yaml:"output_rows"`
}

// Columns returns the full output column order: Prefix then ItemColumns.
func (r *Result) Columns() []string {
	cols := make([]string, 0, len(Prefix)+len(r.ItemColumns))
	cols = append(cols, Prefix...)
	return append(cols, r.ItemColumns...)
}

// Table renders the result as a table. A nil equity becomes a missing cell.
func (r *Result) Table() (*table.Table, error) {
	t, err := table.New(r.Columns()...)
	if err != nil {
		return nil, err
	}
	for _, rec := range r.Records {
		row := make([]any, 0, len(Prefix)+len(rec.Items))
		var equity any
		if rec.Equity != nil {
			equity = *rec.Equity
		}
		row = append(row, rec.Identifier, rec.Year, rec.Ticker, equity)
		row = append(row, rec.Items...)
		if err := t.Append(row...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Summary returns a one-line human-readable summary
func (r *Result) Summary() string {
	s := r.Statistics
	return fmt.Sprintf("%d rows reconciled (%d governance rows unregistered, %d rows without equity)",
		s.OutputRows, s.Unregistered, s.MissingEquity)
}
