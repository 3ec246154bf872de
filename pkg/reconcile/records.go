package reconcile

import "github.com/agentstation/cgvn/pkg/temporal"

// RegistryRecord maps a normalized identifier to a normalized ticker.
// Identifier uniqueness is not enforced; a repeated identifier attaches
// each of its tickers to the matching governance rows.
type RegistryRecord struct {
	Identifier string
	Ticker     string
}

// GovernanceRow is one pivoted governance observation.
// Items is aligned with Governance.ItemColumns.
type GovernanceRow struct {
	Identifier string
	Year       int
	Items      []any
}

// Governance is the pivoted governance table.
type Governance struct {
	ItemColumns []string
	Rows        []GovernanceRow
}

// Record is one row of the reconciled table. Equity is nil when no annual
// figure exists for (Year, Ticker).
type Record struct {
	Identifier string
	Year       int
	Ticker     string
	Equity     *float64
	Items      []any
}

// AnnualEquity is the equity input of the second join.
type AnnualEquity = temporal.AnnualEquity
