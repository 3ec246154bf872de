// Package constants provides shared constants used throughout the cgvn codebase:
// canonical column names, default source column names, file permissions and
// timeouts that must agree between the pipeline, its adapters and the CLI.
package constants

import "time"

// Canonical column names produced and consumed by the pipeline.
const (
	ColumnIdentifier    = "identifier"
	ColumnTicker        = "ticker"
	ColumnPeriod        = "period"
	ColumnItemID        = "item_id"
	ColumnPracticeValue = "practice_value"
	ColumnDateLabel     = "date_label"
	ColumnYear          = "year"
	ColumnEquity        = "equity"
)

// Default source column names of the CVM governance dataset and the
// Economatica exports.
const (
	DefaultRegistryIdentifierColumn = "CNPJ"
	DefaultRegistryTickerColumn     = "Código"
	DefaultGovernanceIdentifier     = "CNPJ_Companhia"
	DefaultGovernancePeriod         = "Data_Referencia"
	DefaultGovernanceItem           = "ID_Item"
	DefaultGovernanceValue          = "Pratica_Adotada"
	DefaultEquityDateColumn         = "Data"
)

// Default header rows (1-based) of the raw input sheets.
const (
	DefaultRegistryHeaderRow   = 4
	DefaultGovernanceHeaderRow = 1
	DefaultEquityHeaderRow     = 4
)

// DefaultSentinels are the placeholder markers that denote missing equity.
var DefaultSentinels = []string{"----", "-", " "}

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Timeout constants
const (
	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// DatabaseTimeout bounds a single sink write to Postgres
	DatabaseTimeout = 2 * time.Minute

	// ShutdownTimeout is the grace period given after a failed run
	ShutdownTimeout = 5 * time.Second
)
