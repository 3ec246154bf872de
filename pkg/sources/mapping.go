package sources

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agentstation/cgvn/pkg/constants"
	"github.com/agentstation/cgvn/pkg/errors"
	"github.com/agentstation/cgvn/pkg/normalize"
	"github.com/agentstation/cgvn/pkg/table"
)

// Schema enumerates the canonical fields recognized for one input table.
type Schema struct {
	Name Name

	// Fields are the canonical field names, all required
	Fields []string

	// Passthrough keeps unmapped columns; the equity sheet carries one
	// column per ticker
	Passthrough bool
}

// Schemas for the three input tables.
var (
	RegistrySchema = Schema{
		Name:   Registry,
		Fields: []string{constants.ColumnIdentifier, constants.ColumnTicker},
	}
	GovernanceSchema = Schema{
		Name: Governance,
		Fields: []string{
			constants.ColumnIdentifier,
			constants.ColumnPeriod,
			constants.ColumnItemID,
			constants.ColumnPracticeValue,
		},
	}
	EquitySchema = Schema{
		Name:        Equity,
		Fields:      []string{constants.ColumnDateLabel},
		Passthrough: true,
	}
)

// SchemaFor returns the schema of an input table.
func SchemaFor(name Name) (Schema, bool) {
	switch name {
	case Registry:
		return RegistrySchema, true
	case Governance:
		return GovernanceSchema, true
	case Equity:
		return EquitySchema, true
	}
	return Schema{}, false
}

// Mapping maps source column names to canonical field names.
type Mapping map[string]string

// DefaultMapping returns the column mapping of the Economatica and CVM exports.
func DefaultMapping(name Name) Mapping {
	switch name {
	case Registry:
		return Mapping{
			constants.DefaultRegistryIdentifierColumn: constants.ColumnIdentifier,
			constants.DefaultRegistryTickerColumn:     constants.ColumnTicker,
		}
	case Governance:
		return Mapping{
			constants.DefaultGovernanceIdentifier: constants.ColumnIdentifier,
			constants.DefaultGovernancePeriod:     constants.ColumnPeriod,
			constants.DefaultGovernanceItem:       constants.ColumnItemID,
			constants.DefaultGovernanceValue:      constants.ColumnPracticeValue,
		}
	case Equity:
		return Mapping{constants.DefaultEquityDateColumn: constants.ColumnDateLabel}
	}
	return Mapping{}
}

// Validate checks that the mapping targets only recognized fields, maps
// each field at most once, and covers every required field.
func (m Mapping) Validate(s Schema) error {
	recognized := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		recognized[f] = false
	}
	for _, src := range m.sortedKeys() {
		field := m[src]
		done, ok := recognized[field]
		if !ok {
			return errors.NewConfigError(s.Name.String(),
				fmt.Sprintf("column %q maps to unrecognized field %q (recognized: %s)", src, field, strings.Join(s.Fields, ", ")), nil)
		}
		if done {
			return errors.NewConfigError(s.Name.String(),
				fmt.Sprintf("field %q is mapped more than once", field), nil)
		}
		recognized[field] = true
	}
	for _, f := range s.Fields {
		if !recognized[f] {
			return errors.NewConfigError(s.Name.String(), fmt.Sprintf("no column mapped to required field %q", f), nil)
		}
	}
	return nil
}

// Apply renames the mapped columns of t to their canonical fields and
// drops, or for passthrough schemas keeps, every other column. Header
// cells are matched on their normalized text (last line, trimmed). A
// mapped column missing from t is a *errors.ConfigError.
func (m Mapping) Apply(t *table.Table, s Schema) (*table.Table, error) {
	if err := m.Validate(s); err != nil {
		return nil, err
	}

	headers := make(map[string]string, t.Width())
	for _, c := range t.Columns() {
		h := normalize.Header(c)
		if _, dup := headers[h]; !dup {
			headers[h] = c
		}
	}

	rename := make(map[string]string, t.Width())
	var keep []string
	mapped := make(map[string]bool, len(m))
	for _, src := range m.sortedKeys() {
		col, ok := headers[normalize.Header(src)]
		if !ok {
			return nil, errors.NewConfigError(s.Name.String(),
				fmt.Sprintf("mapped column %q not found in input (have: %s)", src, strings.Join(t.Columns(), ", ")), nil)
		}
		rename[col] = m[src]
		mapped[col] = true
	}

	// canonical fields first, in schema order
	for _, f := range s.Fields {
		for col, field := range rename {
			if field == f {
				keep = append(keep, col)
			}
		}
	}
	if s.Passthrough {
		for _, c := range t.Columns() {
			if mapped[c] {
				continue
			}
			h := normalize.Header(c)
			if h == "" {
				continue
			}
			rename[c] = h
			keep = append(keep, c)
		}
	}

	selected, err := t.Select(keep...)
	if err != nil {
		return nil, err
	}
	out, err := selected.Rename(rename)
	if err != nil {
		return nil, errors.NewConfigError(s.Name.String(), "column names collide after mapping", err)
	}
	return out, nil
}

func (m Mapping) sortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
