// Package config holds the pipeline configuration: where each input table
// lives, how to read it, how its columns map to canonical fields, which
// markers denote missing equity, and where the output goes.
//
// The configuration is read through viper, so every key can come from the
// config file, from a CGVN_* environment variable, or from a default:
//
//	base_dir: ./data
//	registry:
//	  path: dados_economatica_3T2023/00_dados_cadastrais.xlsx
//	  header_row: 4
//	  columns:
//	    identifier: CNPJ
//	    ticker: Código
//	output:
//	  path: dados.xlsx
//	  postgres:
//	    dsn: postgres://localhost/cgvn
//	    table: governance_equity
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/agentstation/cgvn/pkg/constants"
	"github.com/agentstation/cgvn/pkg/errors"
	"github.com/agentstation/cgvn/pkg/sources"
)

// Dataset configures one file-backed table.
type Dataset struct {
	Path      string `mapstructure:"path" yaml:"path" json:"path"`
	Sheet     string `mapstructure:"sheet" yaml:"sheet,omitempty" json:"sheet,omitempty"`
	HeaderRow int    `mapstructure:"header_row" yaml:"header_row,omitempty" json:"header_row,omitempty"`
	RawValues bool   `mapstructure:"raw_values" yaml:"raw_values,omitempty" json:"raw_values,omitempty"`

	// Columns maps canonical field → source column. It is keyed by the
	// canonical field because viper folds map keys to lower case.
	Columns map[string]string `mapstructure:"columns" yaml:"columns,omitempty" json:"columns,omitempty"`
}

// Mapping returns the source → canonical column mapping for name; the
// default mapping when none is configured.
func (d Dataset) Mapping(name sources.Name) sources.Mapping {
	if len(d.Columns) == 0 {
		return sources.DefaultMapping(name)
	}
	m := make(sources.Mapping, len(d.Columns))
	for field, column := range d.Columns {
		m[column] = field
	}
	return m
}

// Postgres configures the optional database sink.
type Postgres struct {
	DSN   string `mapstructure:"dsn" yaml:"dsn,omitempty" json:"-"`
	Table string `mapstructure:"table" yaml:"table,omitempty" json:"table,omitempty"`
}

// Enabled reports whether the sink is configured.
func (p Postgres) Enabled() bool {
	return p.DSN != ""
}

// Output configures where the final table is written.
type Output struct {
	Path     string   `mapstructure:"path" yaml:"path,omitempty" json:"path,omitempty"`
	Sheet    string   `mapstructure:"sheet" yaml:"sheet,omitempty" json:"sheet,omitempty"`
	Postgres Postgres `mapstructure:"postgres" yaml:"postgres,omitempty" json:"postgres,omitempty"`
}

// Pipeline is the complete pipeline configuration.
type Pipeline struct {
	// BaseDir is the directory relative paths resolve against
	BaseDir string `mapstructure:"base_dir" yaml:"base_dir" json:"base_dir"`

	Registry   Dataset `mapstructure:"registry" yaml:"registry" json:"registry"`
	Governance Dataset `mapstructure:"governance" yaml:"governance" json:"governance"`
	Equity     Dataset `mapstructure:"equity" yaml:"equity" json:"equity"`

	// Sentinels are the equity cell markers read as missing
	Sentinels []string `mapstructure:"sentinels" yaml:"sentinels" json:"sentinels"`

	Output Output `mapstructure:"output" yaml:"output" json:"output"`
}

// SetDefaults registers the defaults of every key on v. The default
// layout is the one of the Economatica and CVM exports.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("base_dir", ".")

	v.SetDefault("registry.path", filepath.Join("dados_economatica_3T2023", "00_dados_cadastrais.xlsx"))
	v.SetDefault("registry.header_row", constants.DefaultRegistryHeaderRow)

	v.SetDefault("governance.path", filepath.Join("dados_CGVN", "dataset_CGVN.xlsx"))
	v.SetDefault("governance.header_row", constants.DefaultGovernanceHeaderRow)

	v.SetDefault("equity.path", filepath.Join("dados_economatica_3T2023", "05_patrimonio_liquido.xlsx"))
	v.SetDefault("equity.header_row", constants.DefaultEquityHeaderRow)
	v.SetDefault("equity.raw_values", true)

	v.SetDefault("sentinels", constants.DefaultSentinels)
	v.SetDefault("output.path", "dados.xlsx")
	v.SetDefault("output.sheet", "")

	// registered so CGVN_OUTPUT_POSTGRES_* variables reach Unmarshal
	v.SetDefault("output.postgres.dsn", "")
	v.SetDefault("output.postgres.table", "")
}

// Load reads the pipeline configuration from v.
func Load(v *viper.Viper) (*Pipeline, error) {
	var cfg Pipeline
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewConfigError("config", "failed to decode pipeline configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values that can never work.
// Column mappings are checked against the schema of their table.
func (p *Pipeline) Validate() error {
	for _, name := range sources.Inputs {
		ds := p.Dataset(name)
		if ds.Path == "" {
			return errors.NewConfigError(name.String(), "path not set", nil)
		}
		if ds.HeaderRow < 0 {
			return errors.NewConfigError(name.String(), fmt.Sprintf("invalid header_row %d", ds.HeaderRow), nil)
		}
		schema, _ := sources.SchemaFor(name)
		if err := ds.Mapping(name).Validate(schema); err != nil {
			return err
		}
	}
	if p.Output.Path == "" && !p.Output.Postgres.Enabled() {
		return errors.NewConfigError("output", "neither a path nor a postgres dsn is set", nil)
	}
	return nil
}

// Dataset returns the configuration of an input table.
func (p *Pipeline) Dataset(name sources.Name) Dataset {
	switch name {
	case sources.Registry:
		return p.Registry
	case sources.Governance:
		return p.Governance
	case sources.Equity:
		return p.Equity
	case sources.Output:
		return Dataset{Path: p.Output.Path, Sheet: p.Output.Sheet}
	}
	return Dataset{}
}
