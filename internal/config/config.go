// Package config loads vibe-uorf settings from viper and turns them into a
// validated scan configuration.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-uorf/internal/codon"
	"github.com/inodb/vibe-uorf/internal/uorf"
)

// Config is the full set of scan settings.
type Config struct {
	Workers     int               `mapstructure:"workers" yaml:"workers" validate:"gte=0"`
	GeneticCode GeneticCodeConfig `mapstructure:"genetic_code" yaml:"genetic_code"`
	Filter      FilterConfig      `mapstructure:"filter" yaml:"filter"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
}

// GeneticCodeConfig selects start and stop codons. A Table > 0 selects an
// NCBI translation table; Alternatives are added to its start codons, while
// Canonical must stay ATG and Stops must stay at the standard set.
type GeneticCodeConfig struct {
	Table        int      `mapstructure:"table" yaml:"table" validate:"gte=0,lte=33"`
	Canonical    string   `mapstructure:"canonical" yaml:"canonical" validate:"omitempty,len=3,codon"`
	Alternatives []string `mapstructure:"alternatives" yaml:"alternatives" validate:"dive,len=3,codon"`
	Stops        []string `mapstructure:"stops" yaml:"stops" validate:"dive,len=3,codon"`
}

// FilterConfig mirrors uorf.Filter with names suitable for a config file.
type FilterConfig struct {
	MinLengthNT         int      `mapstructure:"min_length" yaml:"min_length" validate:"gte=0"`
	AllowedStartCodons  []string `mapstructure:"start_codons" yaml:"start_codons" validate:"dive,len=3,codon"`
	IncludeUnterminated bool     `mapstructure:"include_unterminated" yaml:"include_unterminated"`
	OverlapClasses      []string `mapstructure:"classes" yaml:"classes" validate:"dive,overlap_class"`
}

// OutputConfig controls where results are written.
type OutputConfig struct {
	Format  string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=tab jsonl"`
	DuckDB  string `mapstructure:"duckdb" yaml:"duckdb"`
	Summary string `mapstructure:"summary" yaml:"summary"`
}

// LogConfig controls the CLI logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("workers", 0)
	v.SetDefault("genetic_code.table", 0)
	v.SetDefault("genetic_code.canonical", codon.CanonicalStart)
	v.SetDefault("genetic_code.stops", codon.StandardStops)
	v.SetDefault("filter.min_length", 0)
	v.SetDefault("filter.include_unterminated", false)
	v.SetDefault("output.format", "tab")
	v.SetDefault("log.level", "info")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("codon", func(fl validator.FieldLevel) bool {
		return isCodon(fl.Field().String())
	})
	_ = v.RegisterValidation("overlap_class", func(fl validator.FieldLevel) bool {
		_, err := uorf.ParseOverlapClass(fl.Field().String())
		return err == nil
	})
	return v
}

func isCodon(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		switch s[i] {
		case 'A', 'C', 'G', 'T', 'a', 'c', 'g', 't':
		default:
			return false
		}
	}
	return true
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field constraint.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	gc := c.GeneticCode
	if gc.Table > 0 {
		if gc.Canonical != "" && !strings.EqualFold(gc.Canonical, codon.CanonicalStart) {
			return fmt.Errorf("invalid config: genetic_code.canonical %s cannot be combined with genetic_code.table %d", gc.Canonical, gc.Table)
		}
		if len(gc.Stops) > 0 && !sameCodons(gc.Stops, codon.StandardStops) {
			return fmt.Errorf("invalid config: genetic_code.stops cannot be combined with genetic_code.table %d", gc.Table)
		}
	}
	return nil
}

// sameCodons reports whether a and b hold the same set of codons, ignoring case.
func sameCodons(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, c := range a {
		set[strings.ToUpper(c)] = true
	}
	other := make(map[string]bool, len(b))
	for _, c := range b {
		c = strings.ToUpper(c)
		if !set[c] {
			return false
		}
		other[c] = true
	}
	return len(set) == len(other)
}

// Code builds the genetic code selected by the config.
func (c *Config) Code() (*codon.GeneticCode, error) {
	gc := c.GeneticCode
	if gc.Table > 0 {
		return codon.FromNCBITable(gc.Table, gc.Alternatives...)
	}
	canonical := gc.Canonical
	if canonical == "" {
		canonical = codon.CanonicalStart
	}
	stops := gc.Stops
	if len(stops) == 0 {
		stops = codon.StandardStops
	}
	code, err := codon.NewGeneticCode(canonical, gc.Alternatives, stops)
	if err != nil {
		return nil, fmt.Errorf("genetic code: %w", err)
	}
	return code, nil
}

// UORFConfig converts the config into the read-only scan configuration.
func (c *Config) UORFConfig() (uorf.Config, error) {
	code, err := c.Code()
	if err != nil {
		return uorf.Config{}, err
	}

	f := uorf.Filter{
		MinLengthNT:         c.Filter.MinLengthNT,
		IncludeUnterminated: c.Filter.IncludeUnterminated,
	}
	for _, s := range c.Filter.AllowedStartCodons {
		f.AllowedStartCodons = append(f.AllowedStartCodons, strings.ToUpper(s))
	}
	for _, name := range c.Filter.OverlapClasses {
		oc, err := uorf.ParseOverlapClass(name)
		if err != nil {
			return uorf.Config{}, err
		}
		f.OverlapClassesKept = append(f.OverlapClassesKept, oc)
	}

	return uorf.Config{Code: code, Filter: f}, nil
}
