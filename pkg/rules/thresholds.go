package rules

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Floor holds the similarity floors of one rule. All floors are exclusive (score > floor).
// Fields a rule does not use are ignored.
type Floor struct {
	FN         float64 `yaml:"fn" json:"fn,omitempty" validate:"gte=0,lte=1"`
	LN         float64 `yaml:"ln" json:"ln,omitempty" validate:"gte=0,lte=1"`
	Addr       float64 `yaml:"addr" json:"addr,omitempty" validate:"gte=0,lte=1"`
	Avg        float64 `yaml:"avg" json:"avg,omitempty" validate:"gte=0,lte=1"`
	YearWindow int     `yaml:"year_window" json:"year_window,omitempty" validate:"gte=0"`
}

// Thresholds configures every rule's similarity floors
type Thresholds struct {
	Rule01 Floor `yaml:"rule_01" json:"rule_01"`
	Rule02 Floor `yaml:"rule_02" json:"rule_02"`
	Rule04 Floor `yaml:"rule_04" json:"rule_04"`
	Rule05 Floor `yaml:"rule_05" json:"rule_05"`
	Rule06 Floor `yaml:"rule_06" json:"rule_06"`
	Rule07 Floor `yaml:"rule_07" json:"rule_07"`
	Rule08 Floor `yaml:"rule_08" json:"rule_08"`
	Rule09 Floor `yaml:"rule_09" json:"rule_09"`
	Rule16 Floor `yaml:"rule_16" json:"rule_16"`
	Rule17 Floor `yaml:"rule_17" json:"rule_17"`
	Rule18 Floor `yaml:"rule_18" json:"rule_18"`
}

// DefaultThresholds returns the production rule table
func DefaultThresholds() Thresholds {
	return Thresholds{
		Rule01: Floor{FN: 0.80},
		Rule02: Floor{FN: 0.70},
		Rule04: Floor{FN: 0.80, LN: 0.80},
		Rule05: Floor{FN: 0.80, LN: 0.80},
		Rule06: Floor{Addr: 0.75, FN: 0.80, LN: 0.80},
		Rule07: Floor{LN: 0.70},
		Rule08: Floor{FN: 0.80, LN: 0.80},
		Rule09: Floor{FN: 0.80, LN: 0.80},
		Rule16: Floor{FN: 0.75, LN: 0.75, YearWindow: 1},
		Rule17: Floor{FN: 0.85, LN: 0.85},
		Rule18: Floor{Avg: 0.80},
	}
}

var validate = validator.New()

// Validate checks every floor is within range
func (t Thresholds) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("invalid rule thresholds: %w", err)
	}
	return nil
}

// LoadThresholds reads a YAML file over the defaults. Keys missing from the file keep their
// default value. An empty path returns the defaults.
func LoadThresholds(path string) (Thresholds, error) {
	t := DefaultThresholds()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}
