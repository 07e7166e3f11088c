package extractor

import (
	_ "embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/compass/internal/model"
)

//go:embed patterns.yaml
var defaultPatterns []byte

// Rule is one compiled extraction pattern.
type Rule struct {
	Kind    model.Kind `yaml:"kind"`
	Pattern string     `yaml:"pattern"`

	re *regexp.Regexp
}

// Table maps modules to their extraction rule, plus the rules that run for every module.
type Table struct {
	Modules map[model.Module]*Rule `yaml:"modules"`
	Always  []*Rule                `yaml:"always"`
}

// LoadTable parses and compiles a YAML rule table.
func LoadTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse pattern table: %w", err)
	}
	for module, r := range t.Modules {
		if !module.Valid() {
			return nil, fmt.Errorf("pattern table: unknown module %q", module)
		}
		if err := r.compile(); err != nil {
			return nil, fmt.Errorf("module %s: %w", module, err)
		}
	}
	for i, r := range t.Always {
		if err := r.compile(); err != nil {
			return nil, fmt.Errorf("always[%d]: %w", i, err)
		}
	}
	return &t, nil
}

// DefaultTable returns the built-in rule table.
func DefaultTable() (*Table, error) {
	return LoadTable(defaultPatterns)
}

func (r *Rule) compile() error {
	switch r.Kind {
	case model.KindPassions, model.KindStrengths, model.KindSkills, model.KindGoals:
	default:
		return fmt.Errorf("unknown insight kind %q", r.Kind)
	}
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return fmt.Errorf("compile pattern: %w", err)
	}
	if re.NumSubexp() != 1 {
		return fmt.Errorf("pattern must have exactly one capture group, has %d", re.NumSubexp())
	}
	r.re = re
	return nil
}

// Match returns the trimmed captures of every non-overlapping match of r in text.
func (r *Rule) Match(text string) []string {
	if r == nil || r.re == nil {
		return nil
	}
	var out []string
	for _, m := range r.re.FindAllStringSubmatch(text, -1) {
		if c := trimCapture(m[1]); c != "" {
			out = append(out, c)
		}
	}
	return out
}
