// Package rules reads name processing rules from YAML files and turns them
// into the rule strings and replacement pairs a names.RuleSet is built from.
package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the YAML layout of a rule file.
type Config struct {
	Normalization   []string       `yaml:"normalization"`
	Transliteration []string       `yaml:"transliteration"`
	Search          []string       `yaml:"search"`
	Variants        []VariantGroup `yaml:"variants"`
}

// VariantGroup is one block of variant rules.
type VariantGroup struct {
	Words []string `yaml:"words"`
}

// LoadConfig reads and parses a rule file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("rules %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig parses the YAML content of a rule file.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	return &cfg, nil
}

// joinRules concatenates rule statements into one rule source.
func joinRules(stmts []string) string {
	parts := make([]string, 0, len(stmts))
	for _, s := range stmts {
		s = strings.TrimSpace(s)
		s = strings.TrimSuffix(s, ";")
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ";\n") + ";"
}
