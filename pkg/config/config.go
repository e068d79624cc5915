// Package config gathers the run parameters of the finder: CLI flags, an
// optional YAML file and a couple of environment overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config controls one finder run.
type Config struct {
	// Paths
	Cmsearch  string `yaml:"cmsearch"`   // cmsearch executable (default: found in PATH)
	ModelAttc string `yaml:"attc_model"` // covariance model file
	OutDir    string `yaml:"outdir"`

	// Search parameters
	DistanceThreshold int     `yaml:"distance_threshold"` // aggregation distance in bp
	EvalueAttc        float64 `yaml:"evalue_attc"`
	MaxAttcSize       int     `yaml:"max_attc_size"`
	MinAttcSize       int     `yaml:"min_attc_size"`
	KeepPalindromes   bool    `yaml:"keep_palindromes"`
	LocalMax          bool    `yaml:"local_max"`
	CalinThreshold    int     `yaml:"calin_threshold"`

	// Topology
	Circular     bool   `yaml:"circular"`
	Linear       bool   `yaml:"linear"`
	TopologyFile string `yaml:"topology_file"`

	// Run control
	CPU          int  `yaml:"cpu"`
	SplitResults bool `yaml:"split_results"`
	KeepTmp      bool `yaml:"keep_tmp"`
	Verbose      bool `yaml:"verbose"`
}

// Defaults fills the zero-valued fields with the documented defaults.
func (c *Config) Defaults() {
	if c.DistanceThreshold <= 0 {
		c.DistanceThreshold = 4000
	}
	if c.EvalueAttc <= 0 {
		c.EvalueAttc = 1.0
	}
	if c.MaxAttcSize <= 0 {
		c.MaxAttcSize = 200
	}
	if c.MinAttcSize <= 0 {
		c.MinAttcSize = 40
	}
	if c.CalinThreshold <= 0 {
		c.CalinThreshold = 2
	}
	if c.CPU <= 0 {
		c.CPU = 1
	}
	if c.OutDir == "" {
		c.OutDir = "."
	}
	if c.ModelAttc == "" {
		c.ModelAttc = "attc_4.cm"
	}
}

// LoadFile merges a YAML config file into the receiver. Fields already set
// on the command line keep precedence by being applied after this call.
func (c *Config) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv picks up environment overrides (typically loaded from .env).
func (c *Config) ApplyEnv() {
	if v := os.Getenv("INTFINDER_CMSEARCH"); v != "" {
		c.Cmsearch = v
	}
	if v := os.Getenv("INTFINDER_ATTC_MODEL"); v != "" {
		c.ModelAttc = v
	}
	if v := os.Getenv("INTFINDER_OUTDIR"); v != "" {
		c.OutDir = v
	}
}

// Validate rejects contradictory settings.
func (c *Config) Validate() error {
	if c.Circular && c.Linear {
		return fmt.Errorf("--circ and --linear are mutually exclusive")
	}
	if c.LocalMax && c.ModelAttc == "" {
		return fmt.Errorf("local max search requires an attC model")
	}
	return nil
}
