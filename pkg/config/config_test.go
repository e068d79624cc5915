package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	var c Config
	c.Defaults()
	if c.DistanceThreshold != 4000 {
		t.Errorf("distance_threshold = %d, want 4000", c.DistanceThreshold)
	}
	if c.EvalueAttc != 1.0 {
		t.Errorf("evalue_attc = %g, want 1", c.EvalueAttc)
	}
	if c.MaxAttcSize != 200 || c.MinAttcSize != 40 {
		t.Errorf("attc size bounds = [%d, %d], want [40, 200]", c.MinAttcSize, c.MaxAttcSize)
	}
	if c.CalinThreshold != 2 {
		t.Errorf("calin_threshold = %d, want 2", c.CalinThreshold)
	}
	if c.CPU != 1 || c.OutDir != "." || c.ModelAttc != "attc_4.cm" {
		t.Errorf("cpu/outdir/model = %d/%q/%q", c.CPU, c.OutDir, c.ModelAttc)
	}
}

func TestDefaultsKeepExplicitValues(t *testing.T) {
	c := Config{DistanceThreshold: 10000, OutDir: "/tmp/run"}
	c.Defaults()
	if c.DistanceThreshold != 10000 {
		t.Errorf("explicit distance_threshold overwritten: %d", c.DistanceThreshold)
	}
	if c.OutDir != "/tmp/run" {
		t.Errorf("explicit outdir overwritten: %q", c.OutDir)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intfinder.yml")
	content := `cmsearch: /opt/infernal/bin/cmsearch
attc_model: models/attc_4.cm
distance_threshold: 6000
local_max: true
keep_palindromes: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	var c Config
	if err := c.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	c.Defaults()
	if c.Cmsearch != "/opt/infernal/bin/cmsearch" {
		t.Errorf("cmsearch = %q", c.Cmsearch)
	}
	if c.ModelAttc != "models/attc_4.cm" {
		t.Errorf("attc_model = %q", c.ModelAttc)
	}
	if c.DistanceThreshold != 6000 {
		t.Errorf("distance_threshold = %d, want 6000", c.DistanceThreshold)
	}
	if !c.LocalMax || !c.KeepPalindromes {
		t.Errorf("local_max/keep_palindromes = %v/%v, want true/true", c.LocalMax, c.KeepPalindromes)
	}
	// fields the file leaves out still get defaults
	if c.EvalueAttc != 1.0 {
		t.Errorf("evalue_attc = %g, want default 1", c.EvalueAttc)
	}
}

func TestLoadFileMissing(t *testing.T) {
	var c Config
	if err := c.LoadFile(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	if err := os.WriteFile(path, []byte("distance_threshold: [oops\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var c Config
	if err := c.LoadFile(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("INTFINDER_CMSEARCH", "/usr/local/bin/cmsearch")
	t.Setenv("INTFINDER_OUTDIR", "/data/out")

	c := Config{Cmsearch: "cmsearch", OutDir: "."}
	c.ApplyEnv()
	if c.Cmsearch != "/usr/local/bin/cmsearch" {
		t.Errorf("cmsearch = %q", c.Cmsearch)
	}
	if c.OutDir != "/data/out" {
		t.Errorf("outdir = %q", c.OutDir)
	}
}

func TestValidate(t *testing.T) {
	c := Config{Circular: true, Linear: true}
	c.Defaults()
	if err := c.Validate(); err == nil {
		t.Error("expected error for --circ with --linear")
	}
	c.Linear = false
	if err := c.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
