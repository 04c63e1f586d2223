package main

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/launchdash/internal/config"
)

const testCSV = "../../internal/dataset/testdata/launches.csv"

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	base := []string{"--config", filepath.Join(t.TempDir(), "missing.toml"), "--log-level", "error"}
	cmd.SetArgs(append(base, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestViewSingleSite(t *testing.T) {
	out, err := runCLI(t, "view", "--data", testCSV, "--site", "KSC LC-39A")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	for _, needle := range []string{
		"Selection: site=KSC LC-39A  payload=[0, 9600] kg",
		"Outcomes for site KSC LC-39A",
		"Launches with payload [0, 9600] kg",
		"2490.0",
		"5600.0",
	} {
		if !strings.Contains(out, needle) {
			t.Fatalf("output missing %q:\n%s", needle, out)
		}
	}
	if strings.Contains(out, "VAFB SLC-4E") {
		t.Fatalf("output contains rows from other sites:\n%s", out)
	}
}

func TestViewWithCharts(t *testing.T) {
	out, err := runCLI(t, "view", "--data", testCSV, "--low", "9000", "--high", "10000", "--charts", "--width", "60")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	for _, needle := range []string{"payload=[9000, 10000] kg", "Total Successful Launches by Site", "Payload vs. Launch Outcome for All Sites", "Legend:"} {
		if !strings.Contains(out, needle) {
			t.Fatalf("output missing %q:\n%s", needle, out)
		}
	}
}

func TestViewErrors(t *testing.T) {
	if _, err := runCLI(t, "view", "--data", testCSV, "--site", "Boca Chica"); err == nil || !strings.Contains(err.Error(), "unknown launch site") {
		t.Fatalf("expected unknown site error, got %v", err)
	}
	if _, err := runCLI(t, "view"); err == nil || !strings.Contains(err.Error(), "no dataset") {
		t.Fatalf("expected missing dataset error, got %v", err)
	}
	if _, err := runCLI(t, "view", "--data", filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSitesFromConfigFile(t *testing.T) {
	abs, err := filepath.Abs(testCSV)
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[data]\npath = \""+filepath.ToSlash(abs)+"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--config", cfgPath, "--log-level", "error", "sites"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("sites: %v", err)
	}
	want := "CCAFS LC-40\nVAFB SLC-4E\nKSC LC-39A\nCCAFS SLC-40\n\nPayload range: [0, 9600] kg\n"
	if out.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", out.String(), want)
	}
}

func TestConvertThenLoadSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "launches.db")
	if _, err := runCLI(t, "convert", testCSV, dbPath); err != nil {
		t.Fatalf("convert: %v", err)
	}
	if _, err := runCLI(t, "convert", testCSV, dbPath); err == nil {
		t.Fatalf("expected error when output exists")
	}
	if _, err := runCLI(t, "convert", "--force", testCSV, dbPath); err != nil {
		t.Fatalf("convert --force: %v", err)
	}
	out, err := runCLI(t, "sites", "--data", dbPath)
	if err != nil {
		t.Fatalf("sites: %v", err)
	}
	if !strings.HasPrefix(out, "CCAFS LC-40\nVAFB SLC-4E\nKSC LC-39A\nCCAFS SLC-40\n") {
		t.Fatalf("unexpected sites from sqlite:\n%s", out)
	}
}

func TestExportWritesPNGs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	if _, err := runCLI(t, "export", "--data", testCSV, "--site", "CCAFS LC-40", "--out", dir, "--width", "320", "--height", "200"); err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, name := range []string{"proportion.png", "correlation.png"} {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("decode %s: %v", name, err)
		}
		if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 200 {
			t.Fatalf("%s: unexpected size %v", name, b)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected only the two charts, found %d entries", len(entries))
	}
}

func TestDefaultConfigTemplateParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.Data.Path != nil || cfg.Serve.Port != nil {
		t.Fatalf("expected all settings commented out, got %+v", cfg)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandHome("~/data.csv"); got != filepath.Join(home, "data.csv") {
		t.Fatalf("unexpected expansion %q", got)
	}
	if got := expandHome("data.csv"); got != "data.csv" {
		t.Fatalf("relative path changed: %q", got)
	}
}
