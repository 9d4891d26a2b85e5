package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Test helper functions

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

// capture redirects stdout and stderr for the duration of the test.
func capture(t *testing.T) (out, errOut *bytes.Buffer) {
	t.Helper()
	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	oldOut, oldErr := stdout, stderr
	stdout, stderr = out, errOut
	t.Cleanup(func() { stdout, stderr = oldOut, oldErr })
	return out, errOut
}

func testGlobals(t *testing.T) *Globals {
	t.Helper()
	return &Globals{Config: filepath.Join(t.TempDir(), "config.yaml")}
}

func TestConvertCmd_Run(t *testing.T) {
	dir := t.TempDir()
	in := createTestFile(t, dir, "page.html", "<h1>Title!</h1>")

	out, _ := capture(t)
	cmd := &ConvertCmd{Files: []string{in}, To: "markdown", Width: -1}
	if err := cmd.Run(testGlobals(t)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.String() != "# Title!\n" {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestConvertCmd_Run_Stdin(t *testing.T) {
	out, errOut := capture(t)
	oldIn := stdin
	stdin = strings.NewReader("[color=red]Hi[/color]")
	defer func() { stdin = oldIn }()

	cmd := &ConvertCmd{From: "bbcode", To: "md", Width: -1}
	if err := cmd.Run(testGlobals(t)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.String() != "Hi\n" {
		t.Errorf("stdout = %q", out.String())
	}
	if !strings.Contains(errOut.String(), "color unsupported") {
		t.Errorf("stderr should list the degradation, got %q", errOut.String())
	}
}

func TestConvertCmd_Run_Strict(t *testing.T) {
	capture(t)
	oldIn := stdin
	stdin = strings.NewReader("[color=red]Hi[/color]")
	defer func() { stdin = oldIn }()

	cmd := &ConvertCmd{From: "bbcode", To: "markdown", Strict: true, Width: -1}
	err := cmd.Run(testGlobals(t))
	if err == nil || !strings.Contains(err.Error(), "color unsupported") {
		t.Errorf("Run() error = %v, want strict failure", err)
	}
}

func TestConvertCmd_Run_Report(t *testing.T) {
	_, errOut := capture(t)
	oldIn := stdin
	stdin = strings.NewReader("[u]x[/u]")
	defer func() { stdin = oldIn }()

	cmd := &ConvertCmd{From: "bbcode", To: "markdown", Report: true, Width: -1}
	if err := cmd.Run(testGlobals(t)); err != nil {
		t.Fatal(err)
	}
	var report struct {
		TargetFormat string `json:"target_format"`
		Diagnostics  []struct {
			Reason string `json:"reason"`
		} `json:"diagnostics"`
	}
	if err := json.Unmarshal(errOut.Bytes(), &report); err != nil {
		t.Fatalf("report is not JSON: %v\n%s", err, errOut.String())
	}
	if report.TargetFormat != "markdown" || len(report.Diagnostics) != 1 || report.Diagnostics[0].Reason != "underline unsupported" {
		t.Errorf("report = %+v", report)
	}
}

func TestConvertCmd_Run_Batch(t *testing.T) {
	dir := t.TempDir()
	a := createTestFile(t, dir, "a.md", "# A\n")
	b := createTestFile(t, dir, "b.bbcode", "[b]B[/b]")
	outDir := filepath.Join(dir, "out")

	capture(t)
	cmd := &ConvertCmd{Files: []string{a, b}, To: "html", Out: outDir, Width: -1}
	if err := cmd.Run(testGlobals(t)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	tests := map[string]string{
		"a.html": "<h1>A</h1>",
		"b.html": "<p><strong>B</strong></p>",
	}
	for name, want := range tests {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Errorf("missing output %s: %v", name, err)
			continue
		}
		if string(data) != want {
			t.Errorf("%s = %q, want %q", name, data, want)
		}
	}
}

func TestConvertCmd_Run_Errors(t *testing.T) {
	dir := t.TempDir()
	unknown := createTestFile(t, dir, "notes.xyz", "x")

	tests := []struct {
		name string
		cmd  *ConvertCmd
	}{
		{"stdin without from", &ConvertCmd{To: "markdown", Width: -1}},
		{"unknown extension", &ConvertCmd{Files: []string{unknown}, To: "markdown", Width: -1}},
		{"unknown target", &ConvertCmd{Files: []string{unknown}, From: "txt", To: "docx", Width: -1}},
		{"batch without out", &ConvertCmd{Files: []string{unknown, unknown}, From: "txt", To: "md", Width: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capture(t)
			if err := tt.cmd.Run(testGlobals(t)); err == nil {
				t.Error("Run() should fail")
			}
		})
	}
}

func TestConvertCmd_Options(t *testing.T) {
	g := testGlobals(t)
	createTestFile(t, filepath.Dir(g.Config), "config.yaml", "wrap_width: 40\nmarkdown_flavor: commonmark\n")
	cfg, err := g.load()
	if err != nil {
		t.Fatal(err)
	}

	opts := (&ConvertCmd{Width: -1}).options(cfg)
	if opts.Write.Width != 40 || opts.Flavor != "commonmark" {
		t.Errorf("options from config = %+v", opts)
	}

	opts = (&ConvertCmd{Width: 0, Flavor: "gfm", Strict: true, Delimiter: ","}).options(cfg)
	if opts.Write.Width != 0 || opts.Flavor != "gfm" || !opts.Strict || opts.TableDelimiter != "," {
		t.Errorf("flag overrides = %+v", opts)
	}
}

func TestInspectCmd_Run(t *testing.T) {
	dir := t.TempDir()
	in := createTestFile(t, dir, "page.html", "<p>Some <i>meaningful</i> text.</p>")

	out, _ := capture(t)
	cmd := &InspectCmd{File: in, Hash: true}
	if err := cmd.Run(testGlobals(t)); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("output = %q", out.String())
	}
	want := `(Document (Paragraph (Text "Some ") (Emphasis (Text "meaningful")) (Text " text.")))`
	if lines[0] != want {
		t.Errorf("dump = %s, want %s", lines[0], want)
	}
	if !strings.Contains(lines[1], "blake3:") {
		t.Errorf("hash line = %q", lines[1])
	}
}

func TestFormatsCmd_Run(t *testing.T) {
	out, _ := capture(t)
	if err := (&FormatsCmd{}).Run(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"bbcode", "html", "markdown", "plaintext"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("formats output missing %s:\n%s", name, out.String())
		}
	}

	out.Reset()
	if err := (&FormatsCmd{JSON: true}).Run(); err != nil {
		t.Fatal(err)
	}
	var infos []formatInfo
	if err := json.Unmarshal(out.Bytes(), &infos); err != nil {
		t.Fatalf("formats --json: %v", err)
	}
	if len(infos) < 4 || infos[0].Name != "bbcode" || len(infos[0].Capabilities) == 0 {
		t.Errorf("infos = %+v", infos)
	}
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()
	g := &Globals{Config: filepath.Join(dir, "config.yaml")}
	dbPath := filepath.Join(dir, "cache.db")
	createTestFile(t, dir, "config.yaml", "cache_enabled: true\ncache_path: "+dbPath+"\n")
	in := createTestFile(t, dir, "a.md", "*x*\n")

	out, _ := capture(t)
	if err := (&ConvertCmd{Files: []string{in}, To: "bbcode", Width: -1}).Run(g); err != nil {
		t.Fatal(err)
	}
	if out.String() != "[i]x[/i]" {
		t.Errorf("stdout = %q", out.String())
	}

	out.Reset()
	if err := (&CacheStatsCmd{}).Run(g); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "entries: 1") {
		t.Errorf("stats = %q", out.String())
	}

	out.Reset()
	if err := (&CachePurgeCmd{}).Run(g); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "1 cached conversion") {
		t.Errorf("purge = %q", out.String())
	}
}

func TestConfigCommands(t *testing.T) {
	g := testGlobals(t)

	out, _ := capture(t)
	if err := (&ConfigInitCmd{}).Run(g); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(g.Config); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if err := (&ConfigInitCmd{}).Run(g); err == nil {
		t.Error("second init without --force should fail")
	}

	out.Reset()
	if err := (&ConfigShowCmd{}).Run(g); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "markdown_flavor: gfm") {
		t.Errorf("config show = %q", out.String())
	}
}

func TestVersionCmd_Run(t *testing.T) {
	out, _ := capture(t)
	if err := (&VersionCmd{}).Run(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "transmark version "+version) {
		t.Errorf("version = %q", out.String())
	}
}
