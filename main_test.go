package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"

	"github.com/mclang/mclang/dictionary"
	"github.com/mclang/mclang/langfile"
	"github.com/mclang/mclang/lockfile"
)

func disableColor(t *testing.T) {
	t.Helper()
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })
}

func TestProgressBar(t *testing.T) {
	disableColor(t)

	tests := []struct {
		name    string
		percent int
		width   int
		want    string
	}{
		{name: "clamps below zero", percent: -10, width: 4, want: "░░░░   0%"},
		{name: "mid range", percent: 50, width: 4, want: "██░░  50%"},
		{name: "clamps above hundred", percent: 120, width: 4, want: "████ 100%"},
	}

	for _, tc := range tests {
		if got := progressBar(tc.percent, tc.width); got != tc.want {
			t.Fatalf("%s: progressBar() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestFormatLevel(t *testing.T) {
	disableColor(t)

	for level, want := range map[string]string{
		"info":  "[INFO]",
		"ok":    "[OK]",
		"warn":  "[WARN]",
		"error": "[ERROR]",
		"debug": "[DEBUG]",
	} {
		if got := formatLevel(level); got != want {
			t.Errorf("formatLevel(%q) = %q, want %q", level, got, want)
		}
	}
}

func TestLogHelpers(t *testing.T) {
	disableColor(t)
	old := log.Logger
	t.Cleanup(func() { log.Logger = old })

	var buf bytes.Buffer
	setupLogging(&buf, true)
	logInfo("loaded %d entries", 3)
	logSuccess("exported %s", "x.json")
	logWarning("careful")
	logError("broken")

	out := buf.String()
	for _, want := range []string{"[INFO] loaded 3 entries", "[OK] exported x.json", "[WARN] careful", "[ERROR] broken"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

// ---------------------------------------------------------------------------
// Command tests
// ---------------------------------------------------------------------------

const sourceLang = "# Blocks\n" +
	"tile.stone.name=Stone\n" +
	"tile.dirt.name=Dirt\n" +
	"broken line\n"

const translationLang = "tile.stone.name=石头\n" +
	"unknown.key=Unknown\n"

// project writes a source and a translation file into a temp dir.
func project(t *testing.T) (dir, source, translation string) {
	t.Helper()
	dir = t.TempDir()
	source = filepath.Join(dir, "en_us.lang")
	translation = filepath.Join(dir, "zh_cn.lang")
	if err := os.WriteFile(source, []byte(sourceLang), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(translation, []byte(translationLang), 0644); err != nil {
		t.Fatal(err)
	}
	return dir, source, translation
}

// execute runs the root command in dir with a clean environment.
func execute(t *testing.T, dir, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	disableColor(t)
	for _, k := range []string{"MCLANG_NAMESPACE", "MCLANG_LOCALE", "MCLANG_OUTPUT_DIR", "MCLANG_UI_LANG", "MCLANG_STRICT"} {
		t.Setenv(k, "")
	}
	oldLogger, oldCfg := log.Logger, cfg
	t.Cleanup(func() { log.Logger, cfg = oldLogger, oldCfg })

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, "--config", filepath.Join(dir, ".mclang.yaml"), "--no-color", "--lang", "en"))
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestExportCommand(t *testing.T) {
	dir, source, translation := project(t)

	_, stderr, err := execute(t, dir, "", "export", source, "-t", translation, "-o", dir, "-n", "mymod")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "mymod_zh_cn.lang"))
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	want := "# Blocks\n" +
		"tile.stone.name=石头\n" +
		"tile.dirt.name=Dirt\n"
	if string(got) != want {
		t.Fatalf("export = %q, want %q", got, want)
	}

	for _, msg := range []string{
		`line 4: missing '='`,
		"1 malformed entry skipped",
		"1 key not in the source was ignored",
		"[OK] Exported",
	} {
		if !strings.Contains(stderr, msg) {
			t.Errorf("stderr missing %q:\n%s", msg, stderr)
		}
	}

	lock, err := lockfile.Load(dir)
	if err != nil {
		t.Fatalf("lockfile.Load: %v", err)
	}
	if targets, keys := lock.Stats(); targets != 1 || keys != 2 {
		t.Fatalf("lock Stats() = (%d, %d), want (1, 2)", targets, keys)
	}
}

func TestExportStdoutWithFill(t *testing.T) {
	dir, source, _ := project(t)

	stdout, _, err := execute(t, dir, "", "export", source, "--stdout", "--fill", "--clear-duplicates")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(stdout, "tile.dirt.name=Dirt\n") {
		t.Fatalf("stdout = %q", stdout)
	}
	if _, err := os.Stat(filepath.Join(dir, "mod_zh_cn.lang")); err == nil {
		t.Fatal("--stdout must not write a file")
	}
}

func TestExportStrict(t *testing.T) {
	dir, source, _ := project(t)

	_, _, err := execute(t, dir, "", "export", source, "--strict", "-o", dir)
	if !errors.Is(err, langfile.ErrMalformed) {
		t.Fatalf("export --strict error = %v, want ErrMalformed", err)
	}
}

func TestInvalidNamespaceFlag(t *testing.T) {
	dir, source, _ := project(t)

	_, _, err := execute(t, dir, "", "export", source, "-n", "My Mod")
	if !errors.Is(err, dictionary.ErrInvalidNamespace) {
		t.Fatalf("error = %v, want ErrInvalidNamespace", err)
	}
}

func TestStatusCommand(t *testing.T) {
	dir, source, translation := project(t)

	stdout, _, err := execute(t, dir, "", "status", source, "-t", translation, "-l", "ja-JP")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{
		"Translation Statistics",
		"日本語 (ja_jp)",
		"mod_ja_jp.lang",
		"[x] tile.stone.name",
		"[ ] tile.dirt.name",
		" 50%",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("status output missing %q:\n%s", want, stdout)
		}
	}
}

func TestTranslateCommand(t *testing.T) {
	dir, source, translation := project(t)

	_, stderr, err := execute(t, dir, "泥土\n:wq\n", "translate", source, "-t", translation, "-o", dir)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "mod_zh_cn.lang"))
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.Contains(string(got), "tile.dirt.name=泥土\n") || !strings.Contains(string(got), "tile.stone.name=石头\n") {
		t.Fatalf("export = %q", got)
	}
	if strings.Contains(stderr, "unsaved") {
		t.Fatalf("unexpected unsaved warning:\n%s", stderr)
	}
}

func TestTranslateCommandDiscardWarning(t *testing.T) {
	dir, source, _ := project(t)

	_, stderr, err := execute(t, dir, "石头\n:q!\n", "translate", source)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if !strings.Contains(stderr, "1 unsaved change discarded") {
		t.Fatalf("expected discard warning:\n%s", stderr)
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, t.TempDir(), "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(stdout, "mclang version dev") {
		t.Fatalf("stdout = %q", stdout)
	}
}
