// mclang: Minecraft mod language file editor for .lang and .json files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mclang/mclang/config"
	"github.com/mclang/mclang/dictionary"
	"github.com/mclang/mclang/editor"
	"github.com/mclang/mclang/i18n"
	"github.com/mclang/mclang/langfile"
	"github.com/mclang/mclang/langmeta"
	"github.com/mclang/mclang/lockfile"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ---------------------------------------------------------------------------
// Logging
// ---------------------------------------------------------------------------

// levelOK is the pseudo level used by logSuccess.
const levelOK = "ok"

func setupLogging(w io.Writer, noColor bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:          w,
		NoColor:      noColor,
		PartsExclude: []string{zerolog.TimestampFieldName},
		FormatLevel:  formatLevel,
	})
}

// formatLevel renders levels as the bracketed tags of the CLI output.
func formatLevel(i any) string {
	level, _ := i.(string)
	var tag string
	var c *color.Color
	switch level {
	case zerolog.LevelInfoValue:
		tag, c = "[INFO]", color.New(color.FgBlue)
	case levelOK:
		tag, c = "[OK]", color.New(color.FgGreen)
	case zerolog.LevelWarnValue:
		tag, c = "[WARN]", color.New(color.FgYellow, color.Bold)
	case zerolog.LevelErrorValue, zerolog.LevelFatalValue:
		tag, c = "[ERROR]", color.New(color.FgRed)
	default:
		return "[" + strings.ToUpper(level) + "]"
	}
	return c.Sprint(tag)
}

func logInfo(format string, args ...any) {
	log.Info().Msgf(format, args...)
}

func logSuccess(format string, args ...any) {
	log.Log().Str(zerolog.LevelFieldName, levelOK).Msgf(format, args...)
}

func logWarning(format string, args ...any) {
	log.Warn().Msgf(format, args...)
}

func logError(format string, args ...any) {
	log.Error().Msgf(format, args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	flagNamespace string
	flagLocale    string
	flagConfig    string
	flagStrict    bool
	flagNoColor   bool
	flagLang      string
)

// cfg is the effective configuration after flags are applied.
var cfg *config.Config

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mclang",
		Short: "Minecraft mod language file editor",
		Long: `mclang — translate Minecraft mod language files.

Loads a source language file (legacy .lang or modern .json), optionally
merges an existing translation, and lets you translate it entry by entry.
The result is written in the same format and key order as the source,
named <namespace>_<locale>.<ext>.

Commands:
  status      Show translation statistics and the entry list
  translate   Interactive editor
  export      Write the translation file without prompting

Configuration is read from .mclang.yaml and MCLANG_* environment
variables; flags take precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flagNamespace, "namespace", "n", "", "Mod namespace used in the export file name (default \"mod\")")
	pf.StringVarP(&flagLocale, "locale", "l", "", "Target Minecraft locale (default \"zh_cn\")")
	pf.StringVar(&flagConfig, "config", "", "Path to config file (default ./"+config.FileName+")")
	pf.BoolVar(&flagStrict, "strict", false, "Abort on the first malformed entry instead of skipping it")
	pf.BoolVar(&flagNoColor, "no-color", false, "Disable coloured output")
	pf.StringVar(&flagLang, "lang", "", "Language of mclang's own messages (default from environment)")

	root.AddCommand(
		newStatusCmd(),
		newTranslateCmd(),
		newExportCmd(),
		newVersionCmd(),
	)

	return root
}

// setup loads the configuration and applies global flags.
func setup(cmd *cobra.Command) error {
	if flagNoColor {
		color.NoColor = true
	}
	setupLogging(cmd.ErrOrStderr(), color.NoColor)

	path := flagConfig
	if path == "" {
		path = config.FileName
	}
	c, err := config.LoadFile(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("namespace") {
		c.Namespace = flagNamespace
	}
	if flags.Changed("locale") {
		c.Locale = langmeta.Normalize(flagLocale)
	}
	if flags.Changed("strict") {
		c.Strict = flagStrict
	}
	if flags.Changed("lang") {
		c.UILang = flagLang
	}
	if err := c.Validate(); err != nil {
		return err
	}

	i18n.Init(c.UILang)
	if c.Locale != "" && !langmeta.Known(c.Locale) {
		logWarning(i18n.T("Unknown Minecraft locale %s; the name is used as given"), c.Locale)
	}
	cfg = c
	return nil
}

func main() {
	setupLogging(os.Stderr, color.NoColor)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mclang version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// session is a loaded dictionary plus where it will be exported.
type session struct {
	dict    *dictionary.Dictionary
	source  string
	outPath string
	lock    *lockfile.LockFile
}

// loadSession reads the source file and, when given, the translation
// file. Skipped entries are reported as warnings.
func loadSession(source, translation, out string) (*session, error) {
	parseOpts := langfile.ParseOptions{Strict: cfg.Strict}
	dict := dictionary.New(cfg.Namespace, cfg.Locale)

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	warnings, err := dict.LoadSource(filepath.Base(source), data, parseOpts)
	reportWarnings(source, warnings)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	logInfo(i18n.N("Loaded %d entry from %s (%s)", "Loaded %d entries from %s (%s)", dict.Len()),
		dict.Len(), source, dict.Format())

	if translation != "" {
		data, err := os.ReadFile(translation)
		if err != nil {
			return nil, fmt.Errorf("reading translation: %w", err)
		}
		res, warnings, err := dict.LoadTranslation(filepath.Base(translation), data, parseOpts)
		reportWarnings(translation, warnings)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", translation, err)
		}
		logInfo(i18n.N("Matched %d translation from %s", "Matched %d translations from %s", res.Matched),
			res.Matched, translation)
		if n := len(res.Unmatched); n > 0 {
			logWarning(i18n.N("%d key not in the source was ignored", "%d keys not in the source were ignored", n), n)
		}
	}

	outPath, err := resolveOutPath(dict, out)
	if err != nil {
		return nil, err
	}
	lock, err := lockfile.Load(filepath.Dir(outPath))
	if err != nil {
		return nil, err
	}

	return &session{dict: dict, source: source, outPath: outPath, lock: lock}, nil
}

func reportWarnings(path string, warnings []langfile.Warning) {
	for _, w := range warnings {
		logWarning("%s: %s", path, w)
	}
	if n := len(warnings); n > 0 {
		logWarning(i18n.N("%d malformed entry skipped (use --strict to abort instead)",
			"%d malformed entries skipped (use --strict to abort instead)", n), n)
	}
}

// resolveOutPath returns out, out/<export name> when out is a directory,
// or <output_dir>/<export name> when out is empty.
func resolveOutPath(dict *dictionary.Dictionary, out string) (string, error) {
	name, err := dict.ExportName()
	if err != nil {
		return "", err
	}
	if out == "" {
		return filepath.Join(cfg.OutputDir, name), nil
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, name), nil
	}
	return out, nil
}

func editorOptions(s *session, cmd *cobra.Command) editor.Options {
	return editor.Options{
		In:  cmd.InOrStdin(),
		Out: cmd.OutOrStdout(),
		Markers: editor.Markers{
			Translated:   cfg.Markers.Translated,
			Untranslated: cfg.Markers.Untranslated,
			Stale:        cfg.Markers.Stale,
		},
		Color:      !color.NoColor,
		LabelWidth: cfg.LabelWidth,
		OutPath:    s.outPath,
		Lock:       s.lock,
	}
}

// ---------------------------------------------------------------------------
// status (read-only)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var translation string
	var filter string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "status SOURCE",
		Short: "Show translation statistics and the entry list",
		Long: `Load a source file (and optionally its translation) and print progress
statistics followed by the entry list with status markers. Does not modify
any files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(args[0], translation, "")
			if err != nil {
				return err
			}
			return runStatus(cmd, s, filter, quiet)
		},
	}

	cmd.Flags().StringVarP(&translation, "translation", "t", "", "Existing translation file to merge")
	cmd.Flags().StringVar(&filter, "filter", "", "Only list entries whose key or text contains this")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print statistics only")

	return cmd
}

func runStatus(cmd *cobra.Command, s *session, filter string, quiet bool) error {
	ed, err := editor.New(s.dict, editorOptions(s, cmd))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	st := s.dict.Stats()
	heading := color.New(color.FgBlue)

	fmt.Fprintf(out, "\n%s\n", heading.Sprint(i18n.T("Translation Statistics")))
	fmt.Fprintln(out, strings.Repeat("─", 60))
	fmt.Fprintf(out, "  %-14s %s (%s)\n", i18n.T("Source:"), s.source, s.dict.Format())
	fmt.Fprintf(out, "  %-14s %s\n", i18n.T("Locale:"), langmeta.Display(s.dict.Locale()))
	fmt.Fprintf(out, "  %-14s %s\n", i18n.T("Export:"), s.outPath)
	fmt.Fprintf(out, "  %-14s %d\n", i18n.T("Entries:"), st.Total)
	fmt.Fprintf(out, "  %-14s %d\n", i18n.T("Translated:"), st.Translated)
	fmt.Fprintf(out, "  %-14s %d\n", i18n.T("Untranslated:"), st.Untranslated)
	if stale := ed.StaleCount(); stale > 0 {
		fmt.Fprintf(out, "  %-14s %d\n", i18n.T("Stale:"), stale)
	}
	fmt.Fprintf(out, "  %-14s %s\n", i18n.T("Progress:"), progressBar(st.Percent(), 20))
	fmt.Fprintln(out)

	if !quiet {
		ed.List(filter)
		fmt.Fprintln(out)
	}
	return nil
}

// progressBar renders a coloured bar of width cells followed by the
// percentage.
func progressBar(percent, width int) string {
	percent = max(0, min(percent, 100))
	filled := percent * width / 100

	c := color.New(color.FgGreen)
	switch {
	case percent < 50:
		c = color.New(color.FgRed)
	case percent < 100:
		c = color.New(color.FgYellow)
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %3d%%", c.Sprint(bar), percent)
}

// ---------------------------------------------------------------------------
// translate (interactive)
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var translation string
	var out string

	cmd := &cobra.Command{
		Use:   "translate SOURCE",
		Short: "Translate entries interactively",
		Long: `Open the interactive editor. Each entry shows its key, source text and
current translation; type the translation and press Enter to move on.
Type :h inside the editor for the list of commands.

The file is exported with :w (or :wq) to --output, which defaults to
<output_dir>/<namespace>_<locale>.<ext>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(args[0], translation, out)
			if err != nil {
				return err
			}
			return runTranslate(cmd, s)
		},
	}

	cmd.Flags().StringVarP(&translation, "translation", "t", "", "Existing translation file to merge")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Export file or directory")

	return cmd
}

func runTranslate(cmd *cobra.Command, s *session) error {
	ed, err := editor.New(s.dict, editorOptions(s, cmd))
	if err != nil {
		return err
	}

	err = ed.Run(cmd.Context())
	changed := s.dict.Stats().Changed
	if errors.Is(err, context.Canceled) {
		logWarning(i18n.T("Interrupted"))
		err = nil
	}
	if err != nil {
		return err
	}
	if changed > 0 {
		logWarning(i18n.N("%d unsaved change discarded", "%d unsaved changes discarded", changed), changed)
	}
	return nil
}

// ---------------------------------------------------------------------------
// export (non-interactive)
// ---------------------------------------------------------------------------

func newExportCmd() *cobra.Command {
	var (
		translation     string
		out             string
		fill            bool
		clearDuplicates bool
		toStdout        bool
	)

	cmd := &cobra.Command{
		Use:   "export SOURCE",
		Short: "Write the translation file without prompting",
		Long: `Merge a translation into the source layout and write it out. Untranslated
entries keep their source text. The lock file next to the export records
the source text of every key so later runs can flag stale translations.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(args[0], translation, out)
			if err != nil {
				return err
			}
			if clearDuplicates {
				n := s.dict.ClearDuplicates()
				logInfo(i18n.N("Cleared %d duplicate translation.", "Cleared %d duplicate translations.", n), n)
			}
			if fill {
				n := s.dict.FillEmpty()
				logInfo(i18n.N("Filled %d empty entry.", "Filled %d empty entries.", n), n)
			}
			if toStdout {
				data, err := s.dict.Export()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return runExport(s)
		},
	}

	cmd.Flags().StringVarP(&translation, "translation", "t", "", "Existing translation file to merge")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Export file or directory")
	cmd.Flags().BoolVar(&fill, "fill", false, "Copy the source text into untranslated entries")
	cmd.Flags().BoolVar(&clearDuplicates, "clear-duplicates", false, "Drop translations identical to the source text")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the result instead of writing a file")

	return cmd
}

func runExport(s *session) error {
	if err := editor.Save(s.dict, s.outPath, s.lock); err != nil {
		if errors.Is(err, editor.ErrLockNotSaved) {
			logWarning("%v", err)
			return nil
		}
		return err
	}
	st := s.dict.Stats()
	logSuccess(i18n.T("Exported %s (%d/%d translated, %d%%)"), s.outPath, st.Translated, st.Total, st.Percent())
	return nil
}
