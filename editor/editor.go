// Package editor is the interactive translation shell: it walks the
// records of a dictionary one by one, reads translations from a line
// based input and writes the result back in the source file's format.
//
// Input lines are either a translation for the current entry or a
// command starting with ':' (see :h).
package editor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/lo"

	"github.com/mclang/mclang/dictionary"
	"github.com/mclang/mclang/i18n"
	"github.com/mclang/mclang/lockfile"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1024 * 1024

// Options configure a Session.
type Options struct {
	In  io.Reader
	Out io.Writer

	// Markers are the glyphs for the entry list; see PlainMarkers.
	Markers Markers
	// Color enables coloured output.
	Color bool
	// LabelWidth is the source preview width in :l (0 = unlimited).
	LabelWidth int

	// OutPath is the default export path for :w.
	OutPath string
	// Lock, when set, marks stale entries and is updated on :w.
	Lock *lockfile.LockFile
}

// Session is one interactive editing run over a dictionary.
type Session struct {
	dict *dictionary.Dictionary
	opts Options

	out     io.Writer
	markers markerSet
	accent  *color.Color
	dim     *color.Color

	cur       int
	quitArmed bool
	done      bool
}

// New creates a session over a loaded dictionary.
func New(dict *dictionary.Dictionary, opts Options) (*Session, error) {
	if !dict.Loaded() || dict.Len() == 0 {
		return nil, dictionary.ErrNoSource
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	s := &Session{
		dict:    dict,
		opts:    opts,
		out:     opts.Out,
		markers: newMarkerSet(opts.Markers, opts.Color),
		accent:  color.New(color.FgCyan, color.Bold),
		dim:     color.New(color.Faint),
	}
	if opts.Color {
		s.accent.EnableColor()
		s.dim.EnableColor()
	} else {
		s.accent.DisableColor()
		s.dim.DisableColor()
	}
	if i, ok := dict.NextUntranslated(-1); ok {
		s.cur = i
	}
	return s, nil
}

// Current returns the index of the entry being edited.
func (s *Session) Current() int { return s.cur }

// ---------------------------------------------------------------------------
// Main loop
// ---------------------------------------------------------------------------

// Run reads input until :q, end of input or ctx cancellation. It returns
// ctx.Err() when interrupted; unsaved changes stay in the dictionary.
func (s *Session) Run(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	lines, readErr := readLines(s.opts.In, stop)

	s.show()
	for !s.done {
		s.prompt()
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out)
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(s.out)
				if err := <-readErr; err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
				return nil
			}
			s.handle(line)
		}
	}
	return nil
}

// readLines feeds input lines into a channel until EOF or stop is closed.
// The scanner error, if any, is sent on the second channel after the
// lines channel is closed.
func readLines(r io.Reader, stop <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		defer close(lines)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for sc.Scan() {
			select {
			case lines <- strings.TrimRight(sc.Text(), "\r"):
			case <-stop:
				return
			}
		}
		errc <- sc.Err()
	}()
	return lines, errc
}

// handle processes one input line.
func (s *Session) handle(line string) {
	if strings.HasPrefix(line, ":") {
		s.command(line[1:])
		return
	}
	s.quitArmed = false

	if line == "" {
		s.move(s.cur + 1)
		return
	}
	// "\:" escapes a translation that starts with a colon.
	if strings.HasPrefix(line, `\:`) {
		line = line[1:]
	}
	text := strings.ReplaceAll(line, `\n`, "\n")
	r := s.dict.At(s.cur)
	if err := s.dict.Set(r.Key, text); err != nil {
		s.errorf("%v", err)
		return
	}
	s.move(s.cur + 1)
}

// move jumps to entry i, staying on the last entry at the end of the list.
func (s *Session) move(i int) {
	switch {
	case i >= s.dict.Len():
		s.infof(i18n.T("End of list."))
		s.cur = s.dict.Len() - 1
	case i < 0:
		s.infof(i18n.T("Start of list."))
		s.cur = 0
	default:
		s.cur = i
	}
	s.show()
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func (s *Session) command(input string) {
	name, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	arg = strings.TrimSpace(arg)
	if name != "q" {
		s.quitArmed = false
	}

	switch name {
	case "n":
		s.move(s.cur + 1)
	case "p":
		s.move(s.cur - 1)
	case "s":
		i, ok := s.dict.NextUntranslated(s.cur)
		if !ok {
			s.infof(i18n.T("All entries are translated."))
			return
		}
		s.move(i)
	case "r":
		r := s.dict.At(s.cur)
		if err := s.dict.Reset(r.Key); err != nil {
			s.errorf("%v", err)
			return
		}
		s.show()
	case "g":
		s.gotoEntry(arg)
	case "l":
		s.List(arg)
	case "dup":
		n := s.dict.ClearDuplicates()
		s.infof(i18n.N("Cleared %d duplicate translation.", "Cleared %d duplicate translations.", n), n)
	case "fill":
		n := s.dict.FillEmpty()
		s.infof(i18n.N("Filled %d empty entry.", "Filled %d empty entries.", n), n)
	case "stats":
		s.stats()
	case "preview":
		s.preview()
	case "w":
		s.write(arg)
	case "wq":
		if s.write(arg) {
			s.done = true
		}
	case "q":
		s.quit()
	case "q!":
		s.done = true
	case "h", "help", "?":
		s.help()
	default:
		s.errorf(i18n.T("Unknown command :%s (type :h for help)"), name)
	}
}

func (s *Session) gotoEntry(arg string) {
	if arg == "" {
		s.errorf(i18n.T("Usage: :g <number|key>"))
		return
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > s.dict.Len() {
			s.errorf(i18n.T("No entry %d (1-%d)"), n, s.dict.Len())
			return
		}
		s.move(n - 1)
		return
	}
	i := s.dict.IndexOf(arg)
	if i < 0 {
		s.errorf(i18n.T("No entry with key %s"), arg)
		return
	}
	s.move(i)
}

// List prints the entries whose key or source contains filter
// (case-insensitive), with their status marker.
func (s *Session) List(filter string) {
	needle := strings.ToLower(filter)
	idx := lo.Filter(lo.Range(s.dict.Len()), func(i, _ int) bool {
		r := s.dict.At(i)
		return needle == "" ||
			strings.Contains(strings.ToLower(r.Key), needle) ||
			strings.Contains(strings.ToLower(r.Source), needle)
	})
	if len(idx) == 0 {
		s.infof(i18n.T("No entries match %q."), filter)
		return
	}

	keyWidth := lo.Max(lo.Map(idx, func(i, _ int) int { return len(s.dict.At(i).Key) }))
	for _, i := range idx {
		r := s.dict.At(i)
		cursor := " "
		if i == s.cur {
			cursor = ">"
		}
		fmt.Fprintf(s.out, "%s%4d %s %-*s  %s\n",
			cursor, i+1, s.marker(r), keyWidth, r.Key, s.dim.Sprint(r.Label(s.opts.LabelWidth)))
	}
}

func (s *Session) stats() {
	st := s.dict.Stats()
	fmt.Fprintf(s.out, i18n.T("Total: %d  Translated: %d  Untranslated: %d  Changed: %d  (%d%%)")+"\n",
		st.Total, st.Translated, st.Untranslated, st.Changed, st.Percent())
	if stale := s.StaleCount(); stale > 0 {
		fmt.Fprintf(s.out, i18n.N("%d translation has a changed source text.", "%d translations have a changed source text.", stale)+"\n", stale)
	}
}

func (s *Session) preview() {
	data, err := s.dict.Export()
	if err != nil {
		s.errorf("%v", err)
		return
	}
	s.out.Write(data)
}

// write exports to arg or the default output path. It reports whether
// the file was written.
func (s *Session) write(arg string) bool {
	path := arg
	if path == "" {
		path = s.opts.OutPath
	}
	if path == "" {
		s.errorf(i18n.T("No output path; use :w <path>"))
		return false
	}
	if err := Save(s.dict, path, s.opts.Lock); err != nil {
		s.errorf("%v", err)
		return false
	}
	s.quitArmed = false
	s.infof(i18n.T("Saved %s"), path)
	return true
}

func (s *Session) quit() {
	if s.dict.Stats().Changed > 0 && !s.quitArmed {
		s.quitArmed = true
		s.errorf(i18n.T("Unsaved changes. Use :w to save, :q! to discard, or :q again to quit."))
		return
	}
	s.done = true
}

func (s *Session) help() {
	fmt.Fprint(s.out, i18n.T(`Type a translation and press Enter to save it and move on.
A literal \n inserts a line break; start with \: for a leading colon.
An empty line moves to the next entry.

  :n / :p          next / previous entry
  :s               skip to the next untranslated entry
  :r               reset the current translation
  :g <num|key>     go to an entry
  :l [filter]      list entries
  :dup             clear translations identical to the source
  :fill            copy the source into empty translations
  :stats           show progress
  :preview         print the exported file
  :w [path]        export
  :wq              export and quit
  :q / :q!         quit / quit discarding changes
`))
}

// ---------------------------------------------------------------------------
// Display
// ---------------------------------------------------------------------------

func (s *Session) show() {
	r := s.dict.At(s.cur)
	st := s.dict.Stats()

	fmt.Fprintf(s.out, "\n%s %s %s\n",
		s.dim.Sprintf("[%d/%d]", s.cur+1, s.dict.Len()), s.marker(r), s.accent.Sprint(r.Key))
	fmt.Fprintf(s.out, "  %s %s\n", i18n.T("Source:"), r.Source)
	if r.IsTranslated() {
		fmt.Fprintf(s.out, "  %s %s\n", i18n.T("Current:"), r.Translation)
	}
	if s.isStale(r) {
		fmt.Fprintf(s.out, "  %s\n", i18n.T("(source changed since last export)"))
	}
	fmt.Fprintf(s.out, "  %s %d/%d\n", i18n.T("Progress:"), st.Translated, st.Total)
}

func (s *Session) prompt() {
	fmt.Fprint(s.out, "> ")
}

func (s *Session) marker(r *dictionary.Record) string {
	switch {
	case s.isStale(r):
		return s.markers.stale
	case r.IsTranslated():
		return s.markers.translated
	default:
		return s.markers.untranslated
	}
}

func (s *Session) target() string {
	return lockfile.TargetKey(s.opts.OutPath)
}

// isStale reports whether r is translated but its source text changed
// since the last export recorded in the lock file.
func (s *Session) isStale(r *dictionary.Record) bool {
	if s.opts.Lock == nil || s.opts.OutPath == "" || !r.IsTranslated() {
		return false
	}
	return s.opts.Lock.IsStale(s.target(), r.Key, r.Source)
}

// StaleCount returns the number of stale translations.
func (s *Session) StaleCount() int {
	return lo.CountBy(s.dict.Records(), s.isStale)
}

func (s *Session) infof(format string, args ...any) {
	fmt.Fprintf(s.out, format+"\n", args...)
}

func (s *Session) errorf(format string, args ...any) {
	fmt.Fprintf(s.out, "! "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Saving
// ---------------------------------------------------------------------------

// Save exports dict to path and, when lock is set, records the source
// text of every exported key in it. On failure the dictionary is left
// unchanged.
func Save(dict *dictionary.Dictionary, path string, lock *lockfile.LockFile) error {
	if err := dict.WriteFile(path); err != nil {
		return err
	}

	if lock == nil {
		return nil
	}
	target := lockfile.TargetKey(path)
	sources := make(map[string]string, dict.Len())
	for _, r := range dict.Records() {
		sources[r.Key] = r.Source
	}
	lock.Clean(target, dict.Keys())
	lock.UpdateBatch(target, sources)
	if err := lock.Save(); err != nil {
		return fmt.Errorf("%w: %w", ErrLockNotSaved, err)
	}
	return nil
}

// ErrLockNotSaved is returned by Save when the export was written but the
// lock file could not be.
var ErrLockNotSaved = errors.New("export written but lock file not saved")
