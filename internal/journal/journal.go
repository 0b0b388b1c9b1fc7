// Package journal keeps an append-only log of the write requests the engine
// dispatched, one file per day.
package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mediatek86/catalog/pkg/engine"
)

const fileSuffix = ".log"

// Entry is one parsed journal line
type Entry struct {
	Timestamp time.Time
	Action    string
	RequestID string
	Verb      string
	Resource  string
	Category  string
	Result    string
	Outcome   string
}

// Failed reports whether the request did not fully succeed
func (e *Entry) Failed() bool {
	return e.Outcome != "ok"
}

// Journal writes engine.JournalEntry records under a directory
type Journal struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// New creates the directory if needed
func New(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal dir: %w", err)
	}
	return &Journal{dir: dir, now: time.Now}, nil
}

// Dir is where the daily files live
func (j *Journal) Dir() string {
	return j.dir
}

// Record implements engine.Journal
func (j *Journal) Record(e engine.JournalEntry) error {
	ts := e.Time
	if ts.IsZero() {
		ts = j.now()
	}
	ts = ts.UTC()

	line := fmt.Sprintf("%s [%s] request=%s verb=%s resource=%s category=%s result=%s outcome=%s\n",
		ts.Format(time.RFC3339),
		e.Verb.Method(),
		e.RequestID,
		e.Verb,
		e.Resource,
		e.Category,
		e.Result,
		e.Outcome(),
	)

	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.OpenFile(j.pathFor(ts), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to write journal: %w", err)
	}
	return nil
}

// Last returns the n most recent entries, oldest first
func (j *Journal) Last(n int) ([]*Entry, error) {
	if n <= 0 {
		return []*Entry{}, nil
	}
	files, err := j.files()
	if err != nil {
		return nil, err
	}

	var collected []*Entry
	for i := len(files) - 1; i >= 0 && len(collected) < n; i-- {
		entries, err := readFile(files[i])
		if err != nil {
			return nil, err
		}
		collected = append(entries, collected...)
	}

	if len(collected) > n {
		collected = collected[len(collected)-n:]
	}
	if collected == nil {
		collected = []*Entry{}
	}
	return collected, nil
}

// Errors returns today's entries that did not succeed
func (j *Journal) Errors() ([]*Entry, error) {
	entries, err := readFile(j.pathFor(j.now().UTC()))
	if err != nil {
		return nil, err
	}
	failed := []*Entry{}
	for _, e := range entries {
		if e.Failed() {
			failed = append(failed, e)
		}
	}
	return failed, nil
}

func (j *Journal) pathFor(t time.Time) string {
	return filepath.Join(j.dir, t.Format("2006-01-02")+fileSuffix)
}

// files lists the daily files in date order
func (j *Journal) files() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(j.dir, "*"+fileSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to list journal: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

func readFile(path string) ([]*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	entries := []*Entry{}
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		e, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ParseLine reads one journal line. The outcome runs to the end of the line.
func ParseLine(line string) (*Entry, error) {
	stamp, rest, ok := strings.Cut(line, " ")
	if !ok {
		return nil, fmt.Errorf("malformed journal line %q", line)
	}
	ts, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return nil, fmt.Errorf("malformed journal timestamp %q: %w", stamp, err)
	}

	action, rest, ok := strings.Cut(rest, " ")
	if !ok || !strings.HasPrefix(action, "[") || !strings.HasSuffix(action, "]") {
		return nil, fmt.Errorf("malformed journal action in %q", line)
	}

	e := &Entry{Timestamp: ts, Action: strings.Trim(action, "[]")}

	fields, outcome, _ := strings.Cut(rest, "outcome=")
	e.Outcome = outcome
	for _, kv := range strings.Fields(fields) {
		key, value, _ := strings.Cut(kv, "=")
		switch key {
		case "request":
			e.RequestID = value
		case "verb":
			e.Verb = value
		case "resource":
			e.Resource = value
		case "category":
			e.Category = value
		case "result":
			e.Result = value
		}
	}
	return e, nil
}
