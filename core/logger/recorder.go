package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/vterm/vconsole/core/console"
	"github.com/vterm/vconsole/core/vfs"
)

// Entry is one recorded event.
type Entry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	Session         string `json:"session,omitempty"`
	Kind            string `json:"kind"`
	Detail          string `json:"detail,omitempty"`
	Path            string `json:"path,omitempty"`
	ExitCode        int    `json:"exit_code,omitempty"`
}

// Recorder is a callback that stores entries in an external datastore.
type Recorder func(e Entry) error

// Logger fans console and filesystem events out to a Recorder.
type Logger struct {
	Record Recorder
	now    func() time.Time
}

// NewJSONLinesRecorder creates a Logger that exports entries in newline
// delimited JSON object format. Writes are serialized.
func NewJSONLinesRecorder(w io.Writer) *Logger {
	var mu sync.Mutex
	return &Logger{
		now: time.Now,
		Record: func(e Entry) error {
			raw, err := json.Marshal(e)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			_, err = fmt.Fprintln(w, string(raw))
			return err
		},
	}
}

func (l *Logger) record(e Entry) {
	e.TimestampMicros = l.now().UnixMicro()
	// A failing recorder must not take the session down with it.
	_ = l.Record(e)
}

// AttachSession records the session's lifecycle and command events.
// The returned function detaches.
func (l *Logger) AttachSession(s *console.Session) (cancel func()) {
	name := s.Name()
	return s.Subscribe(func(ev console.SessionEvent) {
		l.record(Entry{
			Session:  name,
			Kind:     ev.Kind.String(),
			Detail:   ev.Detail,
			ExitCode: ev.ExitCode,
		})
	})
}

// AttachFS records structural filesystem events. The returned function
// detaches.
func (l *Logger) AttachFS(fs *vfs.FS) (cancel func()) {
	return fs.Subscribe(func(ev vfs.Event) {
		l.record(Entry{
			Kind: ev.Op.String(),
			Path: ev.Path,
		})
	})
}

// ReadJSONLinesLog parses a newline delimited JSON log, invoking
// handler per entry.
func ReadJSONLinesLog(r io.Reader, handler func(e *Entry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var entry Entry
		if err := decoder.Decode(&entry); err != nil {
			return err
		}
		handler(&entry)
	}
	return nil
}
