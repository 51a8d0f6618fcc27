package server

import (
	"sync"

	"github.com/agbru/funnelcalc/internal/funnel"
	"github.com/agbru/funnelcalc/internal/logging"
)

// testLogger is a minimal logger for testing that implements logging.Logger.
type testLogger struct{}

func newTestLogger() *testLogger                                  { return &testLogger{} }
func (l *testLogger) Info(_ string, _ ...logging.Field)           {}
func (l *testLogger) Error(_ string, _ error, _ ...logging.Field) {}
func (l *testLogger) Debug(_ string, _ ...logging.Field)          {}
func (l *testLogger) Printf(_ string, _ ...any)                   {}
func (l *testLogger) Println(_ ...any)                            {}

// logEntry is one call captured by recordingLogger.
type logEntry struct {
	level  string
	msg    string
	err    error
	fields map[string]any
}

// recordingLogger keeps every structured entry for later assertions.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) add(level, msg string, err error, fields []logging.Field) {
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, err: err, fields: m})
}

func (l *recordingLogger) Info(msg string, fields ...logging.Field) { l.add("info", msg, nil, fields) }
func (l *recordingLogger) Error(msg string, err error, fields ...logging.Field) {
	l.add("error", msg, err, fields)
}
func (l *recordingLogger) Debug(msg string, fields ...logging.Field) { l.add("debug", msg, nil, fields) }
func (l *recordingLogger) Printf(string, ...any)                     {}
func (l *recordingLogger) Println(...any)                            {}

// find returns the entries logged with msg.
func (l *recordingLogger) find(msg string) []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logEntry
	for _, e := range l.entries {
		if e.msg == msg {
			out = append(out, e)
		}
	}
	return out
}

func newTestServer(opts ...Option) *Server {
	return NewServer("127.0.0.1:0", funnel.Default, newTestLogger(), opts...)
}
