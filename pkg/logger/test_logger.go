package logger

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// TestLogger captures log entries in memory so tests can assert on what
// was logged at which level.
type TestLogger struct {
	mu      sync.Mutex
	entries []Entry
	buffer  *bytes.Buffer
	zerolog *zerolog.Logger
}

// Entry is a single captured log record
type Entry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
	Error   error
}

// NewTestLogger creates a new test logger
func NewTestLogger() *TestLogger {
	nop := zerolog.Nop()
	return &TestLogger{
		entries: make([]Entry, 0),
		buffer:  &bytes.Buffer{},
		zerolog: &nop,
	}
}

// record appends a captured entry, merging bound fields with call-site fields
func (l *TestLogger) record(level, msg string, bound, extra map[string]interface{}, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var fields map[string]interface{}
	if len(bound) > 0 || len(extra) > 0 {
		fields = make(map[string]interface{}, len(bound)+len(extra))
		for k, v := range bound {
			fields[k] = v
		}
		for k, v := range extra {
			fields[k] = v
		}
	}

	l.entries = append(l.entries, Entry{Level: level, Message: msg, Fields: fields, Error: err})

	fmt.Fprintf(l.buffer, "[%s] %s", level, msg)
	if len(fields) > 0 {
		fmt.Fprintf(l.buffer, " fields=%v", fields)
	}
	if err != nil {
		fmt.Fprintf(l.buffer, " error=%v", err)
	}
	fmt.Fprintln(l.buffer)
}

func (l *TestLogger) Debug(msg string) { l.record("DEBUG", msg, nil, nil, nil) }
func (l *TestLogger) Info(msg string)  { l.record("INFO", msg, nil, nil, nil) }
func (l *TestLogger) Warn(msg string)  { l.record("WARN", msg, nil, nil, nil) }
func (l *TestLogger) Error(msg string) { l.record("ERROR", msg, nil, nil, nil) }
func (l *TestLogger) Fatal(msg string) { l.record("FATAL", msg, nil, nil, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.record("DEBUG", msg, nil, fields, nil)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.record("INFO", msg, nil, fields, nil)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.record("WARN", msg, nil, fields, nil)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.record("ERROR", msg, nil, fields, nil)
}

func (l *TestLogger) FatalWithFields(msg string, fields map[string]interface{}) {
	l.record("FATAL", msg, nil, fields, nil)
}

func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return &testScope{sink: l, fields: map[string]interface{}{key: value}}
}

func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	return &testScope{sink: l, fields: fields}
}

func (l *TestLogger) WithError(err error) Logger {
	return &testScope{sink: l, err: err}
}

func (l *TestLogger) WithContext(ctx context.Context) Logger { return l }

func (l *TestLogger) GetZerolog() *zerolog.Logger { return l.zerolog }

// Entries returns a copy of all captured log entries
func (l *TestLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]Entry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// EntriesByLevel returns all entries of a specific level
func (l *TestLogger) EntriesByLevel(level string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var filtered []Entry
	for _, e := range l.entries {
		if e.Level == level {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// HasMessage checks if a message with the given text was logged
func (l *TestLogger) HasMessage(text string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.entries {
		if e.Message == text {
			return true
		}
	}
	return false
}

// HasError checks if anything was logged at error level
func (l *TestLogger) HasError() bool {
	return len(l.EntriesByLevel("ERROR")) > 0
}

// Clear discards all captured entries
func (l *TestLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = l.entries[:0]
	l.buffer.Reset()
}

// String returns all captured entries as a readable string
func (l *TestLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.buffer.String()
}

// testScope is a TestLogger view with bound fields and an optional error.
// All writes land in the parent sink.
type testScope struct {
	sink   *TestLogger
	fields map[string]interface{}
	err    error
}

func (s *testScope) Debug(msg string) { s.sink.record("DEBUG", msg, s.fields, nil, s.err) }
func (s *testScope) Info(msg string)  { s.sink.record("INFO", msg, s.fields, nil, s.err) }
func (s *testScope) Warn(msg string)  { s.sink.record("WARN", msg, s.fields, nil, s.err) }
func (s *testScope) Error(msg string) { s.sink.record("ERROR", msg, s.fields, nil, s.err) }
func (s *testScope) Fatal(msg string) { s.sink.record("FATAL", msg, s.fields, nil, s.err) }

func (s *testScope) DebugWithFields(msg string, fields map[string]interface{}) {
	s.sink.record("DEBUG", msg, s.fields, fields, s.err)
}

func (s *testScope) InfoWithFields(msg string, fields map[string]interface{}) {
	s.sink.record("INFO", msg, s.fields, fields, s.err)
}

func (s *testScope) WarnWithFields(msg string, fields map[string]interface{}) {
	s.sink.record("WARN", msg, s.fields, fields, s.err)
}

func (s *testScope) ErrorWithFields(msg string, fields map[string]interface{}) {
	s.sink.record("ERROR", msg, s.fields, fields, s.err)
}

func (s *testScope) FatalWithFields(msg string, fields map[string]interface{}) {
	s.sink.record("FATAL", msg, s.fields, fields, s.err)
}

func (s *testScope) WithField(key string, value interface{}) Logger {
	fields := make(map[string]interface{}, len(s.fields)+1)
	for k, v := range s.fields {
		fields[k] = v
	}
	fields[key] = value
	return &testScope{sink: s.sink, fields: fields, err: s.err}
}

func (s *testScope) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(s.fields)+len(fields))
	for k, v := range s.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &testScope{sink: s.sink, fields: merged, err: s.err}
}

func (s *testScope) WithError(err error) Logger {
	return &testScope{sink: s.sink, fields: s.fields, err: err}
}

func (s *testScope) WithContext(ctx context.Context) Logger { return s }

func (s *testScope) GetZerolog() *zerolog.Logger { return s.sink.zerolog }
