package app

import (
	"context"
	"sync"
)

type logEntry struct {
	level  string
	msg    string
	fields map[string]interface{}
}

// mockLogger implements ports.Logger and records messages for assertions.
type mockLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (m *mockLogger) add(level, msg string, fields []map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var f map[string]interface{}
	if len(fields) > 0 {
		f = fields[0]
	}
	m.entries = append(m.entries, logEntry{level: level, msg: msg, fields: f})
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.add("debug", msg, fields)
}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.add("info", msg, fields)
}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.add("warn", msg, fields)
}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.add("error", msg, fields)
}

func (m *mockLogger) count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.level == level {
			n++
		}
	}
	return n
}
