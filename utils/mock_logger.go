package utils

import (
	"fmt"
	"sync"
)

// MockLogger records messages in memory for test assertions.
type MockLogger struct {
	mu       sync.Mutex
	messages []LogMessage
	level    LogLevel
}

// LogMessage is one recorded log call.
type LogMessage struct {
	Level   string
	Message string
	Args    []any
}

// NewMockLogger returns a MockLogger recording at debug level.
func NewMockLogger() *MockLogger {
	return &MockLogger{level: LogLevelDebug}
}

func (m *MockLogger) record(threshold LogLevel, label, msg string, args []any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.level >= threshold {
		m.messages = append(m.messages, LogMessage{Level: label, Message: msg, Args: args})
	}
}

func (m *MockLogger) Debug(msg string, args ...any) {
	m.record(LogLevelDebug, "DEBUG", msg, args)
}

func (m *MockLogger) Info(msg string, args ...any) {
	m.record(LogLevelInfo, "INFO", msg, args)
}

func (m *MockLogger) Warn(msg string, args ...any) {
	m.record(LogLevelWarn, "WARN", msg, args)
}

func (m *MockLogger) Error(msg string, args ...any) {
	m.record(LogLevelError, "ERROR", msg, args)
}

func (m *MockLogger) SetLevel(level LogLevel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = level
}

// GetMessages returns a copy of everything recorded so far.
func (m *MockLogger) GetMessages() []LogMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LogMessage{}, m.messages...)
}

// Clear discards all recorded messages.
func (m *MockLogger) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}

// HasMessage reports whether a message with the given text was logged.
func (m *MockLogger) HasMessage(text string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages {
		if msg.Message == text {
			return true
		}
	}
	return false
}

func (m *MockLogger) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out string
	for _, msg := range m.messages {
		out += fmt.Sprintf("[%s] %s %v\n", msg.Level, msg.Message, msg.Args)
	}
	return out
}
