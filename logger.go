package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var logLevelNames = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

// Logger provides structured JSON logging for the gateway.
type Logger struct {
	level  LogLevel
	output io.Writer
}

// LogEntry is one structured log line.
type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Caller    string                 `json:"caller,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

func NewLogger(level string, output io.Writer) *Logger {
	if output == nil {
		output = os.Stdout
	}
	return &Logger{level: parseLogLevel(level), output: output}
}

func parseLogLevel(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// WithFields starts a log entry with the given fields.
func (l *Logger) WithFields(fields map[string]interface{}) *LogEntryBuilder {
	return &LogEntryBuilder{logger: l, fields: fields}
}

// WithField starts a log entry with a single field.
func (l *Logger) WithField(key string, value interface{}) *LogEntryBuilder {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithError starts a log entry carrying an error.
func (l *Logger) WithError(err error) *LogEntryBuilder {
	return &LogEntryBuilder{logger: l, err: err}
}

func (l *Logger) Debug(message string) { l.log(LevelDebug, message, nil, nil) }
func (l *Logger) Info(message string)  { l.log(LevelInfo, message, nil, nil) }
func (l *Logger) Warn(message string)  { l.log(LevelWarn, message, nil, nil) }
func (l *Logger) Error(message string) { l.log(LevelError, message, nil, nil) }

func (l *Logger) Fatal(message string) {
	l.log(LevelFatal, message, nil, nil)
	os.Exit(1)
}

func (l *Logger) log(level LogLevel, message string, fields map[string]interface{}, err error) {
	if level < l.level {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     logLevelNames[level],
		Message:   message,
		Fields:    fields,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	// Caller information only for errors and above
	if level >= LevelError {
		if _, file, line, ok := runtime.Caller(3); ok {
			entry.Caller = fmt.Sprintf("%s:%d", file, line)
		}
	}

	jsonBytes, marshalErr := json.Marshal(entry)
	if marshalErr != nil {
		log.Printf("[%s] %s", entry.Level, entry.Message)
		return
	}
	fmt.Fprintln(l.output, string(jsonBytes))
}

// LogEntryBuilder accumulates fields before emitting an entry.
type LogEntryBuilder struct {
	logger *Logger
	fields map[string]interface{}
	err    error
}

func (b *LogEntryBuilder) WithField(key string, value interface{}) *LogEntryBuilder {
	if b.fields == nil {
		b.fields = make(map[string]interface{})
	}
	b.fields[key] = value
	return b
}

func (b *LogEntryBuilder) WithFields(fields map[string]interface{}) *LogEntryBuilder {
	if b.fields == nil {
		b.fields = make(map[string]interface{})
	}
	for k, v := range fields {
		b.fields[k] = v
	}
	return b
}

func (b *LogEntryBuilder) WithError(err error) *LogEntryBuilder {
	b.err = err
	return b
}

func (b *LogEntryBuilder) Debug(message string) { b.logger.log(LevelDebug, message, b.fields, b.err) }
func (b *LogEntryBuilder) Info(message string)  { b.logger.log(LevelInfo, message, b.fields, b.err) }
func (b *LogEntryBuilder) Warn(message string)  { b.logger.log(LevelWarn, message, b.fields, b.err) }
func (b *LogEntryBuilder) Error(message string) { b.logger.log(LevelError, message, b.fields, b.err) }

func (b *LogEntryBuilder) Fatal(message string) {
	b.logger.log(LevelFatal, message, b.fields, b.err)
	os.Exit(1)
}

// Global logger instance
var AppLogger *Logger

// InitializeLogger initializes the global logger. In production the log
// stream also goes to a file so the host's log shipper can pick it up.
func InitializeLogger(config *Config) {
	var output io.Writer = os.Stdout

	if config.Environment == "production" {
		if err := os.MkdirAll("logs", 0755); err == nil {
			if file, err := os.OpenFile("logs/gateway.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666); err == nil {
				output = io.MultiWriter(os.Stdout, file)
			}
		}
	}

	AppLogger = NewLogger(config.LogLevel, output)
}
