package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sqlbridge/sqltool-mcp/internal/config"
)

type Config struct {
	Level      slog.Level
	OutputFile string
	MaxSize    int64 // bytes
	Console    bool
}

func ParseLevel(level string) slog.Level {
	switch level {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "warn", "WARNING", "warning":
		return slog.LevelWarn
	case "ERROR", "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func FromLoggingConfig(logCfg config.LoggingConfig) Config {
	return Config{
		Level:      ParseLevel(logCfg.Level),
		OutputFile: logCfg.OutputFile,
		MaxSize:    logCfg.MaxSizeMB * 1024 * 1024,
		Console:    logCfg.Console,
	}
}

type Logger struct {
	slogger *slog.Logger
	logFile *os.File
}

var globalLogger *Logger

func Initialize(cfg Config) error {
	logger, err := NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	globalLogger = logger
	return nil
}

func NewLogger(cfg Config) (*Logger, error) {
	logger := &Logger{}

	var writers []io.Writer

	if cfg.Console {
		// stdout carries the stdio MCP transport; console logs go to stderr.
		writers = append(writers, os.Stderr)
	}

	if cfg.OutputFile != "" {
		dir := filepath.Dir(cfg.OutputFile)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}

		if err := rotateLogIfNeeded(cfg.OutputFile, cfg.MaxSize); err != nil {
			return nil, fmt.Errorf("failed to rotate log: %w", err)
		}

		file, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger.logFile = file
		writers = append(writers, file)
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = io.Discard
	case 1:
		writer = writers[0]
	default:
		writer = io.MultiWriter(writers...)
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: cfg.Level})
	logger.slogger = slog.New(handler)

	return logger, nil
}

func rotateLogIfNeeded(filename string, maxSize int64) error {
	if maxSize <= 0 {
		return nil
	}

	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if info.Size() >= maxSize {
		timestamp := time.Now().Format("20060102-150405")
		backupName := fmt.Sprintf("%s.%s", filename, timestamp)
		if err := os.Rename(filename, backupName); err != nil {
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	}

	return nil
}

func (l *Logger) Close() error {
	if l.logFile != nil {
		return l.logFile.Close()
	}
	return nil
}

func Debug(msg string, args ...any) {
	if globalLogger != nil {
		globalLogger.slogger.Debug(msg, args...)
	}
}

func Info(msg string, args ...any) {
	if globalLogger != nil {
		globalLogger.slogger.Info(msg, args...)
	}
}

func Warn(msg string, args ...any) {
	if globalLogger != nil {
		globalLogger.slogger.Warn(msg, args...)
	}
}

func Error(msg string, err error, args ...any) {
	if globalLogger != nil {
		if err != nil {
			args = append(args, "error", err.Error())
		}
		globalLogger.slogger.Error(msg, args...)
	}
}

// LogToolCall records one tool invocation with its request ID and duration.
func LogToolCall(toolName, callID string, elapsed time.Duration, err error) {
	if err != nil {
		Error("tool call failed", err, "tool", toolName, "call_id", callID, "elapsed", elapsed)
	} else {
		Info("tool call completed", "tool", toolName, "call_id", callID, "elapsed", elapsed)
	}
}

// LogDatabaseOperation records a statement execution. The query text is cut
// at 100 characters to keep log lines readable.
func LogDatabaseOperation(operation, query string, rows int64, err error) {
	if len(query) > 100 {
		query = query[:100] + "..."
	}

	if err != nil {
		Error("database operation failed", err, "op", operation, "query", query)
	} else {
		Info("database operation completed", "op", operation, "query", query, "rows", rows)
	}
}

func Shutdown() error {
	if globalLogger != nil {
		return globalLogger.Close()
	}
	return nil
}
