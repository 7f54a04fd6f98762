package logger

import (
	"io"
	"log"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	Info    *log.Logger
	Warn    *log.Logger
	Debug   *log.Logger
	Verbose *log.Logger
	Error   *log.Logger
	Always  *log.Logger // Always logs regardless of log level

	// Current log level for filtering
	currentLogLevel string

	mu      sync.Mutex
	logFile io.WriteCloser
)

// Config controls the level filter and the rotating log file. An empty File
// logs to stderr only.
type Config struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func init() {
	setup("info", os.Stderr, os.Stderr)
}

// InitWithLevel logs to stderr at the given level.
func InitWithLevel(logLevel string) {
	mu.Lock()
	defer mu.Unlock()
	closeFile()
	setup(logLevel, os.Stderr, os.Stderr)
}

func InitWithConfig(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()
	closeFile()

	if cfg.File == "" {
		setup(cfg.Level, os.Stderr, os.Stderr)
		return nil
	}

	// Probe the path so a bad location fails at startup, not on first write
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		setup(cfg.Level, os.Stderr, os.Stderr)
		return err
	}
	f.Close()

	rotating := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	logFile = rotating
	setup(cfg.Level, rotating, io.MultiWriter(os.Stderr, rotating))
	return nil
}

// Close flushes and releases the log file, falling back to stderr.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	err := closeFile()
	setup(currentLogLevel, os.Stderr, os.Stderr)
	return err
}

// Level reports the active level name.
func Level() string {
	mu.Lock()
	defer mu.Unlock()
	return currentLogLevel
}

func closeFile() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

func setup(logLevel string, out, errOut io.Writer) {
	currentLogLevel = logLevel

	nullWriter := io.Discard

	Info = log.New(getWriter("info", out, nullWriter), "ℹ️  INFO: ", log.Ldate|log.Ltime)
	Warn = log.New(getWriter("warn", out, nullWriter), "⚠️  WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	Debug = log.New(getWriter("debug", out, nullWriter), "🐛 DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile)
	Verbose = log.New(getWriter("verbose", out, nullWriter), "🔍 VERBOSE: ", log.Ldate|log.Ltime|log.Lshortfile)
	Error = log.New(errOut, "❌ ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	Always = log.New(out, "📝 ALWAYS: ", log.Ldate|log.Ltime)
}

// getWriter returns the appropriate writer based on log level
func getWriter(level string, activeWriter, disabledWriter io.Writer) io.Writer {
	if shouldLog(level) {
		return activeWriter
	}
	return disabledWriter
}

var levels = map[string]int{
	"error":   0,
	"warn":    1,
	"info":    2,
	"debug":   3,
	"verbose": 4,
}

// shouldLog determines if a log level should be active
func shouldLog(level string) bool {
	currentLevel, exists := levels[currentLogLevel]
	if !exists {
		currentLevel = 2 // default to info
	}

	requiredLevel, exists := levels[level]
	if !exists {
		return false
	}

	return currentLevel >= requiredLevel
}

// ValidLevel reports whether name is a known level.
func ValidLevel(name string) bool {
	_, ok := levels[name]
	return ok
}
