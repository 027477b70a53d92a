// Package logger owns the process-wide structured logger. Lines go to a
// rotating file under the config directory and, for the server or in debug
// mode, to stderr as well.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	fileName      = "daylog.log"
	maxSizeMB     = 10
	maxBackups    = 3
	maxAgeDays    = 28
	compressAfter = true
)

// Logger is nil until Init succeeds; every helper is a no-op until then.
var Logger *log.Logger

var rotator *lumberjack.Logger

type Config struct {
	Debug     bool
	ConfigDir string
	// Stderr mirrors lines to stderr at the configured level.
	Stderr bool
}

// Dir is where the log files for configDir live.
func Dir(configDir string) string {
	return filepath.Join(configDir, "logs")
}

func Init(cfg Config) error {
	dir := Dir(cfg.ConfigDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	Close()

	rotator = &lumberjack.Logger{
		Filename:   filepath.Join(dir, fileName),
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   compressAfter,
	}
	var out io.Writer = rotator
	if cfg.Debug || cfg.Stderr {
		out = io.MultiWriter(os.Stderr, rotator)
	}

	opts := log.Options{
		Prefix:          "daylog",
		ReportTimestamp: true,
		Level:           log.InfoLevel,
	}
	if cfg.Debug {
		opts.Level = log.DebugLevel
		opts.ReportCaller = true
		opts.CallerOffset = 2
	}
	Logger = log.NewWithOptions(out, opts)
	return nil
}

// Close releases the log file. Logging stops until the next Init.
func Close() {
	if rotator != nil {
		_ = rotator.Close()
		rotator = nil
	}
	Logger = nil
}

func emit(level log.Level, msg string, keyvals []interface{}) {
	if Logger == nil {
		return
	}
	Logger.Log(level, msg, keyvals...)
}

func Debug(msg string, keyvals ...interface{}) { emit(log.DebugLevel, msg, keyvals) }

func Info(msg string, keyvals ...interface{}) { emit(log.InfoLevel, msg, keyvals) }

func Warn(msg string, keyvals ...interface{}) { emit(log.WarnLevel, msg, keyvals) }

func Error(msg string, keyvals ...interface{}) { emit(log.ErrorLevel, msg, keyvals) }
