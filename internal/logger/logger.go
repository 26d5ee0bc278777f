package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
)

const fileName = "blink.log"

var (
	mu         sync.Mutex
	global     *log.Logger
	globalFile *os.File
)

// Init sends process logs to dir/blink.log. The terminal belongs to the UI,
// so with an empty dir or an unwritable file logs are discarded.
func Init(dir string, verbose bool) {
	mu.Lock()
	defer mu.Unlock()

	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}

	var out io.Writer = io.Discard
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err == nil {
			f, err := os.OpenFile(filepath.Join(dir, fileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err == nil {
				if globalFile != nil {
					globalFile.Close()
				}
				globalFile = f
				out = f
			}
		}
	}
	global = log.NewWithOptions(out, log.Options{Level: level, ReportTimestamp: true, Prefix: "blink"})
}

// Close flushes and closes the log file.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	global = nil
	if globalFile == nil {
		return nil
	}
	err := globalFile.Close()
	globalFile = nil
	return err
}

func g() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		return log.Default()
	}
	return global
}

// DebugEnabled reports whether debug records are written. Use it to skip
// costly debug-only work.
func DebugEnabled() bool { return g().GetLevel() <= log.DebugLevel }

func Debug(msg string, keyvals ...any) { g().Debug(msg, keyvals...) }
func Info(msg string, keyvals ...any)  { g().Info(msg, keyvals...) }
func Warn(msg string, keyvals ...any)  { g().Warn(msg, keyvals...) }
func Error(msg string, keyvals ...any) { g().Error(msg, keyvals...) }

// Logger is the logging surface handed to backend providers.
type Logger interface {
	WriteJSON(filename string, data []byte) error
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// FileLogger logs through the process logger and keeps request dumps under
// dir when dumps are enabled.
type FileLogger struct {
	dir   string
	dumps bool
	once  sync.Once
}

func NewFileLogger(dir string, dumps bool) *FileLogger {
	return &FileLogger{dir: dir, dumps: dumps}
}

func (l *FileLogger) WriteJSON(filename string, data []byte) error {
	if !l.dumps || l.dir == "" {
		return nil
	}
	var err error
	l.once.Do(func() {
		err = os.MkdirAll(l.dir, 0755)
	})
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(l.dir, filename), data, 0644)
}

func (l *FileLogger) Debug(msg string, keyvals ...any) { Debug(msg, keyvals...) }
func (l *FileLogger) Info(msg string, keyvals ...any)  { Info(msg, keyvals...) }
func (l *FileLogger) Warn(msg string, keyvals ...any)  { Warn(msg, keyvals...) }
func (l *FileLogger) Error(msg string, keyvals ...any) { Error(msg, keyvals...) }

// DumpDir is where request dumps for a session are written.
func DumpDir(home, sessionID string) string {
	return filepath.Join(home, "dumps", sessionID)
}

type nopLogger struct{}

func Nop() Logger                                { return nopLogger{} }
func (nopLogger) WriteJSON(string, []byte) error { return nil }
func (nopLogger) Debug(string, ...any)           {}
func (nopLogger) Info(string, ...any)            {}
func (nopLogger) Warn(string, ...any)            {}
func (nopLogger) Error(string, ...any)           {}
