// pkg/logger/logger.go

package logger

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/phuslu/log"
)

// Уровни логирования
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
	LevelFatal = "FATAL"
)

// Параметры ротации файла логов
const (
	defaultMaxSize    = 50 * 1024 * 1024
	defaultMaxBackups = 7
)

// Logger обёртка над phuslu/log с printf-интерфейсом
type Logger struct {
	base      log.Logger
	file      *log.FileWriter
	logLevel  string
	debugMode bool
}

// NewLogger создает логгер: консоль + файл (если logPath не пуст)
func NewLogger(logPath string, logLevel string, debug bool) (*Logger, error) {
	level := strings.ToUpper(strings.TrimSpace(logLevel))
	if level == "" {
		level = LevelInfo
	}

	console := &log.ConsoleWriter{
		Writer:         os.Stdout,
		ColorOutput:    debug,
		EndWithMessage: true,
	}

	l := &Logger{
		logLevel:  level,
		debugMode: debug,
	}

	var writer log.Writer = console
	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
			return nil, err
		}
		l.file = &log.FileWriter{
			Filename:     logPath,
			MaxSize:      defaultMaxSize,
			MaxBackups:   defaultMaxBackups,
			EnsureFolder: true,
			LocalTime:    true,
		}
		writer = &log.MultiEntryWriter{console, l.file}
	}

	l.base = log.Logger{
		Level:      log.ParseLevel(strings.ToLower(level)),
		TimeFormat: "2006-01-02 15:04:05",
		Writer:     writer,
	}
	return l, nil
}

// newConsoleLogger используется до InitGlobal
func newConsoleLogger() *Logger {
	l, _ := NewLogger("", LevelInfo, false)
	return l
}

// Level возвращает текущий уровень
func (l *Logger) Level() string {
	return l.logLevel
}

func (l *Logger) Debug(format string, v ...interface{}) {
	l.base.Debug().Msgf(format, v...)
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.base.Info().Msgf(format, v...)
}

func (l *Logger) Warn(format string, v ...interface{}) {
	l.base.Warn().Msgf(format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.base.Error().Msgf(format, v...)
}

func (l *Logger) Fatal(format string, v ...interface{}) {
	l.base.Fatal().Msgf(format, v...)
}

// Status печатает сводку key/value одной записью
func (l *Logger) Status(title string, stats map[string]string) {
	e := l.base.Info()
	for key, value := range stats {
		e = e.Str(key, value)
	}
	e.Msg(title)
}

func (l *Logger) Close() {
	if l.file != nil {
		l.file.Close()
	}
}
