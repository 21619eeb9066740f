package utilities

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logMutex sync.RWMutex
	baseLog  = zap.NewNop()
	sugarLog = baseLog.Sugar()
)

// LogOptions configures SetupLogging.
type LogOptions struct {
	Dir        string // empty disables file output
	Level      string // debug | info | warn | error
	Mode       string // console | json
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	Quiet      bool // no console output
}

// SetupLogging installs the process logger. Everything at or above Level goes
// to the console and info.log; errors are also written to error.log.
func SetupLogging(opts LogOptions) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || opts.Level == "" {
		level = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	fileEnc := zapcore.NewJSONEncoder(encCfg)
	consoleEnc := zapcore.NewConsoleEncoder(encCfg)
	if strings.EqualFold(opts.Mode, "json") {
		consoleEnc = zapcore.NewJSONEncoder(encCfg)
	}

	atLeast := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= level })
	errorsOnly := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= zapcore.ErrorLevel && l >= level })

	var cores []zapcore.Core
	if !opts.Quiet {
		cores = append(cores, zapcore.NewCore(consoleEnc, zapcore.Lock(os.Stdout), atLeast))
	}
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		cores = append(cores,
			zapcore.NewCore(fileEnc, zapcore.AddSync(rotatingFile(opts, "info.log")), atLeast),
			zapcore.NewCore(fileEnc, zapcore.AddSync(rotatingFile(opts, "error.log")), errorsOnly),
		)
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	SetLogger(logger)
	return logger, nil
}

func rotatingFile(opts LogOptions, name string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, name),
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}
}

// SetLogger replaces the process logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logMutex.Lock()
	defer logMutex.Unlock()
	baseLog = l
	sugarLog = l.WithOptions(zap.AddCallerSkip(1)).Sugar()
}

// L returns the structured process logger.
func L() *zap.Logger {
	logMutex.RLock()
	defer logMutex.RUnlock()
	return baseLog
}

// SyncLogs flushes buffered entries.
func SyncLogs() {
	_ = L().Sync()
}

func sugar() *zap.SugaredLogger {
	logMutex.RLock()
	defer logMutex.RUnlock()
	return sugarLog
}

func Debug(format string, v ...interface{}) {
	sugar().Debugf(format, v...)
}

func Info(format string, v ...interface{}) {
	sugar().Infof(format, v...)
}

func Warn(format string, v ...interface{}) {
	sugar().Warnf(format, v...)
}

func Error(format string, v ...interface{}) {
	sugar().Errorf(format, v...)
}
