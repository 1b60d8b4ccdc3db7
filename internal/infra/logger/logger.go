package logger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pnordq/pnfem/internal/domain"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects where the log goes. Rotation follows domain.LoggingConfig;
// zero values fall back to domain.DefaultConfig().Logging.
type Config struct {
	Root     string
	Debug    bool
	Stderr   bool
	Rotation domain.LoggingConfig
}

var (
	mu       sync.RWMutex
	global   = discard()
	sink     *lumberjack.Logger
	logPath  string
	initedAt time.Time
)

func discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// Dir is the log directory inside a workspace.
func Dir(root string) string {
	return filepath.Join(root, ".pnfem", "logs")
}

func Setup(cfg Config) (func() error, error) {
	root := filepath.Clean(cfg.Root)
	if root == "" {
		root = "."
	}

	dir := Dir(root)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		setDiscard()
		return nil, err
	}

	rot := cfg.Rotation
	def := domain.DefaultConfig().Logging
	if rot.MaxSizeMB <= 0 {
		rot.MaxSizeMB = def.MaxSizeMB
	}
	if rot.MaxBackups <= 0 {
		rot.MaxBackups = def.MaxBackups
	}
	if rot.MaxAgeDays <= 0 {
		rot.MaxAgeDays = def.MaxAgeDays
	}

	path := filepath.Join(dir, "pnfem.log")
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rot.MaxSizeMB,
		MaxBackups: rot.MaxBackups,
		MaxAge:     rot.MaxAgeDays,
		Compress:   rot.Compress,
	}

	level := slog.LevelInfo
	addSource := false
	if cfg.Debug {
		level = slog.LevelDebug
		addSource = true
	}

	var w io.Writer = lj
	if cfg.Stderr {
		w = io.MultiWriter(lj, os.Stderr)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				t := a.Value.Time().UTC()
				a.Value = slog.StringValue(t.Format(time.RFC3339Nano))
			}
			return a
		},
	})

	l := slog.New(h)

	mu.Lock()
	global = l
	sink = lj
	logPath = path
	initedAt = time.Now().UTC()
	mu.Unlock()

	l.Info("logger.initialized", "path", path, "debug", cfg.Debug, "max_size_mb", rot.MaxSizeMB)

	cleanup := func() error {
		mu.Lock()
		defer mu.Unlock()

		var cerr error
		if sink != nil {
			cerr = sink.Close()
		}
		sink = nil
		logPath = ""
		initedAt = time.Time{}
		global = discard()
		return cerr
	}

	return cleanup, nil
}

func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

func Path() string {
	mu.RLock()
	defer mu.RUnlock()
	return logPath
}

func InitTime() time.Time {
	mu.RLock()
	defer mu.RUnlock()
	return initedAt
}

func setDiscard() {
	mu.Lock()
	defer mu.Unlock()
	global = discard()
	sink = nil
	logPath = ""
	initedAt = time.Time{}
}

func IsReady() error {
	mu.RLock()
	defer mu.RUnlock()
	if sink == nil || logPath == "" {
		return errors.New("logger not initialized")
	}
	return nil
}
