package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"cc-live/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	writerMu sync.RWMutex
	writer   io.Writer = os.Stdout
	fileOut  *rotatingFile
)

// Init configures the global zerolog logger. When cfg.File is set, output is
// teed to a size-capped file next to stdout.
func Init(cfg config.LogConfig) {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var out io.Writer = os.Stdout
	if path := strings.TrimSpace(cfg.File); path != "" {
		f, err := newRotatingFile(path, cfg.MaxMB)
		if err == nil {
			setFile(f)
			out = io.MultiWriter(os.Stdout, f)
		} else {
			log.Warn().Err(err).Str("path", path).Msg("log file unavailable; logging to stdout only")
		}
	}
	setWriter(out)

	var console io.Writer = out
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{Out: out}
	}

	zerolog.SetGlobalLevel(level)
	ctx := zerolog.New(console).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	logger := ctx.Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// Writer returns the raw destination used by the global logger, for
// components that log through log/slog (HTTP request logs).
func Writer() io.Writer {
	writerMu.RLock()
	defer writerMu.RUnlock()
	return writer
}

// Close releases the log file opened by Init, if any.
func Close() error {
	writerMu.Lock()
	f := fileOut
	fileOut = nil
	writer = os.Stdout
	writerMu.Unlock()
	if f == nil {
		return nil
	}
	return f.Close()
}

func setWriter(w io.Writer) {
	writerMu.Lock()
	writer = w
	writerMu.Unlock()
}

func setFile(f *rotatingFile) {
	writerMu.Lock()
	prev := fileOut
	fileOut = f
	writerMu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
}
