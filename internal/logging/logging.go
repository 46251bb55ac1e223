package logging

import (
	"context"
	"os"

	"github.com/ghaggin/openvpn-admin/internal/config"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the process logger. Development mode uses zap's console
// encoder; otherwise JSON. A configured log file receives a copy of every
// entry and is rotated by size.
func New(c config.Log) (*zap.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "log level %q", c.Level)
	}

	var encCfg zapcore.EncoderConfig
	var enc zapcore.Encoder
	if c.Development {
		encCfg = zap.NewDevelopmentEncoderConfig()
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level),
	}

	closeFile := func() error { return nil }
	if c.File != "" {
		lj := &lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    c.MaxSizeMB,
			MaxBackups: c.MaxBackups,
		}
		fileEnc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEnc, zapcore.AddSync(lj), level))
		closeFile = lj.Close
	}

	opts := []zap.Option{zap.AddCaller()}
	if c.Development {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.WarnLevel))
	} else {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return zap.New(zapcore.NewTee(cores...), opts...), closeFile, nil
}

type Params struct {
	fx.In

	LC     fx.Lifecycle
	Config *config.Config
}

// Provide is the fx constructor for *zap.Logger. The logger is synced and
// its file closed when the app stops.
func Provide(p Params) (*zap.Logger, error) {
	log, closeFile, err := New(p.Config.Log)
	if err != nil {
		return nil, err
	}

	p.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			// stderr sync returns EINVAL on some platforms
			_ = log.Sync()
			return closeFile()
		},
	})

	return log, nil
}
