package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/ghaggin/openvpn-admin/internal/admin"
	"github.com/ghaggin/openvpn-admin/internal/config"
	"github.com/ghaggin/openvpn-admin/internal/logging"
	"github.com/ghaggin/openvpn-admin/internal/middleware"
	"github.com/ghaggin/openvpn-admin/internal/repository"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	var configPath = flag.String("config", "", "path to YAML config file")
	var envFile = flag.String("env-file", ".env", "dotenv file loaded before reading the environment")
	flag.Parse()

	// variables already set in the environment win over the file
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "loading %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	app := fx.New(
		options(config.Path(*configPath)),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)

	app.Run()
}

func options(path config.Path) fx.Option {
	return fx.Options(
		fx.Supply(path),
		fx.Provide(
			config.New,
			logging.Provide,
			repository.New,
			middleware.NewSessionManager,
		),
		admin.Module,
		fx.Invoke(admin.RegisterHooks),
	)
}
