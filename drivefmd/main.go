// Command drivefmd serves the file manager API over a Google Drive folder.
//
// Configuration comes from the YAML file named by DRIVEFM_CONFIG and DRIVEFM_* environment variables; see package
// config. Every API request carries the user's own Drive access token as a bearer credential.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/c2fo/drivefm"
	"github.com/c2fo/drivefm/config"
	"github.com/c2fo/drivefm/gdrive"
	"github.com/c2fo/drivefm/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "drivefmd: %v\n", err)
		os.Exit(1)
	}

	logger := config.SetupLogger(cfg, os.Stdout)
	logger.Info("starting drivefmd",
		slog.String("version", config.Version),
		slog.String("addr", cfg.Addr),
		slog.Bool("folder_scoped", cfg.FolderID != ""),
	)

	if err := server.New(cfg, logger, gatewayFactory(cfg, logger)).Run(context.Background()); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func gatewayFactory(cfg *config.Config, logger *slog.Logger) server.GatewayFactory {
	opts := cfg.GatewayOptions()
	return func(token string) (drivefm.Gateway, error) {
		gw, err := gdrive.NewGateway(token, gdrive.WithOptions(opts), gdrive.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return gw, nil
	}
}
