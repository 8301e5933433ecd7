// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/mangabridge/internal/ledger"
	"github.com/pdiddy/mangabridge/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the conversion pipeline over HTTP",
	Long: `Serve starts an HTTP endpoint that accepts a Suwatte backup and answers
with the converted .aib file.

  GET  /healthz              liveness probe
  POST /api/convert          multipart field "backup" or raw JSON body
  POST /api/convert/report   same input, answers with the conversion log

The server stops gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if mb, _ := cmd.Flags().GetInt64("max-upload-mb"); cmd.Flags().Changed("max-upload-mb") {
		viper.Set("serve.max_upload_bytes", mb<<20)
	}
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	if viper.GetString("log.level") != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	var opts []server.Option
	if cfg.Ledger.Enabled {
		store, err := ledger.NewStore(cfg.Ledger)
		if err != nil {
			slog.Warn("ledger unavailable, runs will not be recorded", "error", err)
		} else {
			defer store.Close()
			opts = append(opts, server.WithRecorder(store))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg.Serve, version, opts...).Run(ctx)
}

func init() {
	serveCmd.Flags().String("addr", ":8190", "listen address")
	serveCmd.Flags().Int64("max-upload-mb", 64, "maximum accepted upload size in MiB")
	serveCmd.Flags().Bool("native-dates", false, "write timestamps as plist dates instead of epoch milliseconds")

	mustBind("serve.addr", serveCmd.Flags().Lookup("addr"))
	mustBind("serve.native_dates", serveCmd.Flags().Lookup("native-dates"))

	rootCmd.AddCommand(serveCmd)
}
