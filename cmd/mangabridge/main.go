// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the mangabridge CLI, which converts
// Suwatte backups into Aidoku backups.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/mangabridge/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the mangabridge CLI.
var rootCmd = &cobra.Command{
	Use:   "mangabridge",
	Short: "Convert Suwatte backups to Aidoku backups",
	Long: `mangabridge converts a Suwatte backup (JSON) into an Aidoku backup
(binary property list, .aib) so a reading library can move between the two
iOS readers.

Use convert for files on disk, serve for an HTTP upload endpoint, inspect to
look inside an .aib, and runs to query the local ledger of past conversions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Setup(viper.GetString("log.level"), viper.GetString("log.format"), os.Stderr)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./mangabridge.yaml or ~/.config/mangabridge/mangabridge.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "operational log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "operational log format: text or json")

	mustBind("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	mustBind("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: reading .env:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("mangabridge")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "mangabridge"))
		}
	}

	setDefaults(viper.GetViper())
	viper.SetEnvPrefix("MANGABRIDGE")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "path", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintln(os.Stderr, "warning: reading config:", err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
