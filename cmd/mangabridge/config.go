// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/mangabridge/internal/ledger"
	"github.com/pdiddy/mangabridge/pkg/types"
)

// envKeyReplacer maps nested keys like serve.max_upload_bytes to
// MANGABRIDGE_SERVE_MAX_UPLOAD_BYTES.
var envKeyReplacer = strings.NewReplacer(".", "_")

func setDefaults(v *viper.Viper) {
	v.SetDefault("convert.out_dir", ".")
	v.SetDefault("convert.force", false)
	v.SetDefault("convert.report", false)
	v.SetDefault("convert.native_dates", false)

	v.SetDefault("serve.addr", ":8190")
	v.SetDefault("serve.max_upload_bytes", 64<<20)
	v.SetDefault("serve.shutdown_timeout", 5*time.Second)
	v.SetDefault("serve.native_dates", false)

	v.SetDefault("ledger.enabled", true)
	v.SetDefault("ledger.path", ledger.DefaultPath())
	v.SetDefault("ledger.max_results", 20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// loadConfig decodes the merged flag, environment, and file settings.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func mustBind(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", flag.Name, err))
	}
}
