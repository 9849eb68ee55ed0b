// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/refmark/pkg/types"
)

// envKeyReplacer maps nested keys to environment names:
// style.numeric is read from REFMARK_STYLE_NUMERIC.
var envKeyReplacer = strings.NewReplacer(".", "_")

const defaultLedgerDir = ".refmark"

func setDefaults() {
	d := types.DefaultCitationConfig()
	viper.SetDefault("style.numeric", d.Style.Numeric)
	viper.SetDefault("style.open", d.Style.Open)
	viper.SetDefault("style.close", d.Style.Close)
	viper.SetDefault("style.separator", d.Style.Separator)
	viper.SetDefault("spacing.before", d.Spacing.Before)
	viper.SetDefault("spacing.after", d.Spacing.After)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
	viper.SetDefault("ledger.dir", defaultLedgerDir)
}

// loadConfig assembles the configuration from viper.
func loadConfig() types.Config {
	return types.Config{
		CitationConfig: types.CitationConfig{
			Style: types.StyleConfig{
				Numeric:   viper.GetBool("style.numeric"),
				Open:      viper.GetString("style.open"),
				Close:     viper.GetString("style.close"),
				Separator: viper.GetString("style.separator"),
			},
			Spacing: types.SpacingConfig{
				Before: viper.GetBool("spacing.before"),
				After:  viper.GetBool("spacing.after"),
			},
		},
		Log: types.LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		},
		Ledger: types.LedgerConfig{
			Dir: viper.GetString("ledger.dir"),
		},
	}
}
