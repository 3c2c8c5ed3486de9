package main

import (
	"time"

	"remindd/internal/channel/intents"
	"remindd/internal/channel/local"
	"remindd/internal/config"
	"remindd/internal/dispatch"
	"remindd/internal/engine"
	"remindd/pkg/logx"
)

// Config-to-component conversions live here so internal/config stays a
// pure data package and never imports the components it describes.

func logxConfig(c *config.Config) logx.Config {
	return logx.Config{
		Level:   c.Log.Level,
		Console: c.Log.Console,
		File: logx.FileConfig{
			Enabled: c.Log.File.Enabled,
			Path:    c.Log.File.Path,
		},
	}
}

func localConfig(c *config.Config) local.Config {
	return local.Config{Grant: c.Local.Grant}
}

func intentsConfig(c *config.Config) intents.Config {
	return intents.Config{
		Driver:      c.Intents.Driver,
		Path:        c.Intents.Path,
		BusyTimeout: time.Duration(c.Intents.BusyTimeout),
	}
}

func engineConfig(c *config.Config) engine.Config {
	return engine.Config{
		InitTimeout:     time.Duration(c.Engine.InitTimeout),
		RefreshAt:       c.Engine.RefreshAt,
		IntentRetention: time.Duration(c.Engine.IntentRetention),
		Dispatch: dispatch.Config{
			CloudRatePerSec: c.Engine.CloudRatePerSec,
			EntryTimeout:    time.Duration(c.Engine.EntryTimeout),
		},
	}
}
