package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagData       = flag.String("data", "", "Height data file or URL")
	flagLOD        = flag.Int("lod", -1, "Initial level of detail index")
	flagSingle     = flag.Bool("single", false, "Keep only the center tile")
	flagListen     = flag.String("listen", "", "Server listen address")
	flagPresence   = flag.String("presence", "", "Presence hub websocket URL")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagSaveConfig = flag.Bool("save-config", false, "Write the effective config to the user config directory and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveRequested reports whether -save-config was given.
func SaveRequested() bool {
	return *flagSaveConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagData != "" {
		cfg.Data.HeightPath = *flagData
	}
	if *flagLOD >= 0 {
		cfg.Terrain.DefaultLODIndex = *flagLOD
	}
	if *flagSingle {
		cfg.Terrain.SingleChunk = true
	}
	if *flagListen != "" {
		cfg.Server.Listen = *flagListen
	}
	if *flagPresence != "" {
		cfg.Server.PresenceURL = *flagPresence
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
}
