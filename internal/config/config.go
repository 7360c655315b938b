// Package config handles viewer and server configuration loading and management.
package config

import "time"

// Config holds all settings.
type Config struct {
	Terrain  TerrainConfig  `yaml:"terrain"`
	Data     DataConfig     `yaml:"data"`
	Graphics GraphicsConfig `yaml:"graphics"`
	Camera   CameraConfig   `yaml:"camera"`
	Input    InputConfig    `yaml:"input"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// TerrainConfig holds the tile neighborhood settings.
type TerrainConfig struct {
	TileResolutions   []int         `yaml:"tile_resolutions"` // samples per tile edge per LOD, ascending
	DefaultLODIndex   int           `yaml:"default_lod_index"`
	DefaultAnchor     Point         `yaml:"default_anchor"`
	PlaneScale        float32       `yaml:"plane_scale"`
	HeightScale       float32       `yaml:"height_scale"`
	SingleChunk       bool          `yaml:"single_chunk"`
	Opacity           OpacityConfig `yaml:"opacity"`
	AnimationDuration time.Duration `yaml:"animation_duration"`
	Easing            string        `yaml:"easing"`
	AwayDepth         float32       `yaml:"away_depth"`
}

// Point is an (x, y) position in height-field coordinates.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// OpacityConfig holds tile opacities.
type OpacityConfig struct {
	Center float32 `yaml:"center"`
	Other  float32 `yaml:"other"`
}

// DataConfig holds the height data source.
type DataConfig struct {
	HeightPath   string        `yaml:"height_path"` // file path or http(s) URL
	FetchRetries int           `yaml:"fetch_retries"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	FetchBackoff time.Duration `yaml:"fetch_backoff"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width       int  `yaml:"width"`
	Height      int  `yaml:"height"`
	Fullscreen  bool `yaml:"fullscreen"`
	VSync       bool `yaml:"vsync"`
	FPSLimit    int  `yaml:"fps_limit"`
	MSAASamples int  `yaml:"msaa_samples"` // 0 disables multisampling
}

// CameraConfig holds the camera placement.
type CameraConfig struct {
	Position Vec3    `yaml:"position"`
	FOV      float32 `yaml:"fov"`
}

// Vec3 is a render-space position.
type Vec3 struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

// InputConfig holds key bindings and the command cooldown.
type InputConfig struct {
	Cooldown time.Duration     `yaml:"cooldown"`
	Bindings map[string]string `yaml:"bindings"` // key name -> action
}

// ServerConfig holds the data server and presence settings.
type ServerConfig struct {
	Listen      string `yaml:"listen"`
	DataDir     string `yaml:"data_dir"`
	PresenceURL string `yaml:"presence_url"` // empty disables location reporting
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	Format  string `yaml:"format"` // console or json
}

// DefaultBindings maps keys to viewer actions.
func DefaultBindings() map[string]string {
	return map[string]string{
		"up":    "pan_up",
		"w":     "pan_up",
		"down":  "pan_down",
		"s":     "pan_down",
		"left":  "pan_left",
		"a":     "pan_left",
		"right": "pan_right",
		"d":     "pan_right",
		"z":     "zoom_in",
		"x":     "zoom_out",
		"r":     "reset",
	}
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			TileResolutions:   []int{10, 20, 50, 100, 200, 500, 750, 1000, 1500, 2000},
			DefaultLODIndex:   4,
			DefaultAnchor:     Point{X: 200, Y: 200},
			PlaneScale:        10,
			HeightScale:       20,
			SingleChunk:       false,
			Opacity:           OpacityConfig{Center: 1.0, Other: 0.3},
			AnimationDuration: time.Second,
			Easing:            "power4.out",
			AwayDepth:         10,
		},
		Data: DataConfig{
			HeightPath:   "public/data/height_cache_WASS316L.bin",
			FetchRetries: 3,
			FetchTimeout: 30 * time.Second,
			FetchBackoff: 500 * time.Millisecond,
		},
		Graphics: GraphicsConfig{
			Width:       1280,
			Height:      720,
			Fullscreen:  false,
			VSync:       true,
			FPSLimit:    0,
			MSAASamples: 4,
		},
		Camera: CameraConfig{
			Position: Vec3{X: -5, Y: 5, Z: 0},
			FOV:      75,
		},
		Input: InputConfig{
			Cooldown: 300 * time.Millisecond,
			Bindings: DefaultBindings(),
		},
		Server: ServerConfig{
			Listen:  ":3000",
			DataDir: "public",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
			Format:  "console",
		},
	}
}
