package engine

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/lume/engine/core"
	"github.com/spaghettifunk/lume/engine/graphics"
)

// ApplicationConfig describes everything the engine needs before the
// window exists. It can be built in code or loaded from a TOML file.
type ApplicationConfig struct {
	// The application name used in windowing, if applicable.
	Name string `toml:"name"`

	// Window starting size in pixels.
	WindowWidth  uint32 `toml:"window_width"`
	WindowHeight uint32 `toml:"window_height"`

	// Logical resolution all drawing targets. The window scales it
	// uniformly, adding letterbox bands when aspect ratios differ.
	LogicalWidth  int32 `toml:"logical_width"`
	LogicalHeight int32 `toml:"logical_height"`

	// Simulation step in seconds and the catch-up bound per frame.
	FixedTimestep        float64 `toml:"fixed_timestep"`
	MaxUpdatesPerAdvance int     `toml:"max_updates_per_advance"`

	VSync         bool   `toml:"vsync"`
	BatchCapacity int    `toml:"batch_capacity"`
	AssetsDir     string `toml:"assets_dir"`

	// Debug makes engine-misuse errors fatal instead of logged.
	Debug    bool          `toml:"debug"`
	LogLevel core.LogLevel `toml:"log_level"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:                 "Lume",
		WindowWidth:          1280,
		WindowHeight:         720,
		LogicalWidth:         1280,
		LogicalHeight:        720,
		FixedTimestep:        DefaultFixedTimestep,
		MaxUpdatesPerAdvance: DefaultMaxUpdatesPerAdvance,
		VSync:                true,
		BatchCapacity:        graphics.DefaultBatchCapacity,
		AssetsDir:            "assets",
		LogLevel:             core.InfoLevel,
	}
}

// LoadApplicationConfig reads a TOML config file over the defaults.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.ConfigErrorf("read config %s: %v", path, err)
	}

	cfg := DefaultApplicationConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, core.ConfigErrorf("parse config %s: %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot start with.
func (c *ApplicationConfig) Validate() error {
	if c.Name == "" {
		return core.ConfigErrorf("application name must not be empty")
	}
	if c.WindowWidth == 0 || c.WindowHeight == 0 {
		return core.ConfigErrorf("window size must be positive, got %dx%d", c.WindowWidth, c.WindowHeight)
	}
	if c.LogicalWidth <= 0 || c.LogicalHeight <= 0 {
		return core.ConfigErrorf("logical resolution must be positive, got %dx%d", c.LogicalWidth, c.LogicalHeight)
	}
	if c.FixedTimestep <= 0 {
		return core.ConfigErrorf("fixed timestep must be positive, got %f", c.FixedTimestep)
	}
	if c.MaxUpdatesPerAdvance < 1 {
		return core.ConfigErrorf("max updates per advance must be at least 1, got %d", c.MaxUpdatesPerAdvance)
	}
	if c.BatchCapacity < 1 || c.BatchCapacity > graphics.MaxBatchQuads {
		return core.ConfigErrorf("batch capacity must be in [1, %d], got %d", graphics.MaxBatchQuads, c.BatchCapacity)
	}
	return nil
}
