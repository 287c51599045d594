package emu

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"

	"ticsynth/emu/log"
	"ticsynth/hw"
	"ticsynth/hw/hwdefs"
)

type Config struct {
	Audio   AudioConfig   `toml:"audio"`
	Engine  EngineConfig  `toml:"engine"`
	Monitor MonitorConfig `toml:"monitor"`
}

type AudioConfig struct {
	Backend      string `toml:"backend"` // oto, sdl or null
	SampleRate   int    `toml:"sample_rate"`
	DisableAudio bool   `toml:"disable_audio"`
}

type EngineConfig struct {
	RingLen int `toml:"ring_len"`
}

type MonitorConfig struct {
	Addr string `toml:"addr"` // empty disables the monitor
}

// Audio backends.
const (
	BackendOto  = "oto"
	BackendSDL  = "sdl"
	BackendNull = "null"
)

var backends = []string{BackendOto, BackendSDL, BackendNull}

const (
	minSampleRate = 8000
	maxSampleRate = 96000
	maxRingLen    = 256
)

// DefaultConfig returns the configuration used when there's none on disk.
func DefaultConfig() Config {
	return Config{
		Audio: AudioConfig{
			Backend:    BackendOto,
			SampleRate: hwdefs.DefaultSampleRate,
		},
		Engine: EngineConfig{
			RingLen: hwdefs.DefaultRingLen,
		},
	}
}

// Check replaces invalid values with their defaults.
func (cfg *Config) Check() {
	def := DefaultConfig()

	if !slices.Contains(backends, cfg.Audio.Backend) {
		log.ModEmu.Warnf("Invalid audio backend %q, fallback to %q", cfg.Audio.Backend, def.Audio.Backend)
		cfg.Audio.Backend = def.Audio.Backend
	}
	if cfg.Audio.SampleRate < minSampleRate || cfg.Audio.SampleRate > maxSampleRate {
		log.ModEmu.Warnf("Invalid sample rate %d, fallback to %d", cfg.Audio.SampleRate, def.Audio.SampleRate)
		cfg.Audio.SampleRate = def.Audio.SampleRate
	}
	if cfg.Engine.RingLen < 2 || cfg.Engine.RingLen > maxRingLen {
		log.ModEmu.Warnf("Invalid ring length %d, fallback to %d", cfg.Engine.RingLen, def.Engine.RingLen)
		cfg.Engine.RingLen = def.Engine.RingLen
	}
}

// EngineConfig returns the sound engine configuration.
func (cfg *Config) EngineConfig() hw.EngineConfig {
	return hw.EngineConfig{
		SampleRate: cfg.Audio.SampleRate,
		RingLen:    cfg.Engine.RingLen,
	}
}

var ConfigDir = sync.OnceValue(func() string {
	dir := configdir.LocalConfig("ticsynth")
	if err := configdir.MakePath(dir); err != nil {
		log.ModEmu.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})

const cfgFilename = "config.toml"

// ConfigPath returns the path of the configuration file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), cfgFilename)
}

// LoadConfig loads the configuration at path. Missing keys take their
// default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("load config: %w", err)
	}
	cfg.Check()
	return cfg, nil
}

// LoadConfigOrDefault loads the configuration from the ticsynth config
// directory, or provide a default one.
func LoadConfigOrDefault() Config {
	cfg, err := LoadConfig(ConfigPath())
	if err != nil {
		log.ModEmu.DebugZ("using default config").Error("err", err).End()
	}
	return cfg
}

// SaveConfig writes cfg at path.
func SaveConfig(cfg Config, path string) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}
