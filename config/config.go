package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"encore-ai/internal/appdirs"
	"encore-ai/log"
)

// App holds general application settings.
type App struct {
	// DataDir overrides the platform-resolved data directory when set.
	DataDir string `toml:"data_dir"`
	Proxy   string `toml:"proxy"`
}

// Server holds HTTP API settings.
type Server struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Render holds rendering-engine settings.
type Render struct {
	// Backend selects the engine's frame backend: "software" or "hardware".
	// The hardware backend must run at most one frame-render thread per
	// worker; concurrent GPU contexts on one machine deadlock.
	Backend string `toml:"backend"`
	// Workers is the number of units rendered in parallel.
	Workers int `toml:"workers"`
	// FramesPerWorker is the engine's intra-worker frame concurrency.
	// Forced to 1 when Backend is "hardware".
	FramesPerWorker int `toml:"frames_per_worker"`
	// MaxChunkFrames caps the frames passed to one engine call. 0 uses the
	// built-in ceiling.
	MaxChunkFrames int `toml:"max_chunk_frames"`
	// CallTimeoutSec bounds one engine call; a stall past it fails the unit.
	CallTimeoutSec int `toml:"call_timeout_sec"`
	// EngineCommand launches the composition renderer CLI.
	EngineCommand string `toml:"engine_command"`
}

// Queue holds background queue settings. An empty RedisAddr selects the
// in-process task runner.
type Queue struct {
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Concurrency   int    `toml:"concurrency"`
}

// Notify holds stage-transition webhook settings.
type Notify struct {
	WebhookURL string `toml:"webhook_url"`
}

type Config struct {
	App    App    `toml:"app"`
	Server Server `toml:"server"`
	Render Render `toml:"render"`
	Queue  Queue  `toml:"queue"`
	Notify Notify `toml:"notify"`
}

var Conf Config

var resolveConfigPath = func() (string, error) {
	paths, err := appdirs.Resolve()
	if err != nil {
		return "", err
	}
	return paths.ConfigFile, nil
}

// ResolveConfigPath returns the active config file location.
func ResolveConfigPath() (string, error) {
	return resolveConfigPath()
}

func defaultConfig() Config {
	return Config{
		Server: Server{
			Host: "127.0.0.1",
			Port: 8888,
		},
		Render: Render{
			Backend:         "software",
			Workers:         2,
			FramesPerWorker: 4,
			CallTimeoutSec:  600,
			EngineCommand:   "npx",
		},
		Queue: Queue{
			Concurrency: 2,
		},
	}
}

// LoadOrCreateConfig loads the config file, writing defaults first when it
// does not exist. The returned bool reports whether a new file was created.
func LoadOrCreateConfig() (bool, error) {
	configPath, err := resolveConfigPath()
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		Conf = defaultConfig()
		if err := SaveConfig(); err != nil {
			return false, err
		}
		log.GetLogger().Info("created default config", zap.String("path", configPath))
		return true, nil
	}

	if _, err := toml.DecodeFile(configPath, &Conf); err != nil {
		return false, fmt.Errorf("decode config %s: %w", configPath, err)
	}
	return false, nil
}

// LoadConfig loads configuration for server startup. Returns false when the
// config could not be loaded.
func LoadConfig() bool {
	if _, err := LoadOrCreateConfig(); err != nil {
		log.GetLogger().Error("failed to load config", zap.Error(err))
		return false
	}
	return true
}

// SaveConfig writes the current Conf to the config file, creating parent
// directories as needed.
func SaveConfig() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	return toml.NewEncoder(file).Encode(Conf)
}

// CheckConfig validates loaded configuration and normalizes derived values.
func CheckConfig() error {
	if Conf.Server.Port <= 0 || Conf.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", Conf.Server.Port)
	}

	backend := strings.TrimSpace(strings.ToLower(Conf.Render.Backend))
	if backend == "" {
		backend = "software"
	}
	if backend != "software" && backend != "hardware" {
		return fmt.Errorf("invalid render backend: %q", Conf.Render.Backend)
	}
	Conf.Render.Backend = backend

	if Conf.Render.Workers <= 0 {
		Conf.Render.Workers = 2
	}
	if Conf.Render.FramesPerWorker <= 0 {
		Conf.Render.FramesPerWorker = 4
	}
	// Documented engine constraint, kept as configuration rather than
	// scheduler logic: hardware backend is single-threaded per worker.
	if backend == "hardware" {
		Conf.Render.FramesPerWorker = 1
	}
	if Conf.Render.CallTimeoutSec <= 0 {
		Conf.Render.CallTimeoutSec = 600
	}
	if Conf.Render.EngineCommand == "" {
		Conf.Render.EngineCommand = "npx"
	}
	return nil
}
