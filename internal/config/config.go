package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"

	"github.com/wbell/sonora/internal/domain"
	applog "github.com/wbell/sonora/internal/log"
)

// Config holds all application configuration
type Config struct {
	Storage Storage               `mapstructure:"storage"`
	Player  Player                `mapstructure:"player"`
	Library Library               `mapstructure:"library"`
	Assets  Assets                `mapstructure:"assets"`
	Radios  []domain.RadioStation `mapstructure:"radios"`
	Logging applog.Config         `mapstructure:"logging"`
}

// Storage holds local store configuration
type Storage struct {
	Path string `mapstructure:"path"` // BoltDB file, empty for the default data dir
}

// Player holds audio output configuration
type Player struct {
	Command string `mapstructure:"command"` // player binary, default mpv
}

// Library holds list rendering configuration
type Library struct {
	BatchSize     int `mapstructure:"batch_size"`     // items revealed per render pass
	LookaheadRows int `mapstructure:"lookahead_rows"` // sentinel margin before the list bottom
}

// Assets holds offline asset cache configuration
type Assets struct {
	Version  string   `mapstructure:"version"`
	Manifest []string `mapstructure:"manifest"` // asset URLs prefetched on activation
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Storage: Storage{
			Path: filepath.Join(defaultDataPath(), "sonora.db"),
		},
		Player: Player{
			Command: "mpv",
		},
		Library: Library{
			BatchSize:     30,
			LookaheadRows: 12, // roughly one screen of lookahead
		},
		Assets: Assets{
			Version: "offline-v1",
		},
		Radios: DefaultStations(),
		Logging: applog.Config{
			File:  filepath.Join(defaultDataPath(), "sonora.log"),
			Level: "INFO",
		},
	}
}

// DefaultStations is the built-in station list, used when the config
// file defines none.
func DefaultStations() []domain.RadioStation {
	return []domain.RadioStation{
		{
			ID:       "radio_usagi",
			Title:    "USAgiFM",
			Artist:   "Asian Hits / Anime",
			Art:      "https://sintonizaradio.com/wp-content/uploads/2023/05/usagifm-logo.jpeg",
			EmbedURL: "https://sintonizaradio.com/estaciones/usagifm/embed/playerbig/?theme=dark",
		},
		{
			ID:        "radio_w",
			Title:     "W Radio",
			Artist:    "News",
			Art:       "https://placehold.co/300x300/10b981/white?text=W",
			StreamURL: "https://26673.live.streamtheworld.com/WRADIOAAC_SC",
		},
		{
			ID:        "radio_classic",
			Title:     "Classic FM",
			Artist:    "Classical",
			Art:       "https://placehold.co/300x300/eab308/white?text=Classic",
			StreamURL: "https://media-ssl.musicradio.com/ClassicFMMP3",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "sonora")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "sonora")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "sonora")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "sonora")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("SONORA")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if len(cfg.Radios) == 0 {
		cfg.Radios = DefaultStations()
	}
	if cfg.Library.BatchSize <= 0 {
		cfg.Library.BatchSize = 30
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.Set("storage.path", cfg.Storage.Path)
	viper.Set("player.command", cfg.Player.Command)
	viper.Set("library.batch_size", cfg.Library.BatchSize)
	viper.Set("library.lookahead_rows", cfg.Library.LookaheadRows)
	viper.Set("assets.version", cfg.Assets.Version)
	viper.Set("assets.manifest", cfg.Assets.Manifest)
	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// AssetCachePath returns the directory the offline asset cache lives in
func AssetCachePath() string {
	return filepath.Join(defaultDataPath(), "assets")
}

// LeasePath returns the directory transient blob leases are written to
func LeasePath() string {
	return filepath.Join(defaultDataPath(), "leases")
}
