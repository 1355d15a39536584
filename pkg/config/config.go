/*
Package config manages TOML config for LaunchRank services.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/launchrank/internal/utils"
	"github.com/bastiangx/launchrank/pkg/rank"
)

// Config holds the entire config structure
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Ranking RankingConfig `toml:"ranking"`
	Bloom   BloomConfig   `toml:"bloom"`
	CLI     CliConfig     `toml:"cli"`
}

// ServerConfig has IPC server related options.
type ServerConfig struct {
	MaxResults  int `toml:"max_results"`
	MaxQueryLen int `toml:"max_query_len"`
}

// RankingConfig holds the scoring options recognized by the engine.
type RankingConfig struct {
	Beta           float64 `toml:"beta"`
	K              float64 `toml:"k"`
	Mu             float64 `toml:"mu"`
	LearningRate   float64 `toml:"rl_learning_rate"`
	SessionTimeout int64   `toml:"session_timeout"`
	CacheSize      int     `toml:"cache_size"`
}

// BloomConfig holds the approximate-membership filter options.
type BloomConfig struct {
	Enabled  bool    `toml:"enabled"`
	Capacity int     `toml:"capacity"`
	FPRate   float64 `toml:"fp_rate"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int `toml:"default_limit"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxResults:  rank.DefaultMaxResults,
			MaxQueryLen: 60,
		},
		Ranking: RankingConfig{
			Beta:           rank.DefaultBeta,
			K:              rank.DefaultK,
			Mu:             rank.DefaultMu,
			LearningRate:   rank.DefaultLearningRate,
			SessionTimeout: rank.DefaultSessionTimeout,
			CacheSize:      rank.DefaultCacheSize,
		},
		Bloom: BloomConfig{
			Enabled:  false,
			Capacity: rank.DefaultBloomCapacity,
			FPRate:   rank.DefaultBloomFPRate,
		},
		CLI: CliConfig{
			DefaultLimit: 10,
		},
	}
}

// RankOptions maps the config onto engine options.
func (c *Config) RankOptions() rank.Options {
	return rank.Options{
		UseBloom:       c.Bloom.Enabled,
		BloomCapacity:  c.Bloom.Capacity,
		BloomFPRate:    c.Bloom.FPRate,
		Beta:           c.Ranking.Beta,
		K:              c.Ranking.K,
		Mu:             c.Ranking.Mu,
		LearningRate:   c.Ranking.LearningRate,
		SessionTimeout: c.Ranking.SessionTimeout,
		CacheSize:      c.Ranking.CacheSize,
	}
}

// GetConfigDir returns the config directory with fallback priority:
// 1. os.UserConfigDir()/launchrank
// 2. Current working directory
func GetConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		log.Warnf("Failed to get user config directory: %v", err)
		return os.Getwd()
	}
	return filepath.Join(base, "launchrank"), nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/launchrank/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse attempts to salvage recognized sections from a broken file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	if rankingSection, ok := utils.ExtractSection(tempConfig, "ranking"); ok {
		extractRankingConfig(rankingSection, &config.Ranking)
	}
	if bloomSection, ok := utils.ExtractSection(tempConfig, "bloom"); ok {
		extractBloomConfig(bloomSection, &config.Bloom)
	}
	if cliSection, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(cliSection, &config.CLI)
	}
	return config, nil
}

// extractServerConfig extracts server configuration from a map
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_results"); ok {
		server.MaxResults = val
	}
	if val, ok := utils.ExtractInt64(data, "max_query_len"); ok {
		server.MaxQueryLen = val
	}
}

// extractRankingConfig extracts ranking configuration from a map
func extractRankingConfig(data map[string]any, ranking *RankingConfig) {
	if val, ok := utils.ExtractFloat64(data, "beta"); ok {
		ranking.Beta = val
	}
	if val, ok := utils.ExtractFloat64(data, "k"); ok {
		ranking.K = val
	}
	if val, ok := utils.ExtractFloat64(data, "mu"); ok {
		ranking.Mu = val
	}
	if val, ok := utils.ExtractFloat64(data, "rl_learning_rate"); ok {
		ranking.LearningRate = val
	}
	if val, ok := utils.ExtractInt64(data, "session_timeout"); ok {
		ranking.SessionTimeout = int64(val)
	}
	if val, ok := utils.ExtractInt64(data, "cache_size"); ok {
		ranking.CacheSize = val
	}
}

// extractBloomConfig extracts bloom filter configuration from a map
func extractBloomConfig(data map[string]any, bloomCfg *BloomConfig) {
	if val, ok := utils.ExtractBool(data, "enabled"); ok {
		bloomCfg.Enabled = val
	}
	if val, ok := utils.ExtractInt64(data, "capacity"); ok {
		bloomCfg.Capacity = val
	}
	if val, ok := utils.ExtractFloat64(data, "fp_rate"); ok {
		bloomCfg.FPRate = val
	}
}

// extractCliConfig extracts CLI config from a map
func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
