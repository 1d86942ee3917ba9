/*
Package config manages TOML config for docserve.

Credentials are kept out of the TOML file by convention and read from a .env file
and the process environment, which override whatever the file holds.
*/
package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/docserve/internal/utils"
	"github.com/bastiangx/docserve/pkg/autocomplete"
	"github.com/bastiangx/docserve/pkg/backend"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// FileName is the config file name inside the config dir.
const FileName = "docserve.toml"

// Environment variables read by LoadEnv.
const (
	EnvGuideApp     = "DJS_GUIDE_ALGOLIA_APP"
	EnvGuideKey     = "DJS_GUIDE_ALGOLIA_KEY"
	EnvDiscordApp   = "DDOCS_ALGOLIA_APP"
	EnvDiscordKey   = "DDOCS_ALGOLIA_KEY"
	EnvDTypesApp    = "DTYPES_ALGOLIA_APP"
	EnvDTypesKey    = "DTYPES_ALGOLIA_KEY"
	EnvPublicKey    = "DISCORD_PUBLIC_KEY"
	EnvListenAddr   = "DOCSERVE_ADDR"
	envLogLevel     = "DOCSERVE_LOG_LEVEL"
	defaultDocsBase = "https://raw.githubusercontent.com/discordjs/docs/main"
)

var envKeys = []string{
	EnvGuideApp, EnvGuideKey,
	EnvDiscordApp, EnvDiscordKey,
	EnvDTypesApp, EnvDTypesKey,
	EnvPublicKey, EnvListenAddr, envLogLevel,
}

// Config holds the entire config structure
type Config struct {
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
	Docs   DocsConfig   `toml:"docs"`
	Search SearchConfig `toml:"search"`
	Data   DataConfig   `toml:"data"`
	Limits LimitsConfig `toml:"limits"`
}

// ServerConfig has transport options.
type ServerConfig struct {
	Addr             string `toml:"addr"`
	RequestTimeoutMs int    `toml:"request_timeout_ms"`
	PublicKey        string `toml:"public_key"`
}

// LogConfig sets the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `toml:"level"`
}

// DocsConfig lists the documentation sources. Sources maps a source name to the
// URL or file of its docs JSON; DefaultSource and DevSource must be keys of it.
// Sources listed in a file are added to the built-in ones.
type DocsConfig struct {
	DefaultSource string            `toml:"default_source"`
	DevSource     string            `toml:"dev_source"`
	Sources       map[string]string `toml:"sources"`
}

// TargetConfig is one Algolia index with its credentials.
type TargetConfig struct {
	Index  string `toml:"index"`
	AppID  string `toml:"app_id"`
	APIKey string `toml:"api_key"`
}

// SearchConfig holds the three search targets.
type SearchConfig struct {
	Guide   TargetConfig `toml:"guide"`
	Discord TargetConfig `toml:"discord"`
	DTypes  TargetConfig `toml:"dtypes"`
}

// DataConfig points at the local data files.
type DataConfig struct {
	TagsFile string `toml:"tags_file"`
	MDNIndex string `toml:"mdn_index"`
}

// LimitsConfig bounds backend work.
type LimitsConfig struct {
	Suggestions        int `toml:"suggestions"`
	SearchHits         int `toml:"search_hits"`
	DocsFetchTimeoutMs int `toml:"docs_fetch_timeout_ms"`

	// SearchCacheSize is the number of search results kept; 0 disables the cache.
	SearchCacheSize       int `toml:"search_cache_size"`
	SearchCacheTTLSeconds int `toml:"search_cache_ttl_s"`
}

// GetDefaultConfigPath returns the default path for docserve.toml
func GetDefaultConfigPath() (string, error) {
	pr, err := utils.NewPathResolver()
	if err != nil {
		return "", err
	}
	return pr.GetConfigPath(FileName)
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/docserve/docserve.toml
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

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:             ":8080",
			RequestTimeoutMs: 2500,
		},
		Log: LogConfig{Level: "info"},
		Docs: DocsConfig{
			DefaultSource: "v14",
			DevSource:     "main",
			Sources: map[string]string{
				"v14":        defaultDocsBase + "/discord.js/14.x.json",
				"v13":        defaultDocsBase + "/discord.js/13.x.json",
				"main":       defaultDocsBase + "/discord.js/main.json",
				"builders":   defaultDocsBase + "/builders/main.json",
				"collection": defaultDocsBase + "/collection/main.json",
				"rest":       defaultDocsBase + "/rest/main.json",
				"voice":      defaultDocsBase + "/voice/main.json",
			},
		},
		Search: SearchConfig{
			Guide:   TargetConfig{Index: "discordjs"},
			Discord: TargetConfig{Index: "discord"},
			DTypes:  TargetConfig{Index: "discord-api-types"},
		},
		Data: DataConfig{
			TagsFile: "tags.toml",
			MDNIndex: "mdn.json",
		},
		Limits: LimitsConfig{
			Suggestions:           autocomplete.MaxChoices,
			SearchHits:            autocomplete.MaxChoices,
			DocsFetchTimeoutMs:    10000,
			SearchCacheSize:       512,
			SearchCacheTTLSeconds: 300,
		},
	}
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

// LoadConfig loads from a TOML file. Keys missing from the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse keeps whatever sections of a broken file still decode
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "log"); ok {
		if val, ok := utils.ExtractString(section, "level"); ok {
			config.Log.Level = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "docs"); ok {
		extractDocsConfig(section, &config.Docs)
	}
	if section, ok := utils.ExtractSection(tempConfig, "search"); ok {
		for name, target := range map[string]*TargetConfig{
			"guide":   &config.Search.Guide,
			"discord": &config.Search.Discord,
			"dtypes":  &config.Search.DTypes,
		} {
			if sub, ok := utils.ExtractSection(section, name); ok {
				extractTargetConfig(sub, target)
			}
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "data"); ok {
		if val, ok := utils.ExtractString(section, "tags_file"); ok {
			config.Data.TagsFile = val
		}
		if val, ok := utils.ExtractString(section, "mdn_index"); ok {
			config.Data.MDNIndex = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "limits"); ok {
		extractLimitsConfig(section, &config.Limits)
	}
	return config, nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractString(data, "addr"); ok {
		server.Addr = val
	}
	if val, ok := utils.ExtractInt64(data, "request_timeout_ms"); ok {
		server.RequestTimeoutMs = val
	}
	if val, ok := utils.ExtractString(data, "public_key"); ok {
		server.PublicKey = val
	}
}

func extractDocsConfig(data map[string]any, docs *DocsConfig) {
	if val, ok := utils.ExtractString(data, "default_source"); ok {
		docs.DefaultSource = val
	}
	if val, ok := utils.ExtractString(data, "dev_source"); ok {
		docs.DevSource = val
	}
	if val, ok := utils.ExtractStringMap(data, "sources"); ok {
		docs.Sources = val
	}
}

func extractTargetConfig(data map[string]any, target *TargetConfig) {
	if val, ok := utils.ExtractString(data, "index"); ok {
		target.Index = val
	}
	if val, ok := utils.ExtractString(data, "app_id"); ok {
		target.AppID = val
	}
	if val, ok := utils.ExtractString(data, "api_key"); ok {
		target.APIKey = val
	}
}

func extractLimitsConfig(data map[string]any, limits *LimitsConfig) {
	if val, ok := utils.ExtractInt64(data, "suggestions"); ok {
		limits.Suggestions = val
	}
	if val, ok := utils.ExtractInt64(data, "search_hits"); ok {
		limits.SearchHits = val
	}
	if val, ok := utils.ExtractInt64(data, "docs_fetch_timeout_ms"); ok {
		limits.DocsFetchTimeoutMs = val
	}
	if val, ok := utils.ExtractInt64(data, "search_cache_size"); ok {
		limits.SearchCacheSize = val
	}
	if val, ok := utils.ExtractInt64(data, "search_cache_ttl_s"); ok {
		limits.SearchCacheTTLSeconds = val
	}
}

// RebuildConfigFile force creates a new docserve.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return err
	}
	return utils.SaveTOMLFile(DefaultConfig(), defaultPath)
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

// LoadEnv reads credentials from envFile (skipped when empty or missing) and
// then the process environment, and applies them over c.
func (c *Config) LoadEnv(envFile string) error {
	env := map[string]string{}
	if envFile != "" && utils.FileExists(envFile) {
		fileEnv, err := godotenv.Read(envFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", envFile, err)
		}
		maps.Copy(env, fileEnv)
		log.Debugf("Loaded %d variables from %s", len(fileEnv), envFile)
	}
	for _, key := range envKeys {
		if val, ok := os.LookupEnv(key); ok {
			env[key] = val
		}
	}
	c.ApplyEnv(env)
	return nil
}

// ApplyEnv overrides config values with non-empty known variables from env.
func (c *Config) ApplyEnv(env map[string]string) {
	set := func(dst *string, key string) {
		if val := env[key]; val != "" {
			*dst = val
		}
	}
	set(&c.Search.Guide.AppID, EnvGuideApp)
	set(&c.Search.Guide.APIKey, EnvGuideKey)
	set(&c.Search.Discord.AppID, EnvDiscordApp)
	set(&c.Search.Discord.APIKey, EnvDiscordKey)
	set(&c.Search.DTypes.AppID, EnvDTypesApp)
	set(&c.Search.DTypes.APIKey, EnvDTypesKey)
	set(&c.Server.PublicKey, EnvPublicKey)
	set(&c.Server.Addr, EnvListenAddr)
	set(&c.Log.Level, envLogLevel)
}

// Validate reports settings the dispatcher cannot run with.
func (c *Config) Validate() error {
	if len(c.Docs.Sources) == 0 {
		return fmt.Errorf("config: no docs sources")
	}
	for _, name := range []string{c.Docs.DefaultSource, c.Docs.DevSource} {
		if _, ok := c.Docs.Sources[name]; !ok {
			return fmt.Errorf("config: docs source %q is not listed in [docs.sources]", name)
		}
	}
	if c.Server.RequestTimeoutMs <= 0 {
		return fmt.Errorf("config: request_timeout_ms must be positive, got %d", c.Server.RequestTimeoutMs)
	}
	return nil
}

// RequestTimeout returns the per-request deadline of the transports.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutMs) * time.Millisecond
}

// DocsFetchTimeout returns the deadline for loading one docs source.
func (c *Config) DocsFetchTimeout() time.Duration {
	return time.Duration(c.Limits.DocsFetchTimeoutMs) * time.Millisecond
}

// SearchCacheTTL returns how long a search result stays cached.
func (c *Config) SearchCacheTTL() time.Duration {
	return time.Duration(c.Limits.SearchCacheTTLSeconds) * time.Second
}

// Settings converts the config into what the normalizers read.
func (c *Config) Settings() autocomplete.Settings {
	return autocomplete.Settings{
		Sources:       maps.Clone(c.Docs.Sources),
		DefaultSource: c.Docs.DefaultSource,
		DevSource:     c.Docs.DevSource,
		Guide:         c.Search.Guide.target(),
		Discord:       c.Search.Discord.target(),
		DTypes:        c.Search.DTypes.target(),
	}
}

func (t TargetConfig) target() backend.SearchTarget {
	return backend.SearchTarget{AppID: t.AppID, APIKey: t.APIKey, Index: t.Index}
}
