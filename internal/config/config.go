// Package config provides configuration management for the PDF translator application.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"pdf-translator/internal/logger"
	"pdf-translator/internal/translator"
	"pdf-translator/internal/types"
)

const (
	// DefaultConfigFileName is the default configuration file name
	DefaultConfigFileName = "pdf-translator-config.json"
	// EnvOpenAIAPIKey is the environment variable name for OpenAI API key
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	// EnvOpenAIBaseURL is the environment variable name for OpenAI base URL
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	// EnvOpenAIModel is the environment variable name for the model
	EnvOpenAIModel = "OPENAI_MODEL"
	// DefaultBaseURL is the default OpenAI API base URL
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultModel is the default OpenAI model to use
	DefaultModel = "gpt-4o-mini"
	// DefaultTranslator is the default translation backend
	DefaultTranslator = "openai"
	// DefaultSourceLang is the default source language code
	DefaultSourceLang = "en"
	// DefaultTargetLang is the default target language code
	DefaultTargetLang = "es"
	// DefaultExtractor is the default extraction backend
	DefaultExtractor = "text"
	// DefaultCacheTTLDays is the default cache entry lifetime in days.
	// An omitted or zero cache_ttl_days gets this default; set it to a
	// negative value such as -1 to keep entries forever.
	DefaultCacheTTLDays = 30
	// DefaultPadding is the default bbox expansion in points
	DefaultPadding = 0.5
)

// Manager manages application configuration
type Manager struct {
	configPath string
	config     *types.Config
}

// NewManager creates a new Manager with the specified config path.
// If configPath is empty, it uses the default path in user's home directory.
func NewManager(configPath string) (*Manager, error) {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, types.NewAppError(types.ErrConfig, "failed to get user home directory", err)
		}
		configPath = filepath.Join(homeDir, ".config", "pdf-translator", DefaultConfigFileName)
	}

	return &Manager{
		configPath: configPath,
		config:     defaultConfig(),
	}, nil
}

// defaultConfig returns a Config with default values
func defaultConfig() *types.Config {
	homeDir, _ := os.UserHomeDir()
	return &types.Config{
		OpenAIBaseURL: DefaultBaseURL,
		OpenAIModel:   DefaultModel,
		Translator:    DefaultTranslator,
		MarianCommand: translator.DefaultMarianCommand,
		SourceLang:    DefaultSourceLang,
		TargetLang:    DefaultTargetLang,
		Extractor:     DefaultExtractor,
		UseCache:      true,
		CacheDir:      filepath.Join(homeDir, ".cache", "pdf-translator"),
		CacheTTLDays:  DefaultCacheTTLDays,
		OutputDir:     "output",
		Padding:       DefaultPadding,
	}
}

// Load loads configuration from the config file.
// If the file doesn't exist, it uses default values.
// Environment variables override file values for the OpenAI settings.
func (m *Manager) Load() error {
	logger.Debug("loading configuration", logger.String("path", m.configPath))

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("config file not found, using defaults", logger.String("path", m.configPath))
			m.config = defaultConfig()
		} else {
			return types.NewAppError(types.ErrConfig, "failed to read config file", err)
		}
	} else {
		config := &types.Config{}
		if err := json.Unmarshal(data, config); err != nil {
			logger.Warn("invalid config file format, using defaults",
				logger.String("path", m.configPath), logger.Err(err))
			m.config = defaultConfig()
		} else {
			m.config = config
		}
	}

	m.applyDefaults()
	m.applyEnvOverrides()
	return nil
}

// applyDefaults fills empty fields with default values.
func (m *Manager) applyDefaults() {
	defaults := defaultConfig()
	if m.config.OpenAIBaseURL == "" {
		m.config.OpenAIBaseURL = defaults.OpenAIBaseURL
	}
	if m.config.OpenAIModel == "" {
		m.config.OpenAIModel = defaults.OpenAIModel
	}
	if m.config.Translator == "" {
		m.config.Translator = defaults.Translator
	}
	if m.config.MarianCommand == "" {
		m.config.MarianCommand = defaults.MarianCommand
	}
	if m.config.SourceLang == "" {
		m.config.SourceLang = defaults.SourceLang
	}
	if m.config.TargetLang == "" {
		m.config.TargetLang = defaults.TargetLang
	}
	if m.config.Extractor == "" {
		m.config.Extractor = defaults.Extractor
	}
	if m.config.CacheDir == "" {
		m.config.CacheDir = defaults.CacheDir
	}
	// Zero means the field was omitted; a negative value is an explicit
	// request to keep cache entries forever and is left alone.
	if m.config.CacheTTLDays == 0 {
		m.config.CacheTTLDays = defaults.CacheTTLDays
	}
	if m.config.OutputDir == "" {
		m.config.OutputDir = defaults.OutputDir
	}
	if m.config.Padding == 0 {
		m.config.Padding = defaults.Padding
	}
}

// applyEnvOverrides lets environment variables win over file values.
func (m *Manager) applyEnvOverrides() {
	if v := os.Getenv(EnvOpenAIAPIKey); v != "" {
		m.config.OpenAIAPIKey = v
	}
	if v := os.Getenv(EnvOpenAIBaseURL); v != "" {
		m.config.OpenAIBaseURL = v
	}
	if v := os.Getenv(EnvOpenAIModel); v != "" {
		m.config.OpenAIModel = v
	}
}

// Save saves the current configuration to the config file.
func (m *Manager) Save() error {
	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return types.NewAppError(types.ErrConfig, "failed to create config directory", err)
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return types.NewAppError(types.ErrConfig, "failed to marshal config", err)
	}

	// 0600: the file may hold an API key
	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		return types.NewAppError(types.ErrConfig, "failed to write config file", err)
	}

	logger.Info("configuration saved", logger.String("path", m.configPath))
	return nil
}

// Get returns the current configuration.
func (m *Manager) Get() *types.Config {
	return m.config
}

// Set replaces the current configuration.
func (m *Manager) Set(config *types.Config) {
	if config != nil {
		m.config = config
	}
}

// ConfigPath returns the path of the backing file.
func (m *Manager) ConfigPath() string {
	return m.configPath
}

// Validate checks that the configuration is usable for a translation run.
// The API key is only required for the openai backend; marianmt runs a
// local decoder and needs none.
func (m *Manager) Validate() error {
	switch m.config.Translator {
	case "", "openai":
		if m.config.OpenAIAPIKey == "" {
			return types.NewAppError(types.ErrConfig,
				"OpenAI API key is not set (use --api-key, the config file, or "+EnvOpenAIAPIKey+")", nil)
		}
	case "marianmt":
	default:
		return types.NewAppErrorWithDetails(types.ErrConfig, "unknown translator", m.config.Translator, nil)
	}
	if m.config.Extractor != "text" && m.config.Extractor != "structured" {
		return types.NewAppErrorWithDetails(types.ErrConfig, "unknown extractor", m.config.Extractor, nil)
	}
	return nil
}
