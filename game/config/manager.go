package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/dominogame/game/engine"
	"github.com/wricardo/mcp-training/dominogame/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrInvalidName    = errors.New("invalid configuration name")
)

// DefaultName is the config preferred as the default when present
const DefaultName = "classic"

var validName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Manager handles game configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// configName strips the .json extension and rejects names that could leave the config directory
func configName(name string) (string, error) {
	name = strings.TrimSuffix(name, ".json")
	if !validName.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}

// LoadConfig returns the named configuration, reading and validating the
// file on first use. A trailing .json is ignored.
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	name, err := configName(name)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	cached, ok := m.configs[name]
	m.mu.RUnlock()
	if ok {
		return cached, nil
	}

	config, err := m.read(name)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// a concurrent load may have won; keep the first so callers share one pointer
	if cached, ok := m.configs[name]; ok {
		return cached, nil
	}
	m.configs[name] = config
	return config, nil
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.configDir, name+".json")
}

func (m *Manager) read(name string) (*engine.GameConfig, error) {
	data, err := os.ReadFile(m.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", name, err)
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", name, err)
	}
	if err := engine.ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &config, nil
}

// ListConfigs returns information about all valid configurations, ordered by file name
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")
		config, err := m.LoadConfig(name)
		if err != nil {
			log.WithError(err).WithField("file", entry.Name()).Warn("skipping configuration")
			continue
		}

		configs = append(configs, &service.ConfigInfo{
			Filename:            entry.Name(),
			ConfigID:            name, // This is the identifier to use for session creation
			Name:                config.Name,
			Description:         config.Description,
			StartingOrientation: startingOrientation(config),
			Seeded:              config.Seed != 0,
		})
	}

	return configs, nil
}

func startingOrientation(config *engine.GameConfig) engine.Orientation {
	if config.StartingOrientation == "" {
		return engine.Horizontal
	}
	return config.StartingOrientation
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops every cached configuration and reloads the default from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// loadDefaultConfig picks classic, then the first valid file, then the built-in config.
// It must be called without holding m.mu.
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(DefaultName)
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr != nil || len(configs) == 0 {
			config = engine.DefaultGameConfig()
		} else if config, err = m.LoadConfig(configs[0].ConfigID); err != nil {
			config = engine.DefaultGameConfig()
		}
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}

// SaveConfig validates config and writes it as name.json, replacing any
// cached copy
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	name, err := configName(name)
	if err != nil {
		return err
	}
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config %s: %w", name, err)
	}
	if err := os.WriteFile(m.path(name), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", name, err)
	}

	m.mu.Lock()
	m.configs[name] = config
	m.mu.Unlock()
	return nil
}
