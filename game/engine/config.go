package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateGameConfig validates a game configuration for correctness
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config cannot be nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	switch config.StartingOrientation {
	case "", Horizontal, Vertical:
	default:
		return fmt.Errorf("config validation: starting_orientation must be %q or %q, got %q",
			Horizontal, Vertical, config.StartingOrientation)
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Victory == "" {
		return fmt.Errorf("config validation: messages.victory is required")
	}
	if config.Messages.GameOver == "" {
		return fmt.Errorf("config validation: messages.game_over is required")
	}

	// Validate format strings
	if !strings.Contains(config.Messages.Victory, "%d") {
		return fmt.Errorf("config validation: messages.victory must contain %%d for the elapsed seconds")
	}
	if !strings.Contains(config.Messages.GameOver, "%d") {
		return fmt.Errorf("config validation: messages.game_over must contain %%d for the empty cell count")
	}
	if config.Messages.Placed != "" && !strings.Contains(config.Messages.Placed, "%d") {
		return fmt.Errorf("config validation: messages.placed must contain %%d for the empty cell count")
	}

	return nil
}

// DefaultGameConfig returns the configuration used when none is supplied
func DefaultGameConfig() *GameConfig {
	config := &GameConfig{
		Name:                "classic",
		Description:         "Cover the 8x8 board with 3-cell dominoes until a single cell is left",
		StartingOrientation: Horizontal,
	}
	config.Messages.Welcome = "Place 21 dominoes and leave exactly one cell empty!"
	config.Messages.Placed = "Domino placed. %d empty cells left"
	config.Messages.Rejected = "That domino does not fit"
	config.Messages.OrientationChanged = "Orientation set to %s"
	config.Messages.Victory = "Victory! Board covered in %d seconds"
	config.Messages.GameOver = "Game over! No domino fits and %d cells are still empty"
	return config
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// BoardOptionsFromConfig translates the board-related config fields into options
func BoardOptionsFromConfig(config *GameConfig) []BoardOption {
	if config == nil {
		return nil
	}
	var opts []BoardOption
	if config.StartingOrientation != "" {
		opts = append(opts, WithOrientation(config.StartingOrientation))
	}
	if config.Seed != 0 {
		opts = append(opts, WithSeed(config.Seed))
	}
	return opts
}
