// Command validate checks the game configuration JSON files in a directory.
// It checks:
//   - JSON structure and required fields
//   - starting_orientation is horizontal, vertical or empty
//   - Required message keys and their %d placeholders
//   - Unknown message keys (usually typos)
//   - Playability: the configuration builds a board that the solver can finish
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/dominogame/game/engine"
	"github.com/wricardo/mcp-training/dominogame/game/solver"
)

// Config mirrors the JSON schema for a game configuration. Messages stay a
// map so unknown keys can be reported.
type Config struct {
	Name                string            `json:"name"`
	Description         string            `json:"description"`
	StartingOrientation string            `json:"starting_orientation"`
	Seed                uint64            `json:"seed"`
	Messages            map[string]string `json:"messages"`
}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// knownMessages maps every message key to whether it needs a %d placeholder
var knownMessages = map[string]bool{
	"welcome":             false,
	"placed":              true,
	"rejected":            false,
	"orientation_changed": false,
	"victory":             true,
	"game_over":           true,
}

var requiredMessages = []string{"welcome", "victory", "game_over"}

// validateConfig loads and validates a single configuration JSON file.
func validateConfig(ctx context.Context, filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if config.Name == "" {
		result.fail("name is required")
	}
	if config.Description == "" {
		result.fail("description is required")
	}

	orientation := engine.Orientation(config.StartingOrientation)
	switch orientation {
	case "":
		orientation = engine.Horizontal
	case engine.Horizontal, engine.Vertical:
	default:
		result.fail("starting_orientation must be %q or %q, got %q", engine.Horizontal, engine.Vertical, config.StartingOrientation)
	}

	for _, key := range requiredMessages {
		if config.Messages[key] == "" {
			result.fail("Missing required message: %s", key)
		}
	}

	keys := make([]string, 0, len(config.Messages))
	for key := range config.Messages {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		needsCount, known := knownMessages[key]
		switch {
		case !known:
			result.fail("Unknown message key: %s", key)
		case needsCount && config.Messages[key] != "" && !strings.Contains(config.Messages[key], "%d"):
			result.fail("Message %s must contain %%d", key)
		}
	}

	if !result.Valid {
		return result
	}

	// Playability: the configuration must build an engine whose board can be won
	gameConfig, err := toGameConfig(data)
	if err != nil {
		result.fail("Invalid configuration: %v", err)
		return result
	}
	eng, err := engine.NewEngine(gameConfig)
	if err != nil {
		result.fail("Engine rejected configuration: %v", err)
		return result
	}

	solution, err := solver.New().Solve(ctx, eng.GetState().Grid)
	if err != nil {
		result.fail("Board cannot be finished: %v", err)
		return result
	}

	seed := "random"
	if config.Seed != 0 {
		seed = fmt.Sprintf("%d", config.Seed)
	}
	result.Errors = append(result.Errors,
		fmt.Sprintf("✓ Name: %s", config.Name),
		fmt.Sprintf("✓ Starting orientation: %s", orientation),
		fmt.Sprintf("✓ Seed: %s", seed),
		fmt.Sprintf("✓ Messages: %d", len(config.Messages)),
		fmt.Sprintf("✓ Winnable: %d dominoes, hole at (%d,%d)", len(solution.Placements), solution.Hole.Row, solution.Hole.Col),
	)

	return result
}

func toGameConfig(data []byte) (*engine.GameConfig, error) {
	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// validateDir validates every *.json file in dir, prints a report to out and
// reports whether all of them are valid.
func validateDir(ctx context.Context, dir string, out io.Writer) (bool, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return false, fmt.Errorf("error finding config files: %w", err)
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no config files found in %s", dir)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(ctx, file)

		fmt.Fprintf(out, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(out, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(out, "  "+info)
			}
		} else {
			fmt.Fprintln(out, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Fprintln(out, "  ❌ "+err)
				}
			}
		}
	}

	fmt.Fprintf(out, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(out, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(out, "❌ Some configurations have errors")
	}
	return allValid, nil
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Validate domino game configuration files",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "configs", Usage: "Directory containing game configurations", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.DurationFlag{Name: "timeout", Value: 10 * time.Second, Usage: "Time allowed for the playability searches"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()

			ok, err := validateDir(ctx, cmd.String("dir"), out)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("some configurations have errors")
			}
			return nil
		},
	}
}

// main validates the configs directory and exits with non-zero status if any file is invalid.
func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
