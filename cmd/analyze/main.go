// Command analyze prints quick, human-readable facts about the configuration
// files in the project's configs directory: the opening board, how many
// dominoes fit in each orientation, which cells can be the final hole and
// whether the solver finds a winning line.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/dominogame/game/config"
	"github.com/wricardo/mcp-training/dominogame/game/engine"
	"github.com/wricardo/mcp-training/dominogame/game/solver"
)

// Analysis is what analyze reports for one configuration
type Analysis struct {
	ConfigID    string
	Name        string
	Orientation engine.Orientation
	Seeded      bool
	Horizontal  int // opening placements per orientation
	Vertical    int
	Holes       []engine.Position
	Solution    *solver.Solution
	SolveErr    error
	Board       []string
}

// analyzeConfig builds the opening board of a configuration and inspects it
func analyzeConfig(ctx context.Context, s *solver.Solver, configID string, cfg *engine.GameConfig) (*Analysis, error) {
	eng, err := engine.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	state := eng.GetState()

	a := &Analysis{
		ConfigID:    configID,
		Name:        cfg.Name,
		Orientation: state.Orientation,
		Seeded:      cfg.Seed != 0,
		Holes:       solver.HoleCandidates(state.Grid),
		Board:       state.Board,
	}
	for _, p := range eng.GetPossiblePlacements() {
		if p.Orientation == engine.Horizontal {
			a.Horizontal++
		} else {
			a.Vertical++
		}
	}

	a.Solution, a.SolveErr = s.Solve(ctx, state.Grid)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return a, nil
}

func printAnalysis(out io.Writer, a *Analysis, showBoard bool) {
	fmt.Fprintf(out, "\n=== Analyzing %s ===\n", a.ConfigID)
	fmt.Fprintf(out, "Name: %s\n", a.Name)
	fmt.Fprintf(out, "Grid Size: %d x %d\n", engine.BoardSize, engine.BoardSize)
	fmt.Fprintf(out, "Starting Orientation: %s\n", a.Orientation)
	if a.Seeded {
		fmt.Fprintln(out, "Pips: fixed seed")
	} else {
		fmt.Fprintln(out, "Pips: random per board")
	}
	fmt.Fprintf(out, "Opening Placements: %d horizontal, %d vertical\n", a.Horizontal, a.Vertical)

	if showBoard {
		for _, row := range a.Board {
			fmt.Fprintln(out, "   "+row)
		}
	}

	if len(a.Holes) == 0 {
		fmt.Fprintln(out, "⚠️  CRITICAL: no cell can be the final hole")
	} else {
		holes := make([]string, len(a.Holes))
		for i, h := range a.Holes {
			holes[i] = fmt.Sprintf("(%d,%d)", h.Row, h.Col)
		}
		fmt.Fprintf(out, "Possible Final Holes: %s\n", strings.Join(holes, " "))
	}

	switch {
	case a.SolveErr == nil:
		fmt.Fprintf(out, "✅ Winnable: %d dominoes leave (%d,%d) open, %d nodes searched\n",
			len(a.Solution.Placements), a.Solution.Hole.Row, a.Solution.Hole.Col, a.Solution.Nodes)
	case errors.Is(a.SolveErr, solver.ErrBudgetExceeded):
		fmt.Fprintln(out, "⚠️  WARNING: search budget exceeded before a winning line was found")
	default:
		fmt.Fprintf(out, "⚠️  CRITICAL: %v\n", a.SolveErr)
	}
}

// analyzeDir analyzes every configuration the manager can load from dir
func analyzeDir(ctx context.Context, dir string, maxNodes int, showBoard bool, out io.Writer) error {
	manager, err := config.NewManager(dir)
	if err != nil {
		return err
	}
	infos, err := manager.ListConfigs()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return fmt.Errorf("no config files found in %s", dir)
	}

	s := solver.New()
	if maxNodes > 0 {
		s.MaxNodes = maxNodes
	}

	for _, info := range infos {
		cfg, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Fprintf(out, "\n=== Analyzing %s ===\nError loading config: %v\n", info.ConfigID, err)
			continue
		}
		a, err := analyzeConfig(ctx, s, info.ConfigID, cfg)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			fmt.Fprintf(out, "\n=== Analyzing %s ===\nError building board: %v\n", info.ConfigID, err)
			continue
		}
		printAnalysis(out, a, showBoard)
	}
	return nil
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Print facts about the game configurations",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "configs", Usage: "Directory containing game configurations", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.IntFlag{Name: "max-nodes", Usage: "Solver search budget (0 = solver default)"},
			&cli.BoolFlag{Name: "board", Usage: "Print the opening board"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return analyzeDir(ctx, cmd.String("dir"), int(cmd.Int("max-nodes")), cmd.Bool("board"), out)
		},
	}
}

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
