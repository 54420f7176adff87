package main

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"github.com/wricardo/mcp-training/dominogame/game/engine"
	"github.com/wricardo/mcp-training/dominogame/game/solver"
)

// Strategy picks the next placements for a board
type Strategy interface {
	// NextMoves returns up to limit moves to play from state, or none when it is stuck
	NextMoves(ctx context.Context, state *engine.GameState, limit int) ([]engine.Move, error)
	// Reset drops any plan, after a rejection or a game reset
	Reset()
}

// HintStrategy asks the server for one hint per move
type HintStrategy struct {
	client *Client
}

func NewHintStrategy(client *Client) *HintStrategy {
	return &HintStrategy{client: client}
}

func (s *HintStrategy) NextMoves(ctx context.Context, state *engine.GameState, limit int) ([]engine.Move, error) {
	hint, err := s.client.Hint(ctx)
	if err != nil {
		return nil, err
	}
	if !hint.Winning {
		log.Debug("Server hint is not on a winning line")
	}
	return []engine.Move{{Orientation: hint.Placement.Orientation, Start: hint.Start, End: hint.End}}, nil
}

func (s *HintStrategy) Reset() {}

// PlannedStrategy solves the board locally once and plays the plan out,
// several placements per request when the limit allows it
type PlannedStrategy struct {
	solver *solver.Solver
	plan   []engine.Move
}

func NewPlannedStrategy(maxNodes int) *PlannedStrategy {
	s := solver.New()
	if maxNodes > 0 {
		s.MaxNodes = maxNodes
	}
	return &PlannedStrategy{solver: s}
}

func (s *PlannedStrategy) NextMoves(ctx context.Context, state *engine.GameState, limit int) ([]engine.Move, error) {
	if len(s.plan) == 0 {
		if err := s.replan(ctx, state); err != nil {
			return nil, err
		}
	}
	if limit <= 0 || limit > len(s.plan) {
		limit = len(s.plan)
	}

	moves := s.plan[:limit]
	s.plan = s.plan[limit:]
	return moves, nil
}

// replan solves the current board; an unwinnable board yields a single legal placement
func (s *PlannedStrategy) replan(ctx context.Context, state *engine.GameState) error {
	solution, err := s.solver.Solve(ctx, state.Grid)
	if err == nil {
		log.Infof("📊 Planned %d placements, hole at (%d,%d), %d nodes searched",
			len(solution.Placements), solution.Hole.Row, solution.Hole.Col, solution.Nodes)
		s.plan = toMoves(solution.Placements, state.Size)
		return nil
	}
	if !errors.Is(err, solver.ErrNoSolution) && !errors.Is(err, solver.ErrBudgetExceeded) {
		return err
	}

	log.Warnf("⚠️  No winning line from here (%v), playing any legal placement", err)
	hint, err := s.solver.Hint(ctx, state.Grid)
	if errors.Is(err, solver.ErrNoPlacement) {
		return nil
	}
	if err != nil {
		return err
	}
	s.plan = []engine.Move{{Orientation: hint.Placement.Orientation, Start: hint.Start, End: hint.End}}
	return nil
}

func (s *PlannedStrategy) Reset() {
	s.plan = nil
}

func toMoves(placements []engine.Placement, size int) []engine.Move {
	moves := make([]engine.Move, len(placements))
	for i, p := range placements {
		start, end := p.Endpoints(size)
		moves[i] = engine.Move{Orientation: p.Orientation, Start: start, End: end}
	}
	return moves
}
