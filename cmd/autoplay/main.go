// Command autoplay plays a domino session through the REST API until the
// board is won, then submits the time to the leaderboard.
//
// The default strategy asks the server for a hint before every placement;
// --strategy plan solves the board locally and can send the plan in batches
// through bulk-place.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/dominogame/game/engine"
	"github.com/wricardo/mcp-training/dominogame/game/service"
)

// runOptions controls one autoplay run
type runOptions struct {
	configID    string
	resume      string
	sessionFile string
	name        string
	maxAttempts int
	batch       int
	delay       time.Duration
}

// Outcome summarises an autoplay run
type Outcome struct {
	SessionID  string
	Victory    bool
	Attempts   int
	Placements int
	Rejections int
	Score      *service.ScoreResult
}

// maxRejections bounds the rejected placements tolerated in one attempt
const maxRejections = 2 * engine.MaxDominoes

// run resumes or creates a session, resets it and plays until victory or maxAttempts
func run(ctx context.Context, client *Client, strategy Strategy, opts runOptions) (*Outcome, error) {
	state, err := openSession(ctx, client, opts)
	if err != nil {
		return nil, err
	}

	log.Info("🔄 Resetting game state...")
	if state, err = client.Reset(ctx); err != nil {
		return nil, err
	}

	outcome := &Outcome{SessionID: client.sessionID}
	for outcome.Attempts < max(opts.maxAttempts, 1) {
		outcome.Attempts++

		if outcome.Attempts > 1 {
			if state, err = client.Reset(ctx); err != nil {
				return outcome, err
			}
		}
		strategy.Reset()

		log.Infof("=== 🎮 Attempt %d/%d ===", outcome.Attempts, opts.maxAttempts)

		state, err = playAttempt(ctx, client, strategy, state, opts, outcome)
		if err != nil {
			return outcome, err
		}

		outcome.Placements = state.PlacedDominoes
		log.Infof("Attempt %d: Placed=%d, Empty=%d, Rejected=%d",
			outcome.Attempts, state.PlacedDominoes, state.EmptyCells, outcome.Rejections)

		if state.Victory {
			outcome.Victory = true
			log.Infof("🎉 VICTORY! Board covered in %ds on attempt %d", state.Score, outcome.Attempts)
			log.Infof("Session: %s", client.sessionID)
			if opts.name != "" {
				submitScore(ctx, client, opts.name, outcome)
			}
			return outcome, nil
		}
	}

	log.Infof("Session: %s", client.sessionID)
	return outcome, fmt.Errorf("failed to win after %d attempts", outcome.Attempts)
}

// openSession resumes the requested or saved session, or creates a new one
func openSession(ctx context.Context, client *Client, opts runOptions) (*engine.GameState, error) {
	savedSessionID := opts.resume
	if savedSessionID == "" && opts.sessionFile != "" {
		if data, err := os.ReadFile(opts.sessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	if savedSessionID != "" {
		client.sessionID = savedSessionID
		log.Infof("🔄 Resuming session: %s", client.sessionID)
		state, err := client.GetState(ctx)
		if err == nil {
			log.Infof("Session resumed - Empty: %d, Placed: %d", state.EmptyCells, state.PlacedDominoes)
			return state, nil
		}
		log.Warnf("⚠️  Failed to resume session (may be expired): %v", err)
		log.Info("Creating new session...")
	}

	state, err := client.CreateSession(ctx, opts.configID)
	if err != nil {
		return nil, err
	}
	log.Infof("✨ Session created: %s (%s)", client.sessionID, state.ConfigName)

	if opts.sessionFile != "" {
		if err := os.WriteFile(opts.sessionFile, []byte(client.sessionID), 0644); err != nil {
			log.Warnf("Failed to save session ID: %v", err)
		}
	}
	return state, nil
}

// playAttempt places dominoes until the game ends or the strategy gives up
func playAttempt(ctx context.Context, client *Client, strategy Strategy, state *engine.GameState, opts runOptions, outcome *Outcome) (*engine.GameState, error) {
	rejections := 0
	for !state.GameOver {
		moves, err := strategy.NextMoves(ctx, state, opts.batch)
		if err != nil {
			return state, err
		}
		if len(moves) == 0 {
			log.Warn("⚠️  No valid placements available")
			break
		}

		if len(moves) == 1 {
			result, err := client.Place(ctx, moves[0])
			if err != nil {
				return state, err
			}
			state = result.GameState
			if !result.Success {
				rejections++
				log.Debugf("Placement %d-%d rejected [%s]: %s", moves[0].Start, moves[0].End, result.ReasonCode, result.Reason)
				strategy.Reset()
			}
		} else {
			result, err := client.BulkPlace(ctx, moves)
			if err != nil {
				return state, err
			}
			state = result.GameState
			log.Debugf("Bulk: %d/%d placements, empty %d → %d",
				result.PlacementsExecuted, result.RequestedMoves, result.StartEmptyCells, result.EndEmptyCells)
			if !result.Success && !result.GameOver {
				rejections++
				log.Debugf("Bulk stopped on move %d [%s]: %s", result.StoppedOnMove, result.StopReasonCode, result.StoppedReason)
				strategy.Reset()
			}
		}

		if rejections > maxRejections {
			log.Warnf("⚠️  Giving up after %d rejected placements", rejections)
			break
		}

		if opts.delay > 0 {
			select {
			case <-ctx.Done():
				return state, ctx.Err()
			case <-time.After(opts.delay):
			}
		}
	}

	outcome.Rejections += rejections
	return state, nil
}

func submitScore(ctx context.Context, client *Client, name string, outcome *Outcome) {
	score, err := client.SubmitScore(ctx, name)
	if err != nil {
		log.Warnf("Failed to submit score: %v", err)
		return
	}
	outcome.Score = score
	switch {
	case score.Accepted:
		log.Infof("🏆 %s is #%d on the leaderboard with %ds", score.Name, score.Rank, score.Seconds)
	case score.Rank > 0:
		log.Infof("%s keeps #%d with a better time", score.Name, score.Rank)
	default:
		log.Infof("%ds did not make the leaderboard", score.Seconds)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "autoplay",
		Usage: "Play a domino session through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL", Sources: cli.EnvVars("GAME_URL")},
			&cli.StringFlag{Name: "config", Usage: "Game configuration ID (classic, practice, vertical)"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.StringFlag{Name: "session-file", Value: ".session", Usage: "File remembering the session between runs (empty to disable)"},
			&cli.StringFlag{Name: "name", Usage: "Player name for the leaderboard (empty to skip)"},
			&cli.StringFlag{Name: "strategy", Value: "hint", Usage: "hint (server hints) or plan (local solver)"},
			&cli.IntFlag{Name: "batch", Value: 1, Usage: "Placements per request for the plan strategy (bulk-place above 1)"},
			&cli.IntFlag{Name: "max-nodes", Usage: "Search budget for the plan strategy (0 = solver default)"},
			&cli.IntFlag{Name: "max-attempts", Value: 3, Usage: "Maximum attempts before giving up"},
			&cli.DurationFlag{Name: "delay", Usage: "Delay between requests"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Verbose output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("verbose") {
				log.SetLevel(log.DebugLevel)
			}

			log.Infof("Connecting to game server at %s", cmd.String("url"))
			client := NewClient(cmd.String("url"))

			var strategy Strategy
			switch cmd.String("strategy") {
			case "hint":
				strategy = NewHintStrategy(client)
			case "plan":
				strategy = NewPlannedStrategy(int(cmd.Int("max-nodes")))
			default:
				return fmt.Errorf("unknown strategy %q (use hint or plan)", cmd.String("strategy"))
			}

			_, err := run(ctx, client, strategy, runOptions{
				configID:    cmd.String("config"),
				resume:      cmd.String("continue"),
				sessionFile: cmd.String("session-file"),
				name:        cmd.String("name"),
				maxAttempts: int(cmd.Int("max-attempts")),
				batch:       int(cmd.Int("batch")),
				delay:       cmd.Duration("delay"),
			})
			return err
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
