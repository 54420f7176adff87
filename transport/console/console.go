package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/wricardo/mcp-training/dominogame/game/engine"
	"github.com/wricardo/mcp-training/dominogame/game/leaderboard"
)

// ErrQuit is returned by Play when the player types q or quit at a prompt
var ErrQuit = errors.New("player quit")

// Scoreboard records the times of winning games
type Scoreboard interface {
	Add(name string, seconds int64) (int, bool, error)
	Top() []leaderboard.Entry
}

// Result summarises a finished console game
type Result struct {
	Victory    bool
	Score      int64
	EmptyCells int
	Placed     int
	Name       string
	Rank       int
}

// Console plays a single game on a terminal-like reader and writer
type Console struct {
	engine  *engine.GameEngine
	scores  Scoreboard
	in      *bufio.Scanner
	out     io.Writer
	log     logrus.FieldLogger
	pending []string
}

// Option configures a Console
type Option func(*Console)

// WithScoreboard records winning times and prints the top scores at the end
func WithScoreboard(scores Scoreboard) Option {
	return func(c *Console) { c.scores = scores }
}

// WithLogger sets the logger used for placement traces
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Console) { c.log = logger }
}

// New creates a console game around eng
func New(eng *engine.GameEngine, in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		engine: eng,
		in:     bufio.NewScanner(in),
		out:    out,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Play runs the prompt loop until the game ends, then prints the outcome and
// the leaderboard. Input running out before the end yields io.ErrUnexpectedEOF.
func (c *Console) Play(ctx context.Context) (*Result, error) {
	state := c.engine.GetState()
	if state.Message != "" {
		fmt.Fprintln(c.out, state.Message)
	}

	for !c.engine.IsGameOver() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.turn(); err != nil {
			return nil, err
		}
	}

	return c.finish()
}

// turn asks for one domino and keeps asking until the engine accepts it
func (c *Console) turn() error {
	c.showBoard()

	var orientation engine.Orientation
	for {
		o, err := c.askOrientation()
		if err != nil {
			return err
		}
		if len(c.placementsFor(o)) > 0 {
			orientation = o
			break
		}
		fmt.Fprintf(c.out, "No %s domino fits anymore, choose again.\n", o)
	}
	if err := c.engine.SetOrientation(orientation); err != nil {
		return err
	}
	c.showPlacements(orientation)

	for {
		start, err := c.askLabel("Start label: ")
		if err != nil {
			return err
		}
		end, err := c.askLabel("End label: ")
		if err != nil {
			return err
		}

		p, err := c.engine.Place(start, end)
		if err != nil {
			c.log.WithFields(logrus.Fields{"start": start, "end": end}).Debugf("[CONSOLE] rejected: %v", err)
			fmt.Fprintf(c.out, "Rejected: %v. Try another pair.\n", err)
			continue
		}
		c.log.WithFields(logrus.Fields{"start": start, "end": end, "center": p.Center}).Debug("[CONSOLE] placed")
		fmt.Fprintln(c.out, c.engine.GetState().Message)
		return nil
	}
}

func (c *Console) finish() (*Result, error) {
	state := c.engine.GetState()
	result := &Result{
		Victory:    state.Victory,
		Score:      state.Score,
		EmptyCells: state.EmptyCells,
		Placed:     state.PlacedDominoes,
	}

	c.showBoard()
	if !state.Victory {
		fmt.Fprintf(c.out, "Game over! Failed to place all %d dominoes, %d cells are still empty.\n",
			engine.MaxDominoes, state.EmptyCells)
		c.showScores()
		return result, nil
	}

	fmt.Fprintf(c.out, "Congratulations! You won with a score of: %d\n", state.Score)
	if c.scores == nil {
		return result, nil
	}

	for {
		fmt.Fprint(c.out, "Enter your name: ")
		name, err := c.nextLine()
		if err != nil {
			return result, err
		}

		rank, accepted, err := c.scores.Add(name, state.Score)
		if errors.Is(err, leaderboard.ErrEmptyName) || errors.Is(err, leaderboard.ErrNameTooLong) {
			fmt.Fprintf(c.out, "%v\n", err)
			continue
		}
		if err != nil {
			return result, err
		}

		result.Name = name
		result.Rank = rank
		switch {
		case accepted:
			fmt.Fprintf(c.out, "You are #%d on the leaderboard!\n", rank)
		case rank > 0:
			fmt.Fprintf(c.out, "You already hold #%d with a better time.\n", rank)
		default:
			fmt.Fprintln(c.out, "Your time did not make the leaderboard.")
		}
		break
	}

	c.showScores()
	return result, nil
}

func (c *Console) showBoard() {
	state := c.engine.GetState()
	fmt.Fprintf(c.out, "\nEmpty: %d | Placed: %d | Orientation: %s\n",
		state.EmptyCells, state.PlacedDominoes, state.Orientation)

	labels := c.labelRows(state)
	for row, pips := range state.Board {
		fmt.Fprintf(c.out, "%-15s   %s\n", pips, labels[row])
	}
}

// labelRows renders the label grid next to the pips, ## for covered cells
func (c *Console) labelRows(state *engine.GameState) []string {
	rows := make([]string, len(state.Grid))
	for r, row := range state.Grid {
		cells := make([]string, len(row))
		for col, cell := range row {
			if cell.State == engine.Empty {
				cells[col] = fmt.Sprintf("%2d", engine.Position{Row: cell.Row, Col: cell.Col}.Label(state.Size))
			} else {
				cells[col] = "##"
			}
		}
		rows[r] = strings.Join(cells, " ")
	}
	return rows
}

func (c *Console) placementsFor(o engine.Orientation) []engine.Placement {
	var placements []engine.Placement
	for _, p := range c.engine.GetPossiblePlacements() {
		if p.Orientation == o {
			placements = append(placements, p)
		}
	}
	return placements
}

func (c *Console) showPlacements(o engine.Orientation) {
	pairs := make([]string, 0)
	for _, p := range c.placementsFor(o) {
		start, end := p.Endpoints(engine.BoardSize)
		pairs = append(pairs, fmt.Sprintf("%d-%d", start, end))
	}
	fmt.Fprintf(c.out, "Possible %s placements (start-end): %s\n", o, strings.Join(pairs, ", "))
}

func (c *Console) showScores() {
	if c.scores == nil {
		return
	}
	top := c.scores.Top()
	if len(top) == 0 {
		fmt.Fprintln(c.out, "No scores yet.")
		return
	}
	fmt.Fprintln(c.out, "Top scores:")
	for i, entry := range top {
		fmt.Fprintf(c.out, "%2d. %-*s %ds\n", i+1, engine.MaxPlayerName, entry.Name, entry.Seconds)
	}
}

func (c *Console) askOrientation() (engine.Orientation, error) {
	for {
		fmt.Fprint(c.out, "Next domino direction [V/H]: ")
		token, err := c.next()
		if err != nil {
			return "", err
		}
		if token == "v" || token == "V" || token == "h" || token == "H" {
			o, _ := engine.ParseOrientation(token)
			return o, nil
		}
		fmt.Fprintln(c.out, "Please answer V or H.")
	}
}

// askLabel reads tokens until one names a cell in the current snapshot
func (c *Console) askLabel(prompt string) (int, error) {
	for {
		fmt.Fprint(c.out, prompt)
		token, err := c.next()
		if err != nil {
			return 0, err
		}
		label, err := strconv.Atoi(token)
		if err == nil && c.isEmptyLabel(label) {
			return label, nil
		}
		fmt.Fprintf(c.out, "%q is not an empty cell.\n", token)
	}
}

func (c *Console) isEmptyLabel(label int) bool {
	for _, cell := range c.engine.EmptyCells() {
		if cell.Label == label {
			return true
		}
	}
	return false
}

// next returns the next whitespace-separated token
func (c *Console) next() (string, error) {
	for len(c.pending) == 0 {
		if !c.in.Scan() {
			return "", c.eof()
		}
		c.pending = strings.Fields(c.in.Text())
	}
	token := c.pending[0]
	c.pending = c.pending[1:]
	if token == "q" || token == "quit" {
		return "", ErrQuit
	}
	return token, nil
}

// nextLine returns what is left of the current line, or the next non-blank one
func (c *Console) nextLine() (string, error) {
	if len(c.pending) > 0 {
		line := strings.Join(c.pending, " ")
		c.pending = nil
		return line, nil
	}
	for c.in.Scan() {
		if line := strings.TrimSpace(c.in.Text()); line != "" {
			return line, nil
		}
	}
	return "", c.eof()
}

func (c *Console) eof() error {
	if err := c.in.Err(); err != nil {
		return err
	}
	return io.ErrUnexpectedEOF
}
