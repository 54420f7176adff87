// Package console plays the domino game on a line-oriented terminal.
//
// Each turn prints the pip grid next to the label grid, asks for a direction
// (V or H), lists the start-end pairs that fit in that direction and reads two
// labels until the engine accepts the domino. Once no domino fits anywhere the
// outcome is printed; a winner is asked for a name and the best times are
// listed. Typing q or quit at any prompt abandons the game.
//
// Usage:
//
//	game := console.New(engine.NewEngineWithDefaults(), os.Stdin, os.Stdout,
//		console.WithScoreboard(board))
//	result, err := game.Play(ctx)
package console
