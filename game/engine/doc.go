// Package engine provides the core game logic for the domino board game.
//
// The engine package implements the game mechanics including:
//   - An 8x8 board of cells with random decorative pips
//   - Placement of 3-cell dominoes, horizontal or vertical
//   - Label snapshots that let a player name the two ends of a domino
//   - Terminal and victory detection, and a time-based score
//   - Game state management and persistence
//   - Configuration loading and validation
//
// Core Types:
//
// Board owns the grid and enforces the placement rules. The Engine interface
// defines the session-level contract, implemented by GameEngine, which wraps
// a Board with a move history, user-facing messages and the cached score.
// GameState is the serializable form of a game, while GameConfig holds the
// starting orientation, seed and message templates loaded from JSON files.
//
// Usage:
//
//	gameEngine := engine.NewEngineWithDefaults()
//
//	// Label 0 is (0,0), label 2 is (0,2): a horizontal domino centered on (0,1)
//	if _, err := gameEngine.Place(0, 2); err != nil {
//		log.Println(err)
//	}
//	state := gameEngine.GetState()
//
// Game Rules:
//
// Each domino covers three adjacent cells in a row or a column. The game ends
// when no domino fits anywhere. Leaving exactly one cell empty, which takes
// 21 dominoes, is a victory; the score is the number of whole seconds the
// game took, lower being better.
package engine
