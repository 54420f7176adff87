// Package config loads the JSON game configurations from a directory.
//
// A configuration names the game, picks the starting orientation, may fix
// the pip seed, and holds the message templates shown to the player:
//
//	{
//	  "name": "Practice",
//	  "description": "Same pips on every board",
//	  "starting_orientation": "horizontal",
//	  "seed": 7,
//	  "messages": {"welcome": "...", "victory": "Won in %d seconds", "game_over": "%d cells left"}
//	}
//
// Configurations are addressed by file name without .json ("classic",
// "practice", "vertical"). Names are limited to letters, digits, dashes and
// underscores. classic is the default; without it the first valid file is
// used, and without any valid file the built-in classic configuration.
package config
