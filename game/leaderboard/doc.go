// Package leaderboard keeps the best finishing times of winning games.
//
// A Leaderboard holds at most ten entries ordered from the fastest game, one
// entry per player name. Scores are whole seconds, so lower is better. A
// Store persists the list; FileStore keeps it in a JSON file (top.json).
package leaderboard
