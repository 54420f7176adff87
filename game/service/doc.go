// Package service provides the business logic layer for the domino game.
//
// The service package implements:
//   - Multi-session game management
//   - Placement processing with machine-readable rejection codes
//   - Hints backed by the solver
//   - Score submission for won games
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
// Scoreboard records finishing times; Hinter suggests placements.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP/console)
// and the game engine. Each session owns its own engine, so sessions never share
// a board. Rejected placements are reported in results rather than as errors;
// errors are reserved for missing sessions, bad requests and scoring rules.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("configs")
//	scores, _ := leaderboard.New(leaderboard.DefaultCapacity, leaderboard.NewFileStore("top.json"))
//	gameService := service.NewGameService(sessionMgr, configMgr, service.WithScoreboard(scores))
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Place(ctx, info.ID, engine.Move{Start: 0, End: 2}, false)
package service
