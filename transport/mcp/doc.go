// Package mcp exposes the domino game to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a REST request against
// the api package, so the MCP surface never touches game state directly and
// agents see the same rules, errors and websocket broadcasts as any other client.
//
// MCP Tools:
//   - create_session, get_session, list_sessions: session management
//   - game_state: pip grid, label grid and status
//   - empty_cells: the current label snapshot and every legal start/end pair
//   - set_orientation: orientation used when a placement names none
//   - place: one domino by its two end labels
//   - bulk_place: several placements, stopping at the first rejection
//   - reset_game, move_history, hint
//   - submit_score, leaderboard
//   - list_configs, game_instructions, describe_cell
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: POST bodies handed to GetMCPServer().HandleMessage on /mcp
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
