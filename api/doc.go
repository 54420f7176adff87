// Package api serves the domino game over HTTP.
//
// Routes (gorilla/mux):
//
// Sessions:
//   - POST   /api/sessions               create, body {"config_id": "classic"}
//   - GET    /api/sessions               list, ?sort=created|accessed&order=asc|desc&limit=N
//   - GET    /api/sessions/{id}          session info with game state
//   - DELETE /api/sessions/{id}
//
// Game:
//   - GET  /api/sessions/{id}/state       full GameState
//   - GET  /api/sessions/{id}/cells       label snapshot and legal placements
//   - POST /api/sessions/{id}/orientation {"orientation": "vertical"}
//   - POST /api/sessions/{id}/place       {"start": 8, "end": 10, "orientation": "h", "reset": false}
//   - POST /api/sessions/{id}/bulk-place  {"moves": [{"start": 0, "end": 2}, ...]}
//   - POST /api/sessions/{id}/reset
//   - GET  /api/sessions/{id}/history     ?page=1&limit=20&order=desc
//   - GET  /api/sessions/{id}/hint
//
// Scores and configuration:
//   - POST /api/sessions/{id}/score  {"name": "ada"}, won games only
//   - GET  /api/leaderboard
//   - GET  /api/configs, POST /api/configs, GET /api/configs/{name}
//   - GET  /api/health
//
// Live updates:
//   - GET /ws?session={id} upgrades to the websocket hub. State-changing
//     requests broadcast the new GameState, and victory/game_over events
//     are sent separately.
//
// A rejected placement is a normal 200 response with success=false and a
// reason_code. Errors use {"error": "..."} with 404 for unknown sessions or
// configs, 400 for invalid input, 409 for score submissions the game state
// does not allow and 500 otherwise.
package api
