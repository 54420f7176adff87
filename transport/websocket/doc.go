// Package websocket pushes live game updates to spectators of a session.
//
// A Hub owns every connection. Its Run loop is the only writer of the room
// registry; each client gets a read pump (keepalive only) and a write pump.
// Broadcasts are queued and never block the HTTP handler that produced
// them: when the queue is full the message is dropped, and a spectator
// whose own buffer is full is disconnected.
//
// Every frame holds exactly one JSON message:
//
//	{"session_id": "a1b2", "event": "state_update", "game_state": {...}}
//	{"session_id": "a1b2", "event": "victory", "data": {...}}
//	{"session_id": "a1b2", "event": "score", "data": {"name": "ada", "seconds": 94, "rank": 1}}
//
// Spectators pick their session with ?session=a1b2; case does not matter.
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
