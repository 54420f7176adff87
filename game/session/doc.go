// Package session keeps the domino games that are being played.
//
// A Manager maps 4-character hex IDs to sessions. Lookups ignore case, so
// "A1F3" and "a1f3" name the same game. Each session owns a GameEngine
// whose board reports placements, rejections and the end of the game to
// the manager's logger, tagged with the session ID.
//
// With a SessionPersistence configured the manager saves a session when it
// is created and whenever the service asks it to, and loads sessions it
// does not hold in memory on demand. CleanupExpiredSessions only evicts the
// in-memory copy, so an idle game can still be resumed later.
//
// FilePersistence stores one versioned JSON Record per session:
//
//	sessions/
//	  a1f3.json
//	  07bc.json
//
//	manager := session.NewManagerWithPersistence(persistence, session.WithLogger(log))
//	sess, err := manager.Create("", cfg)
package session
