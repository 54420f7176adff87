package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/mcp-training/dominogame/api"
	"github.com/wricardo/mcp-training/dominogame/game/config"
	"github.com/wricardo/mcp-training/dominogame/game/engine"
	"github.com/wricardo/mcp-training/dominogame/game/leaderboard"
	"github.com/wricardo/mcp-training/dominogame/game/service"
	"github.com/wricardo/mcp-training/dominogame/game/session"
)

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

// newGameServer runs the real REST API over a fresh in-memory game
func newGameServer(t *testing.T) *httptest.Server {
	t.Helper()
	configManager, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	scores, err := leaderboard.New(leaderboard.DefaultCapacity, nil)
	if err != nil {
		t.Fatalf("Failed to create leaderboard: %v", err)
	}
	gameService := service.NewGameService(session.NewManager(), configManager, service.WithScoreboard(scores))
	server := httptest.NewServer(api.NewServer(gameService, nil))
	t.Cleanup(server.Close)
	return server
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected JSON content type, got %q", r.Header.Get("Content-Type"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"empty_cells": 61, "orientation": "vertical"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	var state engine.GameState
	if err := client.apiCall(context.Background(), "POST", "/api/anything", map[string]int{"start": 0}, &state); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if state.EmptyCells != 61 || state.Orientation != engine.Vertical {
		t.Errorf("Unexpected decoded state %+v", state)
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json":
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "session not found"})
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)

	if err := client.apiCall(context.Background(), "GET", "/json", nil, nil); err == nil || err.Error() != "session not found" {
		t.Errorf("Expected the API error message, got %v", err)
	}
	if err := client.apiCall(context.Background(), "GET", "/plain", nil, nil); err == nil || err.Error() != "API error: 502" {
		t.Errorf("Expected status fallback, got %v", err)
	}
}

func TestClient_apiCall_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	if err := client.apiCall(context.Background(), "GET", "/api/health", nil, nil); err == nil {
		t.Error("Expected error for unreachable server")
	}
}

func TestClient_MissingSession(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	result, err := client.handleGameState(context.Background(), callRequest("game_state", nil))
	if err != nil {
		t.Fatalf("handleGameState failed: %v", err)
	}
	if !result.IsError {
		t.Error("Expected a tool error without session_id")
	}
	if text := resultText(t, result); !strings.Contains(text, "session_id is required") {
		t.Errorf("Unexpected message %q", text)
	}
}

func TestClient_PlaceRequiresLabels(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	result, _ := client.handlePlace(context.Background(), callRequest("place", map[string]interface{}{
		"session_id": "ab12",
		"start":      float64(0),
	}))
	if !result.IsError {
		t.Error("Expected a tool error without an end label")
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), callRequest("game_instructions", nil))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}
	text := resultText(t, result)

	for _, content := range []string{
		"Domino Board Game - Complete Instructions",
		"GAME OBJECTIVE:",
		"8x8 board",
		"places 21 dominoes",
		"PLACING A DOMINO:",
		"REJECTION CODES:",
		"not_two_apart",
		"STRATEGY TIPS:",
		"up to 21 moves",
	} {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
}

func TestFormatGameState(t *testing.T) {
	eng := engine.NewEngineWithDefaults(engine.WithSeed(1))
	if _, err := eng.Place(8, 10); err != nil {
		t.Fatalf("Place failed: %v", err)
	}

	text := formatGameState(eng.GetState())

	if !strings.Contains(text, "Empty: 61 | Placed: 1 | Orientation: horizontal") {
		t.Errorf("Header missing, got:\n%s", text)
	}
	// row 1 starts with three covered cells, label 11 is the first empty one
	if !strings.Contains(text, "## ## ## 11 12 13 14 15") {
		t.Errorf("Label grid missing, got:\n%s", text)
	}
	if !strings.Contains(text, "# # # ") {
		t.Errorf("Pip grid missing, got:\n%s", text)
	}
	if formatGameState(nil) != "No game state available" {
		t.Error("nil state should be reported")
	}
}

func TestFormatGameState_Victory(t *testing.T) {
	text := formatGameState(&engine.GameState{GameOver: true, Victory: true, Score: 95, Message: "Victory!"})
	if !strings.Contains(text, "VICTORY! Score: 95s") || !strings.Contains(text, "Message: Victory!") {
		t.Errorf("Victory not reported, got:\n%s", text)
	}

	text = formatGameState(&engine.GameState{GameOver: true})
	if !strings.Contains(text, "GAME OVER") {
		t.Errorf("Game over not reported, got:\n%s", text)
	}
}

func TestFormatPlaceResult(t *testing.T) {
	text := formatPlaceResult(6, 7, &service.PlaceResult{
		ReasonCode: "not_two_apart",
		Reason:     "endpoints are not two cells apart",
		GameState:  &engine.GameState{},
	})
	if !strings.Contains(text, "✗ Placement 6-7 rejected [not_two_apart]") {
		t.Errorf("Rejection not reported, got:\n%s", text)
	}
}

func TestDescribeCell(t *testing.T) {
	eng := engine.NewEngineWithDefaults(engine.WithSeed(3))
	eng.PlaceWithOrientation(engine.Vertical, 7, 23)
	state := eng.GetState()

	if text := describeCell(state, 1, 7); !strings.Contains(text, "State: FILLED") {
		t.Errorf("Expected filled cell, got:\n%s", text)
	}

	text := describeCell(state, 1, 6)
	if !strings.Contains(text, "Label: 14") {
		t.Errorf("Expected label 14, got:\n%s", text)
	}
	if !strings.Contains(text, "horizontal domino: false") || !strings.Contains(text, "vertical domino: true") {
		t.Errorf("Room not reported correctly, got:\n%s", text)
	}

	if text := describeCell(state, 8, 0); !strings.Contains(text, "out of bounds") {
		t.Errorf("Expected out of bounds, got:\n%s", text)
	}
}

func TestClient_Integration(t *testing.T) {
	server := newGameServer(t)
	client := NewClient(server.URL)
	ctx := context.Background()

	created, err := client.handleCreateSession(ctx, callRequest("create_session", map[string]interface{}{"config_id": "vertical"}))
	if err != nil {
		t.Fatalf("create_session failed: %v", err)
	}
	text := resultText(t, created)
	if !strings.HasPrefix(text, "Created session: ") {
		t.Fatalf("Unexpected create output:\n%s", text)
	}
	sessionID := strings.TrimSpace(strings.SplitN(strings.TrimPrefix(text, "Created session: "), "\n", 2)[0])

	// vertical config: 7-23 covers column 7 rows 0-2
	placed, _ := client.handlePlace(ctx, callRequest("place", map[string]interface{}{
		"session_id": sessionID,
		"start":      float64(7),
		"end":        float64(23),
		"intent":     "cover the corner column",
	}))
	if text := resultText(t, placed); !strings.Contains(text, "✓ Placed 7-23") || !strings.Contains(text, "Empty: 61") {
		t.Errorf("Unexpected place output:\n%s", text)
	}

	rejected, _ := client.handlePlace(ctx, callRequest("place", map[string]interface{}{
		"session_id": sessionID,
		"start":      float64(6),
		"end":        float64(7),
	}))
	if text := resultText(t, rejected); !strings.Contains(text, "rejected") {
		t.Errorf("Expected a rejection:\n%s", text)
	}

	oriented, _ := client.handleSetOrientation(ctx, callRequest("set_orientation", map[string]interface{}{
		"session_id":  sessionID,
		"orientation": "horizontal",
	}))
	if text := resultText(t, oriented); !strings.HasPrefix(text, "Orientation: horizontal") {
		t.Errorf("Unexpected orientation output:\n%s", text)
	}

	bulk, _ := client.handleBulkPlace(ctx, callRequest("bulk_place", map[string]interface{}{
		"session_id": sessionID,
		"moves": []interface{}{
			map[string]interface{}{"start": float64(0), "end": float64(2)},
			map[string]interface{}{"start": float64(0), "end": float64(2)},
		},
	}))
	if text := resultText(t, bulk); !strings.Contains(text, "1/2 placements executed") || !strings.Contains(text, "Stopped on move 2 [unknown_label]") {
		t.Errorf("Unexpected bulk output:\n%s", text)
	}

	cells, _ := client.handleEmptyCells(ctx, callRequest("empty_cells", map[string]interface{}{"session_id": sessionID}))
	if text := resultText(t, cells); !strings.Contains(text, "Empty cells: 58") || !strings.Contains(text, "Legal placements") {
		t.Errorf("Unexpected cells output:\n%s", text)
	}

	history, _ := client.handleMoveHistory(ctx, callRequest("move_history", map[string]interface{}{
		"session_id": sessionID,
		"order":      "asc",
	}))
	if text := resultText(t, history); !strings.Contains(text, "Total: 4") || !strings.Contains(text, "1. vertical 7-23 ✓") {
		t.Errorf("Unexpected history output:\n%s", text)
	}

	hint, _ := client.handleHint(ctx, callRequest("hint", map[string]interface{}{"session_id": sessionID}))
	if hint.IsError {
		t.Errorf("Hint failed: %s", resultText(t, hint))
	}

	score, _ := client.handleSubmitScore(ctx, callRequest("submit_score", map[string]interface{}{
		"session_id": sessionID,
		"name":       "ada",
	}))
	if !score.IsError {
		t.Error("Scoring an unfinished game should fail")
	}

	board, _ := client.handleLeaderboard(ctx, callRequest("leaderboard", nil))
	if text := resultText(t, board); text != "Leaderboard is empty" {
		t.Errorf("Unexpected leaderboard output: %q", text)
	}

	configs, _ := client.handleListConfigs(ctx, callRequest("list_configs", nil))
	if text := resultText(t, configs); !strings.Contains(text, "config_id: classic") {
		t.Errorf("Unexpected configs output:\n%s", text)
	}

	sessions, _ := client.handleListSessions(ctx, callRequest("list_sessions", nil))
	if text := resultText(t, sessions); !strings.Contains(text, "Active Sessions (1)") {
		t.Errorf("Unexpected sessions output:\n%s", text)
	}

	reset, _ := client.handleReset(ctx, callRequest("reset_game", map[string]interface{}{"session_id": sessionID}))
	if text := resultText(t, reset); !strings.Contains(text, "Empty: 64") {
		t.Errorf("Unexpected reset output:\n%s", text)
	}

	missing, _ := client.handleGetSession(ctx, callRequest("get_session", map[string]interface{}{"session_id": "zzzz"}))
	if !missing.IsError {
		t.Error("Expected an error for an unknown session")
	}
}

func TestClient_ToolsList(t *testing.T) {
	client := NewClient("http://localhost:8080")
	ctx := context.Background()

	client.GetMCPServer().HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`))
	response := client.GetMCPServer().HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))

	data, err := json.Marshal(response)
	if err != nil {
		t.Fatalf("Failed to marshal response: %v", err)
	}
	for _, tool := range []string{
		"create_session", "list_sessions", "get_session", "game_state", "empty_cells",
		"set_orientation", "place", "bulk_place", "reset_game", "move_history", "hint",
		"submit_score", "leaderboard", "list_configs", "game_instructions", "describe_cell",
	} {
		if !strings.Contains(string(data), `"`+tool+`"`) {
			t.Errorf("Tool %s not registered", tool)
		}
	}
}
