package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/dominogame/game/engine"
	"github.com/wricardo/mcp-training/dominogame/game/leaderboard"
	"github.com/wricardo/mcp-training/dominogame/game/service"
	"github.com/wricardo/mcp-training/dominogame/game/solver"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Domino Board Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Domino Board Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Cover an 8x8 board with 3-cell dominoes until exactly one cell is left empty.

AVAILABLE TOOLS:
- create_session / get_session / list_sessions: manage games
- game_state: board, orientation and status
- empty_cells: current labels and every legal placement
- set_orientation: choose horizontal or vertical for the next domino
- place: place one domino by its two end labels
- bulk_place: several placements at once
- reset_game, move_history, hint
- submit_score, leaderboard: record a won game
- list_configs, game_instructions, describe_cell

NOTE: The 'intent' parameter on place/bulk_place serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func sessionOnlySchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"session_id": sessionIDProperty(),
		},
		Required: []string{"session_id"},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use, see list_configs (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: sessionOnlySchema(),
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, orientation and game status",
		InputSchema: sessionOnlySchema(),
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "empty_cells",
		Description: "List the labels of the empty cells and every legal placement as a start/end label pair",
		InputSchema: sessionOnlySchema(),
	}, c.handleEmptyCells)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_orientation",
		Description: "Choose the orientation used by place when none is given",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"orientation": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"horizontal", "vertical"},
					"description": "Orientation for the next domino",
				},
			},
			Required: []string{"session_id", "orientation"},
		},
	}, c.handleSetOrientation)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place",
		Description: "Place one domino by the labels of its two end cells (two cells apart on one row or column)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"start": map[string]interface{}{
					"type":        "integer",
					"description": "Label of one end cell",
				},
				"end": map[string]interface{}{
					"type":        "integer",
					"description": "Label of the other end cell",
				},
				"orientation": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"horizontal", "vertical"},
					"description": "Orientation for this domino (optional, defaults to the session orientation)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this placement (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before placing",
				},
			},
			Required: []string{"session_id", "start", "end"},
		},
	}, c.handlePlace)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_place",
		Description: fmt.Sprintf("Place up to %d dominoes in sequence, stopping at the first rejection", engine.MaxBulkPlacements),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"start":       map[string]interface{}{"type": "integer"},
							"end":         map[string]interface{}{"type": "integer"},
							"orientation": map[string]interface{}{"type": "string", "enum": []string{"horizontal", "vertical"}},
						},
						"required": []string{"start", "end"},
					},
					"description": "Placements to play in order",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before placing",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkPlace)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to an empty board",
		InputSchema: sessionOnlySchema(),
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get paginated placement history, rejected attempts included",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Entries per page (default 20)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Sort order (default desc)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "hint",
		Description: "Suggest the next placement, preferring one on a winning line",
		InputSchema: sessionOnlySchema(),
	}, c.handleHint)

	// Scores
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "submit_score",
		Description: "Record the time of a won game on the leaderboard",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"name": map[string]interface{}{
					"type":        "string",
					"description": fmt.Sprintf("Player name (at most %d characters)", engine.MaxPlayerName),
				},
			},
			Required: []string{"session_id", "name"},
		},
	}, c.handleSubmitScore)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "leaderboard",
		Description: "Show the best recorded times",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleLeaderboard)

	// Configuration and help
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of the game and tips for playing it through these tools",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get detailed info about one board cell: label, state, pips and room for each orientation",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell (0-based)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell (0-based)",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Argument helpers. JSON numbers arrive as float64.

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func requireSession(args map[string]interface{}) (string, *mcp.CallToolResult) {
	sessionID, _ := args["session_id"].(string)
	if strings.TrimSpace(sessionID) == "" {
		return "", mcp.NewToolResultError("session_id is required")
	}
	return sessionID, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)
	if configID == "" {
		configID, _ = args["config_name"].(string)
	}

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "playing"
		if s.GameState != nil && s.GameState.GameOver {
			status = "lost"
			if s.GameState.Victory {
				status = "won"
			}
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Created: %s, %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), status)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleEmptyCells(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var cells service.CellsResponse
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/cells"), nil, &cells); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCells(&cells)), nil
}

func (c *Client) handleSetOrientation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}
	orientation, _ := args["orientation"].(string)

	var state engine.GameState
	body := map[string]string{"orientation": orientation}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/orientation"), body, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Orientation: %s\n\n%s", state.Orientation, formatGameState(&state))), nil
}

func (c *Client) handlePlace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	start, okStart := intArg(args, "start")
	end, okEnd := intArg(args, "end")
	if !okStart || !okEnd {
		return mcp.NewToolResultError("start and end labels are required"), nil
	}
	orientation, _ := args["orientation"].(string)
	reset, _ := args["reset"].(bool)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	intent, _ := args["intent"].(string)
	_ = intent

	body := map[string]interface{}{
		"start": start,
		"end":   end,
		"reset": reset,
	}
	if orientation != "" {
		body["orientation"] = orientation
	}

	var result service.PlaceResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/place"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPlaceResult(start, end, &result)), nil
}

func (c *Client) handleBulkPlace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}
	movesRaw, _ := args["moves"].([]interface{})
	reset, _ := args["reset"].(bool)

	moves := make([]map[string]interface{}, 0, len(movesRaw))
	for i, m := range movesRaw {
		raw, ok := m.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("move %d must be an object with start and end", i+1)), nil
		}
		start, okStart := intArg(raw, "start")
		end, okEnd := intArg(raw, "end")
		if !okStart || !okEnd {
			return mcp.NewToolResultError(fmt.Sprintf("move %d needs start and end labels", i+1)), nil
		}
		move := map[string]interface{}{"start": start, "end": end}
		if orientation, _ := raw["orientation"].(string); orientation != "" {
			move["orientation"] = orientation
		}
		moves = append(moves, move)
	}

	body := map[string]interface{}{
		"moves": moves,
		"reset": reset,
	}

	var result service.BulkPlaceResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-place"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkPlaceResult(sessionID, &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order, _ := args["order"].(string); order != "" {
		params.Set("order", order)
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var hint solver.Hint
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/hint"), nil, &hint); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHint(&hint)), nil
}

func (c *Client) handleSubmitScore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}
	name, _ := args["name"].(string)

	var result service.ScoreResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/score"), map[string]string{"name": name}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	if result.Accepted {
		fmt.Fprintf(&b, "Score recorded: %s finished in %ds (rank %d)\n\n", result.Name, result.Seconds, result.Rank)
	} else if result.Rank > 0 {
		fmt.Fprintf(&b, "%s already holds rank %d with a better or equal time\n\n", result.Name, result.Rank)
	} else {
		fmt.Fprintf(&b, "%ds did not make the leaderboard\n\n", result.Seconds)
	}
	b.WriteString(formatLeaderboard(result.Leaderboard))
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Entries []leaderboard.Entry `json:"entries"`
	}
	if err := c.apiCall(ctx, "GET", "/api/leaderboard", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLeaderboard(response.Entries)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		seeded := "random pips"
		if cfg.Seeded {
			seeded = "fixed pips"
		}
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Starts %s, %s\n\n",
			cfg.Name, cfg.ConfigID, cfg.Description, cfg.StartingOrientation, seeded)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := fmt.Sprintf(`Domino Board Game - Complete Instructions

GAME OBJECTIVE:
Place 3-cell dominoes on an %[1]dx%[1]d board until exactly one cell is left empty.
%[1]d*%[1]d = 64 cells, so a perfect game places %[2]d dominoes.

BOARD:
• Every cell shows a pip count (1-6) while empty and '#' once covered
• Empty cells are labelled row*%[1]d+col, so (0,0) is 0 and (7,7) is 63
• Labels always come from the latest empty_cells/game_state output

PLACING A DOMINO:
• A domino covers three cells in a row (horizontal) or a column (vertical)
• Name it by the labels of its two END cells, in either order
• The two ends must be exactly two cells apart on the same row (horizontal)
  or the same column (vertical); the middle cell is covered automatically
• All three cells must be empty, and a domino cannot hang off the board

ORIENTATION:
• Each session has a current orientation used when place gets none
• set_orientation changes it; place and bulk_place also accept one per move

REJECTION CODES:
• unknown_label  - a label is not an empty cell in the current snapshot
• not_two_apart  - the ends are not two cells apart
• not_aligned    - the ends are not on one row/column for the orientation
• no_room        - the middle or an end cell is already covered
• game_over      - the game has already ended

END OF GAME:
• The game ends as soon as no domino fits anywhere
• VICTORY when exactly one empty cell remains; your time is the score
• GAME OVER when more cells are left but nothing fits

STRATEGY TIPS:
• 64 = 3*21 + 1: every cell but one must be covered, so plan the hole early
• Colour cells by (row+col) mod 3: each domino covers one cell of every colour
• Fill edges and corners first; isolated single cells and 2-cell gaps are dead
• Use hint when stuck: it searches for a placement on a winning line

API USAGE BEST PRACTICES:
• Call empty_cells for the exact legal start/end pairs
• Use bulk_place (up to %[3]d moves) once you have a plan
• reset_game starts over; history keeps every attempt
• submit_score after a VICTORY to enter the leaderboard

SESSION MANAGEMENT:
• Each session has a unique 4-character ID
• Sessions keep independent boards and configurations

Good luck covering the board!`, engine.BoardSize, engine.MaxDominoes, engine.MaxBulkPlacements)

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}
	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required"), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(describeCell(&state, row, col)), nil
}

// Formatting helpers

func describeCell(state *engine.GameState, row, col int) string {
	size := len(state.Grid)
	if row < 0 || row >= size || col < 0 || col >= size {
		return fmt.Sprintf("Coordinates (%d, %d) are out of bounds. Board is %dx%d (0-%d for row and col)",
			row, col, size, size, size-1)
	}

	cell := state.Grid[row][col]
	label := engine.Position{Row: row, Col: col}.Label(size)

	var b strings.Builder
	fmt.Fprintf(&b, "Cell at row %d, col %d:\n━━━━━━━━━━━━━━━━━━━━━━━━\n", row, col)
	if cell.State == engine.Filled {
		fmt.Fprintf(&b, "State: FILLED\nLabel: %d (not selectable, the cell is covered)\n", label)
		return b.String()
	}

	fmt.Fprintf(&b, "State: EMPTY\nLabel: %d\nPips: %d\n", label, cell.Pips)
	empty := func(r, c int) bool {
		return r >= 0 && r < size && c >= 0 && c < size && state.Grid[r][c].State == engine.Empty
	}
	fmt.Fprintf(&b, "Can be the middle of a horizontal domino: %v\n", empty(row, col-1) && empty(row, col+1))
	fmt.Fprintf(&b, "Can be the middle of a vertical domino: %v\n", empty(row-1, col) && empty(row+1, col))
	return b.String()
}

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Empty: %d | Placed: %d | Orientation: %s | Moves: %d | Possible placements: %d\n\n",
		state.EmptyCells, state.PlacedDominoes, state.Orientation, state.TotalMoves, state.PossiblePlacements)

	b.WriteString("Pips (# = covered):\n")
	for _, row := range state.Board {
		b.WriteString(row)
		b.WriteString("\n")
	}

	b.WriteString("\nLabels:\n")
	b.WriteString(formatLabels(state.Grid))

	if state.GameOver {
		if state.Victory {
			fmt.Fprintf(&b, "\n🎉 VICTORY! Score: %ds", state.Score)
		} else {
			b.WriteString("\n💀 GAME OVER")
		}
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}

	return b.String()
}

// formatLabels prints the label of every empty cell and ## for covered ones
func formatLabels(grid [][]engine.CellView) string {
	var b strings.Builder
	size := len(grid)
	for r, row := range grid {
		for c, cell := range row {
			if c > 0 {
				b.WriteByte(' ')
			}
			if cell.State == engine.Filled {
				b.WriteString("##")
			} else {
				fmt.Fprintf(&b, "%2d", engine.Position{Row: r, Col: c}.Label(size))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatCells(cells *service.CellsResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Orientation: %s | Empty cells: %d\n\n", cells.Orientation, cells.EmptyCells)

	labels := make([]string, 0, len(cells.Cells))
	for _, cell := range cells.Cells {
		labels = append(labels, fmt.Sprintf("%d=(%d,%d)", cell.Label, cell.Row, cell.Col))
	}
	fmt.Fprintf(&b, "Labels: %s\n\n", strings.Join(labels, " "))

	if len(cells.Placements) == 0 {
		b.WriteString("No legal placements: the game is over.\n")
		return b.String()
	}

	var horizontal, vertical []string
	for _, p := range cells.Placements {
		pair := fmt.Sprintf("%d-%d", p.Start, p.End)
		if p.Orientation == engine.Vertical {
			vertical = append(vertical, pair)
		} else {
			horizontal = append(horizontal, pair)
		}
	}
	fmt.Fprintf(&b, "Legal placements (%d):\n", len(cells.Placements))
	fmt.Fprintf(&b, "  horizontal (%d): %s\n", len(horizontal), strings.Join(horizontal, " "))
	fmt.Fprintf(&b, "  vertical (%d): %s\n", len(vertical), strings.Join(vertical, " "))
	return b.String()
}

func formatPlaceResult(start, end int, result *service.PlaceResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ Placed %d-%d\n", start, end)
	} else {
		fmt.Fprintf(&b, "✗ Placement %d-%d rejected", start, end)
		if result.ReasonCode != "" {
			fmt.Fprintf(&b, " [%s]", result.ReasonCode)
		}
		if result.Reason != "" {
			fmt.Fprintf(&b, ": %s", result.Reason)
		}
		b.WriteString("\n")
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatBulkPlaceResult(sessionID string, result *service.BulkPlaceResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s: %d/%d placements executed | empty %d → %d\n",
		sessionID, result.PlacementsExecuted, result.RequestedMoves, result.StartEmptyCells, result.EndEmptyCells)

	if result.Truncated {
		fmt.Fprintf(&b, "Request truncated to %d placements\n", result.Limit)
	}
	if result.StopReasonCode != "" {
		fmt.Fprintf(&b, "Stopped on move %d [%s]: %s\n", result.StoppedOnMove, result.StopReasonCode, result.StoppedReason)
	}

	for i, p := range result.Placements {
		start, end := p.Endpoints(engine.BoardSize)
		fmt.Fprintf(&b, "%d. %s %d-%d ✓\n", i+1, p.Orientation, start, end)
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d) | Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		status := "✓"
		if !move.Success {
			status = "✗ " + move.Reason
		}
		fmt.Fprintf(&b, "%d. %s %d-%d %s [Empty: %d]\n",
			move.MoveNumber, move.Orientation, move.Start, move.End, status, move.EmptyCells)
	}

	return b.String()
}

func formatHint(hint *solver.Hint) string {
	if hint.Winning {
		return fmt.Sprintf("Place %s %d-%d (a winning line of %d placements starts here)",
			hint.Placement.Orientation, hint.Start, hint.End, hint.Remaining)
	}
	return fmt.Sprintf("Place %s %d-%d (no winning line found from this board)",
		hint.Placement.Orientation, hint.Start, hint.End)
}

func formatLeaderboard(entries []leaderboard.Entry) string {
	if len(entries) == 0 {
		return "Leaderboard is empty"
	}
	var b strings.Builder
	b.WriteString("Leaderboard:\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "%2d. %-*s %ds\n", i+1, engine.MaxPlayerName, e.Name, e.Seconds)
	}
	return b.String()
}
