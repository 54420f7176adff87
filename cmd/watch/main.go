// Command watch follows one or more domino sessions live. It prints the
// current board of every session, then a new board for each websocket
// update and a line for victory, game over and score events.
//
//	watch --url http://localhost:8080 a1b2 c3d4
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/dominogame/game/engine"
	ws "github.com/wricardo/mcp-training/dominogame/transport/websocket"
)

// Watcher prints live updates for sessions hosted by one server
type Watcher struct {
	baseURL *url.URL
	client  *http.Client
	dialer  *websocket.Dialer

	mu  sync.Mutex
	out io.Writer
}

func NewWatcher(serverURL string, out io.Writer) (*Watcher, error) {
	u, err := url.Parse(strings.TrimSuffix(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", serverURL)
	}

	return &Watcher{
		baseURL: u,
		client:  &http.Client{Timeout: 10 * time.Second},
		dialer:  websocket.DefaultDialer,
		out:     out,
	}, nil
}

// wsURL maps the server URL to the websocket endpoint for sessionID
func (w *Watcher) wsURL(sessionID string) string {
	u := *w.baseURL
	u.Scheme = "ws"
	if w.baseURL.Scheme == "https" {
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	q := url.Values{}
	q.Set("session", sessionID)
	u.RawQuery = q.Encode()
	return u.String()
}

// fetchGameState gets the current game state from the server
func (w *Watcher) fetchGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	endpoint := w.baseURL.String() + "/api/sessions/" + url.PathEscape(sessionID) + "/state"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("session %s: %s", sessionID, resp.Status)
	}

	var state engine.GameState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	return &state, nil
}

// Watch connects to every session and prints updates until ctx is done or
// every connection has closed
func (w *Watcher) Watch(ctx context.Context, sessionIDs []string) error {
	if len(sessionIDs) == 0 {
		return errors.New("at least one session ID is required")
	}

	conns := make(map[string]*websocket.Conn, len(sessionIDs))
	closeAll := func() {
		for _, conn := range conns {
			conn.Close()
		}
	}

	for _, id := range sessionIDs {
		state, err := w.fetchGameState(ctx, id)
		if err != nil {
			closeAll()
			return err
		}
		w.render(id, state)

		conn, _, err := w.dialer.DialContext(ctx, w.wsURL(id), nil)
		if err != nil {
			closeAll()
			return fmt.Errorf("websocket for session %s: %w", id, err)
		}
		log.Debugf("WebSocket connected for session %s", id)
		conns[id] = conn
	}

	go func() {
		<-ctx.Done()
		closeAll()
	}()

	var wg sync.WaitGroup
	for id, conn := range conns {
		wg.Add(1)
		go func(id string, conn *websocket.Conn) {
			defer wg.Done()
			w.listen(id, conn)
		}(id, conn)
	}
	wg.Wait()

	return ctx.Err()
}

// listen reads messages until the connection fails
func (w *Watcher) listen(sessionID string, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Debugf("WebSocket closed for %s: %v", sessionID, err)
			return
		}

		var msg ws.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warnf("WebSocket JSON parse error: %v", err)
			continue
		}
		w.handle(sessionID, &msg)
	}
}

func (w *Watcher) handle(sessionID string, msg *ws.Message) {
	switch {
	case msg.GameState != nil:
		w.render(sessionID, msg.GameState)
	case msg.Event == "victory" || msg.Event == "game_over":
		w.printf("[%s] %s: %s\n", sessionID, strings.ToUpper(msg.Event), eventMessage(msg.Data))
	case msg.Event == "score":
		w.printf("[%s] SCORE: %s\n", sessionID, scoreLine(msg.Data))
	default:
		log.Debugf("Ignoring %q event for %s", msg.Event, sessionID)
	}
}

func (w *Watcher) render(sessionID string, state *engine.GameState) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s | Empty: %d | Placed: %d | Orientation: %s | Moves: %d\n",
		sessionID, state.ConfigName, state.EmptyCells, state.PlacedDominoes, state.Orientation, state.TotalMoves)
	for _, row := range state.Board {
		sb.WriteString("    " + row + "\n")
	}
	if state.Message != "" {
		sb.WriteString("    " + state.Message + "\n")
	}
	w.printf("%s", sb.String())
}

func (w *Watcher) printf(format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, format, args...)
}

// eventMessage pulls the message out of a game event payload
func eventMessage(data any) string {
	if event, ok := data.(map[string]any); ok {
		if message, ok := event["message"].(string); ok {
			return message
		}
	}
	return fmt.Sprint(data)
}

// scoreLine summarises a score payload
func scoreLine(data any) string {
	score, ok := data.(map[string]any)
	if !ok {
		return fmt.Sprint(data)
	}
	line := fmt.Sprintf("%v in %vs", score["name"], score["seconds"])
	if rank, ok := score["rank"].(float64); ok && rank > 0 {
		line += fmt.Sprintf(" (#%d)", int(rank))
	}
	return line
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Follow domino sessions live",
		ArgsUsage: "<session_id>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL", Sources: cli.EnvVars("GAME_URL")},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Verbose output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("verbose") {
				log.SetLevel(log.DebugLevel)
			}

			watcher, err := NewWatcher(cmd.String("url"), out)
			if err != nil {
				return err
			}

			err = watcher.Watch(ctx, cmd.Args().Slice())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand(os.Stdout).Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
