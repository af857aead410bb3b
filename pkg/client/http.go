package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/decred/slog"
	"github.com/vctt94/coinched/pkg/coinche"
	"github.com/vctt94/coinched/pkg/event"
	"github.com/vctt94/coinched/pkg/server"
)

// ErrNotJoined is returned by actions made before joining a party.
var ErrNotJoined = errors.New("not in a party")

// ServerError is an error answered by the server.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

// IsPartyGone reports whether err means the party was cancelled.
func IsPartyGone(err error) bool {
	var serr *ServerError
	return errors.As(err, &serr) && serr.Status == http.StatusGone
}

// HTTPBackend talks to a coinched server over HTTP.
type HTTPBackend struct {
	baseURL string
	hc      *http.Client
	log     slog.Logger

	mu     sync.RWMutex
	player server.PlayerID
	joined bool
}

// NewHTTPBackend creates a backend for the server at baseURL, such as
// "http://127.0.0.1:3000". hc must not time out requests since pulls are
// long-polls; nil uses a default client.
func NewHTTPBackend(baseURL string, hc *http.Client, log slog.Logger) *HTTPBackend {
	if hc == nil {
		hc = &http.Client{}
	}
	if log == nil {
		log = slog.Disabled
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      hc,
		log:     log,
	}
}

// PlayerID returns the id given by the server on join.
func (b *HTTPBackend) PlayerID() (server.PlayerID, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.player, b.joined
}

// Resume binds the backend to a player that joined earlier.
func (b *HTTPBackend) Resume(id server.PlayerID) {
	b.mu.Lock()
	b.player = id
	b.joined = true
	b.mu.Unlock()
}

func (b *HTTPBackend) path(route string) (string, error) {
	id, ok := b.PlayerID()
	if !ok {
		return "", ErrNotJoined
	}
	return fmt.Sprintf("/%s/%s", route, id), nil
}

// do sends a request and decodes the JSON answer into out.
func (b *HTTPBackend) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp server.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Error == "" {
			errResp.Error = http.StatusText(resp.StatusCode)
		}
		return &ServerError{Status: resp.StatusCode, Message: errResp.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %v", path, err)
	}
	return nil
}

// action posts to one of the per-player action routes.
func (b *HTTPBackend) action(ctx context.Context, route string, body interface{}) (event.Event, error) {
	path, err := b.path(route)
	if err != nil {
		return event.Event{}, err
	}
	var ev event.Event
	if err := b.do(ctx, http.MethodPost, path, body, &ev); err != nil {
		return event.Event{}, err
	}
	return ev, nil
}

// Join blocks until the server matched three other players.
func (b *HTTPBackend) Join(ctx context.Context) (server.NewPartyInfo, error) {
	var info server.NewPartyInfo
	if err := b.do(ctx, http.MethodPost, "/join", nil, &info); err != nil {
		return server.NewPartyInfo{}, err
	}

	b.mu.Lock()
	b.player = info.PlayerID
	b.joined = true
	b.mu.Unlock()
	b.log.Debugf("Joined party %s as %s (player %s)", info.PartyID, info.Seat, info.PlayerID)
	return info, nil
}

func (b *HTTPBackend) Bid(ctx context.Context, trump coinche.Suit, target coinche.Target) (event.Event, error) {
	return b.action(ctx, "bid", server.BidRequest{Suit: trump, Target: target})
}

func (b *HTTPBackend) Pass(ctx context.Context) (event.Event, error) {
	return b.action(ctx, "pass", nil)
}

func (b *HTTPBackend) Coinche(ctx context.Context) (event.Event, error) {
	return b.action(ctx, "coinche", nil)
}

func (b *HTTPBackend) PlayCard(ctx context.Context, card coinche.Card) (event.Event, error) {
	return b.action(ctx, "play", server.PlayRequest{Card: card})
}

// Pull waits for the event following after.
func (b *HTTPBackend) Pull(ctx context.Context, after int) (event.Event, error) {
	path, err := b.path("pull")
	if err != nil {
		return event.Event{}, err
	}
	var ev event.Event
	if err := b.do(ctx, http.MethodGet, fmt.Sprintf("%s/%d", path, after), nil, &ev); err != nil {
		return event.Event{}, err
	}
	return ev, nil
}

// Leave quits the party, cancelling it for everyone.
func (b *HTTPBackend) Leave(ctx context.Context) error {
	path, err := b.path("leave")
	if err != nil {
		return err
	}
	if err := b.do(ctx, http.MethodPost, path, nil, nil); err != nil {
		return err
	}
	b.mu.Lock()
	b.joined = false
	b.mu.Unlock()
	return nil
}

func (b *HTTPBackend) Hand(ctx context.Context) (coinche.Hand, error) {
	path, err := b.path("hand")
	if err != nil {
		return 0, err
	}
	var hand coinche.Hand
	err = b.do(ctx, http.MethodGet, path, nil, &hand)
	return hand, err
}

func (b *HTTPBackend) Scores(ctx context.Context) ([2]int, error) {
	path, err := b.path("scores")
	if err != nil {
		return [2]int{}, err
	}
	var scores [2]int
	err = b.do(ctx, http.MethodGet, path, nil, &scores)
	return scores, err
}

func (b *HTTPBackend) Phase(ctx context.Context) (server.PhaseSummary, error) {
	path, err := b.path("phase")
	if err != nil {
		return server.PhaseSummary{}, err
	}
	var phase server.PhaseSummary
	err = b.do(ctx, http.MethodGet, path, nil, &phase)
	return phase, err
}

// History returns the finished hands of the party.
func (b *HTTPBackend) History(ctx context.Context) ([]server.HandSummary, error) {
	path, err := b.path("history")
	if err != nil {
		return nil, err
	}
	var hands []server.HandSummary
	err = b.do(ctx, http.MethodGet, path, nil, &hands)
	return hands, err
}

// Health reports the server status. It needs no player.
func (b *HTTPBackend) Health(ctx context.Context) (server.HealthResponse, error) {
	var health server.HealthResponse
	err := b.do(ctx, http.MethodGet, "/health", nil, &health)
	return health, err
}
