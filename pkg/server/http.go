package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/decred/slog"
	"github.com/gorilla/mux"
	"github.com/vctt94/coinched/pkg/coinche"
)

// BidRequest is the body of POST /bid/{id}.
type BidRequest struct {
	Suit   coinche.Suit   `json:"suit"`
	Target coinche.Target `json:"target"`
}

// PlayRequest is the body of POST /play/{id}.
type PlayRequest struct {
	Card coinche.Card `json:"card"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status       string `json:"status"`
	Players      int    `json:"players"`
	WaitingJoins int    `json:"waiting_joins"`
}

// HTTPServer exposes a GameManager over HTTP with JSON bodies.
type HTTPServer struct {
	gm     *GameManager
	db     Database
	log    slog.Logger
	router *mux.Router
}

// NewHTTPServer routes requests to gm. db serves /history and may be nil.
func NewHTTPServer(gm *GameManager, db Database, log slog.Logger) *HTTPServer {
	if log == nil {
		log = slog.Disabled
	}
	s := &HTTPServer{gm: gm, db: db, log: log, router: mux.NewRouter()}

	r := s.router
	r.HandleFunc("/join", s.handleJoin).Methods(http.MethodPost)
	r.HandleFunc("/leave/{id}", s.handleLeave).Methods(http.MethodPost)
	r.HandleFunc("/pass/{id}", s.handlePass).Methods(http.MethodPost)
	r.HandleFunc("/coinche/{id}", s.handleCoinche).Methods(http.MethodPost)
	r.HandleFunc("/bid/{id}", s.handleBid).Methods(http.MethodPost)
	r.HandleFunc("/play/{id}", s.handlePlay).Methods(http.MethodPost)
	r.HandleFunc("/hand/{id}", s.handleHand).Methods(http.MethodGet)
	r.HandleFunc("/scores/{id}", s.handleScores).Methods(http.MethodGet)
	r.HandleFunc("/phase/{id}", s.handlePhase).Methods(http.MethodGet)
	r.HandleFunc("/pull/{id}/{after}", s.handlePull).Methods(http.MethodGet)
	r.HandleFunc("/history/{id}", s.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, errors.New("no such route"))
	})
	return s
}

func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// errorStatus maps manager errors to HTTP status codes.
func errorStatus(err error) int {
	var bidErr *BidRejectedError
	var playErr *PlayRejectedError
	switch {
	case errors.Is(err, ErrUnknownPlayer), errors.Is(err, ErrUnknownEvent):
		return http.StatusNotFound
	case errors.Is(err, ErrWrongPhaseForBid), errors.Is(err, ErrWrongPhaseForPlay):
		return http.StatusConflict
	case errors.As(err, &bidErr), errors.As(err, &playErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrPartyGone):
		return http.StatusGone
	case errors.Is(err, ErrJoinExpired):
		return http.StatusRequestTimeout
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		s.log.Errorf("Failed to encode response: %v", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{Error: "internal error"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// fail reports a manager error.
func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
	} else {
		s.log.Debugf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	s.writeError(w, status, err)
}

func (s *HTTPServer) playerID(w http.ResponseWriter, r *http.Request) (PlayerID, bool) {
	id, err := ParsePlayerID(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid player id"))
		return 0, false
	}
	return id, true
}

func (s *HTTPServer) handleJoin(w http.ResponseWriter, r *http.Request) {
	info, err := s.gm.Join(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *HTTPServer) handleLeave(w http.ResponseWriter, r *http.Request) {
	id, ok := s.playerID(w, r)
	if !ok {
		return
	}
	if err := s.gm.Leave(id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, struct{}{})
}

func (s *HTTPServer) handlePass(w http.ResponseWriter, r *http.Request) {
	id, ok := s.playerID(w, r)
	if !ok {
		return
	}
	ev, err := s.gm.Pass(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ev)
}

func (s *HTTPServer) handleCoinche(w http.ResponseWriter, r *http.Request) {
	id, ok := s.playerID(w, r)
	if !ok {
		return
	}
	ev, err := s.gm.Coinche(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ev)
}

func (s *HTTPServer) handleBid(w http.ResponseWriter, r *http.Request) {
	id, ok := s.playerID(w, r)
	if !ok {
		return
	}
	var req BidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	ev, err := s.gm.Bid(id, req.Suit, req.Target)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ev)
}

func (s *HTTPServer) handlePlay(w http.ResponseWriter, r *http.Request) {
	id, ok := s.playerID(w, r)
	if !ok {
		return
	}
	var req PlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	ev, err := s.gm.PlayCard(id, req.Card)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ev)
}

func (s *HTTPServer) handleHand(w http.ResponseWriter, r *http.Request) {
	id, ok := s.playerID(w, r)
	if !ok {
		return
	}
	hand, err := s.gm.CurrentHand(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, hand)
}

func (s *HTTPServer) handleScores(w http.ResponseWriter, r *http.Request) {
	id, ok := s.playerID(w, r)
	if !ok {
		return
	}
	scores, err := s.gm.CurrentScores(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, scores)
}

func (s *HTTPServer) handlePhase(w http.ResponseWriter, r *http.Request) {
	id, ok := s.playerID(w, r)
	if !ok {
		return
	}
	phase, err := s.gm.CurrentPhase(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, phase)
}

// handlePull is the long-poll. It returns when the next event exists or
// the client goes away.
func (s *HTTPServer) handlePull(w http.ResponseWriter, r *http.Request) {
	id, ok := s.playerID(w, r)
	if !ok {
		return
	}
	after, err := strconv.Atoi(mux.Vars(r)["after"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid event id"))
		return
	}
	ev, err := s.gm.WaitForEvent(r.Context(), id, after)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ev)
}

func (s *HTTPServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := s.playerID(w, r)
	if !ok {
		return
	}
	if s.db == nil {
		s.writeError(w, http.StatusNotFound, errors.New("history is disabled"))
		return
	}
	partyID, err := s.gm.PartyID(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	hands, err := s.db.LoadHands(partyID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if hands == nil {
		hands = []HandSummary{}
	}
	s.writeJSON(w, http.StatusOK, hands)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:       "ok",
		Players:      s.gm.Players(),
		WaitingJoins: s.gm.WaitingJoins(),
	})
}
