package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	stderrors "errors"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"radchat/auth"
	"radchat/contract"
	"radchat/errors"
	"radchat/observability"
	"radchat/projection"
	"radchat/services"
	"radchat/sink"
)

const (
	defaultHistoryLimit = 50
	defaultSearchLimit  = 20
)

// ITurnRunner is the automation surface exposed to the external
// trigger: run one turn, or broadcast a composing indicator.
type ITurnRunner interface {
	RunAutomatedTurn(ctx context.Context) (string, error)
	NotifyTyping(duration time.Duration) error
}

// Server is the HTTP and websocket boundary of the room. It translates
// requests into service calls and room events into wire JSON, nothing
// more.
type Server struct {
	log         *slog.Logger
	verifier    auth.IVerifier
	registry    contract.IRegistry
	authService services.IAuthService
	chat        services.IChatService
	robots      services.IRobotService
	coordinator ITurnRunner
	monitor     *observability.Monitor
	timeline    *projection.Timeline
	sinkBuffer  int
}

func NewServer(log *slog.Logger, verifier auth.IVerifier, registry contract.IRegistry,
	authService services.IAuthService, chat services.IChatService, robots services.IRobotService,
	coordinator ITurnRunner, monitor *observability.Monitor, timeline *projection.Timeline,
	sinkBuffer int) *Server {
	return &Server{
		log:         log,
		verifier:    verifier,
		registry:    registry,
		authService: authService,
		chat:        chat,
		robots:      robots,
		coordinator: coordinator,
		monitor:     monitor,
		timeline:    timeline,
		sinkBuffer:  sinkBuffer,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /create_account", s.handleCreateAccount)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /robochatters", s.handleListRobots)
	mux.HandleFunc("POST /robochatter/toggle/{id}", s.requireAuth(s.handleToggleRobot))
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /history/search", s.handleSearch)
	mux.HandleFunc("GET /timeline", s.handleTimeline)
	mux.HandleFunc("POST /protected_task", s.requireAuth(s.handleTriggerTurn))
	mux.HandleFunc("POST /robot_typing", s.requireAuth(s.handleTyping))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	return mux
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	token, err := s.authService.Register(req.Email, req.Name, req.Password)
	if err != nil {
		switch {
		case stderrors.Is(err, errors.ErrUserAlreadyExists):
			http.Error(w, err.Error(), http.StatusConflict)
		case stderrors.Is(err, errors.ErrInvalidPassword):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "registration failed", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: string(token)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	token, err := s.authService.Login(req.Email, req.Password)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: string(token)})
}

type clientMessage struct {
	Text string `json:"text"`
}

// handleWS upgrades the connection, registers the session and runs the
// two pumps: published events out, participant messages in. The read
// loop owns the connection lifetime; its return disconnects the session
// and stops the writer.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}

	sessionSink := sink.NewSessionSink(s.sinkBuffer)
	session, err := s.registry.Connect(r.URL.Query().Get("token"), sessionSink)
	if err != nil {
		s.log.Info("Websocket rejected", slog.Any("error", err))
		_ = conn.Close(websocket.StatusPolicyViolation, "invalid credential")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer func() {
		cancel()
		s.registry.Disconnect(session.ID)
		_ = conn.Close(websocket.StatusNormalClosure, "bye")
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-sessionSink.Events:
				if err := wsjson.Write(ctx, conn, encodeEvent(evt)); err != nil {
					s.log.Debug("Websocket write failed", slog.Any("error", err))
					cancel()
					return
				}
			}
		}
	}()

	for {
		var msg clientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return
		}
		if strings.TrimSpace(msg.Text) == "" {
			continue
		}
		if err := s.chat.PostMessage(session.Participant, msg.Text); err != nil {
			s.log.Warn("Message rejected", slog.Any("error", err))
		}
	}
}

func (s *Server) handleListRobots(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.robots.List())
}

func (s *Server) handleToggleRobot(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid robot id", http.StatusBadRequest)
		return
	}
	robot, err := s.robots.Toggle(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, robot)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultHistoryLimit)
	entries, err := s.chat.Recent(limit)
	if err != nil {
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "missing query", http.StatusBadRequest)
		return
	}
	limit := queryInt(r, "limit", defaultSearchLimit)
	offset := queryInt(r, "offset", 0)

	hits, total, err := s.chat.Search(r.Context(), query, limit, offset)
	if err != nil {
		http.Error(w, "search unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": total, "hits": hits})
}

func (s *Server) handleTimeline(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.timeline.Items())
}

func (s *Server) handleTriggerTurn(w http.ResponseWriter, r *http.Request) {
	text, err := s.coordinator.RunAutomatedTurn(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"text": text})
	case stderrors.Is(err, errors.ErrAlreadyRunning):
		http.Error(w, err.Error(), http.StatusConflict)
	case stderrors.Is(err, errors.ErrNoAudience),
		stderrors.Is(err, errors.ErrNoEnabledRobots),
		stderrors.Is(err, errors.ErrEmptyHistory):
		// The room is quiet for a legitimate reason, tell the trigger
		// which one without treating it as a failure.
		writeJSON(w, http.StatusOK, map[string]string{"skipped": err.Error()})
	case stderrors.Is(err, errors.ErrConfigurationMissing):
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}

type typingRequest struct {
	DurationMs int64 `json:"duration_ms"`
}

func (s *Server) handleTyping(w http.ResponseWriter, r *http.Request) {
	var req typingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	err := s.coordinator.NotifyTyping(time.Duration(req.DurationMs) * time.Millisecond)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"skipped": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "live": s.registry.LiveCount()})
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.Snapshot())
}

// requireAuth checks a bearer token against the credential verifier.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if _, err := s.verifier.Verify(token); err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
