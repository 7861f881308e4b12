// Package chi exposes the chatbot over plain HTTP: an ask endpoint for
// browser clients, operational endpoints, and the LINE webhook mount.
package chi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/campusbot/internal/knowledge"
	"github.com/kailas-cloud/campusbot/internal/logger"
	"github.com/kailas-cloud/campusbot/internal/repository/tabular"
)

// defaultWebUserID keys conversation history for /ask callers that do not
// identify themselves.
const defaultWebUserID = "web-user"

// Answerer is the consumer contract for answer generation.
type Answerer interface {
	Answer(ctx context.Context, question, userID string) string
}

// Reloader is the consumer contract for full sheet reloads.
type Reloader interface {
	Reload(ctx context.Context) *knowledge.State
}

// ConversationCounter reports how many users currently hold history.
type ConversationCounter interface {
	ActiveUsers() int
}

// Server holds the HTTP handlers. Handlers log through the per-request
// logger placed in the context by the wide-event middleware.
type Server struct {
	answers       Answerer
	reloads       Reloader
	store         *knowledge.Store
	conversations ConversationCounter
	webhook       http.Handler
}

// NewServer creates an HTTP API server. webhook may be nil when LINE
// credentials are not configured; the route is then not mounted.
func NewServer(
	answers Answerer,
	reloads Reloader,
	store *knowledge.Store,
	conversations ConversationCounter,
	webhook http.Handler,
) *Server {
	return &Server{
		answers:       answers,
		reloads:       reloads,
		store:         store,
		conversations: conversations,
		webhook:       webhook,
	}
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/", s.Banner)
	r.Get("/ask", s.Ask)
	r.Get("/stats", s.Stats)
	r.Get("/reload-sheets", s.ReloadSheets)
	r.Get("/metrics", s.Metrics)
	if s.webhook != nil {
		r.Post("/webhook", s.webhook.ServeHTTP)
	}
}

type bannerResponse struct {
	Status    string            `json:"status"`
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

// Banner handles GET /.
func (s *Server) Banner(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, bannerResponse{
		Status:  "running",
		Message: "CMTC IT Chatbot API",
		Endpoints: map[string]string{
			"ask":     "/ask?text=your_question",
			"webhook": "/webhook (POST)",
			"reload":  "/reload-sheets",
			"stats":   "/stats",
		},
	})
}

type askResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	UserID   string `json:"userId"`
}

// Ask handles GET /ask. A missing text parameter keeps the original error
// contract: a 200 with an error body, so existing clients keying on the
// body keep working.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if text == "" {
		writeJSON(w, http.StatusOK, map[string]string{
			"error": "กรุณาส่ง query ?text=...",
		})
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID = defaultWebUserID
	}

	answer := s.answers.Answer(r.Context(), text, userID)

	writeJSON(w, http.StatusOK, askResponse{
		Question: text,
		Answer:   answer,
		UserID:   userID,
	})
}

type statsResponse struct {
	tabular.Counts
	KnowledgeBase       int `json:"knowledgeBase"`
	ActiveConversations int `json:"activeConversations"`
}

// Stats handles GET /stats. Counts come from the currently published state,
// so a reload in flight never produces mixed numbers.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	state := s.store.Current()

	writeJSON(w, http.StatusOK, statsResponse{
		Counts:              state.Snapshot.Counts(),
		KnowledgeBase:       state.Index.Len(),
		ActiveConversations: s.conversations.ActiveUsers(),
	})
}

// ReloadSheets handles GET /reload-sheets. Per-category fetch failures are
// absorbed by the reload itself, so the endpoint always reports success
// once the swap has happened. The rebuild is detached from the request
// lifetime: a client disconnect mid-build must not cancel every fetch and
// embedding call and publish the resulting empty state over a good one.
func (s *Server) ReloadSheets(w http.ResponseWriter, r *http.Request) {
	state := s.reloads.Reload(context.WithoutCancel(r.Context()))

	logger.FromContext(r.Context()).Info("Sheets reloaded via endpoint",
		zap.Int("entries", state.Index.Len()),
	)

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Sheets reloaded successfully",
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
