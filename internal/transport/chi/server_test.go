package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/campusbot/internal/domain"
	"github.com/kailas-cloud/campusbot/internal/knowledge"
	"github.com/kailas-cloud/campusbot/internal/repository/tabular"
)

type stubAnswerer struct {
	reply     string
	questions []string
	userIDs   []string
}

func (s *stubAnswerer) Answer(_ context.Context, question, userID string) string {
	s.questions = append(s.questions, question)
	s.userIDs = append(s.userIDs, userID)
	return s.reply
}

type stubReloader struct {
	store *knowledge.Store
	state *knowledge.State
	calls int
	ctx   context.Context
}

func (s *stubReloader) Reload(ctx context.Context) *knowledge.State {
	s.calls++
	s.ctx = ctx
	s.store.Publish(s.state)
	return s.state
}

type stubConversations struct{ active int }

func (s *stubConversations) ActiveUsers() int { return s.active }

func newTestRouter(t *testing.T, srv *Server) *chi.Mux {
	t.Helper()
	r := chi.NewRouter()
	srv.Register(r)
	return r
}

func doGet(t *testing.T, r http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
	return rec, body
}

func TestBanner(t *testing.T) {
	srv := NewServer(&stubAnswerer{}, nil, knowledge.NewStore(), &stubConversations{}, nil)

	rec, body := doGet(t, newTestRouter(t, srv), "/")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["status"] != "running" || body["message"] != "CMTC IT Chatbot API" {
		t.Errorf("banner = %v", body)
	}
	endpoints, ok := body["endpoints"].(map[string]any)
	if !ok || endpoints["ask"] != "/ask?text=your_question" {
		t.Errorf("endpoints = %v", body["endpoints"])
	}
}

func TestAsk(t *testing.T) {
	answerer := &stubAnswerer{reply: "มีนักเรียน 25 คน"}
	srv := NewServer(answerer, nil, knowledge.NewStore(), &stubConversations{}, nil)
	r := newTestRouter(t, srv)

	rec, body := doGet(t, r, "/ask?text=มีนักเรียนกี่คน&userId=u42")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["question"] != "มีนักเรียนกี่คน" || body["answer"] != "มีนักเรียน 25 คน" || body["userId"] != "u42" {
		t.Errorf("response = %v", body)
	}
	if answerer.userIDs[0] != "u42" {
		t.Errorf("answerer saw user %q", answerer.userIDs[0])
	}
}

func TestAsk_UserIDDefaultsToWebUser(t *testing.T) {
	answerer := &stubAnswerer{reply: "ok"}
	srv := NewServer(answerer, nil, knowledge.NewStore(), &stubConversations{}, nil)

	_, body := doGet(t, newTestRouter(t, srv), "/ask?text=x")

	if body["userId"] != defaultWebUserID {
		t.Errorf("userId = %v, want %q", body["userId"], defaultWebUserID)
	}
	if answerer.userIDs[0] != defaultWebUserID {
		t.Errorf("answerer saw user %q", answerer.userIDs[0])
	}
}

func TestAsk_MissingTextReturnsErrorBody(t *testing.T) {
	answerer := &stubAnswerer{reply: "ignored"}
	srv := NewServer(answerer, nil, knowledge.NewStore(), &stubConversations{}, nil)

	rec, body := doGet(t, newTestRouter(t, srv), "/ask")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["error"] != "กรุณาส่ง query ?text=..." {
		t.Errorf("error body = %v", body)
	}
	if len(answerer.questions) != 0 {
		t.Error("answerer must not be called without text")
	}
}

func TestStats_ReadsPublishedState(t *testing.T) {
	store := knowledge.NewStore()
	store.Publish(&knowledge.State{
		Snapshot: &tabular.Snapshot{
			Students: []domain.Record{{"name": "ก"}, {"name": "ข"}},
			Teachers: []domain.Record{{"name": "ค"}},
		},
		Index: knowledge.NewIndex([]domain.KnowledgeEntry{
			{Text: "a", Embedding: []float32{1}},
			{Text: "b", Embedding: []float32{1}},
			{Text: "c", Embedding: []float32{1}},
		}),
	})

	srv := NewServer(&stubAnswerer{}, nil, store, &stubConversations{active: 4}, nil)
	rec, body := doGet(t, newTestRouter(t, srv), "/stats")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["students"] != float64(2) || body["teachers"] != float64(1) || body["rooms"] != float64(0) {
		t.Errorf("counts = %v", body)
	}
	if body["knowledgeBase"] != float64(3) {
		t.Errorf("knowledgeBase = %v", body["knowledgeBase"])
	}
	if body["activeConversations"] != float64(4) {
		t.Errorf("activeConversations = %v", body["activeConversations"])
	}
}

func TestReloadSheets(t *testing.T) {
	store := knowledge.NewStore()
	reloader := &stubReloader{
		store: store,
		state: &knowledge.State{
			Snapshot: &tabular.Snapshot{Students: []domain.Record{{"name": "ก"}}},
			Index:    knowledge.NewIndex([]domain.KnowledgeEntry{{Text: "a", Embedding: []float32{1}}}),
		},
	}
	srv := NewServer(&stubAnswerer{}, reloader, store, &stubConversations{}, nil)

	rec, body := doGet(t, newTestRouter(t, srv), "/reload-sheets")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["status"] != "success" || body["message"] != "Sheets reloaded successfully" {
		t.Errorf("response = %v", body)
	}
	if reloader.calls != 1 {
		t.Errorf("reloader called %d times", reloader.calls)
	}
	if store.Current() != reloader.state {
		t.Error("reload must publish the new state")
	}
}

func TestReloadSheets_DetachedFromRequestContext(t *testing.T) {
	store := knowledge.NewStore()
	reloader := &stubReloader{
		store: store,
		state: &knowledge.State{
			Snapshot: &tabular.Snapshot{Students: []domain.Record{{"name": "ก"}}},
			Index:    knowledge.NewIndex([]domain.KnowledgeEntry{{Text: "a", Embedding: []float32{1}}}),
		},
	}
	srv := NewServer(&stubAnswerer{}, reloader, store, &stubConversations{}, nil)
	r := newTestRouter(t, srv)

	// A client that disconnected before the rebuild finished.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/reload-sheets", nil).WithContext(ctx)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if reloader.calls != 1 {
		t.Fatalf("reloader called %d times", reloader.calls)
	}
	if err := reloader.ctx.Err(); err != nil {
		t.Errorf("reload context carries the request cancelation: %v", err)
	}
	if store.Current() != reloader.state {
		t.Error("reload must still publish the new state")
	}
}

func TestWebhook_NotMountedWithoutHandler(t *testing.T) {
	srv := NewServer(&stubAnswerer{}, nil, knowledge.NewStore(), &stubConversations{}, nil)
	r := newTestRouter(t, srv)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when LINE is not configured", rec.Code)
	}
}

func TestWebhook_MountedHandlerReceivesRequest(t *testing.T) {
	called := false
	webhook := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	srv := NewServer(&stubAnswerer{}, nil, knowledge.NewStore(), &stubConversations{}, webhook)
	r := newTestRouter(t, srv)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", nil))

	if !called || rec.Code != http.StatusOK {
		t.Errorf("webhook not dispatched: called=%v status=%d", called, rec.Code)
	}
}
