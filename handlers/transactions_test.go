package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/masroufi/sync-api/services"
	"github.com/masroufi/sync-api/store"
)

// stubRemote implements services.Remote in memory; flipping offline
// makes every call fail so handlers exercise their degraded paths.
type stubRemote struct {
	offline bool
	nextID  int
	docs    map[string]services.Doc
}

func newStubRemote() *stubRemote {
	return &stubRemote{docs: make(map[string]services.Doc)}
}

func (s *stubRemote) key(collection, id string) string { return collection + "/" + id }

func (s *stubRemote) CreateDocument(_ context.Context, collection string, data services.Doc) (string, error) {
	if s.offline {
		return "", fmt.Errorf("remote unreachable")
	}
	s.nextID++
	id := fmt.Sprintf("remote_%d", s.nextID)
	doc := services.Doc{"id": id}
	for k, v := range data {
		doc[k] = v
	}
	s.docs[s.key(collection, id)] = doc
	return id, nil
}

func (s *stubRemote) GetDocument(_ context.Context, collection, id string) (services.Doc, error) {
	if s.offline {
		return nil, fmt.Errorf("remote unreachable")
	}
	doc, ok := s.docs[s.key(collection, id)]
	if !ok {
		return nil, services.ErrNotFound
	}
	return doc, nil
}

func (s *stubRemote) QueryDocuments(_ context.Context, collection string, _ services.Query) ([]services.Doc, error) {
	if s.offline {
		return nil, fmt.Errorf("remote unreachable")
	}
	var out []services.Doc
	for k, doc := range s.docs {
		if strings.HasPrefix(k, collection+"/") {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *stubRemote) SubscribeQuery(_ context.Context, _ string, _ services.Query, _ func([]services.Doc), _ func(error)) (func(), error) {
	if s.offline {
		return nil, fmt.Errorf("remote unreachable")
	}
	return func() {}, nil
}

func (s *stubRemote) UpdateDocument(_ context.Context, collection, id string, patch services.Doc) error {
	if s.offline {
		return fmt.Errorf("remote unreachable")
	}
	doc, ok := s.docs[s.key(collection, id)]
	if !ok {
		doc = services.Doc{"id": id}
		s.docs[s.key(collection, id)] = doc
	}
	for k, v := range patch {
		doc[k] = v
	}
	return nil
}

func (s *stubRemote) DeleteDocument(_ context.Context, collection, id string) error {
	if s.offline {
		return fmt.Errorf("remote unreachable")
	}
	delete(s.docs, s.key(collection, id))
	return nil
}

func (s *stubRemote) AtomicIncrement(_ context.Context, collection, id, field string, delta float64) error {
	if s.offline {
		return fmt.Errorf("remote unreachable")
	}
	doc, ok := s.docs[s.key(collection, id)]
	if !ok {
		return services.ErrNotFound
	}
	current, _ := doc[field].(float64)
	doc[field] = current + delta
	return nil
}

type handlerEnv struct {
	remote *stubRemote
	router *gin.Engine
}

// asUser replaces the auth middleware in tests: the handlers only read
// the user id the middleware stashed.
func asUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id != "" {
			c.Set("user_id", id)
		}
		c.Next()
	}
}

func newHandlerEnv(t *testing.T, userID string) *handlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	local, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("opening cache: %v", err)
	}
	t.Cleanup(func() { _ = local.Close() })

	remote := newStubRemote()
	lists := store.NewListCache(local)
	notifier := services.NewNotifier()
	pending := services.NewPendingQueue(local, lists, remote, notifier)

	txHandler := &TransactionHandler{Service: services.NewTransactionService(lists, remote, notifier, pending)}
	userHandler := &UserHandler{
		Budgets:      services.NewBudgetService(local, remote, notifier),
		Transactions: txHandler.Service,
	}

	r := gin.New()
	r.Use(asUser(userID))
	r.POST("/transactions", txHandler.CreateTransaction)
	r.GET("/transactions", txHandler.GetTransactions)
	r.DELETE("/transactions/:id", txHandler.DeleteTransaction)
	r.PUT("/user/budget", userHandler.SetBudget)
	r.GET("/user/budget", userHandler.GetBudget)

	return &handlerEnv{remote: remote, router: r}
}

func (e *handlerEnv) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestCreateTransactionReturnsRemoteID(t *testing.T) {
	env := newHandlerEnv(t, "u1")

	w := env.do(http.MethodPost, "/transactions", `{"amount":"42.50","category":"food","type":"expense"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	var resp struct {
		ID      string `json:"id"`
		Pending bool   `json:"pending"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if services.IsLocalID(resp.ID) || resp.Pending {
		t.Fatalf("response = %+v, want a confirmed remote id", resp)
	}
}

func TestCreateTransactionOfflineReportsPending(t *testing.T) {
	env := newHandlerEnv(t, "u1")
	env.remote.offline = true

	w := env.do(http.MethodPost, "/transactions", `{"amount":"10","category":"food","type":"expense"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 even offline: %s", w.Code, w.Body.String())
	}
	var resp struct {
		ID      string `json:"id"`
		Pending bool   `json:"pending"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !services.IsLocalID(resp.ID) || !resp.Pending {
		t.Fatalf("response = %+v, want a pending local id", resp)
	}
}

func TestCreateTransactionRejectsNonPositiveAmount(t *testing.T) {
	env := newHandlerEnv(t, "u1")

	w := env.do(http.MethodPost, "/transactions", `{"amount":"-5","category":"food","type":"expense"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandlersRequireAuthentication(t *testing.T) {
	env := newHandlerEnv(t, "")

	w := env.do(http.MethodGet, "/transactions", "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestGetTransactionsServesCachedSnapshot(t *testing.T) {
	env := newHandlerEnv(t, "u1")

	env.do(http.MethodPost, "/transactions", `{"amount":"10","category":"food","type":"expense"}`)
	env.do(http.MethodPost, "/transactions", `{"amount":"20","category":"transport","type":"expense"}`)

	w := env.do(http.MethodGet, "/transactions", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var list []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("snapshot has %d records, want 2", len(list))
	}
	if list[0]["category"] != "transport" {
		t.Fatalf("first record = %v, want the newest", list[0])
	}
}

func TestSetBudgetSurfacesRemoteFailure(t *testing.T) {
	env := newHandlerEnv(t, "u1")
	env.remote.offline = true

	w := env.do(http.MethodPut, "/user/budget", `{"budget":"3000"}`)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 when the remote rejects the write", w.Code)
	}

	// The optimistic cache write still happened: the GET falls back to it.
	w = env.do(http.MethodGet, "/user/budget", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Budget string `json:"budget"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Budget != "3000" {
		t.Fatalf("budget = %s, want the cached 3000", resp.Budget)
	}
}
