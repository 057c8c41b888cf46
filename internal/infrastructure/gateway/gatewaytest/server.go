// Package gatewaytest runs an in-process stand-in for the budget query
// service so gateway and command tests can exercise real HTTP round trips.
package gatewaytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Queries that make the fake service misbehave.
const (
	QueryServiceError   = "invalid fiscal year"
	QueryValidationList = "trigger validation"
	QueryEmptyError     = "crash without body"
	QueryGarbage        = "garbage response"
	QuerySlow           = "slow query"
)

// Fixed credentials accepted by the fake login.
const (
	Username = "analyst"
	Password = "s3cret"
	Token    = "fake-bearer-token"
)

// DoDResult is the answer to every ordinary query.
const DoDResult = `{
	"query": "What was the Department of Defense budget for fiscal year 2023?",
	"data": [{"department": "DoD", "amount": 816000000000}],
	"insights": "<p>The Department of Defense received $816B.</p>",
	"query_parameters": {"metric": "budget", "year": "2023"}
}`

// Server records what the fake service received.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	queries     []string
	authHeaders []string
	logouts     int
}

// New starts the fake service; BaseURL points at its /api root.
func New() *Server {
	s := &Server{}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.recordAuth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/query", s.handleQuery)
		r.Get("/query/{queryID}", s.handleDetails)
		r.Get("/history", s.handleHistory)
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "mcp-server"})
		})
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Post("/register", s.handleRegister)
			r.Post("/logout", s.handleLogout)
		})
	})

	s.Server = httptest.NewServer(r)
	return s
}

// BaseURL is the API root clients should be configured with.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// Queries returns every submitted question in order.
func (s *Server) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

// AuthHeaders returns the Authorization header of every request.
func (s *Server) AuthHeaders() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.authHeaders...)
}

// Logouts counts logout calls.
func (s *Server) Logouts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logouts
}

func (s *Server) recordAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.authHeaders = append(s.authHeaders, r.Header.Get("Authorization"))
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid JSON"})
		return
	}
	s.mu.Lock()
	s.queries = append(s.queries, body.Query)
	s.mu.Unlock()

	switch body.Query {
	case QueryServiceError:
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid fiscal year"})
	case QueryValidationList:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"detail": []map[string]interface{}{{"loc": []string{"body", "query"}, "msg": "field required"}},
		})
	case QueryEmptyError:
		w.WriteHeader(http.StatusInternalServerError)
	case QuerySlow:
		select {
		case <-r.Context().Done():
			return
		case <-time.After(2 * time.Second):
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(DoDResult))
	case QueryGarbage:
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [`))
	default:
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(DoDResult))
	}
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "queryID")
	if id == "missing" {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Query not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":      id,
		"query":   "What was the Department of Defense budget for fiscal year 2023?",
		"results": json.RawMessage(DoDResult),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"history": []map[string]interface{}{
			{"id": "q-2", "query": "Compare education spending between 2020 and 2022", "timestamp": "2024-03-02T10:00:00Z"},
			{"id": "q-1", "query": "What was the Department of Defense budget for fiscal year 2023?", "timestamp": "2024-03-01T09:00:00Z"},
		},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&creds)
	if creds.Username != Username || creds.Password != Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": Token, "token_type": "bearer"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
	}
	_ = json.NewDecoder(r.Body).Decode(&creds)
	if creds.Username == Username {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Username already exists"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"username": creds.Username, "message": "User registered"})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.logouts++
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
