// Package apitest is an in-memory implementation of the todo service used by
// tests and the dev-server command.
package apitest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/amonks/taskdash/task"
)

// Request is a recorded call.
type Request struct {
	Method string
	Path   string
}

type failure struct {
	method string
	path   string
	code   int
}

// Server holds users and their tasks in memory.
type Server struct {
	mu       sync.Mutex
	users    map[string][]byte
	tasks    map[string][]task.Task
	nextID   int
	secret   []byte
	tokenTTL time.Duration
	requests []Request
	failures []failure
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger logs each request.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithClock sets the clock used for created-at stamps and token issue times.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates an empty server.
func New(opts ...Option) *Server {
	s := &Server{
		users:    make(map[string][]byte),
		tasks:    make(map[string][]task.Task),
		nextID:   1,
		secret:   []byte(uuid.NewString()),
		tokenTTL: 24 * time.Hour,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start serves s on a local test listener closed at test cleanup and returns
// its URL.
func Start(t testing.TB, s *Server) string {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

// Handler returns the HTTP routes of the service.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.record)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/signup", s.signup)
		r.Post("/login", s.login)
	})

	r.Route("/api/todo", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Get("/search", s.search)
		r.Put("/update", s.update)
		r.Put("/status", s.setStatus)
		r.Delete("/delete", s.remove)
	})

	return r
}

// AddUser registers a user directly.
func (s *Server) AddUser(username, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = hash
}

// Seed appends tasks for a user, assigning IDs to tasks that have none.
func (s *Server) Seed(username string, tasks ...task.Task) []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID.IsZero() {
			t.ID = s.allocateID()
		}
		if t.Status == "" {
			t.Status = task.StatusPending
		}
		if t.Priority == "" {
			t.Priority = task.PriorityMedium
		}
		s.tasks[username] = append(s.tasks[username], t)
		out = append(out, t)
	}
	return out
}

// Tasks returns a user's tasks in creation order.
func (s *Server) Tasks(username string) []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]task.Task{}, s.tasks[username]...)
}

// IssueToken returns a valid bearer token for username.
func (s *Server) IssueToken(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, err := s.issueToken(username)
	if err != nil {
		panic(err)
	}
	return token
}

// RevokeTokens invalidates every issued token, as if all sessions expired.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secret = []byte(uuid.NewString())
}

// FailNext makes the next request matching method and path respond with code.
func (s *Server) FailNext(method, path string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{method: method, path: path, code: code})
}

// Requests returns the calls received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// CountRequests returns how many calls matched method and path.
func (s *Server) CountRequests(method, path string) int {
	count := 0
	for _, req := range s.Requests() {
		if req.Method == method && req.Path == path {
			count++
		}
	}
	return count
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimRight(r.URL.Path, "/")
		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: path})
		code := 0
		for i, f := range s.failures {
			if f.method == r.Method && f.path == path {
				code = f.code
				s.failures = append(s.failures[:i:i], s.failures[i+1:]...)
				break
			}
		}
		s.mu.Unlock()

		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", path),
			zap.String("request_id", middleware.GetReqID(r.Context())))

		if code != 0 {
			writeError(w, code, http.StatusText(code))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.MinCost)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[creds.Username]; exists {
		writeError(w, http.StatusConflict, "Username already exists")
		return
	}
	s.users[creds.Username] = hash
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User created"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	hash, ok := s.users[creds.Username]
	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(creds.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	token, err := s.issueToken(creds.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) issueToken(username string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   username,
		Issuer:    "taskdash-dev",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

type userKey struct{}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}
		s.mu.Lock()
		secret := s.secret
		s.mu.Unlock()

		var claims jwt.RegisteredClaims
		_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return secret, nil
		}, jwt.WithTimeFunc(s.now))
		if err != nil {
			writeError(w, http.StatusForbidden, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), claims.Subject)))
	})
}

// taskResponse is a task as the service sends it: due dates are echoed as
// the offset-less wall-clock string the client sent.
type taskResponse struct {
	ID          task.ID       `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	DueDate     *string       `json:"dueDate"`
	Priority    task.Priority `json:"priority"`
	Status      task.Status   `json:"status"`
	CreatedAt   *string       `json:"createdAt,omitempty"`
}

func newTaskResponse(t task.Task) taskResponse {
	resp := taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
	}
	if t.DueDate != nil {
		value := task.FormatWire(*t.DueDate)
		resp.DueDate = &value
	}
	if t.CreatedAt != nil {
		value := t.CreatedAt.Format(time.RFC3339)
		resp.CreatedAt = &value
	}
	return resp
}

func newTaskResponses(tasks []task.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, newTaskResponse(t))
	}
	return out
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newTaskResponses(s.Tasks(userFrom(r.Context()))))
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	matches := []task.Task{}
	for _, t := range s.Tasks(userFrom(r.Context())) {
		if strings.Contains(strings.ToLower(t.Title), query) || strings.Contains(strings.ToLower(t.Description), query) {
			matches = append(matches, t)
		}
	}
	writeJSON(w, http.StatusOK, newTaskResponses(matches))
}

type taskBody struct {
	ID          task.ID       `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	DueDate     *string       `json:"dueDate"`
	Priority    task.Priority `json:"priority"`
	Status      task.Status   `json:"status"`
}

// due keeps an offset-less due date as a wall-clock time; the service has
// no zone of its own.
func (b taskBody) due() (*time.Time, error) {
	if b.DueDate == nil || strings.TrimSpace(*b.DueDate) == "" {
		return nil, nil
	}
	due, err := task.ParseTimestamp(*b.DueDate, time.UTC)
	if err != nil {
		return nil, err
	}
	return &due, nil
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var body taskBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(body.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	due, err := body.due()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	status := body.Status
	if status == "" {
		status = task.StatusPending
	}
	created := s.now()
	t := task.Task{
		Title:       body.Title,
		Description: body.Description,
		DueDate:     due,
		Priority:    task.NormalizePriority(string(body.Priority)),
		Status:      status,
		CreatedAt:   &created,
	}

	s.mu.Lock()
	t.ID = s.allocateID()
	user := userFrom(r.Context())
	s.tasks[user] = append(s.tasks[user], t)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, newTaskResponse(t))
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var body taskBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	due, err := body.due()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.modify(w, userFrom(r.Context()), body.ID, func(t *task.Task) {
		t.Title = body.Title
		t.Description = body.Description
		t.DueDate = due
	})
}

func (s *Server) setStatus(w http.ResponseWriter, r *http.Request) {
	var body taskBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !body.Status.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	s.modify(w, userFrom(r.Context()), body.ID, func(t *task.Task) {
		t.Status = body.Status
	})
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id := task.ID(r.URL.Query().Get("id"))
	user := userFrom(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := s.tasks[user]
	for i := range tasks {
		if tasks[i].ID == id {
			s.tasks[user] = append(tasks[:i:i], tasks[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "task not found")
}

func (s *Server) modify(w http.ResponseWriter, user string, id task.ID, fn func(*task.Task)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := s.tasks[user]
	for i := range tasks {
		if tasks[i].ID == id {
			fn(&tasks[i])
			writeJSON(w, http.StatusOK, newTaskResponse(tasks[i]))
			return
		}
	}
	writeError(w, http.StatusNotFound, "task not found")
}

func (s *Server) allocateID() task.ID {
	id := task.ID(strconv.Itoa(s.nextID))
	s.nextID++
	return id
}

// Users returns registered usernames in sorted order.
func (s *Server) Users() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.users))
	for name := range s.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
