package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/sandeepkv93/tasktag/internal/model"
)

var signingKey = []byte("apitest-signing-key")

type account struct {
	user     model.User
	password string
}

type Request struct {
	Method    string
	Path      string
	RequestID string
	Auth      string
}

type Server struct {
	*httptest.Server

	// TokenTTL sets the exp claim of issued tokens.
	TokenTTL time.Duration

	mu       sync.Mutex
	accounts map[string]*account
	tokens   map[string]int64
	tasks    []model.Task
	tags     []model.Tag
	nextID   int64
	requests []Request
}

func NewServer(t testing.TB) *Server {
	s := &Server{
		TokenTTL: time.Hour,
		accounts: make(map[string]*account),
		tokens:   make(map[string]int64),
		nextID:   1,
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.record)

	r.HandleFunc("/api/auth/register", s.register).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/forgot-password", s.forgotPassword).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/reset-password", s.resetPassword).Methods(http.MethodPost)
	r.HandleFunc("/api/email/verify/{id}/{hash}", s.verifyEmail).Methods(http.MethodGet)

	authed := r.NewRoute().Subrouter()
	authed.Use(s.requireToken)
	authed.HandleFunc("/api/auth/logout", s.logout).Methods(http.MethodPost)
	authed.HandleFunc("/api/auth/user", s.currentUser).Methods(http.MethodGet)
	authed.HandleFunc("/api/email/resend", s.resend).Methods(http.MethodPost)
	authed.HandleFunc("/api/tags", s.listTags).Methods(http.MethodGet)
	authed.HandleFunc("/api/tags", s.createTag).Methods(http.MethodPost)
	authed.HandleFunc("/api/tags/{id}", s.getTag).Methods(http.MethodGet)
	authed.HandleFunc("/api/tags/{id}", s.updateTag).Methods(http.MethodPut)
	authed.HandleFunc("/api/tags/{id}", s.deleteTag).Methods(http.MethodDelete)
	authed.HandleFunc("/api/tasks", s.listTasks).Methods(http.MethodGet)
	authed.HandleFunc("/api/tasks", s.createTask).Methods(http.MethodPost)
	authed.HandleFunc("/api/tasks/{id}", s.getTask).Methods(http.MethodGet)
	authed.HandleFunc("/api/tasks/{id}", s.updateTask).Methods(http.MethodPut)
	authed.HandleFunc("/api/tasks/{id}", s.deleteTask).Methods(http.MethodDelete)
	return r
}

// AddUser registers a verified account.
func (s *Server) AddUser(name, email, password string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	u := model.User{ID: s.allocID(), Name: name, Email: email, EmailVerifiedAt: &now}
	s.accounts[email] = &account{user: u, password: password}
	return u
}

func (s *Server) IssueToken(userID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(userID)
}

func (s *Server) AddTag(name, color string) model.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	tag := model.Tag{ID: s.allocID(), Name: name, Color: color}
	s.tags = append(s.tags, tag)
	return tag
}

func (s *Server) AddTask(t model.Task) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.allocID()
	if t.Tags == nil {
		t.Tags = []model.Tag{}
	}
	s.tasks = append(s.tasks, t)
	return t
}

func (s *Server) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Task(nil), s.tasks...)
}

func (s *Server) Tags() []model.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Tag(nil), s.tags...)
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RevokeAll invalidates every issued token.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]int64)
}

func VerificationHash(userID int64) string {
	return fmt.Sprintf("hash-%d", userID)
}

func ResetToken(email string) string {
	return "reset-" + email
}

func (s *Server) allocID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Server) issueLocked(userID int64) string {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.TokenTTL)),
		ID:        strconv.FormatInt(s.allocID(), 10),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	s.tokens[tok] = userID
	return tok
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:    r.Method,
			Path:      r.URL.Path,
			RequestID: r.Header.Get("X-Request-ID"),
			Auth:      r.Header.Get("Authorization"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		_, known := s.tokens[tok]
		s.mu.Unlock()
		if !ok || !known {
			fail(w, http.StatusUnauthorized, "Unauthenticated.", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) userForRequest(r *http.Request) (model.User, bool) {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	id, ok := s.tokens[tok]
	if !ok {
		return model.User{}, false
	}
	for _, a := range s.accounts {
		if a.user.ID == id {
			return a.user, true
		}
	}
	return model.User{}, false
}

func respond(w http.ResponseWriter, code int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": code < 300,
		"message": message,
		"data":    data,
	})
}

func fail(w http.ResponseWriter, code int, message string, errs map[string][]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	body := map[string]any{"success": false, "message": message}
	if errs != nil {
		body["errors"] = errs
	}
	_ = json.NewEncoder(w).Encode(body)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request payload", nil)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		fail(w, http.StatusNotFound, "Not found", nil)
		return 0, false
	}
	return id, true
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name                 string `json:"name"`
		Email                string `json:"email"`
		Password             string `json:"password"`
		PasswordConfirmation string `json:"password_confirmation"`
	}
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[in.Email]; exists {
		fail(w, http.StatusUnprocessableEntity, "The email has already been taken.",
			map[string][]string{"email": {"The email has already been taken."}})
		return
	}
	if in.Password != in.PasswordConfirmation {
		fail(w, http.StatusUnprocessableEntity, "The password field confirmation does not match.", nil)
		return
	}
	u := model.User{ID: s.allocID(), Name: in.Name, Email: in.Email}
	s.accounts[in.Email] = &account{user: u, password: in.Password}
	respond(w, http.StatusCreated, "User registered successfully. Please verify your email.", u)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[in.Email]
	if !ok || a.password != in.Password {
		fail(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	respond(w, http.StatusOK, "Login successful", map[string]any{
		"token": s.issueLocked(a.user.ID),
		"user":  a.user,
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	delete(s.tokens, tok)
	s.mu.Unlock()
	respond(w, http.StatusOK, "Logged out successfully", []any{})
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.userForRequest(r)
	if !ok {
		fail(w, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}
	respond(w, http.StatusOK, "", u)
}

func (s *Server) resend(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, "Verification link sent", nil)
}

func (s *Server) verifyEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if mux.Vars(r)["hash"] != VerificationHash(id) {
		fail(w, http.StatusForbidden, "Invalid verification link", nil)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.user.ID == id {
			now := time.Now().UTC()
			a.user.EmailVerifiedAt = &now
			respond(w, http.StatusOK, "Email verified successfully", nil)
			return
		}
	}
	fail(w, http.StatusNotFound, "User not found", nil)
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &in) {
		return
	}
	respond(w, http.StatusOK, "Password reset link sent to your email", nil)
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token                string `json:"token"`
		Email                string `json:"email"`
		Password             string `json:"password"`
		PasswordConfirmation string `json:"password_confirmation"`
	}
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[in.Email]
	if !ok || in.Token != ResetToken(in.Email) {
		// The real API reports this with a 200 and success=false.
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "This password reset token is invalid."})
		return
	}
	a.password = in.Password
	respond(w, http.StatusOK, "Password has been reset", nil)
}

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	respond(w, http.StatusOK, "", append([]model.Tag{}, s.tags...))
}

func (s *Server) findTag(id int64) int {
	for i, t := range s.tags {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) getTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findTag(id)
	if i < 0 {
		fail(w, http.StatusNotFound, "Tag not found", nil)
		return
	}
	respond(w, http.StatusOK, "", s.tags[i])
}

func validateTag(in model.TagInput) map[string][]string {
	errs := map[string][]string{}
	if strings.TrimSpace(in.Name) == "" {
		errs["name"] = []string{"The name field is required."}
	}
	if len(in.Color) != 7 || in.Color[0] != '#' || strings.ToUpper(in.Color) != in.Color {
		errs["color"] = []string{"The color field format is invalid."}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (s *Server) createTag(w http.ResponseWriter, r *http.Request) {
	var in model.TagInput
	if !decode(w, r, &in) {
		return
	}
	if errs := validateTag(in); errs != nil {
		fail(w, http.StatusUnprocessableEntity, "The given data was invalid.", errs)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tag := model.Tag{ID: s.allocID(), Name: in.Name, Color: in.Color}
	s.tags = append(s.tags, tag)
	respond(w, http.StatusCreated, "Tag created successfully", tag)
}

func (s *Server) updateTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in model.TagInput
	if !decode(w, r, &in) {
		return
	}
	if errs := validateTag(in); errs != nil {
		fail(w, http.StatusUnprocessableEntity, "The given data was invalid.", errs)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findTag(id)
	if i < 0 {
		fail(w, http.StatusNotFound, "Tag not found", nil)
		return
	}
	s.tags[i].Name, s.tags[i].Color = in.Name, in.Color
	for ti := range s.tasks {
		for gi := range s.tasks[ti].Tags {
			if s.tasks[ti].Tags[gi].ID == id {
				s.tasks[ti].Tags[gi] = s.tags[i]
			}
		}
	}
	respond(w, http.StatusOK, "Tag updated successfully", s.tags[i])
}

func (s *Server) deleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findTag(id)
	if i < 0 {
		fail(w, http.StatusNotFound, "Tag not found", nil)
		return
	}
	s.tags = append(s.tags[:i], s.tags[i+1:]...)
	for ti := range s.tasks {
		s.tasks[ti].Tags = model.RemoveTag(s.tasks[ti].Tags, id)
	}
	respond(w, http.StatusOK, "Tag deleted successfully", nil)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	respond(w, http.StatusOK, "", append([]model.Task{}, s.tasks...))
}

func (s *Server) findTask(id int64) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findTask(id)
	if i < 0 {
		fail(w, http.StatusNotFound, "Task not found", nil)
		return
	}
	respond(w, http.StatusOK, "", s.tasks[i])
}

func (s *Server) taskFromInput(in model.TaskInput) (model.Task, map[string][]string) {
	errs := map[string][]string{}
	if strings.TrimSpace(in.Title) == "" {
		errs["title"] = []string{"The title field is required."}
	}
	if !in.Status.IsValid() {
		errs["status"] = []string{"The selected status is invalid."}
	}
	if !in.Priority.IsValid() {
		errs["priority"] = []string{"The selected priority is invalid."}
	}
	tags := []model.Tag{}
	for _, id := range in.TagIDs {
		i := s.findTag(id)
		if i < 0 {
			errs["tag_ids"] = []string{"The selected tag ids is invalid."}
			continue
		}
		tags = append(tags, s.tags[i])
	}
	if len(errs) > 0 {
		return model.Task{}, errs
	}
	return model.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		Tags:        tags,
	}, nil
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var in model.TaskInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	task, errs := s.taskFromInput(in)
	if errs != nil {
		fail(w, http.StatusUnprocessableEntity, "The given data was invalid.", errs)
		return
	}
	u, _ := s.userForRequest(r)
	task.ID = s.allocID()
	task.UserID = u.ID
	s.tasks = append(s.tasks, task)
	respond(w, http.StatusCreated, "Task created successfully", task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in model.TaskInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findTask(id)
	if i < 0 {
		fail(w, http.StatusNotFound, "Task not found", nil)
		return
	}
	task, errs := s.taskFromInput(in)
	if errs != nil {
		fail(w, http.StatusUnprocessableEntity, "The given data was invalid.", errs)
		return
	}
	task.ID = id
	task.UserID = s.tasks[i].UserID
	s.tasks[i] = task
	respond(w, http.StatusOK, "Task updated successfully", task)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findTask(id)
	if i < 0 {
		fail(w, http.StatusNotFound, "Task not found", nil)
		return
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	respond(w, http.StatusOK, "Task deleted successfully", nil)
}
