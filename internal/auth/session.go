package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sandeepkv93/tasktag/internal/api"
	"github.com/sandeepkv93/tasktag/internal/model"
	"github.com/sandeepkv93/tasktag/internal/storage"
)

const TokenLifetime = 7 * 24 * time.Hour

var ErrNotAuthenticated = errors.New("auth: not signed in")

type Client interface {
	Login(ctx context.Context, in api.LoginRequest) (api.LoginResponse, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (model.User, error)
}

type State struct {
	User          *model.User
	Authenticated bool
}

type Session struct {
	mu     sync.RWMutex
	store  storage.Repository
	client Client
	name   string
	apiURL string
	now    func() time.Time

	token string
	user  *model.User
}

type Option func(*Session)

func WithName(name string) Option {
	return func(s *Session) {
		if name != "" {
			s.name = name
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithAPIURL records which API the stored token belongs to. A stored token
// for a different API is ignored by Restore.
func WithAPIURL(u string) Option {
	return func(s *Session) { s.apiURL = strings.TrimRight(u, "/") }
}

func NewSession(store storage.Repository, opts ...Option) *Session {
	s := &Session{store: store, name: storage.DefaultSessionName, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Bind(c Client) {
	s.mu.Lock()
	s.client = c
	s.mu.Unlock()
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// HandleUnauthorized implements api.UnauthorizedHandler. It forgets the user
// in memory only; the stored token is removed by the next Restore or Logout.
func (s *Session) HandleUnauthorized() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	log.Printf("auth: session %q rejected by api, signed out", s.name)
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return State{}
	}
	u := *s.user
	return State{User: &u, Authenticated: true}
}

func (s *Session) clientOrErr() (Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return nil, errors.New("auth: no api client bound")
	}
	return s.client, nil
}

// Restore loads a stored token and confirms it with the API. Any failure
// leaves the session signed out and the stored token removed.
func (s *Session) Restore(ctx context.Context) (State, error) {
	client, err := s.clientOrErr()
	if err != nil {
		return State{}, err
	}
	stored, err := s.store.LoadSession(ctx, s.name)
	if errors.Is(err, storage.ErrNotFound) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("auth: load session: %w", err)
	}
	if s.apiURL != "" && stored.APIURL != "" && stored.APIURL != s.apiURL {
		log.Printf("auth: stored session is for %s, not %s", stored.APIURL, s.apiURL)
		return State{}, s.clear(ctx)
	}

	s.mu.Lock()
	s.token = stored.Token
	s.mu.Unlock()

	user, err := client.CurrentUser(ctx)
	if err != nil {
		if clearErr := s.clear(ctx); clearErr != nil {
			return State{}, clearErr
		}
		if errors.Is(err, api.ErrUnauthorized) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("auth: restore: %w", err)
	}
	s.setUser(user)
	return s.State(), nil
}

// Login signs in and stores the token. On failure any stored token is
// removed.
func (s *Session) Login(ctx context.Context, email, password string) (State, error) {
	client, err := s.clientOrErr()
	if err != nil {
		return State{}, err
	}
	res, err := client.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err == nil && (res.Token == "" || res.User == nil) {
		err = &api.APIError{Status: 200, Message: "Login failed"}
	}
	if err != nil {
		if clearErr := s.clear(ctx); clearErr != nil {
			log.Printf("auth: clear after failed login: %v", clearErr)
		}
		return State{}, err
	}

	now := s.now()
	rec := storage.Session{
		Name:      s.name,
		Token:     res.Token,
		APIURL:    s.apiURL,
		ExpiresAt: Expiry(res.Token, now),
		CreatedAt: now,
	}
	if err := s.store.SaveSession(ctx, rec); err != nil {
		return State{}, fmt.Errorf("auth: save session: %w", err)
	}
	s.mu.Lock()
	s.token = res.Token
	s.mu.Unlock()
	s.setUser(*res.User)
	return s.State(), nil
}

// Logout tells the API and always clears local state, even when the call
// fails. The API error, if any, is returned for logging.
func (s *Session) Logout(ctx context.Context) error {
	var callErr error
	if client, err := s.clientOrErr(); err == nil && s.Token() != "" {
		callErr = client.Logout(ctx)
	}
	if err := s.clear(ctx); err != nil {
		return err
	}
	if callErr != nil && !errors.Is(callErr, api.ErrUnauthorized) {
		return fmt.Errorf("auth: logout: %w", callErr)
	}
	return nil
}

func (s *Session) Refresh(ctx context.Context) (State, error) {
	client, err := s.clientOrErr()
	if err != nil {
		return State{}, err
	}
	if s.Token() == "" {
		return State{}, ErrNotAuthenticated
	}
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return s.State(), err
	}
	s.setUser(user)
	return s.State(), nil
}

func (s *Session) setUser(u model.User) {
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
}

func (s *Session) clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	if err := s.store.DeleteSession(ctx, s.name); err != nil {
		return fmt.Errorf("auth: delete session: %w", err)
	}
	return nil
}

// Expiry is when a token issued at now stops being trusted: TokenLifetime
// later, or the token's own exp claim if it is a JWT that expires sooner.
func Expiry(token string, now time.Time) time.Time {
	limit := now.Add(TokenLifetime)
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return limit
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(limit) {
		return claims.ExpiresAt.Time
	}
	return limit
}
