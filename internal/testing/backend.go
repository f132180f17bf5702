package testing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/vtx/internal/models"
)

// SessionCookie is the cookie name the fake backend issues.
const SessionCookie = "session"

// Upload records what the fake backend received on /transcribe.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

type fakeUser struct {
	id          int64
	username    string
	email       string
	hash        []byte
	memberSince time.Time
	history     []models.HistoryItem
}

// FakeBackend is an in-process stand-in for the transcription service: cookie sessions signed as JWTs, bcrypt
// password hashes, per-user history.
type FakeBackend struct {
	mu      sync.Mutex
	users   map[string]*fakeUser
	nextID  int64
	secret  []byte
	uploads []Upload

	// Transcript is returned by /transcribe when TranscribeStatus is zero.
	Transcript models.Transcript
	// TranscribeStatus, when non-zero, fails /transcribe with TranscribeError.
	TranscribeStatus int
	TranscribeError  string
	// Gate, when set, blocks /transcribe until it receives or closes.
	Gate chan struct{}
	// Now stamps new accounts and history rows.
	Now func() time.Time
}

// NewFakeBackend returns an empty backend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		users:      make(map[string]*fakeUser),
		secret:     []byte("fake-backend-secret"),
		Transcript: models.Transcript{Text: "hello world", Language: "en"},
		Now:        time.Now,
	}
}

// Start serves the backend on an httptest server closed at test cleanup.
func (b *FakeBackend) Start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return srv
}

// AddUser registers an account directly.
func (b *FakeBackend) AddUser(t *testing.T, username, email, password string) {
	t.Helper()
	if _, err := b.addUser(username, email, password); err != nil {
		t.Fatalf("Failed to add user %s: %v", username, err)
	}
}

// AddHistory appends an item to username's history.
func (b *FakeBackend) AddHistory(username string, item models.HistoryItem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u, ok := b.users[username]; ok {
		u.history = append(u.history, item)
	}
}

// Uploads returns every upload received so far.
func (b *FakeBackend) Uploads() []Upload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Upload(nil), b.uploads...)
}

// Handler returns the routed backend.
func (b *FakeBackend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  func(*http.Request, string) bool { return true },
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/api/check-auth", b.checkAuth)
	r.Post("/api/login", b.login)
	r.Post("/api/signup", b.signup)
	r.Post("/api/logout", b.logout)

	r.Group(func(r chi.Router) {
		r.Use(b.requireSession)
		r.Get("/api/profile", b.profile)
		r.Get("/api/history", b.history)
		r.Post("/transcribe", b.transcribe)
	})
	return r
}

var errUserExists = errors.New("Username already exists")

func (b *FakeBackend) addUser(username, email, password string) (*fakeUser, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.users[username]; ok {
		return nil, errUserExists
	}
	b.nextID++
	u := &fakeUser{id: b.nextID, username: username, email: email, hash: hash, memberSince: b.Now().UTC()}
	b.users[username] = u
	return u, nil
}

func (b *FakeBackend) sessionUser(u *fakeUser) models.SessionUser {
	return models.SessionUser{
		ID:                  u.id,
		Username:            u.username,
		Email:               u.email,
		MemberSince:         models.Timestamp{Time: u.memberSince},
		TotalTranscriptions: len(u.history),
	}
}

func (b *FakeBackend) issue(w http.ResponseWriter, u *fakeUser) error {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   u.username,
		IssuedAt:  jwt.NewNumericDate(b.Now()),
		ExpiresAt: jwt.NewNumericDate(b.Now().Add(24 * time.Hour)),
	})
	signed, err := token.SignedString(b.secret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: signed, Path: "/", HttpOnly: true})
	return nil
}

// current returns the session user for r, or nil.
func (b *FakeBackend) current(r *http.Request) *fakeUser {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(c.Value, claims, func(*jwt.Token) (any, error) {
		return b.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(b.Now))
	if err != nil || !token.Valid {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.users[claims.Subject]
}

type userKey struct{}

func withUser(r *http.Request, u *fakeUser) context.Context {
	return context.WithValue(r.Context(), userKey{}, u)
}

func userFrom(r *http.Request) *fakeUser {
	u, _ := r.Context().Value(userKey{}).(*fakeUser)
	return u
}

// FailTranscribe makes subsequent uploads fail with status and msg. A zero status restores success.
func (b *FakeBackend) FailTranscribe(status int, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.TranscribeStatus, b.TranscribeError = status, msg
}

func (b *FakeBackend) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := b.current(r)
		if u == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r, u)))
	})
}

func (b *FakeBackend) checkAuth(w http.ResponseWriter, r *http.Request) {
	u := b.current(r)
	if u == nil {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	b.mu.Lock()
	user := b.sessionUser(u)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": true, "user": user})
}

func (b *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		return
	}

	b.mu.Lock()
	u, ok := b.users[body.Username]
	b.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(body.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid username or password"})
		return
	}

	if err := b.issue(w, u); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	b.mu.Lock()
	user := b.sessionUser(u)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (b *FakeBackend) signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		return
	}
	if body.Username == "" || body.Email == "" || body.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "All fields are required"})
		return
	}

	u, err := b.addUser(body.Username, body.Email, body.Password)
	if errors.Is(err, errUserExists) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	} else if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if err := b.issue(w, u); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	b.mu.Lock()
	user := b.sessionUser(u)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (b *FakeBackend) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (b *FakeBackend) profile(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r)
	b.mu.Lock()
	p := models.Profile{
		Username:            u.username,
		Email:               u.email,
		MemberSince:         models.Timestamp{Time: u.memberSince},
		TotalTranscriptions: len(u.history),
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, p)
}

func (b *FakeBackend) history(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r)
	b.mu.Lock()
	items := make([]models.HistoryItem, 0, len(u.history))
	for i := len(u.history) - 1; i >= 0; i-- {
		items = append(items, u.history[i])
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"history": items})
}

func (b *FakeBackend) transcribe(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file uploaded"})
		return
	}
	defer file.Close()
	if header.Filename == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file selected"})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	b.mu.Lock()
	b.uploads = append(b.uploads, Upload{
		Field:       "file",
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	gate := b.Gate
	b.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	b.mu.Lock()
	status, msg, result := b.TranscribeStatus, b.TranscribeError, b.Transcript
	b.mu.Unlock()
	if status != 0 {
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}

	u := userFrom(r)
	b.mu.Lock()
	u.history = append(u.history, models.HistoryItem{
		Filename:   header.Filename,
		Transcript: result.Text,
		Language:   result.Language,
		CreatedAt:  models.Timestamp{Time: b.Now().UTC()},
	})
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
