package testing

import (
	"context"
	"sync"

	"github.com/desertthunder/vtx/internal/models"
)

// MockClient is a scripted transcription client. Unset funcs succeed with zero values.
type MockClient struct {
	mu    sync.Mutex
	calls []string

	CheckAuthFunc  func(ctx context.Context) (bool, *models.SessionUser, error)
	LoginFunc      func(ctx context.Context, username, password string) (*models.SessionUser, error)
	SignupFunc     func(ctx context.Context, username, email, password string) (*models.SessionUser, error)
	LogoutFunc     func(ctx context.Context) error
	ProfileFunc    func(ctx context.Context) (*models.Profile, error)
	HistoryFunc    func(ctx context.Context) ([]models.HistoryItem, error)
	TranscribeFunc func(ctx context.Context, file *models.SelectedFile) (*models.Transcript, error)
}

// Calls returns the names of the methods invoked so far, in order.
func (m *MockClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns how many times name was invoked.
func (m *MockClient) CallCount(name string) int {
	n := 0
	for _, c := range m.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

func (m *MockClient) record(name string) {
	m.mu.Lock()
	m.calls = append(m.calls, name)
	m.mu.Unlock()
}

func (m *MockClient) CheckAuth(ctx context.Context) (bool, *models.SessionUser, error) {
	m.record("CheckAuth")
	if m.CheckAuthFunc != nil {
		return m.CheckAuthFunc(ctx)
	}
	return false, nil, nil
}

func (m *MockClient) Login(ctx context.Context, username, password string) (*models.SessionUser, error) {
	m.record("Login")
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password)
	}
	return &models.SessionUser{Username: username}, nil
}

func (m *MockClient) Signup(ctx context.Context, username, email, password string) (*models.SessionUser, error) {
	m.record("Signup")
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, username, email, password)
	}
	return &models.SessionUser{Username: username, Email: email}, nil
}

func (m *MockClient) Logout(ctx context.Context) error {
	m.record("Logout")
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

func (m *MockClient) Profile(ctx context.Context) (*models.Profile, error) {
	m.record("Profile")
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx)
	}
	return &models.Profile{}, nil
}

func (m *MockClient) History(ctx context.Context) ([]models.HistoryItem, error) {
	m.record("History")
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx)
	}
	return []models.HistoryItem{}, nil
}

func (m *MockClient) Transcribe(ctx context.Context, file *models.SelectedFile) (*models.Transcript, error) {
	m.record("Transcribe")
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, file)
	}
	return &models.Transcript{}, nil
}
