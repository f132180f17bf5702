package models

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// StoredCookie is a session cookie persisted between CLI invocations.
type StoredCookie struct {
	base
	host   string
	cookie *http.Cookie
}

// NewStoredCookie wraps c for the given host.
func NewStoredCookie(host string, c *http.Cookie) *StoredCookie {
	cp := *c
	if cp.Path == "" {
		cp.Path = "/"
	}
	return &StoredCookie{base: newBase(), host: host, cookie: &cp}
}

func (s *StoredCookie) Host() string         { return s.host }
func (s *StoredCookie) Cookie() *http.Cookie { cp := *s.cookie; return &cp }

// Expired reports whether the cookie has a past expiry at now.
func (s *StoredCookie) Expired(now time.Time) bool {
	return !s.cookie.Expires.IsZero() && !s.cookie.Expires.After(now)
}

// Validate checks the host and cookie name.
func (s *StoredCookie) Validate() error {
	if strings.TrimSpace(s.host) == "" {
		return fmt.Errorf("cookie host is required")
	}
	if s.cookie == nil || s.cookie.Name == "" {
		return fmt.Errorf("cookie name is required")
	}
	return nil
}
