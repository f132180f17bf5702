package repositories

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vtx/internal/models"
)

var _ http.CookieJar = (*PersistentJar)(nil)

// PersistentJar is an [http.CookieJar] backed by [cookiejar.Jar] that writes every cookie it receives to a
// [CookieRepository] and restores them on construction.
//
// Session cookies without an expiry are persisted too; the CLI relies on them surviving between invocations.
type PersistentJar struct {
	mu     sync.Mutex
	jar    *cookiejar.Jar
	repo   *CookieRepository
	logger *log.Logger
	now    func() time.Time
}

// NewPersistentJar creates a jar and loads every unexpired stored cookie into it.
func NewPersistentJar(repo *CookieRepository, logger *log.Logger) (*PersistentJar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	j := &PersistentJar{jar: inner, repo: repo, logger: logger, now: time.Now}
	if err := j.restore(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *PersistentJar) restore() error {
	stored, err := j.repo.List(nil)
	if err != nil {
		return fmt.Errorf("failed to load cookies: %w", err)
	}

	now := j.now()
	for _, sc := range stored {
		if sc.Expired(now) {
			if err := j.repo.Delete(sc.ID()); err != nil && j.logger != nil {
				j.logger.Warn("failed to prune expired cookie", "host", sc.Host(), "err", err)
			}
			continue
		}

		ck := sc.Cookie()
		j.jar.SetCookies(hostURL(sc.Host(), ck.Secure), []*http.Cookie{ck})
	}
	return nil
}

// SetCookies stores cookies in memory and persists them. Cookies with MaxAge < 0 or a past expiry are deleted.
func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.jar.SetCookies(u, cookies)

	now := j.now()
	for _, c := range cookies {
		cp := *c
		if cp.Path == "" {
			cp.Path = "/"
		}
		if cp.MaxAge > 0 {
			cp.Expires = now.Add(time.Duration(cp.MaxAge) * time.Second)
		}

		if cp.MaxAge < 0 || (!cp.Expires.IsZero() && !cp.Expires.After(now)) {
			if err := j.repo.DeleteByName(u.Host, cp.Name, cp.Path); err != nil && j.logger != nil {
				j.logger.Warn("failed to delete cookie", "name", cp.Name, "err", err)
			}
			continue
		}

		if err := j.repo.Create(models.NewStoredCookie(u.Host, &cp)); err != nil && j.logger != nil {
			j.logger.Warn("failed to persist cookie", "name", cp.Name, "err", err)
		}
	}
}

// Cookies returns the cookies to send in a request for u.
func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

// Clear forgets every cookie for the host of u, both in memory and on disk.
func (j *PersistentJar) Clear(u *url.URL) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.repo.DeleteHost(u.Host); err != nil {
		return err
	}

	inner, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("failed to reset cookie jar: %w", err)
	}
	j.jar = inner

	stored, err := j.repo.List(nil)
	if err != nil {
		return fmt.Errorf("failed to reload cookies: %w", err)
	}
	for _, sc := range stored {
		ck := sc.Cookie()
		j.jar.SetCookies(hostURL(sc.Host(), ck.Secure), []*http.Cookie{ck})
	}
	return nil
}

func hostURL(host string, secure bool) *url.URL {
	scheme := "http"
	if secure {
		scheme = "https"
	}
	return &url.URL{Scheme: scheme, Host: host, Path: "/"}
}
