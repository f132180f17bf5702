package repositories

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/shared"
)

var _ models.Repository[*models.StoredCookie] = (*CookieRepository)(nil)

// CookieRepository implements [models.Repository] for [models.StoredCookie] persistence.
type CookieRepository struct {
	db *sql.DB
}

// NewCookieRepository creates a new [CookieRepository] with the given database connection
func NewCookieRepository(db *sql.DB) *CookieRepository {
	return &CookieRepository{db: db}
}

const cookieColumns = `id, host, name, value, path, expires_at, secure, http_only, created_at, updated_at`

// Create inserts a cookie, replacing any existing row with the same host, name and path.
func (r *CookieRepository) Create(c *models.StoredCookie) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	c.SetID(shared.GenerateID())
	ck := c.Cookie()

	var expires sql.NullTime
	if !ck.Expires.IsZero() {
		expires = sql.NullTime{Time: ck.Expires.UTC(), Valid: true}
	}

	_, err := r.db.Exec(`
		INSERT INTO cookies (`+cookieColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (host, name, path) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			secure = excluded.secure,
			http_only = excluded.http_only,
			updated_at = excluded.updated_at
	`, c.ID(), c.Host(), ck.Name, ck.Value, ck.Path, expires, ck.Secure, ck.HttpOnly, c.CreatedAt(), c.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert cookie: %w", err)
	}

	// an upsert keeps the original row's ID
	var id string
	if err := r.db.QueryRow(
		`SELECT id FROM cookies WHERE host = ? AND name = ? AND path = ?`, c.Host(), ck.Name, ck.Path,
	).Scan(&id); err != nil {
		return fmt.Errorf("failed to read cookie id: %w", err)
	}
	c.SetID(id)
	return nil
}

// Get retrieves a cookie by ID.
func (r *CookieRepository) Get(id string) (*models.StoredCookie, error) {
	c, err := scanCookie(r.db.QueryRow(`SELECT `+cookieColumns+` FROM cookies WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, notFound("cookie", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cookie: %w", err)
	}
	return c, nil
}

// Update rewrites the value and attributes of an existing cookie.
func (r *CookieRepository) Update(c *models.StoredCookie) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	c.SetUpdatedAt(now)
	ck := c.Cookie()

	var expires sql.NullTime
	if !ck.Expires.IsZero() {
		expires = sql.NullTime{Time: ck.Expires.UTC(), Valid: true}
	}

	result, err := r.db.Exec(
		`UPDATE cookies SET value = ?, expires_at = ?, secure = ?, http_only = ?, updated_at = ? WHERE id = ?`,
		ck.Value, expires, ck.Secure, ck.HttpOnly, now, c.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update cookie: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return notFound("cookie", c.ID())
	}
	return nil
}

// Delete removes a cookie by ID.
func (r *CookieRepository) Delete(id string) error {
	if _, err := r.db.Exec(`DELETE FROM cookies WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete cookie: %w", err)
	}
	return nil
}

// DeleteByName removes the cookie identified by host, name and path.
func (r *CookieRepository) DeleteByName(host, name, path string) error {
	if _, err := r.db.Exec(`DELETE FROM cookies WHERE host = ? AND name = ? AND path = ?`, host, name, path); err != nil {
		return fmt.Errorf("failed to delete cookie: %w", err)
	}
	return nil
}

// DeleteHost removes every cookie stored for host.
func (r *CookieRepository) DeleteHost(host string) error {
	if _, err := r.db.Exec(`DELETE FROM cookies WHERE host = ?`, host); err != nil {
		return fmt.Errorf("failed to delete cookies for %s: %w", host, err)
	}
	return nil
}

// List returns stored cookies; a "host" criterion filters by host.
func (r *CookieRepository) List(criteria map[string]any) ([]*models.StoredCookie, error) {
	query := `SELECT ` + cookieColumns + ` FROM cookies`
	var args []any
	if host, ok := criteria["host"]; ok {
		query += ` WHERE host = ?`
		args = append(args, host)
	}
	query += ` ORDER BY host, name`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cookies: %w", err)
	}
	defer rows.Close()

	var cookies []*models.StoredCookie
	for rows.Next() {
		c, err := scanCookie(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cookie: %w", err)
		}
		cookies = append(cookies, c)
	}
	return cookies, rows.Err()
}

func scanCookie(s scanner) (*models.StoredCookie, error) {
	var (
		id, host, name, value, path string
		expires                     sql.NullTime
		secure, httpOnly            bool
		createdAt, updatedAt        time.Time
	)
	if err := s.Scan(&id, &host, &name, &value, &path, &expires, &secure, &httpOnly, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	ck := &http.Cookie{Name: name, Value: value, Path: path, Secure: secure, HttpOnly: httpOnly}
	if expires.Valid {
		ck.Expires = expires.Time
	}

	c := models.NewStoredCookie(host, ck)
	c.SetID(id)
	c.SetCreatedAt(createdAt)
	c.SetUpdatedAt(updatedAt)
	return c, nil
}
