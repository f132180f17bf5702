package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/vtx/internal/models"
	"github.com/desertthunder/vtx/internal/shared"
)

var _ models.Repository[*models.Preference] = (*PreferenceRepository)(nil)

// PreferenceRepository implements [models.Repository] for [models.Preference] persistence.
type PreferenceRepository struct {
	db *sql.DB
}

// NewPreferenceRepository creates a new [PreferenceRepository] with the given database connection
func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Create inserts a new preference with a generated ID.
func (r *PreferenceRepository) Create(p *models.Preference) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	p.SetID(shared.GenerateID())

	_, err := r.db.Exec(
		`INSERT INTO preferences (id, key, value, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID(), p.Key(), p.Value(), p.CreatedAt(), p.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert preference: %w", err)
	}
	return nil
}

// Get retrieves a preference by ID.
func (r *PreferenceRepository) Get(id string) (*models.Preference, error) {
	return r.scanOne(`SELECT id, key, value, created_at, updated_at FROM preferences WHERE id = ?`, id)
}

// GetByKey retrieves a preference by key.
func (r *PreferenceRepository) GetByKey(key string) (*models.Preference, error) {
	return r.scanOne(`SELECT id, key, value, created_at, updated_at FROM preferences WHERE key = ?`, key)
}

// Update modifies the value of an existing preference.
func (r *PreferenceRepository) Update(p *models.Preference) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	p.SetUpdatedAt(now)

	result, err := r.db.Exec(`UPDATE preferences SET value = ?, updated_at = ? WHERE id = ?`, p.Value(), now, p.ID())
	if err != nil {
		return fmt.Errorf("failed to update preference: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return notFound("preference", p.ID())
	}
	return nil
}

// Delete removes a preference by ID.
func (r *PreferenceRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM preferences WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete preference: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return notFound("preference", id)
	}
	return nil
}

// List returns all preferences; a "key" criterion filters by key.
func (r *PreferenceRepository) List(criteria map[string]any) ([]*models.Preference, error) {
	query := `SELECT id, key, value, created_at, updated_at FROM preferences`
	var args []any
	if key, ok := criteria["key"]; ok {
		query += ` WHERE key = ?`
		args = append(args, key)
	}
	query += ` ORDER BY key`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	var prefs []*models.Preference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, err
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

// Set creates or updates the preference for key.
func (r *PreferenceRepository) Set(key, value string) error {
	existing, err := r.GetByKey(key)
	if errors.Is(err, ErrNotFound) {
		return r.Create(models.NewPreference(key, value))
	}
	if err != nil {
		return err
	}

	existing.SetValue(value)
	return r.Update(existing)
}

// Theme returns the saved theme and whether one was saved.
func (r *PreferenceRepository) Theme() (models.Theme, bool, error) {
	p, err := r.GetByKey(models.PreferenceTheme)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	theme, err := models.ParseTheme(p.Value())
	if err != nil {
		return "", false, nil
	}
	return theme, true, nil
}

// SaveTheme persists the theme.
func (r *PreferenceRepository) SaveTheme(theme models.Theme) error {
	return r.Set(models.PreferenceTheme, string(theme))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPreference(s scanner) (*models.Preference, error) {
	var (
		id, key, value       string
		createdAt, updatedAt time.Time
	)
	if err := s.Scan(&id, &key, &value, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	p := models.NewPreference(key, value)
	p.SetID(id)
	p.SetCreatedAt(createdAt)
	p.SetUpdatedAt(updatedAt)
	return p, nil
}

func (r *PreferenceRepository) scanOne(query string, arg string) (*models.Preference, error) {
	p, err := scanPreference(r.db.QueryRow(query, arg))
	if err == sql.ErrNoRows {
		return nil, notFound("preference", arg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query preference: %w", err)
	}
	return p, nil
}
