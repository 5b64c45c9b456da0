package store

import (
	"context"

	"gutschein/internal/models"
)

type LocationStore struct {
	db DB
}

func NewLocationStore(db DB) *LocationStore {
	return &LocationStore{db: db}
}

func (s *LocationStore) GetByName(ctx context.Context, name string) (models.Location, error) {
	var row models.Location
	err := s.db.GetContext(ctx, &row, `
		SELECT name, password_hash, updated_at
		FROM locations
		WHERE name = $1
	`, name)
	if err != nil {
		return models.Location{}, err
	}
	return row, nil
}

func (s *LocationStore) List(ctx context.Context) ([]models.Location, error) {
	rows := []models.Location{}
	if err := s.db.SelectContext(ctx, &rows, `SELECT name, password_hash, updated_at FROM locations ORDER BY name`); err != nil {
		return nil, err
	}
	return rows, nil
}

// SetPassword creates the location or replaces its password hash.
func (s *LocationStore) SetPassword(ctx context.Context, tx Execer, name, hash string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO locations (name, password_hash, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = NOW()
	`, name, hash)
	return err
}
