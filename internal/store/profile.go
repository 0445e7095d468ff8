package store

import (
	"context"
	"database/sql"
	"errors"
)

// GetProfile retrieves the stored user profile
func (s *Store) GetProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	var gender sql.NullString
	var age, height sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT name, email, gender, age, height_inches, weight_pounds
		FROM profile
		WHERE id = 1
	`).Scan(&p.Name, &p.Email, &gender, &age, &height, &p.WeightPounds)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, err
	}

	p.Gender = gender.String
	p.Age = int(age.Int64)
	p.HeightInches = int(height.Int64)
	return &p, nil
}

// SaveProfile stores or replaces the user profile
func (s *Store) SaveProfile(ctx context.Context, p *Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profile (id, name, email, gender, age, height_inches, weight_pounds, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			gender = excluded.gender,
			age = excluded.age,
			height_inches = excluded.height_inches,
			weight_pounds = excluded.weight_pounds,
			updated_at = CURRENT_TIMESTAMP
	`, p.Name, p.Email, toNullString(p.Gender), toNullInt64(p.Age), toNullInt64(p.HeightInches), p.WeightPounds)
	return err
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toNullInt64(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}
