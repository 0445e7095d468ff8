package service

import (
	"context"
	"fmt"

	"getsneaks/internal/config"
	"getsneaks/internal/store"
)

// ProfileSaver stores the user profile
type ProfileSaver interface {
	SaveProfile(ctx context.Context, p *store.Profile) error
}

// ApplyProfile copies the profile from the config file into the store,
// where imports and archive sync read it.
func ApplyProfile(ctx context.Context, s ProfileSaver, p config.ProfileConfig) error {
	err := s.SaveProfile(ctx, &store.Profile{
		Name:         p.Name,
		Email:        p.Email,
		Gender:       p.Gender,
		Age:          p.Age,
		HeightInches: p.HeightInches,
		WeightPounds: p.WeightPounds,
	})
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}
