package configstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/thebooleanin/techstory-weaver/internal/services"
)

// SettingsStore adapts the SQLite settings repository to Store.
type SettingsStore struct {
	repo services.SettingsRepository
}

var _ Store = (*SettingsStore)(nil)

// NewSettingsStore wraps repo.
func NewSettingsStore(repo services.SettingsRepository) *SettingsStore {
	return &SettingsStore{repo: repo}
}

func (s *SettingsStore) Load(ctx context.Context, key string) ([]byte, error) {
	setting, err := s.repo.Get(ctx, key)
	if errors.Is(err, services.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return []byte(setting.Value), nil
}

func (s *SettingsStore) Save(ctx context.Context, key string, value []byte) error {
	if err := s.repo.Set(ctx, key, string(value)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
