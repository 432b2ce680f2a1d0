package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/xaenox/standdown-bot/internal/models"
)

type MemoryStorage struct {
	mu       sync.RWMutex
	settings *models.GuildSettings
	excluded []string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		settings: models.DefaultSettings(),
		excluded: []string{},
	}
}

func (s *MemoryStorage) Settings(ctx context.Context) *models.GuildSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := *s.settings
	return &copied
}

func (s *MemoryStorage) SaveSettings(ctx context.Context, settings *models.GuildSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *settings
	s.settings = &copied
	return nil
}

func (s *MemoryStorage) UpdateChecker(ctx context.Context, section string, patch models.CheckerPatch) (*models.GuildSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !applyPatch(s.settings, section, patch) {
		return nil, fmt.Errorf("unknown settings section: %s", section)
	}
	copied := *s.settings
	return &copied, nil
}

func (s *MemoryStorage) ExcludedUsers(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string{}, s.excluded...)
}

func (s *MemoryStorage) AddExcludedUser(ctx context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.excluded {
		if id == userID {
			return false, nil
		}
	}
	s.excluded = append(s.excluded, userID)
	return true, nil
}

func (s *MemoryStorage) RemoveExcludedUser(ctx context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, id := range s.excluded {
		if id == userID {
			s.excluded = append(s.excluded[:i], s.excluded[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
