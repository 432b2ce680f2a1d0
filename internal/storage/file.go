package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xaenox/standdown-bot/internal/models"
	"go.uber.org/zap"
)

// FileStorage keeps the settings document and the exclusion list in two JSON
// files, matching the layout the bot has always used on disk. Reads degrade
// to defaults when a file is missing or corrupt; the next successful save
// rewrites the whole document.
type FileStorage struct {
	mu           sync.Mutex
	configPath   string
	excludedPath string
	logger       *zap.Logger
}

func NewFileStorage(configPath, excludedPath string, logger *zap.Logger) *FileStorage {
	return &FileStorage{
		configPath:   configPath,
		excludedPath: excludedPath,
		logger:       logger,
	}
}

func (s *FileStorage) Settings(ctx context.Context) *models.GuildSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadSettings()
}

func (s *FileStorage) loadSettings() *models.GuildSettings {
	data, err := os.ReadFile(s.configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Error("Failed to read settings file, using defaults",
				zap.Error(err),
				zap.String("path", s.configPath))
		}
		return models.DefaultSettings()
	}

	settings := models.DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		s.logger.Error("Failed to parse settings file, using defaults",
			zap.Error(err),
			zap.String("path", s.configPath))
		return models.DefaultSettings()
	}
	return settings
}

func (s *FileStorage) SaveSettings(ctx context.Context, settings *models.GuildSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveSettings(settings)
}

func (s *FileStorage) saveSettings(settings *models.GuildSettings) error {
	return writeJSON(s.configPath, settings)
}

func (s *FileStorage) UpdateChecker(ctx context.Context, section string, patch models.CheckerPatch) (*models.GuildSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.loadSettings()
	if !applyPatch(settings, section, patch) {
		return nil, fmt.Errorf("unknown settings section: %s", section)
	}
	if err := s.saveSettings(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *FileStorage) ExcludedUsers(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadExcluded().ExcludedUsers
}

func (s *FileStorage) loadExcluded() *models.ExcludedUsers {
	data, err := os.ReadFile(s.excludedPath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Error("Failed to read excluded users file, using empty list",
				zap.Error(err),
				zap.String("path", s.excludedPath))
		}
		return &models.ExcludedUsers{ExcludedUsers: []string{}}
	}

	var excluded models.ExcludedUsers
	if err := json.Unmarshal(data, &excluded); err != nil {
		s.logger.Error("Failed to parse excluded users file, using empty list",
			zap.Error(err),
			zap.String("path", s.excludedPath))
		return &models.ExcludedUsers{ExcludedUsers: []string{}}
	}
	if excluded.ExcludedUsers == nil {
		excluded.ExcludedUsers = []string{}
	}
	return &excluded
}

func (s *FileStorage) AddExcludedUser(ctx context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	excluded := s.loadExcluded()
	for _, id := range excluded.ExcludedUsers {
		if id == userID {
			return false, nil
		}
	}
	excluded.ExcludedUsers = append(excluded.ExcludedUsers, userID)
	if err := writeJSON(s.excludedPath, excluded); err != nil {
		return false, err
	}
	return true, nil
}

func (s *FileStorage) RemoveExcludedUser(ctx context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	excluded := s.loadExcluded()
	for i, id := range excluded.ExcludedUsers {
		if id == userID {
			excluded.ExcludedUsers = append(excluded.ExcludedUsers[:i], excluded.ExcludedUsers[i+1:]...)
			if err := writeJSON(s.excludedPath, excluded); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func (s *FileStorage) Close() error {
	// Nothing to close for file storage
	return nil
}

func writeJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating config directory: %v", err)
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing %s: %v", path, err)
	}
	return nil
}
