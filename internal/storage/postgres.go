package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/xaenox/standdown-bot/internal/models"
	"go.uber.org/zap"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStorage(config DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	storage := &PostgresStorage{db: db, logger: logger}

	// Initialize database schema
	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	_, err = s.db.Exec(string(migrationSQL))
	if err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

func (s *PostgresStorage) Settings(ctx context.Context) *models.GuildSettings {
	query := `SELECT section, channel_id, role_id, is_active FROM guild_settings`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.logger.Error("Failed to query guild settings, using defaults", zap.Error(err))
		return models.DefaultSettings()
	}
	defer rows.Close()

	settings := models.DefaultSettings()
	for rows.Next() {
		var section string
		var cfg models.CheckerConfig
		if err := rows.Scan(&section, &cfg.ChannelID, &cfg.RoleID, &cfg.IsActive); err != nil {
			s.logger.Error("Failed to scan guild settings row, using defaults", zap.Error(err))
			return models.DefaultSettings()
		}
		switch section {
		case models.SectionAbsence:
			settings.AbsenceChecker = cfg
		case models.SectionSmoking:
			settings.SmokingChecker = cfg
		}
	}
	return settings
}

func (s *PostgresStorage) SaveSettings(ctx context.Context, settings *models.GuildSettings) error {
	sections := map[string]models.CheckerConfig{
		models.SectionAbsence: settings.AbsenceChecker,
		models.SectionSmoking: settings.SmokingChecker,
	}

	query := `
		INSERT INTO guild_settings (section, channel_id, role_id, is_active, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (section) DO UPDATE
		SET channel_id = $2, role_id = $3, is_active = $4, updated_at = $5`

	for section, cfg := range sections {
		if _, err := s.db.ExecContext(ctx, query, section, cfg.ChannelID, cfg.RoleID, cfg.IsActive, time.Now()); err != nil {
			return fmt.Errorf("error saving settings section %s: %v", section, err)
		}
	}
	return nil
}

func (s *PostgresStorage) UpdateChecker(ctx context.Context, section string, patch models.CheckerPatch) (*models.GuildSettings, error) {
	settings := s.Settings(ctx)
	if !applyPatch(settings, section, patch) {
		return nil, fmt.Errorf("unknown settings section: %s", section)
	}
	if err := s.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *PostgresStorage) ExcludedUsers(ctx context.Context) []string {
	query := `SELECT user_id FROM excluded_users ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.logger.Error("Failed to query excluded users, using empty list", zap.Error(err))
		return []string{}
	}
	defer rows.Close()

	users := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			s.logger.Error("Failed to scan excluded user row, using empty list", zap.Error(err))
			return []string{}
		}
		users = append(users, id)
	}
	return users
}

func (s *PostgresStorage) AddExcludedUser(ctx context.Context, userID string) (bool, error) {
	query := `INSERT INTO excluded_users (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`

	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		return false, fmt.Errorf("error adding excluded user: %v", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error getting rows affected: %v", err)
	}
	return affected > 0, nil
}

func (s *PostgresStorage) RemoveExcludedUser(ctx context.Context, userID string) (bool, error) {
	query := `DELETE FROM excluded_users WHERE user_id = $1`

	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		return false, fmt.Errorf("error removing excluded user: %v", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error getting rows affected: %v", err)
	}
	return affected > 0, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
