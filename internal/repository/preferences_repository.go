package repository

import (
	"context"
	"database/sql"
	"errors"

	"docs-admin-console/config"
	"docs-admin-console/internal/model"
	"docs-admin-console/internal/util"

	"github.com/jmoiron/sqlx"
)

type PreferencesRepository struct {
	*config.Database
}

func NewPreferencesRepository(database *config.Database) *PreferencesRepository {
	return &PreferencesRepository{database}
}

// Get : nil без ошибки, если пользователь ещё ничего не сохранял
func (r *PreferencesRepository) Get(ctx context.Context, exec sqlx.ExtContext, userUUID string) (*model.Preferences, error) {
	query := `SELECT user_uuid, font_family, font_size, updated_at FROM user_preferences WHERE user_uuid = $1`

	var preferences model.Preferences
	err := sqlx.GetContext(ctx, exec, &preferences, query, userUUID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, util.LogError("[PreferencesRepo] не удалось получить настройки", err)
	}
	return &preferences, nil
}

// Upsert : сохраняет настройки, updated_at проставляет БД
func (r *PreferencesRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, preferences *model.Preferences) error {
	query := `
	INSERT INTO user_preferences (user_uuid, font_family, font_size, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (user_uuid) DO UPDATE
	SET font_family = EXCLUDED.font_family,
	    font_size = EXCLUDED.font_size,
	    updated_at = NOW()
	RETURNING updated_at
	`

	err := exec.QueryRowxContext(ctx, query, preferences.UserUUID, preferences.FontFamily, preferences.FontSize).
		Scan(&preferences.UpdatedAt)
	if err != nil {
		return util.LogError("[PreferencesRepo] не удалось сохранить настройки", err)
	}
	return nil
}
