package ports

import (
	"context"

	"docs-admin-console/internal/model"

	"github.com/jmoiron/sqlx"
)

// PreferencesRepository : SQL слой
type PreferencesRepository interface {
	Get(ctx context.Context, exec sqlx.ExtContext, userUUID string) (*model.Preferences, error)
	Upsert(ctx context.Context, exec sqlx.ExtContext, preferences *model.Preferences) error
}
