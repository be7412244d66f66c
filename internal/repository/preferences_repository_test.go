package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"docs-admin-console/internal/model"
	"docs-admin-console/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestPreferencesRepository_Get(t *testing.T) {
	selectQuery := regexp.QuoteMeta(`SELECT user_uuid, font_family, font_size, updated_at FROM user_preferences WHERE user_uuid = $1`)
	updatedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		want    *model.Preferences
		wantErr bool
	}{
		{
			name: "сохранённые настройки",
			setup: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"user_uuid", "font_family", "font_size", "updated_at"}).
					AddRow("user-1", "Roboto", 18, updatedAt)
				mock.ExpectQuery(selectQuery).WithArgs("user-1").WillReturnRows(rows)
			},
			want: &model.Preferences{UserUUID: "user-1", FontFamily: "Roboto", FontSize: 18, UpdatedAt: updatedAt},
		},
		{
			name: "нет записи",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectQuery).WithArgs("user-1").
					WillReturnRows(sqlmock.NewRows([]string{"user_uuid", "font_family", "font_size", "updated_at"}))
			},
			want: nil,
		},
		{
			name: "ошибка БД",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(selectQuery).WithArgs("user-1").WillReturnError(errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tt.setup(mock)

			repo := repository.NewPreferencesRepository(nil)
			got, err := repo.Get(context.Background(), db, "user-1")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPreferencesRepository_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	updatedAt := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO user_preferences`).
		WithArgs("user-1", "Inter", 20).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(updatedAt))

	preferences := &model.Preferences{UserUUID: "user-1", FontFamily: "Inter", FontSize: 20}
	err := repository.NewPreferencesRepository(nil).Upsert(context.Background(), db, preferences)

	require.NoError(t, err)
	assert.Equal(t, updatedAt, preferences.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
