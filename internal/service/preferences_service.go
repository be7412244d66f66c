package service

import (
	"context"
	"strings"

	"docs-admin-console/internal/model"
	"docs-admin-console/internal/ports"
	"docs-admin-console/internal/security"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jmoiron/sqlx"
)

const (
	MinFontSize = 12
	MaxFontSize = 24
)

type PreferencesInput struct {
	FontFamily string `json:"font_family"`
	FontSize   int    `json:"font_size"`
}

type PreferencesService struct {
	repository ports.PreferencesRepository
	db         sqlx.ExtContext
}

func NewPreferencesService(repository ports.PreferencesRepository, db sqlx.ExtContext) *PreferencesService {
	return &PreferencesService{repository: repository, db: db}
}

// Get : без сохранённой записи отдаются значения по умолчанию
func (s *PreferencesService) Get(ctx context.Context, claims *security.Claims) (*model.Preferences, error) {
	preferences, err := s.repository.Get(ctx, s.db, claims.UserUUID)
	if err != nil {
		return nil, err
	}
	if preferences == nil {
		return model.DefaultPreferences(claims.UserUUID), nil
	}
	return preferences, nil
}

func (s *PreferencesService) Update(ctx context.Context, claims *security.Claims, input PreferencesInput) (*model.Preferences, error) {
	input.FontFamily = strings.TrimSpace(input.FontFamily)
	if input.FontFamily == "" {
		input.FontFamily = model.DefaultFontFamily
	}
	if input.FontSize == 0 {
		input.FontSize = model.DefaultFontSize
	}

	err := validation.ValidateStruct(&input,
		validation.Field(&input.FontFamily, validation.RuneLength(1, 64).Error("Fonte inválida")),
		validation.Field(&input.FontSize,
			validation.Min(MinFontSize).Error("Tamanho da fonte deve estar entre 12 e 24"),
			validation.Max(MaxFontSize).Error("Tamanho da fonte deve estar entre 12 e 24"),
		),
	)
	if err := validationError(err); err != nil {
		return nil, err
	}

	preferences := &model.Preferences{
		UserUUID:   claims.UserUUID,
		FontFamily: input.FontFamily,
		FontSize:   input.FontSize,
	}
	if err := s.repository.Upsert(ctx, s.db, preferences); err != nil {
		return nil, err
	}
	return preferences, nil
}
