package service

import (
	"context"
	"log"
	"time"

	"docs-admin-console/internal/model"
	"docs-admin-console/internal/ports"
	"docs-admin-console/internal/repository"
	"docs-admin-console/internal/security"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// PermissionService : гейт прав на папку. Администратор получает MANAGE без обращения к API,
// отсутствие записи означает NO_ACCESS.
type PermissionService struct {
	api   ports.PermissionAPI
	cache ports.CacheRepository
	ttl   time.Duration
}

// NewPermissionService : ttl == 0 отключает кэш, права запрашиваются на каждом переходе
func NewPermissionService(api ports.PermissionAPI, cache ports.CacheRepository, ttl time.Duration) *PermissionService {
	return &PermissionService{api: api, cache: cache, ttl: ttl}
}

func (s *PermissionService) Resolve(ctx context.Context, claims *security.Claims, folderID string) (model.AccessLevel, error) {
	if claims.IsAdmin {
		return model.AccessManage, nil
	}
	// корень организации только просматривается
	if folderID == "" {
		return model.AccessViewOnly, nil
	}

	key := repository.PermissionKey(claims.UserUUID, folderID)
	if s.cacheEnabled() {
		var cached model.AccessLevel
		found, err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil && found && cached.Valid() {
			return cached, nil
		}
	}

	permission, err := s.api.GetFolderPermission(ctx, claims.UserUUID, folderID)
	if err != nil {
		return "", err
	}

	level := model.AccessNone
	if permission != nil && permission.AccessLevel.Valid() {
		level = permission.AccessLevel
	}

	if s.cacheEnabled() {
		if err := s.cache.SetJSON(ctx, key, level, s.ttl); err != nil {
			log.Printf("[PermissionService] права не закэшированы: %v", err)
		}
	}
	return level, nil
}

func (s *PermissionService) Require(ctx context.Context, claims *security.Claims, folderID string, action model.Action) (model.AccessLevel, error) {
	level, err := s.Resolve(ctx, claims, folderID)
	if err != nil {
		return "", err
	}
	if !level.Allows(action) {
		return level, &model.ForbiddenError{Message: forbiddenMessage(action)}
	}
	return level, nil
}

// RequireOrganization : пользователь организации работает только со своей организацией,
// токен без организации подходит только администратору
func (s *PermissionService) RequireOrganization(claims *security.Claims, organizationID string) error {
	if organizationID == "" {
		return &model.ValidationError{Message: "Organização é obrigatória"}
	}
	if claims.IsAdmin || (claims.OrganizationID != "" && claims.OrganizationID == organizationID) {
		return nil
	}
	return &model.ForbiddenError{Message: "Você não tem acesso a esta organização"}
}

func (s *PermissionService) Get(ctx context.Context, claims *security.Claims, userID, folderID string) (*model.Permission, error) {
	if _, err := s.Require(ctx, claims, folderID, model.ActionManage); err != nil {
		return nil, err
	}

	permission, err := s.api.GetFolderPermission(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}
	if permission == nil {
		permission = &model.Permission{
			FolderID:    folderID,
			TargetID:    userID,
			TargetType:  model.TargetUser,
			AccessLevel: model.AccessNone,
		}
	}
	return permission, nil
}

// Set : менять права может только тот, у кого MANAGE на папку
func (s *PermissionService) Set(ctx context.Context, claims *security.Claims, permission model.Permission) error {
	err := validation.ValidateStruct(&permission,
		validation.Field(&permission.FolderID, validation.Required.Error("Pasta é obrigatória")),
		validation.Field(&permission.TargetID, validation.Required.Error("Usuário é obrigatório")),
		validation.Field(&permission.TargetType,
			validation.Required.Error("Tipo de destino é obrigatório"),
			validation.In(model.TargetUser, model.TargetOperator).Error("Tipo de destino inválido"),
		),
		validation.Field(&permission.AccessLevel,
			validation.Required.Error("Nível de acesso é obrigatório"),
			validation.By(func(value interface{}) error {
				if level, _ := value.(model.AccessLevel); !level.Valid() {
					return validation.NewError("access_level", "Nível de acesso inválido")
				}
				return nil
			}),
		),
	)
	if err := validationError(err); err != nil {
		return err
	}

	if _, err := s.Require(ctx, claims, permission.FolderID, model.ActionManage); err != nil {
		return err
	}

	if err := s.api.CreateOrUpdatePermission(ctx, permission); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, repository.PermissionKey(permission.TargetID, permission.FolderID)); err != nil {
			log.Printf("[PermissionService] кэш прав не сброшен: %v", err)
		}
	}

	log.Printf("[PermissionService] права %s на папку %s выданы %s", permission.AccessLevel, permission.FolderID, permission.TargetID)
	return nil
}

func (s *PermissionService) cacheEnabled() bool {
	return s.cache != nil && s.ttl > 0
}

func forbiddenMessage(action model.Action) string {
	switch action {
	case model.ActionView:
		return "Você não tem permissão para acessar esta pasta"
	case model.ActionDownload:
		return "Você não tem permissão para baixar arquivos desta pasta"
	case model.ActionUpload:
		return "Você não tem permissão para enviar arquivos para esta pasta"
	default:
		return "Você não tem permissão para gerenciar esta pasta"
	}
}
