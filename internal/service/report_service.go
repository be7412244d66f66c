package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"docs-admin-console/internal/model"
	"docs-admin-console/internal/ports"
	"docs-admin-console/internal/repository"
	"docs-admin-console/internal/security"
)

// ReportService : отчёты отдаются в том виде, в каком их строит API, и кэшируются в Redis
type ReportService struct {
	api         ports.OrganizationAPI
	cache       ports.CacheRepository
	permissions *PermissionService
	ttl         time.Duration
}

func NewReportService(api ports.OrganizationAPI, cache ports.CacheRepository, permissions *PermissionService, ttl time.Duration) *ReportService {
	return &ReportService{api: api, cache: cache, permissions: permissions, ttl: ttl}
}

func (s *ReportService) Get(ctx context.Context, claims *security.Claims, kind model.ReportKind, organizationID string) (json.RawMessage, error) {
	if !kind.Valid() {
		return nil, &model.ValidationError{Message: "Tipo de relatório inválido"}
	}
	if organizationID == "" && !claims.IsAdmin {
		organizationID = claims.OrganizationID
	}
	if organizationID != "" {
		if err := s.permissions.RequireOrganization(claims, organizationID); err != nil {
			return nil, err
		}
	} else if !claims.IsAdmin {
		return nil, &model.ForbiddenError{Message: "Apenas administradores podem ver relatórios globais"}
	}

	key := repository.ReportKey(string(kind), organizationID)
	if s.cacheEnabled() {
		var cached json.RawMessage
		found, err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil && found {
			return cached, nil
		}
	}

	report, err := s.api.GetReport(ctx, kind, organizationID)
	if err != nil {
		return nil, err
	}
	if len(report) == 0 {
		report = json.RawMessage("null")
	}

	if s.cacheEnabled() {
		if err := s.cache.SetJSON(ctx, key, report, s.ttl); err != nil {
			log.Printf("[ReportService] отчёт не закэширован: %v", err)
		}
	}
	return report, nil
}

// Invalidate : сбрасывает все отчёты организаций и глобальные отчёты
func (s *ReportService) Invalidate(ctx context.Context, organizationIDs ...string) {
	if s.cache == nil {
		return
	}

	organizations := []string{""}
	for _, organizationID := range organizationIDs {
		if organizationID != "" {
			organizations = append(organizations, organizationID)
		}
	}
	keys := make([]string, 0, len(organizations)*len(model.ReportKinds))
	for _, organizationID := range organizations {
		for _, kind := range model.ReportKinds {
			keys = append(keys, repository.ReportKey(string(kind), organizationID))
		}
	}

	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Printf("[ReportService] кэш отчётов не сброшен: %v", err)
	}
}

func (s *ReportService) cacheEnabled() bool {
	return s.cache != nil && s.ttl > 0
}
