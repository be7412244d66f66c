package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"docs-admin-console/internal/apiclient"
	"docs-admin-console/internal/model"
	"docs-admin-console/internal/ports"
	"docs-admin-console/internal/security"
)

const defaultTCCSearchLimit = 20

// FileSearchResult : Superseded означает, что пользователь уже ввёл другой запрос
type FileSearchResult struct {
	Query      string            `json:"query"`
	Superseded bool              `json:"superseded"`
	Hits       []model.SearchHit `json:"hits"`
}

type TCCHit struct {
	model.TCCSearchResult
	RelevancePercent int `json:"relevance_percent"`
}

type TCCSearchResult struct {
	Query      string   `json:"query"`
	Superseded bool     `json:"superseded"`
	Results    []TCCHit `json:"results"`
}

type SearchService struct {
	files       ports.FileAPI
	academic    ports.AcademicAPI
	permissions *PermissionService
	debouncer   *Debouncer
	minLength   int
}

func NewSearchService(files ports.FileAPI, academic ports.AcademicAPI, permissions *PermissionService,
	debouncer *Debouncer, minLength int) *SearchService {
	return &SearchService{
		files:       files,
		academic:    academic,
		permissions: permissions,
		debouncer:   debouncer,
		minLength:   minLength,
	}
}

// searchable : короткие запросы не уходят в API
func (s *SearchService) searchable(query string) bool {
	return utf8.RuneCountInString(query) >= s.minLength
}

func (s *SearchService) SearchFiles(ctx context.Context, claims *security.Claims, session, organizationID, folderID, query string) (*FileSearchResult, error) {
	query = strings.TrimSpace(query)
	result := &FileSearchResult{Query: query, Hits: []model.SearchHit{}}

	if err := s.permissions.RequireOrganization(claims, organizationID); err != nil {
		return nil, err
	}

	key := session + ":files"
	ticket, ok, err := s.debouncer.Wait(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		result.Superseded = true
		return result, nil
	}
	defer s.debouncer.Done(key, ticket)

	if !s.searchable(query) {
		return result, nil
	}

	hits, err := s.files.SearchFiles(ctx, apiclient.FileSearchQuery{
		OrganizationID: organizationID,
		FolderID:       folderID,
		Query:          query,
	})
	if err != nil {
		return nil, err
	}

	if !s.debouncer.Current(key, ticket) {
		result.Superseded = true
		return result, nil
	}
	if hits != nil {
		result.Hits = hits
	}
	return result, nil
}

// SearchTCCs : ранжирование делает API, консоль только переводит score в проценты
func (s *SearchService) SearchTCCs(ctx context.Context, claims *security.Claims, session, organizationID, query string, limit int) (*TCCSearchResult, error) {
	query = strings.TrimSpace(query)
	result := &TCCSearchResult{Query: query, Results: []TCCHit{}}

	if organizationID == "" && !claims.IsAdmin {
		organizationID = claims.OrganizationID
	}
	if organizationID != "" {
		if err := s.permissions.RequireOrganization(claims, organizationID); err != nil {
			return nil, err
		}
	}
	if limit <= 0 {
		limit = defaultTCCSearchLimit
	}

	key := session + ":tccs"
	ticket, ok, err := s.debouncer.Wait(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		result.Superseded = true
		return result, nil
	}
	defer s.debouncer.Done(key, ticket)

	if !s.searchable(query) {
		return result, nil
	}

	found, err := s.academic.IntelligentSearch(ctx, apiclient.TCCSearchRequest{
		Query:          query,
		OrganizationID: organizationID,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}

	if !s.debouncer.Current(key, ticket) {
		result.Superseded = true
		return result, nil
	}
	for _, item := range found {
		result.Results = append(result.Results, TCCHit{TCCSearchResult: item, RelevancePercent: item.RelevancePercent()})
	}
	return result, nil
}
