package service_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"docs-admin-console/internal/model"
	"docs-admin-console/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReportService_Get(t *testing.T) {
	permissions := service.NewPermissionService(new(MockPermissionAPI), nil, 0)

	t.Run("из кэша", func(t *testing.T) {
		api := new(MockOrganizationAPI)
		cache := new(MockCacheRepository)
		cache.On("GetJSON", mock.Anything, "report:org-1:statistics", mock.Anything).
			Return(func(dest interface{}) {
				*dest.(*json.RawMessage) = json.RawMessage(`{"tccs":3}`)
			}, nil)
		reports := service.NewReportService(api, cache, permissions, time.Minute)

		report, err := reports.Get(context.Background(), userClaims, model.ReportStatistics, "")

		require.NoError(t, err)
		assert.JSONEq(t, `{"tccs":3}`, string(report))
		api.AssertNotCalled(t, "GetReport", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("промах кэша", func(t *testing.T) {
		api := new(MockOrganizationAPI)
		api.On("GetReport", mock.Anything, model.ReportStorage, "").Return(json.RawMessage(`[1,2]`), nil).Once()
		cache := new(MockCacheRepository)
		cache.On("GetJSON", mock.Anything, "report:all:storage", mock.Anything).Return(false, nil)
		cache.On("SetJSON", mock.Anything, "report:all:storage", json.RawMessage(`[1,2]`), time.Minute).Return(nil).Once()
		reports := service.NewReportService(api, cache, permissions, time.Minute)

		report, err := reports.Get(context.Background(), adminClaims, model.ReportStorage, "")

		require.NoError(t, err)
		assert.JSONEq(t, `[1,2]`, string(report))
		api.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("кэш выключен", func(t *testing.T) {
		api := new(MockOrganizationAPI)
		api.On("GetReport", mock.Anything, model.ReportThemes, "org-1").Return(json.RawMessage(nil), nil).Once()
		cache := new(MockCacheRepository)
		reports := service.NewReportService(api, cache, permissions, 0)

		report, err := reports.Get(context.Background(), userClaims, model.ReportThemes, "org-1")

		require.NoError(t, err)
		assert.Equal(t, "null", string(report))
		cache.AssertNotCalled(t, "GetJSON", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestReportService_GetRejects(t *testing.T) {
	permissions := service.NewPermissionService(new(MockPermissionAPI), nil, 0)
	reports := service.NewReportService(new(MockOrganizationAPI), new(MockCacheRepository), permissions, time.Minute)

	_, err := reports.Get(context.Background(), adminClaims, model.ReportKind("salaries"), "")
	assert.EqualError(t, err, "Tipo de relatório inválido")

	_, err = reports.Get(context.Background(), userClaims, model.ReportTCCs, "org-2")
	var forbidden *model.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)

	noOrganization := *userClaims
	noOrganization.OrganizationID = ""
	_, err = reports.Get(context.Background(), &noOrganization, model.ReportTCCs, "")
	assert.ErrorAs(t, err, &forbidden)
}

func TestReportService_Invalidate(t *testing.T) {
	cache := new(MockCacheRepository)
	cache.On("Delete", mock.Anything, mock.MatchedBy(func(keys []string) bool {
		want := map[string]bool{
			"report:all:statistics":   false,
			"report:org-1:statistics": false,
			"report:org-1:themes":     false,
		}
		for _, key := range keys {
			if _, ok := want[key]; ok {
				want[key] = true
			}
		}
		for _, seen := range want {
			if !seen {
				return false
			}
		}
		return len(keys) == 2*len(model.ReportKinds)
	})).Return(nil).Once()

	permissions := service.NewPermissionService(new(MockPermissionAPI), nil, 0)
	reports := service.NewReportService(new(MockOrganizationAPI), cache, permissions, time.Minute)
	reports.Invalidate(context.Background(), "org-1")

	cache.AssertExpectations(t)
}
