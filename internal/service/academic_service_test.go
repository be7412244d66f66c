package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"docs-admin-console/internal/apiclient"
	"docs-admin-console/internal/model"
	"docs-admin-console/internal/ports"
	"docs-admin-console/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// countingServer : считает запросы по "METHOD path" и отвечает заданным телом
func countingServer(t *testing.T, responses map[string]string) (*httptest.Server, func(string) int64) {
	t.Helper()
	var mu sync.Mutex
	counts := map[string]*atomic.Int64{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		mu.Lock()
		if counts[key] == nil {
			counts[key] = &atomic.Int64{}
		}
		counts[key].Add(1)
		mu.Unlock()

		body, ok := responses[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"not found"}`))
			return
		}
		if body == "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server, func(key string) int64 {
		mu.Lock()
		defer mu.Unlock()
		if counts[key] == nil {
			return 0
		}
		return counts[key].Load()
	}
}

func newReportService(cache ports.CacheRepository) *service.ReportService {
	permissions := service.NewPermissionService(new(MockPermissionAPI), nil, 0)
	return service.NewReportService(new(MockOrganizationAPI), cache, permissions, time.Minute)
}

func TestCourseService_CreateWithoutCoordinator(t *testing.T) {
	server, count := countingServer(t, map[string]string{
		"POST /api/courses": `{"id":"c1","name":"Direito"}`,
	})
	client := apiclient.New(server.URL, 5*time.Second, "")
	permissions := service.NewPermissionService(client, nil, 0)
	courses := service.NewCourseService(client, permissions, service.NewConfirmationService(time.Minute), newReportService(nil))

	_, err := courses.Create(context.Background(), userClaims, apiclient.CourseInput{Name: "Direito"})

	var validationErr *model.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Coordenador é obrigatório", validationErr.Message)
	assert.Equal(t, int64(0), count("POST /api/courses"))
}

func TestCourseService_Create(t *testing.T) {
	server, count := countingServer(t, map[string]string{
		"POST /api/courses": `{"id":"c1","name":"Direito","coordinator_id":"u9","organization_id":"org-1"}`,
	})
	client := apiclient.New(server.URL, 5*time.Second, "")
	permissions := service.NewPermissionService(client, nil, 0)

	cache := new(MockCacheRepository)
	cache.On("Delete", mock.Anything, mock.MatchedBy(func(keys []string) bool {
		return len(keys) == 2*len(model.ReportKinds)
	})).Return(nil).Once()
	courses := service.NewCourseService(client, permissions, service.NewConfirmationService(time.Minute), newReportService(cache))

	course, err := courses.Create(context.Background(), userClaims, apiclient.CourseInput{Name: " Direito ", CoordinatorID: "u9"})

	require.NoError(t, err)
	assert.Equal(t, "c1", course.ID)
	assert.Equal(t, int64(1), count("POST /api/courses"))
	cache.AssertExpectations(t)
}

func TestCourseService_Validation(t *testing.T) {
	api := new(MockAcademicAPI)
	permissions := service.NewPermissionService(new(MockPermissionAPI), nil, 0)
	courses := service.NewCourseService(api, permissions, service.NewConfirmationService(time.Minute), newReportService(nil))

	tests := []struct {
		name    string
		call    func() error
		message string
	}{
		{
			name: "курс без полей",
			call: func() error {
				_, err := courses.Create(context.Background(), userClaims, apiclient.CourseInput{})
				return err
			},
			message: "Coordenador é obrigatório; Nome é obrigatório",
		},
		{
			name: "курс чужой организации",
			call: func() error {
				_, err := courses.Create(context.Background(), userClaims, apiclient.CourseInput{Name: "X", CoordinatorID: "u", OrganizationID: "org-2"})
				return err
			},
			message: "Você não tem acesso a esta organização",
		},
		{
			name: "студент с неверным e-mail",
			call: func() error {
				_, err := courses.CreateStudent(context.Background(), userClaims, apiclient.StudentInput{
					Name: "Ana", Email: "ana-at-example", Registration: "2024001", CourseID: "c1",
				})
				return err
			},
			message: "E-mail inválido",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
		})
	}

	api.AssertNotCalled(t, "CreateCourse", mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "CreateStudent", mock.Anything, mock.Anything)
}

func TestTCCService_DeleteOncePerConfirmation(t *testing.T) {
	server, count := countingServer(t, map[string]string{
		"GET /api/tccs/t1":    `{"id":"t1","course_id":"c1"}`,
		"GET /api/courses/c1": `{"id":"c1","organization_id":"org-1"}`,
		"DELETE /api/tccs/t1": "",
	})
	client := apiclient.New(server.URL, 5*time.Second, "")
	confirmations := service.NewConfirmationService(time.Minute)
	tccs := service.NewTCCService(client, confirmations, testLimits)

	var refreshed []service.TCCChange
	tccs.OnChange(func(ctx context.Context, change service.TCCChange) {
		refreshed = append(refreshed, change)
	})

	confirmation, err := confirmations.Request(userClaims.UserUUID, service.ConfirmDeleteTCC, "t1")
	require.NoError(t, err)

	require.NoError(t, tccs.Delete(context.Background(), userClaims, "t1", confirmation.Token))
	assert.Equal(t, int64(1), count("DELETE /api/tccs/t1"))
	assert.Equal(t, []service.TCCChange{{TCCID: "t1", CourseID: "c1", OrganizationID: "org-1"}}, refreshed)

	err = tccs.Delete(context.Background(), userClaims, "t1", confirmation.Token)
	assert.Error(t, err)
	assert.Equal(t, int64(1), count("DELETE /api/tccs/t1"))
	assert.Len(t, refreshed, 1)
}

func TestTCCService_DeleteFailureSkipsRefresh(t *testing.T) {
	server, count := countingServer(t, map[string]string{})
	client := apiclient.New(server.URL, 5*time.Second, "")
	confirmations := service.NewConfirmationService(time.Minute)
	tccs := service.NewTCCService(client, confirmations, testLimits)

	refreshed := 0
	tccs.OnChange(func(ctx context.Context, change service.TCCChange) { refreshed++ })

	confirmation, err := confirmations.Request(userClaims.UserUUID, service.ConfirmDeleteTCC, "t2")
	require.NoError(t, err)

	err = tccs.Delete(context.Background(), userClaims, "t2", confirmation.Token)

	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "not found", apiErr.Message)
	assert.Equal(t, int64(1), count("DELETE /api/tccs/t2"))
	assert.Zero(t, refreshed)
}

func TestTCCService_Create(t *testing.T) {
	valid := apiclient.TCCInput{
		Title:        "Redes neurais",
		Type:         model.TCCMaster,
		AuthorID:     "s1",
		SupervisorID: "u1",
		CourseID:     "c1",
		Keywords:     []string{" ia ", ""},
	}

	t.Run("файл больше 50 МБ", func(t *testing.T) {
		api := new(MockAcademicAPI)
		tccs := service.NewTCCService(api, service.NewConfirmationService(time.Minute), testLimits)

		_, err := tccs.Create(context.Background(), valid,
			&service.TCCFile{Name: "tese.pdf", Size: 51 * megabyte, Reader: strings.NewReader("x")}, nil)

		var validationErr *model.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "O arquivo excede o limite de 50 MB", validationErr.Message)
		api.AssertNotCalled(t, "CreateTCC", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("без научного руководителя", func(t *testing.T) {
		api := new(MockAcademicAPI)
		tccs := service.NewTCCService(api, service.NewConfirmationService(time.Minute), testLimits)
		input := valid
		input.SupervisorID = ""

		_, err := tccs.Create(context.Background(), input,
			&service.TCCFile{Name: "tese.pdf", Size: megabyte, Reader: strings.NewReader("x")}, nil)

		assert.EqualError(t, err, "Orientador é obrigatório")
	})

	t.Run("успешно с протоколом защиты", func(t *testing.T) {
		api := new(MockAcademicAPI)
		api.On("CreateTCC", mock.Anything,
			mock.MatchedBy(func(input apiclient.TCCInput) bool {
				return len(input.Keywords) == 1 && input.Keywords[0] == "ia"
			}),
			mock.MatchedBy(func(part apiclient.UploadPart) bool {
				return part.FileName == "tese.pdf" && part.ContentType == "application/pdf"
			}),
			mock.MatchedBy(func(part *apiclient.UploadPart) bool {
				return part != nil && part.FileName == "ata.pdf"
			}),
		).Return(&model.TCC{ID: "t9"}, nil).Once()
		api.On("GetCourse", mock.Anything, "c1").Return(&model.Course{ID: "c1", OrganizationID: "org-1"}, nil).Once()

		tccs := service.NewTCCService(api, service.NewConfirmationService(time.Minute), testLimits)
		var changed []service.TCCChange
		tccs.OnChange(func(ctx context.Context, change service.TCCChange) { changed = append(changed, change) })

		tcc, err := tccs.Create(context.Background(), valid,
			&service.TCCFile{Name: "tese.pdf", Size: 40 * megabyte, Reader: strings.NewReader("x")},
			&service.TCCFile{Name: "ata.pdf", Size: megabyte, Reader: strings.NewReader("y")})

		require.NoError(t, err)
		assert.Equal(t, "t9", tcc.ID)
		require.Len(t, changed, 1)
		assert.Equal(t, "org-1", changed[0].OrganizationID)
		api.AssertExpectations(t)
	})
}

// memoryCache : CacheRepository поверх map, TTL игнорируется
type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}}
}

func (c *memoryCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *memoryCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = data
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.items, key)
	}
	return nil
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}

func TestTCCService_DeleteRefreshesOrganizationReports(t *testing.T) {
	server, count := countingServer(t, map[string]string{
		"GET /api/reports/tccs": `{"count":1}`,
		"GET /api/tccs/t1":      `{"id":"t1","course_id":"c1"}`,
		"GET /api/courses/c1":   `{"id":"c1","organization_id":"org-1"}`,
		"DELETE /api/tccs/t1":   "",
	})
	client := apiclient.New(server.URL, 5*time.Second, "")
	permissions := service.NewPermissionService(client, nil, 0)
	cache := newMemoryCache()
	reports := service.NewReportService(client, cache, permissions, time.Minute)
	confirmations := service.NewConfirmationService(time.Minute)
	tccs := service.NewTCCService(client, confirmations, testLimits)
	tccs.OnChange(func(ctx context.Context, change service.TCCChange) {
		reports.Invalidate(ctx, change.OrganizationID)
	})

	_, err := reports.Get(context.Background(), userClaims, model.ReportTCCs, "")
	require.NoError(t, err)
	_, err = reports.Get(context.Background(), userClaims, model.ReportTCCs, "")
	require.NoError(t, err)
	require.Equal(t, int64(1), count("GET /api/reports/tccs"))
	require.True(t, cache.has("report:org-1:tccs"))

	confirmation, err := confirmations.Request(userClaims.UserUUID, service.ConfirmDeleteTCC, "t1")
	require.NoError(t, err)
	require.NoError(t, tccs.Delete(context.Background(), userClaims, "t1", confirmation.Token))

	assert.False(t, cache.has("report:org-1:tccs"))
	_, err = reports.Get(context.Background(), userClaims, model.ReportTCCs, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count("GET /api/reports/tccs"))
}

func TestCourseService_AdminChangesInvalidateCourseOrganization(t *testing.T) {
	server, count := countingServer(t, map[string]string{
		"GET /api/courses/c1":     `{"id":"c1","organization_id":"org-1"}`,
		"DELETE /api/courses/c1":  "",
		"POST /api/students":      `{"id":"s1","course_id":"c1"}`,
		"DELETE /api/students/s1": "",
	})
	client := apiclient.New(server.URL, 5*time.Second, "")
	permissions := service.NewPermissionService(client, nil, 0)
	confirmations := service.NewConfirmationService(time.Minute)
	cache := newMemoryCache()
	reports := service.NewReportService(client, cache, permissions, time.Minute)
	courses := service.NewCourseService(client, permissions, confirmations, reports)

	tests := []struct {
		name string
		call func() error
	}{
		{
			name: "добавление студента",
			call: func() error {
				_, err := courses.CreateStudent(context.Background(), adminClaims, apiclient.StudentInput{
					Name: "Ana", Email: "ana@example.com", Registration: "2024001", CourseID: "c1",
				})
				return err
			},
		},
		{
			name: "удаление студента",
			call: func() error {
				return courses.DeleteStudent(context.Background(), adminClaims, "c1", "s1")
			},
		},
		{
			name: "удаление курса",
			call: func() error {
				confirmation, err := confirmations.Request(adminClaims.UserUUID, service.ConfirmDeleteCourse, "c1")
				if err != nil {
					return err
				}
				return courses.Delete(context.Background(), adminClaims, "c1", confirmation.Token)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, cache.SetJSON(context.Background(), "report:org-1:courses", map[string]int{"count": 1}, time.Minute))

			require.NoError(t, tt.call())

			assert.False(t, cache.has("report:org-1:courses"))
		})
	}
	assert.Equal(t, int64(1), count("DELETE /api/courses/c1"))
}

func TestCourseService_StudentOfForeignOrganization(t *testing.T) {
	server, count := countingServer(t, map[string]string{
		"GET /api/courses/c2":     `{"id":"c2","organization_id":"org-2"}`,
		"DELETE /api/students/s1": "",
	})
	client := apiclient.New(server.URL, 5*time.Second, "")
	permissions := service.NewPermissionService(client, nil, 0)
	courses := service.NewCourseService(client, permissions, service.NewConfirmationService(time.Minute), newReportService(nil))

	err := courses.DeleteStudent(context.Background(), userClaims, "c2", "s1")

	var forbidden *model.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.Zero(t, count("DELETE /api/students/s1"))
}
