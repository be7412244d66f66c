package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Handlers struct {
	Browser      *BrowserHandler
	Permission   *PermissionHandler
	Upload       *UploadHandler
	Academic     *AcademicHandler
	Organization *OrganizationHandler
}

// Mount : все маршруты консоли под одним middleware аутентификации
func (h Handlers) Mount(r chi.Router, authentication func(http.Handler) http.Handler) {
	r.Route("/console", func(r chi.Router) {
		r.Use(authentication)

		r.Route("/browser", func(r chi.Router) {
			r.Get("/", h.Browser.GetState)
			r.Post("/open", h.Browser.Open)
			r.Post("/enter", h.Browser.Enter)
			r.Post("/navigate", h.Browser.NavigateTo)
			r.Post("/jump", h.Browser.JumpTo)
			r.Post("/up", h.Browser.GoUp)
			r.Post("/refresh", h.Browser.Refresh)
			r.Post("/expand", h.Browser.ToggleExpanded)
			r.Post("/select/file", h.Browser.ToggleFile)
			r.Post("/select/folder", h.Browser.ToggleFolder)
			r.Post("/select/all", h.Browser.SelectAll)
			r.Post("/select/clear", h.Browser.ClearSelection)
			r.Get("/tree", h.Browser.Tree)
			r.Get("/search", h.Browser.Search)
			r.Post("/folders", h.Browser.CreateFolder)
			r.Put("/folders/{folder_id}", h.Browser.RenameFolder)
			r.Delete("/folders/{folder_id}", h.Browser.DeleteFolder)
			r.Post("/selection/delete", h.Browser.DeleteSelected)
			r.Post("/selection/move", h.Browser.MoveSelected)
		})
		r.Get("/folders/{folder_id}/files/{file_id}/download", h.Browser.Download)

		r.Post("/confirmations", h.Permission.RequestConfirmation)
		r.Route("/permissions", func(r chi.Router) {
			r.Get("/", h.Permission.GetPermission)
			r.Put("/", h.Permission.SetPermission)
			r.Get("/access", h.Permission.GetAccess)
		})

		r.Route("/uploads", func(r chi.Router) {
			r.Post("/", h.Upload.Drop)
			r.Route("/{upload_id}", func(r chi.Router) {
				r.Get("/", h.Upload.GetUpload)
				r.Delete("/", h.Upload.Cancel)
				r.Post("/commit", h.Upload.Commit)
				r.Put("/files/{index}", h.Upload.RenameFile)
				r.Get("/files/{index}/preview", h.Upload.Preview)
			})
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/", h.Academic.ListCourses)
			r.Post("/", h.Academic.CreateCourse)
			r.Route("/{course_id}", func(r chi.Router) {
				r.Get("/", h.Academic.GetCourse)
				r.Put("/", h.Academic.UpdateCourse)
				r.Delete("/", h.Academic.DeleteCourse)
				r.Get("/students", h.Academic.ListStudents)
				r.Delete("/students/{student_id}", h.Academic.DeleteStudent)
			})
		})
		r.Post("/students", h.Academic.CreateStudent)

		r.Route("/tccs", func(r chi.Router) {
			r.Get("/", h.Academic.ListTCCs)
			r.Post("/", h.Academic.CreateTCC)
			r.Post("/search", h.Academic.SearchTCCs)
			r.Route("/{tcc_id}", func(r chi.Router) {
				r.Get("/", h.Academic.GetTCC)
				r.Put("/", h.Academic.UpdateTCC)
				r.Delete("/", h.Academic.DeleteTCC)
			})
		})

		r.Route("/organizations/{organization_id}", func(r chi.Router) {
			r.Get("/", h.Organization.GetOrganization)
			r.Delete("/", h.Organization.DeleteOrganization)
			r.Get("/payments", h.Organization.ListPayments)
		})
		r.Get("/reports/{kind}", h.Organization.GetReport)

		r.Get("/preferences", h.Organization.GetPreferences)
		r.Put("/preferences", h.Organization.UpdatePreferences)
	})
}
