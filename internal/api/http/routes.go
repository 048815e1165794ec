package http

import (
	"github.com/go-chi/chi/v5"

	auth "github.com/mind-engage/gradaudit/internal/auth/middleware"
	"github.com/mind-engage/gradaudit/internal/rbac"
)

// Mount registers the audit routes on a router that already authenticates
// (JWT → role in context).
func (a *AuditAPI) Mount(pr chi.Router) {
	pr.With(rbac.Require(rbac.PermRequirementsView)).
		Get("/programs", a.ListProgramsHandler())
	pr.With(rbac.Require(rbac.PermRequirementsView)).
		Get("/programs/{program}/requirements", a.RequirementsHandler())

	// Advisors: audit an uploaded transcript
	pr.With(rbac.Require(rbac.PermAuditRun)).
		Post("/audits", a.UploadAuditHandler())

	// Students see only themselves; advisors anyone
	pr.With(rbac.RequireAny(rbac.PermAuditSelf, rbac.PermAuditAny), rbac.RequireOwnerOr(rbac.PermAuditAny, IsStudentSelf)).
		Get("/students/{studentID}/audit", a.StudentAuditHandler())
}

// MountUsers registers user administration on an authenticated router.
func MountUsers(pr chi.Router, users *auth.Users) {
	pr.With(rbac.Require(rbac.PermUsersManage)).
		Post("/users/bulk", BulkUpsertUsersHandler(users))
	pr.With(rbac.Require(rbac.PermUsersManage)).
		Get("/users", ListUsersHandler(users))
	pr.With(rbac.Require(rbac.PermChangePassword)).
		Post("/users/change-password", ChangePasswordHandler(users))
}
