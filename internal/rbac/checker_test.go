package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecker_Has(t *testing.T) {
	c := NewChecker(nil)
	assert.True(t, c.Has("student", PermAuditSelf))
	assert.False(t, c.Has("student", PermAuditRun))
	assert.True(t, c.Has("advisor", PermAuditRun))
	assert.True(t, c.Has("advisor", PermAuditAny))
	assert.False(t, c.Has("advisor", "users:list"))
	assert.True(t, c.Has("admin", "anything:at-all"))
	assert.False(t, c.Has("", PermRequirementsView))
	assert.True(t, c.Any("student", PermAuditRun, PermRequirementsView))
}

func serve(mw func(http.Handler) http.Handler, role string, target string) int {
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if role != "" {
		req = req.WithContext(WithRole(req.Context(), role))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRequire(t *testing.T) {
	assert.Equal(t, http.StatusNoContent, serve(Require(PermAuditRun), "advisor", "/"))
	assert.Equal(t, http.StatusForbidden, serve(Require(PermAuditRun), "student", "/"))
	assert.Equal(t, http.StatusForbidden, serve(Require(PermAuditRun), "", "/"))
	assert.Equal(t, http.StatusNoContent, serve(RequireAny(PermAuditRun, PermAuditSelf), "student", "/"))
}

func TestRequireOwnerOr(t *testing.T) {
	mine := func(r *http.Request) bool { return r.URL.Path == "/students/me" }
	mw := RequireOwnerOr(PermAuditAny, mine)

	assert.Equal(t, http.StatusNoContent, serve(mw, "student", "/students/me"))
	assert.Equal(t, http.StatusForbidden, serve(mw, "student", "/students/other"))
	assert.Equal(t, http.StatusNoContent, serve(mw, "advisor", "/students/other"))
	assert.Equal(t, http.StatusForbidden, serve(mw, "", "/students/me"))
}
