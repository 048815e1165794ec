package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/mind-engage/gradaudit/internal/api/http"
	auth "github.com/mind-engage/gradaudit/internal/auth/middleware"
	"github.com/mind-engage/gradaudit/internal/db"
)

func usersRouter(t *testing.T) (http.Handler, *auth.AuthService, *auth.Users) {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:api_users?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbh.Close() })
	_, err = dbh.Exec(`DELETE FROM users`)
	require.NoError(t, err)

	users := auth.NewUsers(dbh)
	a := auth.NewAuthService("users-secret")
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(a))
		api.MountUsers(pr, users)
	})
	return r, a, users
}

func call(t *testing.T, h http.Handler, a *auth.AuthService, sub, role string, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	tok, err := a.IssueJWT(sub, role)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBulkUpsertAndList(t *testing.T) {
	h, a, _ := usersRouter(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "users.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("id,username,role,password\n2012345,nadia,Student,pw1\nadv-1,rahman,advisor,pw2\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/users/bulk", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := call(t, h, a, "admin", "admin", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"inserted":2,"updated":0}`, rec.Body.String())

	// JSON body: update without password, then a bad role rolls everything back.
	req = httptest.NewRequest(http.MethodPost, "/users/bulk", strings.NewReader(`[{"id":"2012345","username":"nadia.k","role":"student"}]`))
	rec = call(t, h, a, "admin", "admin", req)
	assert.JSONEq(t, `{"inserted":0,"updated":1}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/users/bulk", strings.NewReader(`[{"id":"x","username":"x","role":"teacher","password":"p"}]`))
	rec = call(t, h, a, "admin", "admin", req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = call(t, h, a, "admin", "admin", httptest.NewRequest(http.MethodGet, "/users?role=student", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "nadia.k", list[0]["username"])

	rec = call(t, h, a, "adv-1", "advisor", httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestChangePassword(t *testing.T) {
	h, a, users := usersRouter(t)
	_, err := users.Add(context.Background(), "2012345", "nadia", "old", "student")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/users/change-password", strings.NewReader(`{"old_password":"wrong","new_password":"new"}`))
	assert.Equal(t, http.StatusForbidden, call(t, h, a, "2012345", "student", req).Code)

	req = httptest.NewRequest(http.MethodPost, "/users/change-password", strings.NewReader(`{"old_password":"old","new_password":"new"}`))
	assert.Equal(t, http.StatusNoContent, call(t, h, a, "2012345", "student", req).Code)

	_, _, err = auth.Credentials{Users: users}.Check(context.Background(), "nadia", "new")
	assert.NoError(t, err)

	req = httptest.NewRequest(http.MethodPost, "/users/change-password", strings.NewReader(`{"old_password":"x","new_password":"y"}`))
	assert.Equal(t, http.StatusNotFound, call(t, h, a, "2099999", "student", req).Code)
}
