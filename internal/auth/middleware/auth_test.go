package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/gradaudit/internal/db"
	"github.com/mind-engage/gradaudit/internal/rbac"
)

func newUsers(t *testing.T, name string) *Users {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbh.Close() })
	u := NewUsers(dbh)
	u.cost = bcrypt.MinCost
	return u
}

func adminHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestIssueAndParse(t *testing.T) {
	a := NewAuthService("k1")
	tok, err := a.IssueJWT("2012345", "student")
	require.NoError(t, err)

	c, err := a.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "2012345", c.Sub)
	assert.Equal(t, "student", c.Role)

	_, err = NewAuthService("other").Parse(tok)
	assert.Error(t, err)

	a.now = func() time.Time { return time.Now().Add(9 * time.Hour) }
	_, err = a.Parse(tok)
	assert.Error(t, err, "expired")
}

func TestCredentials(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t, "auth_credentials")
	adv, err := users.Add(ctx, "", "rahman", "s3cret", "advisor")
	require.NoError(t, err)
	assert.NotEmpty(t, adv.ID)

	creds := Credentials{Users: users, AdminUser: "admin", AdminPassHash: adminHash(t, "root")}

	sub, role, err := creds.Check(ctx, "admin", "root")
	require.NoError(t, err)
	assert.Equal(t, "admin", sub)
	assert.Equal(t, "admin", role)

	_, _, err = creds.Check(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	sub, role, err = creds.Check(ctx, "rahman", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, adv.ID, sub)
	assert.Equal(t, "advisor", role)

	_, _, err = creds.Check(ctx, "2012345", "2012345")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	creds.AllowSelfLogin = true
	sub, role, err = creds.Check(ctx, "2012345", "2012345")
	require.NoError(t, err)
	assert.Equal(t, "2012345", sub)
	assert.Equal(t, "student", role)

	// A known user never falls back to self-login.
	_, _, err = creds.Check(ctx, "rahman", "rahman")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginAndMiddleware(t *testing.T) {
	a := NewAuthService("k2")
	creds := Credentials{AdminUser: "admin", AdminPassHash: adminHash(t, "root"), AllowSelfLogin: true}
	login := LoginHandler(a, creds)

	rec := httptest.NewRecorder()
	login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"2012345","password":"2012345"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "student", out["role"])

	rec = httptest.NewRecorder()
	login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"username":"admin","password":"nope"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var gotSub, gotRole string
	h := JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = SubjectFromContext(r.Context())
		gotRole = rbac.RoleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+out["access_token"])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2012345", gotSub)
	assert.Equal(t, "student", gotRole)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAttachRoleFromDB(t *testing.T) {
	ctx := context.Background()
	users := newUsers(t, "auth_attach_role")
	u, err := users.Add(ctx, "u-1", "rahman", "pw", "advisor")
	require.NoError(t, err)

	run := func(sub, claimRole string, fallback bool) (int, string) {
		var seen string
		h := AttachRoleFromDB(users, fallback)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = rbac.RoleFromContext(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(rbac.WithRole(WithSubject(req.Context(), sub), claimRole))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code, seen
	}

	code, role := run(u.ID, "student", false)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "advisor", role)

	code, role = run("admin", "admin", false)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "admin", role)

	code, _ = run("2012345", "student", false)
	assert.Equal(t, http.StatusForbidden, code)

	code, role = run("2012345", "student", true)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "student", role)
}
