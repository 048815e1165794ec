package http

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	auth "github.com/mind-engage/gradaudit/internal/auth/middleware"
)

// POST /users/bulk  multipart file= (CSV or JSON) or a raw JSON array.
// CSV columns: id, username, role[, password].
func BulkUpsertUsersHandler(users *auth.Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
		var accounts []auth.Account
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			f, _, err := r.FormFile("file")
			if err != nil {
				http.Error(w, "file required", http.StatusBadRequest)
				return
			}
			defer f.Close()
			b, err := io.ReadAll(f)
			if err != nil {
				http.Error(w, "read file", http.StatusBadRequest)
				return
			}
			if t := strings.TrimSpace(string(b)); strings.HasPrefix(t, "[") {
				err = json.Unmarshal(b, &accounts)
			} else {
				accounts, err = parseAccountsCSV(strings.NewReader(string(b)))
			}
			if err != nil {
				http.Error(w, "bad file: "+err.Error(), http.StatusBadRequest)
				return
			}
		} else if err := json.NewDecoder(r.Body).Decode(&accounts); err != nil {
			http.Error(w, "expected JSON array or multipart file", http.StatusBadRequest)
			return
		}

		ins, upd, err := users.Upsert(r.Context(), accounts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"inserted": ins, "updated": upd})
	}
}

// GET /users?role=
func ListUsersHandler(users *auth.Users) http.HandlerFunc {
	type out struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := users.List(r.Context(), r.URL.Query().Get("role"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		res := make([]out, 0, len(list))
		for _, u := range list {
			res = append(res, out{ID: u.ID, Username: u.Username, Role: u.Role})
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// POST /users/change-password  { "old_password": "...", "new_password": "..." }
func ChangePasswordHandler(users *auth.Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OldPassword string `json:"old_password"`
			NewPassword string `json:"new_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewPassword == "" {
			http.Error(w, "new password required", http.StatusBadRequest)
			return
		}
		err := users.ChangePassword(r.Context(), auth.SubjectFromContext(r.Context()), req.OldPassword, req.NewPassword)
		switch {
		case errors.Is(err, auth.ErrUnknownUser):
			http.Error(w, "user not found", http.StatusNotFound)
		case errors.Is(err, auth.ErrInvalidCredentials):
			http.Error(w, "incorrect old password", http.StatusForbidden)
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

func parseAccountsCSV(r io.Reader) ([]auth.Account, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	hdr, err := cr.Read()
	if err != nil {
		return nil, err
	}
	idx := map[string]int{}
	for i, h := range hdr {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, k := range []string{"id", "username", "role"} {
		if _, ok := idx[k]; !ok {
			return nil, errors.New("missing column: " + k)
		}
	}
	var out []auth.Account
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		a := auth.Account{
			ID:       strings.TrimSpace(rec[idx["id"]]),
			Username: strings.TrimSpace(rec[idx["username"]]),
			Role:     strings.ToLower(strings.TrimSpace(rec[idx["role"]])),
		}
		if i, ok := idx["password"]; ok {
			a.Password = rec[i]
		}
		out = append(out, a)
	}
	return out, nil
}
