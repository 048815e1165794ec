package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUnknownUser        = errors.New("auth: unknown user")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)

type User struct {
	ID           string
	Username     string
	Role         string
	PasswordHash string
}

// Users reads and seeds the registrar users table.
type Users struct {
	db   *sql.DB
	cost int
}

func NewUsers(db *sql.DB) *Users { return &Users{db: db, cost: bcrypt.DefaultCost} }

// Lookup finds a user by id or username.
func (u *Users) Lookup(ctx context.Context, idOrName string) (User, error) {
	var out User
	err := u.db.QueryRowContext(ctx,
		`SELECT id, username, role, password_hash FROM users WHERE id=$1 OR username=$1`,
		idOrName,
	).Scan(&out.ID, &out.Username, &out.Role, &out.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUnknownUser
	}
	if err != nil {
		return User{}, fmt.Errorf("lookup user: %w", err)
	}
	return out, nil
}

// Add stores a user with a bcrypt hash of password. An empty id gets a uuid.
func (u *Users) Add(ctx context.Context, id, username, password, role string) (User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		return User{}, err
	}
	_, err = u.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, role, created_at) VALUES ($1,$2,$3,$4,$5)`,
		id, username, string(hash), role, time.Now().Unix(),
	)
	if err != nil {
		return User{}, fmt.Errorf("add user %s: %w", username, err)
	}
	return User{ID: id, Username: username, Role: role, PasswordHash: string(hash)}, nil
}

// Credentials decides who may log in.
type Credentials struct {
	Users *Users // optional

	AdminUser     string
	AdminPassHash string // bcrypt

	// AllowSelfLogin lets anyone not in the users table log in as a student
	// with their id as password. Offline mode only.
	AllowSelfLogin bool
}

// Check returns the token subject and role for a username/password pair.
func (c Credentials) Check(ctx context.Context, username, password string) (sub, role string, err error) {
	if username == "" {
		return "", "", ErrInvalidCredentials
	}
	if c.AdminUser != "" && username == c.AdminUser {
		if bcrypt.CompareHashAndPassword([]byte(c.AdminPassHash), []byte(password)) != nil {
			return "", "", ErrInvalidCredentials
		}
		return username, "admin", nil
	}
	if c.Users != nil {
		u, err := c.Users.Lookup(ctx, username)
		switch {
		case err == nil:
			if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
				return "", "", ErrInvalidCredentials
			}
			return u.ID, u.Role, nil
		case !errors.Is(err, ErrUnknownUser):
			return "", "", err
		}
	}
	if c.AllowSelfLogin && username == password {
		return username, "student", nil
	}
	return "", "", ErrInvalidCredentials
}

// Roles a stored user may have.
var validRoles = map[string]bool{"student": true, "advisor": true, "admin": true}

// Account is one row of a bulk user import. Password may be empty for an
// existing user; it is required for a new one.
type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Password string `json:"password,omitempty"`
}

// Upsert inserts or updates accounts in one transaction. Students should be
// imported with their student id as ID so they can audit themselves.
func (u *Users) Upsert(ctx context.Context, accounts []Account) (inserted, updated int, err error) {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			inserted, updated = 0, 0
		} else {
			err = tx.Commit()
		}
	}()

	now := time.Now().Unix()
	for _, a := range accounts {
		if a.Role == "" {
			a.Role = "student"
		}
		if !validRoles[a.Role] {
			return 0, 0, fmt.Errorf("invalid role %q for %s", a.Role, a.Username)
		}
		if a.ID == "" || a.Username == "" {
			return 0, 0, errors.New("id and username are required")
		}
		var hash string
		if a.Password != "" {
			b, err := bcrypt.GenerateFromPassword([]byte(a.Password), u.cost)
			if err != nil {
				return 0, 0, err
			}
			hash = string(b)
		}

		var one int
		err = tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id=$1`, a.ID).Scan(&one)
		switch {
		case err == nil:
			if hash != "" {
				_, err = tx.ExecContext(ctx, `UPDATE users SET username=$1, role=$2, password_hash=$3 WHERE id=$4`,
					a.Username, a.Role, hash, a.ID)
			} else {
				_, err = tx.ExecContext(ctx, `UPDATE users SET username=$1, role=$2 WHERE id=$3`,
					a.Username, a.Role, a.ID)
			}
			if err != nil {
				return 0, 0, err
			}
			updated++
		case errors.Is(err, sql.ErrNoRows):
			if hash == "" {
				return 0, 0, errors.New("password required for new user: " + a.Username)
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO users (id, username, password_hash, role, created_at) VALUES ($1,$2,$3,$4,$5)`,
				a.ID, a.Username, hash, a.Role, now)
			if err != nil {
				return 0, 0, err
			}
			inserted++
		default:
			return 0, 0, err
		}
	}
	return inserted, updated, nil
}

// List returns users ordered by username, optionally filtered by role.
func (u *Users) List(ctx context.Context, role string) ([]User, error) {
	q := `SELECT id, username, role FROM users ORDER BY username`
	args := []any{}
	if role != "" {
		q = `SELECT id, username, role FROM users WHERE role=$1 ORDER BY username`
		args = append(args, role)
	}
	rows, err := u.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		var x User
		if err := rows.Scan(&x.ID, &x.Username, &x.Role); err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, rows.Err()
}

// ChangePassword replaces id's password after checking the old one.
func (u *Users) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	usr, err := u.Lookup(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(oldPassword)) != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), u.cost)
	if err != nil {
		return err
	}
	_, err = u.db.ExecContext(ctx, `UPDATE users SET password_hash=$1 WHERE id=$2`, string(hash), usr.ID)
	return err
}
