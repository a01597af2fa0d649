package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cal/internal/rowstore"
	"github.com/dmitrijs2005/cal/internal/timex"
)

// Role tags the identity variant.
type Role string

const (
	RoleGuest Role = "user"
	RoleAdmin Role = "admin"
)

var ErrUnknownRole = errors.New("unknown role")

// Profile is the shape shared by every identity.
type Profile struct {
	ID       string
	Name     string
	Username string
	Email    string
}

// Identity is either a Guest or an Admin. Callers switch on the concrete
// type or on Role, never on which fields happen to be set.
type Identity interface {
	Role() Role
	Info() Profile
	isIdentity()
}

// Guest is an ad-hoc identity without credentials.
type Guest struct {
	Profile
}

func (Guest) Role() Role      { return RoleGuest }
func (g Guest) Info() Profile { return g.Profile }
func (Guest) isIdentity()     {}

// Admin is an administrator account. Only HashedPassword may ever change.
type Admin struct {
	Profile
	HashedPassword string
	CreatedAt      time.Time
}

func (Admin) Role() Role      { return RoleAdmin }
func (a Admin) Info() Profile { return a.Profile }
func (Admin) isIdentity()     {}

// identityJSON is the serialized form kept in the local store.
type identityJSON struct {
	ID             string `json:"id"`
	Role           Role   `json:"role"`
	Name           string `json:"name"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	HashedPassword string `json:"hashedPassword,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

// MarshalIdentity encodes id as JSON tagged with its role.
func MarshalIdentity(id Identity) ([]byte, error) {
	p := id.Info()
	j := identityJSON{ID: p.ID, Role: id.Role(), Name: p.Name, Username: p.Username, Email: p.Email}
	if a, ok := id.(Admin); ok {
		j.HashedPassword = a.HashedPassword
		if !a.CreatedAt.IsZero() {
			j.CreatedAt = timex.FormatTimestamp(a.CreatedAt)
		}
	}
	return json.Marshal(j)
}

// UnmarshalIdentity decodes data produced by MarshalIdentity.
func UnmarshalIdentity(data []byte) (Identity, error) {
	var j identityJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	if j.ID == "" {
		return nil, errors.New("identity without id")
	}

	p := Profile{ID: j.ID, Name: j.Name, Username: j.Username, Email: j.Email}
	switch j.Role {
	case RoleGuest:
		return Guest{Profile: p}, nil
	case RoleAdmin:
		a := Admin{Profile: p, HashedPassword: j.HashedPassword}
		if j.CreatedAt != "" {
			t, err := timex.ParseTimestamp(j.CreatedAt)
			if err != nil {
				return nil, err
			}
			a.CreatedAt = t
		}
		return a, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, j.Role)
	}
}

// AdminFromRow maps an admins row.
func AdminFromRow(r rowstore.Row) Admin {
	created, _ := timex.ParseTimestamp(r.String("created_at"))
	return Admin{
		Profile: Profile{
			ID:       r.String("id"),
			Name:     r.String("name"),
			Username: r.String("username"),
			Email:    r.String("email"),
		},
		HashedPassword: r.String("hashed_password"),
		CreatedAt:      created,
	}
}
