// Package cryptox holds the hashing and token encoding primitives used by
// the session manager.
package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/cal/internal/common"
)

// HashPassword returns the lowercase hex SHA-256 digest of password.
// The digest is unsalted and deterministic: stored hashes are compared with
// plain string equality, and rows written by other clients must keep matching.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// SessionClaims is what a session token carries.
type SessionClaims struct {
	ID        string
	Role      string
	CreatedAt time.Time
}

// EncodeSessionToken renders base64("id:role:unixmillis").
//
// The encoding is reversible and unsigned. It only lets the client notice that
// the stored identity and token drifted apart; it is not a credential.
func EncodeSessionToken(id, role string, at time.Time) string {
	raw := fmt.Sprintf("%s:%s:%d", id, role, at.UnixMilli())
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeSessionToken reverses EncodeSessionToken.
func DecodeSessionToken(token string) (*SessionClaims, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	// role and timestamp never contain ':', so split from the right
	s := string(raw)
	last := strings.LastIndex(s, ":")
	if last < 0 {
		return nil, common.ErrInvalidToken
	}
	head, ts := s[:last], s[last+1:]
	mid := strings.LastIndex(head, ":")
	if mid < 0 {
		return nil, common.ErrInvalidToken
	}

	millis, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad timestamp", common.ErrInvalidToken)
	}

	return &SessionClaims{
		ID:        head[:mid],
		Role:      head[mid+1:],
		CreatedAt: time.UnixMilli(millis),
	}, nil
}

// NewDeviceID returns a fresh opaque device identifier ("dev-" + 14 hex chars).
func NewDeviceID() string {
	s, err := common.MakeRandHexString(7)
	if err != nil {
		s = hex.EncodeToString(common.GenerateRandByteArray(7))
	}
	return "dev-" + s
}
