// Package auth validates Telegram WebApp init data. The client is an
// untrusted browser context; nothing it sends is believed until the HMAC
// signature derived from the bot token checks out.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	apperr "github.com/elitecasino/crash-backend/internal/errors"
)

// secretSalt is the fixed key Telegram specifies for deriving the signing
// secret from the bot token.
const secretSalt = "WebAppData"

// Identity is the verified caller extracted from the user field.
type Identity struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

// DisplayName prefers the public username and falls back to the first name.
func (i Identity) DisplayName() string {
	if i.Username != "" {
		return i.Username
	}
	return i.FirstName
}

// Validator checks init-data payloads against a secret derived once from the
// bot token. It holds no mutable state and is safe for concurrent use.
type Validator struct {
	secret []byte
}

// NewValidator derives the signing secret as HMAC-SHA256(salt, botToken).
func NewValidator(botToken string) *Validator {
	mac := hmac.New(sha256.New, []byte(secretSalt))
	mac.Write([]byte(botToken))

	return &Validator{secret: mac.Sum(nil)}
}

// Validate authenticates one init-data payload and returns the embedded
// identity. Every failure path yields an auth-coded error; callers surface it
// as a 403 and never retry.
func (v *Validator) Validate(initData string) (*Identity, error) {
	if initData == "" {
		return nil, apperr.NewAuthError("init data is empty")
	}

	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, apperr.NewAuthError("init data is not a valid query string")
	}

	hash := values.Get("hash")
	if hash == "" {
		return nil, apperr.NewAuthError("init data has no hash field")
	}
	values.Del("hash")

	if !v.signatureMatches(values, hash) {
		return nil, apperr.NewAuthError("init data signature mismatch")
	}

	userJSON := values.Get("user")
	if userJSON == "" {
		return nil, apperr.NewAuthError("init data has no user field")
	}

	var identity Identity
	if err := json.Unmarshal([]byte(userJSON), &identity); err != nil {
		return nil, apperr.NewAuthError("user field is not valid JSON")
	}

	if identity.ID == 0 {
		return nil, apperr.NewAuthError("user field has no id")
	}

	return &identity, nil
}

// signatureMatches recomputes the HMAC over the canonical check string and
// compares it to the client-supplied hash in constant time.
func (v *Validator) signatureMatches(values url.Values, hash string) bool {
	provided, err := hex.DecodeString(hash)
	if err != nil {
		return false
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, key+"="+values.Get(key))
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(strings.Join(lines, "\n")))

	return hmac.Equal(mac.Sum(nil), provided)
}
