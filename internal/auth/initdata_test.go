package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	apperr "github.com/elitecasino/crash-backend/internal/errors"
)

const testBotToken = "12345:TEST-TOKEN"

// signInitData builds a correctly signed init-data payload the way the
// Telegram client does: sorted key=value lines, newline-joined, HMAC'd with
// the WebAppData-derived secret.
func signInitData(t *testing.T, botToken string, fields map[string]string) string {
	t.Helper()

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, key+"="+fields[key])
	}

	secretMac := hmac.New(sha256.New, []byte("WebAppData"))
	secretMac.Write([]byte(botToken))

	sigMac := hmac.New(sha256.New, secretMac.Sum(nil))
	sigMac.Write([]byte(strings.Join(lines, "\n")))
	hash := hex.EncodeToString(sigMac.Sum(nil))

	values := url.Values{}
	for key, value := range fields {
		values.Set(key, value)
	}
	values.Set("hash", hash)

	return values.Encode()
}

func validFields() map[string]string {
	return map[string]string{
		"auth_date": "1700000000",
		"query_id":  "AAEZ7xQsAAAAABnvFCzDq0pb",
		"user":      `{"id":42,"first_name":"Alice","username":"alice"}`,
	}
}

func TestValidateAcceptsSignedPayload(t *testing.T) {
	v := NewValidator(testBotToken)

	identity, err := v.Validate(signInitData(t, testBotToken, validFields()))
	require.NoError(t, err)
	require.Equal(t, int64(42), identity.ID)
	require.Equal(t, "alice", identity.Username)
	require.Equal(t, "Alice", identity.FirstName)
}

func TestValidateRejectsTampering(t *testing.T) {
	v := NewValidator(testBotToken)
	payload := signInitData(t, testBotToken, validFields())

	// Flipping any single character anywhere in the payload must break the
	// signature check (or the field structure, which is just as fatal).
	for i := 0; i < len(payload); i++ {
		flipped := []byte(payload)
		if flipped[i] == 'x' {
			flipped[i] = 'y'
		} else {
			flipped[i] = 'x'
		}

		if string(flipped) == payload {
			continue
		}

		_, err := v.Validate(string(flipped))
		require.Errorf(t, err, "flipping byte %d went undetected", i)
	}
}

func TestValidateFailureModes(t *testing.T) {
	v := NewValidator(testBotToken)

	noUser := validFields()
	delete(noUser, "user")

	badUser := validFields()
	badUser["user"] = "not-json"

	noID := validFields()
	noID["user"] = `{"first_name":"Alice"}`

	tests := []struct {
		name    string
		payload string
	}{
		{name: "empty payload", payload: ""},
		{name: "no hash field", payload: "auth_date=1700000000&user=%7B%22id%22%3A42%7D"},
		{name: "garbage hash", payload: "auth_date=1700000000&hash=zzzz"},
		{name: "signed with wrong token", payload: signInitData(t, "999:OTHER", validFields())},
		{name: "missing user field", payload: signInitData(t, testBotToken, noUser)},
		{name: "user field not json", payload: signInitData(t, testBotToken, badUser)},
		{name: "user field without id", payload: signInitData(t, testBotToken, noID)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(tt.payload)
			require.Error(t, err)

			var appErr *apperr.AppError
			require.True(t, errors.As(err, &appErr))
			require.Equal(t, apperr.CodeAuth, appErr.Code)
		})
	}
}

func TestDisplayName(t *testing.T) {
	require.Equal(t, "alice", Identity{FirstName: "Alice", Username: "alice"}.DisplayName())
	require.Equal(t, "Alice", Identity{FirstName: "Alice"}.DisplayName())
}
