package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(accessTTL, refreshTTL time.Duration) *Codec {
	return NewCodec("access-secret", "refresh-secret", accessTTL, refreshTTL)
}

func TestIssueAndVerify_Roundtrip(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(15*time.Minute, 7*24*time.Hour)
	payload := Payload{UserID: uuid.New(), Role: "user"}

	signed, expiresAt, err := codec.IssueAccess(payload)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	got, err := codec.VerifyAccess(signed)
	require.NoError(t, err)
	assert.Equal(t, payload.UserID, got.UserID)
	assert.Equal(t, payload.Role, got.Role)
}

func TestIssue_InvalidPayload(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(time.Minute, time.Hour)

	_, _, err := codec.IssueAccess(Payload{Role: "user"})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, _, err = codec.IssueRefresh(Payload{UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(-time.Minute, time.Hour)
	signed, _, err := codec.IssueAccess(Payload{UserID: uuid.New(), Role: "user"})
	require.NoError(t, err)

	_, err = codec.VerifyAccess(signed)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerify_BadSignature(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(time.Minute, time.Hour)
	other := NewCodec("different-secret", "refresh-secret", time.Minute, time.Hour)

	signed, _, err := other.IssueAccess(Payload{UserID: uuid.New(), Role: "user"})
	require.NoError(t, err)

	_, err = codec.VerifyAccess(signed)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerify_RefreshTokenRejectedAsAccess(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(time.Minute, time.Hour)
	refresh, _, err := codec.IssueRefresh(Payload{UserID: uuid.New(), Role: "user"})
	require.NoError(t, err)

	_, err = codec.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(time.Minute, time.Hour)

	for _, input := range []string{"", "garbage", "not.a.jwt", "a.b"} {
		_, err := codec.VerifyAccess(input)
		assert.ErrorIs(t, err, ErrMalformed, "input %q", input)
	}
}

func TestVerify_ExpiredWinsOverWrongSecret(t *testing.T) {
	t.Parallel()

	// Expiry takes precedence even when the signature check also failed.
	other := NewCodec("different-secret", "refresh-secret", -time.Minute, time.Hour)
	signed, _, err := other.IssueAccess(Payload{UserID: uuid.New(), Role: "user"})
	require.NoError(t, err)

	codec := newTestCodec(time.Minute, time.Hour)
	_, err = codec.VerifyAccess(signed)
	assert.ErrorIs(t, err, ErrExpired)
}
