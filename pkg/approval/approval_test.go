package approval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticApproval(t *testing.T) {
	hash, err := HashCode("open-sesame")
	require.NoError(t, err)
	s, err := NewStatic(hash)
	require.NoError(t, err)

	assert.NoError(t, s.Approve("alice", "open-sesame"))
	assert.Error(t, s.Approve("alice", "wrong"), "wrong code accepted")
	assert.Error(t, s.Approve("", "open-sesame"), "missing approved_by accepted")

	_, err = NewStatic("not-a-bcrypt-hash")
	assert.Error(t, err, "malformed hash accepted at construction")
	_, err = NewStatic("")
	assert.Error(t, err, "empty hash accepted")
}

func TestTokenApproval(t *testing.T) {
	const secret = "signing-secret"
	tok, err := NewToken(secret)
	require.NoError(t, err)

	code, err := IssueToken(secret, "alice", time.Minute)
	require.NoError(t, err)

	assert.NoError(t, tok.Approve("alice", code))
	assert.Error(t, tok.Approve("mallory", code), "token replayed by another operator")
	assert.Error(t, tok.Approve("alice", "garbage"), "garbage token accepted")

	expired, err := IssueToken(secret, "alice", -time.Minute)
	require.NoError(t, err)
	assert.Error(t, tok.Approve("alice", expired), "expired token accepted")

	otherSecret, err := IssueToken("other-secret", "alice", time.Minute)
	require.NoError(t, err)
	assert.Error(t, tok.Approve("alice", otherSecret), "token signed with wrong secret accepted")
}

func TestModeSelection(t *testing.T) {
	hash, err := HashCode("x")
	require.NoError(t, err)

	_, err = New("static", hash)
	assert.NoError(t, err)
	_, err = New("token", "secret")
	assert.NoError(t, err)
	_, err = New("carrier-pigeon", "x")
	assert.Error(t, err, "unknown mode accepted")
}
