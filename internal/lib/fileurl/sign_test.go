package fileurl

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signed := SignURL("1700000000-ABC.jpg", "secret", time.Hour)
	require.True(t, strings.HasPrefix(signed, "/api/v1/media/1700000000-ABC.jpg?"))

	u, err := url.Parse(signed)
	require.NoError(t, err)
	q := u.Query()

	assert.True(t, Verify("1700000000-ABC.jpg", q.Get("expires"), q.Get("sig"), "secret"))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signed := SignURL("file.jpg", "secret", time.Hour)
	u, _ := url.Parse(signed)
	q := u.Query()

	assert.False(t, Verify("file.jpg", q.Get("expires"), q.Get("sig"), "other"))
}

func TestVerifyRejectsRenamedFile(t *testing.T) {
	signed := SignURL("file.jpg", "secret", time.Hour)
	u, _ := url.Parse(signed)
	q := u.Query()

	assert.False(t, Verify("../config.yml", q.Get("expires"), q.Get("sig"), "secret"))
}

func TestVerifyRejectsExpiredLink(t *testing.T) {
	signed := SignURL("file.jpg", "secret", -time.Minute)
	u, _ := url.Parse(signed)
	q := u.Query()

	assert.False(t, Verify("file.jpg", q.Get("expires"), q.Get("sig"), "secret"))
}

func TestVerifyRejectsMalformedExpiry(t *testing.T) {
	assert.False(t, Verify("file.jpg", "soon", "deadbeef", "secret"))
}
