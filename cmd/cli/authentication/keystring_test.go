package authentication

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestTokenRoundTrip(t *testing.T) {
	keyring.MockInit()

	_, err := GetTokens()
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, StoreTokens(&StoredCredentials{AccessToken: "jwt", APIURL: "http://localhost:8080"}))

	creds, err := GetTokens()
	require.NoError(t, err)
	assert.Equal(t, "jwt", creds.AccessToken)
	assert.Equal(t, "http://localhost:8080", creds.APIURL)

	require.NoError(t, DeleteTokens())
	require.NoError(t, DeleteTokens())

	_, err = GetTokens()
	assert.ErrorIs(t, err, ErrNoToken)
}
