package sealer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealAndOpenMatchToken(t *testing.T) {
	s, err := New("")
	require.NoError(t, err)

	token, err := s.SealMatchToken("665f1c2ab3d4e5f6a7b8c9d0", "665f1c2ab3d4e5f6a7b8c9d1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	requestID, providerProfileID, err := s.OpenMatchToken(token)
	require.NoError(t, err)
	assert.Equal(t, "665f1c2ab3d4e5f6a7b8c9d0", requestID)
	assert.Equal(t, "665f1c2ab3d4e5f6a7b8c9d1", providerProfileID)
}

func TestSealMatchToken_NoncesDiffer(t *testing.T) {
	s, err := New("")
	require.NoError(t, err)

	a, err := s.SealMatchToken("req", "prov")
	require.NoError(t, err)
	b, err := s.SealMatchToken("req", "prov")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestOpenMatchToken_Garbage(t *testing.T) {
	s, err := New("")
	require.NoError(t, err)

	_, _, err = s.OpenMatchToken("not-a-token")
	assert.Error(t, err)

	_, _, err = s.OpenMatchToken("")
	assert.Error(t, err)
}

func TestNew_BadKeys(t *testing.T) {
	_, err := New("%%%")
	assert.Error(t, err)

	// Decodes fine but wrong length.
	_, err = New("c2hvcnQ=")
	assert.Error(t, err)
}
