package utils

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saxenaaman628/redis-farewell-vote/internal/models"
)

var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), []byte("\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")...)
	gifBytes = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
)

func TestAvatarDataURI(t *testing.T) {
	uri, err := AvatarDataURI(pngBytes, 1024)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, raw)

	uri, err = AvatarDataURI(gifBytes, 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/gif;base64,"))
}

func TestAvatarDataURIEmpty(t *testing.T) {
	uri, err := AvatarDataURI(nil, 1024)
	require.NoError(t, err)
	assert.Empty(t, uri)
}

func TestAvatarDataURIRejects(t *testing.T) {
	_, err := AvatarDataURI([]byte("just some text, not a picture"), 1024)
	assert.ErrorIs(t, err, models.ErrInvalidAvatar)

	_, err = AvatarDataURI(pngBytes, 8)
	assert.ErrorIs(t, err, models.ErrInvalidAvatar)
}
