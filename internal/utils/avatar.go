package utils

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/saxenaaman628/redis-farewell-vote/internal/models"
)

// AvatarDataURI inlines an uploaded image as a data URI so it can travel inside a comment.
// No data means no avatar. maxBytes <= 0 disables the size check.
func AvatarDataURI(data []byte, maxBytes int) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds limit of %d", models.ErrInvalidAvatar, len(data), maxBytes)
	}

	mime := mimetype.Detect(data)
	mediaType, _, _ := strings.Cut(mime.String(), ";")
	if !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("%w: detected %s", models.ErrInvalidAvatar, mediaType)
	}

	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
