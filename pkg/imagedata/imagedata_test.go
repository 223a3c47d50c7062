package imagedata

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG
const pngBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func TestDecode_Plain(t *testing.T) {
	data, mimeType, err := Decode(pngBase64)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mimeType)
	assert.NotEmpty(t, data)
}

func TestDecode_DataURL(t *testing.T) {
	data, mimeType, err := Decode("data:image/webp;base64," + pngBase64)
	require.NoError(t, err)
	assert.Equal(t, "image/webp", mimeType)
	assert.NotEmpty(t, data)
}

func TestDecode_Unpadded(t *testing.T) {
	raw := base64.RawStdEncoding.EncodeToString([]byte("hello"))
	data, _, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestDecode_Errors(t *testing.T) {
	_, _, err := Decode("   ")
	assert.ErrorIs(t, err, ErrEmpty)

	_, _, err = Decode("data:image/png;base64")
	assert.Error(t, err)

	_, _, err = Decode("not base64 at all!!")
	assert.Error(t, err)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".png", Extension("image/png"))
	assert.Equal(t, ".jpg", Extension("image/jpeg"))
	assert.Equal(t, ".jpg", Extension("application/octet-stream"))
}
