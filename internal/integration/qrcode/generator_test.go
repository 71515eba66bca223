package qrcode

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataURI(t *testing.T) {
	uri, err := NewGenerator(128).DataURI("https://www.mercadopago.com.br/checkout/v1/redirect?pref_id=123")
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
}

func TestPNG_EmptyContent(t *testing.T) {
	_, err := NewGenerator(128).PNG("")

	assert.Error(t, err)
}

func TestWrapBase64(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,iVBOR", WrapBase64("iVBOR"))
}
