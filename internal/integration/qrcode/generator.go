package qrcode

import (
	"encoding/base64"
	"errors"

	qr "github.com/skip2/go-qrcode"
)

const dataURIPrefix = "data:image/png;base64,"

type Generator struct {
	size int
}

func NewGenerator(size int) *Generator {
	return &Generator{size: size}
}

func (g *Generator) PNG(content string) ([]byte, error) {
	if content == "" {
		return nil, errors.New("qrcode: empty content")
	}
	return qr.Encode(content, qr.Medium, g.size)
}

// DataURI renders content as a PNG QR code embedded in a data URI, the same
// shape the PIX flow returns for the gateway-provided image.
func (g *Generator) DataURI(content string) (string, error) {
	png, err := g.PNG(content)
	if err != nil {
		return "", err
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}

// WrapBase64 turns an already encoded PNG into a data URI.
func WrapBase64(pngBase64 string) string {
	return dataURIPrefix + pngBase64
}
