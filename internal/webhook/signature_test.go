package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManifest(t *testing.T) {
	assert.Equal(t, "id:123;request-id:req-1;ts:1700000000;", Manifest("123", "req-1", "1700000000"))
	assert.Equal(t, "id:abc;ts:1;", Manifest("ABC", "", "1"))
}

func TestVerifySignature(t *testing.T) {
	secret := "s3cr3t"
	valid := "ts=1700000000,v1=" + Sign(secret, Manifest("123", "req-1", "1700000000"))

	tests := []struct {
		name   string
		header string
		dataID string
		want   bool
	}{
		{"valid", valid, "123", true},
		{"valid with spaces", "ts=1700000000, v1=" + Sign(secret, Manifest("123", "req-1", "1700000000")), "123", true},
		{"other id", valid, "124", false},
		{"missing header", "", "123", false},
		{"missing hash", "ts=1700000000", "123", false},
		{"garbage", "nonsense", "123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifySignature(secret, tt.header, tt.dataID, "req-1"))
		})
	}
}
