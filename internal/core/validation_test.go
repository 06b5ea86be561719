// AngelaMos | 2026
// validation_test.go

package core

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleVideo struct {
	URL string `json:"url" validate:"required,url"`
}

type sampleRequest struct {
	Email  string        `json:"email"  validate:"required,email"`
	Price  *float64      `json:"price"  validate:"required,gte=0"`
	Videos []sampleVideo `json:"videos" validate:"dive"`
}

func TestFormatValidationError(t *testing.T) {
	v := NewValidator()
	negative := -1.0

	err := v.Struct(sampleRequest{
		Email:  "nope",
		Price:  &negative,
		Videos: []sampleVideo{{URL: "https://a.example/1"}, {URL: ""}},
	})
	require.Error(t, err)

	msg := FormatValidationError(err)
	assert.Contains(t, msg, "email must be a valid email address")
	assert.Contains(t, msg, "price must be greater than or equal to 0")
	assert.Contains(t, msg, "videos[1].url is required")

	assert.Equal(t, "invalid request", FormatValidationError(assert.AnError))
}

func TestDecodeJSON(t *testing.T) {
	decode := func(body string) error {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		var dst struct {
			Name string `json:"name"`
		}
		return DecodeJSON(httptest.NewRecorder(), req, &dst)
	}

	assert.NoError(t, decode(`{"name":"go"}`))
	assert.Error(t, decode(`{"name":"go","extra":1}`))
	assert.Error(t, decode(`{"name":"go"}{"name":"again"}`))
	assert.Error(t, decode(`{"name":`))
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID("3f2504e0-4f89-41d3-9a0c-0305e82c3301"))
	assert.False(t, IsUUID("3f2504e04f8941d39a0c0305e82c3301"))
	assert.False(t, IsUUID("urn:uuid:3f2504e0-4f89-41d3-9a0c-0305e82c3301"))
	assert.False(t, IsUUID("42"))
	assert.False(t, IsUUID(""))
}
