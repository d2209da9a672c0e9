//go:build unit || e2e

package httptest

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertSuccessResponse checks the status and decodes the body into target when given.
func AssertSuccessResponse(t *testing.T, rec *httptest.ResponseRecorder, status int, target any) {
	t.Helper()

	require.Equalf(t, status, rec.Code, "unexpected status, body: %s", rec.Body.String())
	if target != nil {
		require.NoErrorf(t, json.Unmarshal(rec.Body.Bytes(), target), "decode body: %s", rec.Body.String())
	}
}

// AssertErrorResponse checks the status and that the {"error":{"message"}} envelope
// contains msg. An empty msg only checks the envelope decodes.
func AssertErrorResponse(t *testing.T, rec *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()

	assert.Equalf(t, status, rec.Code, "unexpected status, body: %s", rec.Body.String())

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if !assert.NoErrorf(t, json.Unmarshal(rec.Body.Bytes(), &envelope), "decode error body: %s", rec.Body.String()) {
		return
	}
	if msg != "" {
		assert.Contains(t, envelope.Error.Message, msg)
	}
}
