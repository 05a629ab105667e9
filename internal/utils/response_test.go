package utils

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/davidlopz/expotec-api/internal/apperr"
)

func performRequest(t *testing.T, handler fiber.Handler) (int, APIResponse) {
	t.Helper()
	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload APIResponse
	require.NoError(t, json.Unmarshal(body, &payload))
	return resp.StatusCode, payload
}

func TestSendSuccessDefaultsMessage(t *testing.T) {
	status, payload := performRequest(t, func(c *fiber.Ctx) error {
		return SendSuccess(c, "", map[string]int{"n": 1})
	})
	require.Equal(t, fiber.StatusOK, status)
	require.True(t, payload.Success)
	require.Equal(t, "success", payload.Message)
}

func TestSendDomainErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperr.Validation("bad input"), fiber.StatusBadRequest},
		{apperr.NotFound("missing"), fiber.StatusNotFound},
		{apperr.Unauthorized("nope"), fiber.StatusForbidden},
		{apperr.Conflict("taken"), fiber.StatusConflict},
	}

	for _, tc := range cases {
		status, payload := performRequest(t, func(c *fiber.Ctx) error {
			return SendDomainError(c, tc.err)
		})
		require.Equal(t, tc.status, status)
		require.False(t, payload.Success)
	}
}
