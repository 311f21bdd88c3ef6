package utils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/err", func(c *fiber.Ctx) error {
		return ErrorResponse(c, "boom", fiber.StatusBadGateway, "platform.fetch")
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return NotFoundResponse(c, "nothing here")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/err?x=1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	var body ErrorResponseStruct
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, fiber.StatusBadGateway, body.Status)
	assert.Equal(t, "boom", body.Message)
	assert.False(t, body.Ok)
	assert.Equal(t, "/err?x=1", body.URL)
	assert.Equal(t, "platform.fetch", body.Type)
	assert.NotEmpty(t, body.Timestamp)

	resp, err = app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "notFound", body.Type)
}

func TestMutationSuccess(t *testing.T) {
	app := fiber.New()
	app.Delete("/nil", func(c *fiber.Ctx) error { return MutationSuccessResponse(c, nil) })
	app.Delete("/two", func(c *fiber.Ctx) error { return MutationSuccessResponse(c, []string{"a", "b"}) })

	resp, err := app.Test(httptest.NewRequest("DELETE", "/nil", nil))
	require.NoError(t, err)
	var body SuccessResponseStruct
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Ok)
	assert.Equal(t, 0, body.AffectedRows)
	assert.NotNil(t, body.Affected)

	resp, err = app.Test(httptest.NewRequest("DELETE", "/two", nil))
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.AffectedRows)
	assert.Equal(t, []string{"a", "b"}, body.Affected)
}
