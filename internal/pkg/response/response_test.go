package response

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, h fiber.Handler) (int, map[string]json.RawMessage) {
	t.Helper()
	app := fiber.New()
	app.Get("/", h)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &env))
	return resp.StatusCode, env
}

func TestList_RendersNilAsEmptyArray(t *testing.T) {
	status, env := call(t, func(c fiber.Ctx) error {
		var items []string
		return List(c, "", items)
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env["data"]))
	assert.JSONEq(t, `"ok"`, string(env["message"]))
}

func TestCreated_DefaultsMessage(t *testing.T) {
	status, env := call(t, func(c fiber.Ctx) error {
		return Created(c, "", map[string]int{"allocation": 40})
	})
	assert.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `"created"`, string(env["message"]))
	assert.JSONEq(t, `201`, string(env["status"]))
}

func TestError_NormalizesStatus(t *testing.T) {
	status, env := call(t, func(c fiber.Ctx) error {
		return Error(c, 42, "", nil)
	})
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.JSONEq(t, `"internal server error"`, string(env["message"]))

	status, env = call(t, func(c fiber.Ctx) error {
		return Error(c, fiber.StatusServiceUnavailable, "", nil)
	})
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.JSONEq(t, `"service unavailable"`, string(env["message"]))
}
