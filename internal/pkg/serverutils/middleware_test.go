package serverutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("session not found")

func TestErrorHandlerMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{name: "app error", err: NewBadRequestError("message is required"), wantCode: 400, wantMsg: "message is required"},
		{name: "fiber error", err: fiber.NewError(fiber.StatusMethodNotAllowed, "nope"), wantCode: 405, wantMsg: "nope"},
		{name: "not found sentinel", err: fmt.Errorf("lookup: %w", errMissing), wantCode: 404, wantMsg: "lookup: session not found"},
		{name: "anything else", err: errors.New("db exploded"), wantCode: 500, wantMsg: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(ErrorHandlerMiddleware(func(err error) bool { return errors.Is(err, errMissing) }))
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			var got BaseResponse[any]
			require.NoError(t, json.Unmarshal(body, &got))
			assert.False(t, got.Success)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantMsg, got.Message)
		})
	}
}

func TestValidateRequest(t *testing.T) {
	type req struct {
		Message string `json:"message" validate:"required,max=5"`
	}

	assert.NoError(t, ValidateRequest(req{Message: "hi"}))

	err := ValidateRequest(req{})
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
	assert.Equal(t, "message is required", appErr.Message)

	err = ValidateRequest(req{Message: "too long"})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "message must be at most 5 characters", appErr.Message)
}
