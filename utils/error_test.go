package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"repairdesk/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", models.ErrNotFound, http.StatusNotFound},
		{"validation", models.NewValidationError("amount", "missing"), http.StatusBadRequest},
		{"bad transition", models.ErrInvalidTransition, http.StatusConflict},
		{"wrapped conflict", fmt.Errorf("stale: %w", models.ErrConflict), http.StatusConflict},
		{"wrapped forbidden", fmt.Errorf("not yours: %w", models.ErrForbidden), http.StatusForbidden},
		{"anything else", errors.New("mongo down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func respond(err error) (*httptest.ResponseRecorder, ErrorResponse) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	RespondError(c, "Failed", err)

	var body ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestRespondError(t *testing.T) {
	w, body := respond(fmt.Errorf("create: %w", models.NewValidationError("shopId", "is required")))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "shopId", body.Field)
	assert.Contains(t, body.Details, "is required")

	w, body = respond(errors.New("connection reset by peer"))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, body.Details)
}

func TestErrorHandlerRecoversPanics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal Server Error")
}
