package httpapi

import (
	"errors"
	"net/http"

	"catalog-api/internal/products"
	"catalog-api/internal/store"
	"catalog-api/internal/users"

	"github.com/gin-gonic/gin"
)

// Response messages. Login and guard messages live next to their producers.
const (
	msgInvalidCredentials = "Invalid credentials"
	msgUserNotFound       = "User not found"
	msgEmailTaken         = "Email already exists"
	msgProductNotFound    = "Product not found"
	msgProductNameTaken   = "A product with this name already exists"
	msgInvalidBody        = "invalid request body"
	msgUnavailable        = "service unavailable"
	msgInternal           = "internal error"
)

// respondError maps domain errors to HTTP statuses. Only unexpected errors are
// attached to the gin context, so the request logger reports them.
func respondError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, users.ErrNotFound):
		return http.StatusNotFound, msgUserNotFound
	case errors.Is(err, products.ErrNotFound):
		return http.StatusNotFound, msgProductNotFound
	case errors.Is(err, users.ErrEmailTaken):
		return http.StatusConflict, msgEmailTaken
	case errors.Is(err, products.ErrNameTaken):
		return http.StatusConflict, msgProductNameTaken
	case errors.Is(err, users.ErrInvalidArgument), errors.Is(err, products.ErrInvalidArgument):
		return http.StatusBadRequest, msgInvalidBody
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable, msgUnavailable
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

func badRequest(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
}
