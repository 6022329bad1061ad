package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondError writes the error envelope: "fail" for client faults,
// "error" for server faults.
func respondError(c *gin.Context, status int, message string) {
	kind := "fail"
	if status >= http.StatusInternalServerError {
		kind = "error"
	}
	c.AbortWithStatusJSON(status, gin.H{
		"status":  kind,
		"message": message,
	})
}

// respondValidationError converts binding failures into a field-level 400.
func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		respondError(c, http.StatusBadRequest, strings.Join(details, ", "))
		return
	}

	respondError(c, http.StatusBadRequest, "invalid request body")
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// NotFound handles every unmatched method/path pair.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		respondError(c, http.StatusNotFound,
			fmt.Sprintf("Can't find %s on this server!", c.Request.URL.Path))
	}
}
