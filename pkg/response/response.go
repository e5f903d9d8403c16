package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every storefront endpoint answers with
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// Page is the paginated list payload
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// NewPage slices items into the requested page; pageNumber starts at 1
func NewPage[T any](items []T, pageNumber, pageSize int) Page[T] {
	total := len(items)
	if pageSize <= 0 {
		pageSize = total
		if pageSize == 0 {
			pageSize = 1
		}
	}
	if pageNumber <= 0 {
		pageNumber = 1
	}

	start := (pageNumber - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page[T]{
		Items:      items[start:end],
		TotalCount: total,
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
}

// Fail builds a failure envelope
func Fail(message string, errs ...string) Response {
	return Response{Success: false, Message: message, Errors: errs}
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// SuccessMessage answers 200 with data and a human-readable message
func SuccessMessage(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Message: message})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

func Error(c *gin.Context, status int, message string, errs ...string) {
	c.JSON(status, Fail(message, errs...))
}

func InternalError(c *gin.Context, err error) {
	Error(c, http.StatusInternalServerError, "An unexpected error occurred", err.Error())
}

func BadRequest(c *gin.Context, message string, errs ...string) {
	Error(c, http.StatusBadRequest, message, errs...)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}
