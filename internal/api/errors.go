package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"gamesales/internal/engine"
	"gamesales/internal/etl"
	"gamesales/internal/source"
)

// APIError is the body of every error response.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string { return e.Message }

// HTTPStatus lets middleware read the status before the error is rendered.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

func NewAPIError(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

func NewAPIErrorWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message, Details: details}
}

// FieldError describes one rejected request parameter.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	ErrDatasetLoading  = NewAPIError(http.StatusServiceUnavailable, "DATASET_LOADING", "Dataset is still loading")
	ErrNotFound        = NewAPIError(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrRateLimited     = NewAPIError(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")
	ErrInternal        = NewAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
	ErrMissingUpload   = NewAPIError(http.StatusBadRequest, "MISSING_PARAMETER", "Multipart field \"file\" is required")
	ErrSourceForbidden = NewAPIError(http.StatusForbidden, "SOURCE_NOT_ALLOWED", etl.ErrSourceNotAllowed.Error())
)

// datasetUnavailable reports a failed first load.
func datasetUnavailable(err error) *APIError {
	return NewAPIErrorWithDetails(http.StatusServiceUnavailable, "DATASET_UNAVAILABLE",
		"Dataset could not be loaded", err.Error())
}

// loadFailure maps an error from a synchronous load to a response.
func loadFailure(err error) *APIError {
	var pe *engine.ParseError
	var le *source.LoadError
	switch {
	case errors.Is(err, etl.ErrSourceNotAllowed):
		return ErrSourceForbidden
	case errors.Is(err, etl.ErrSuperseded):
		return NewAPIError(http.StatusConflict, "DATASET_SUPERSEDED", err.Error())
	case errors.As(err, &pe):
		return NewAPIErrorWithDetails(http.StatusUnprocessableEntity, "PARSE_ERROR", "Dataset could not be parsed",
			map[string]interface{}{"line": pe.Line, "reason": pe.Error()})
	case errors.As(err, &le):
		return NewAPIErrorWithDetails(http.StatusBadGateway, "LOAD_ERROR", "Dataset source could not be read", le.Error())
	}
	return NewAPIErrorWithDetails(http.StatusInternalServerError, "LOAD_FAILED", "Dataset load failed", err.Error())
}

type errorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// HTTPErrorHandler renders every error as {"success":false,"error":{...}}.
func HTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var apiErr *APIError
		var he *echo.HTTPError
		switch {
		case errors.As(err, &apiErr):
		case errors.As(err, &he):
			apiErr = fromHTTPError(he)
		default:
			apiErr = ErrInternal
		}

		if apiErr.StatusCode >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				slog.String("path", c.Path()),
				slog.Int("status", apiErr.StatusCode),
				slog.Any("error", err))
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(apiErr.StatusCode)
		} else {
			werr = c.JSON(apiErr.StatusCode, errorResponse{Success: false, Error: apiErr})
		}
		if werr != nil {
			logger.ErrorContext(c.Request().Context(), "failed to write error response", slog.Any("error", werr))
		}
	}
}

func fromHTTPError(he *echo.HTTPError) *APIError {
	msg, ok := he.Message.(string)
	if !ok {
		msg = http.StatusText(he.Code)
	}
	code := "HTTP_ERROR"
	switch he.Code {
	case http.StatusBadRequest:
		code = "INVALID_REQUEST"
	case http.StatusNotFound:
		code = "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		code = "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		code = "PAYLOAD_TOO_LARGE"
	case http.StatusTooManyRequests:
		code = "RATE_LIMIT_EXCEEDED"
	}
	return NewAPIError(he.Code, code, msg)
}
