package server

import (
	"context"
	"errors"
	"net/http"

	forecastview "github.com/aouyang1/go-forecastview"
	"github.com/aouyang1/go-forecastview/client"
	"github.com/aouyang1/go-forecastview/dashboard"
	"github.com/aouyang1/go-forecastview/dateaxis"
	"github.com/aouyang1/go-forecastview/render"
	"github.com/labstack/echo/v4"
)

// APIResponse is the envelope of every json response.
type APIResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidationError describes one rejected request field.
type ValidationError struct {
	Code    string                 `json:"code,omitempty"`
	Field   string                 `json:"field,omitempty"`
	Message string                 `json:"message,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

func DataResponse(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(statusCode, APIResponse{
		Status:  statusCode,
		Message: http.StatusText(statusCode),
		Data:    data,
	})
}

func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

// ErrorResponse maps err onto a status code and writes it in the envelope.
func ErrorResponse(c echo.Context, err error) error {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return DataResponse(c, http.StatusBadRequest, []ValidationError(verrs))
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return DataResponse(c, he.Code, he.Message)
	}
	return DataResponse(c, statusFor(err), err.Error())
}

func statusFor(err error) int {
	var se *client.StatusError
	switch {
	case errors.As(err, &se):
		return http.StatusBadGateway
	case errors.Is(err, dateaxis.ErrInvalidDate),
		errors.Is(err, dateaxis.ErrInvalidSpan),
		errors.Is(err, client.ErrNoForecast),
		errors.Is(err, client.ErrIncompleteLegacyQuery),
		errors.Is(err, dashboard.ErrNoSelection),
		errors.Is(err, dashboard.ErrUnknownForecast),
		errors.Is(err, dashboard.ErrUnknownMonth),
		errors.Is(err, dashboard.ErrInvalidSpan),
		errors.Is(err, forecastview.ErrInvalidWidth):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrInvalidTransition),
		errors.Is(err, dashboard.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, forecastview.ErrNotRendered),
		errors.Is(err, errUnknownPanel):
		return http.StatusNotFound
	case errors.Is(err, render.ErrNothingToDraw):
		return http.StatusUnprocessableEntity
	case errors.Is(err, client.ErrInvalidResponse):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
