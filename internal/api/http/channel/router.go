package channel

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/Soumi0401/SimpleNotification/internal/bridge"
	domain "github.com/Soumi0401/SimpleNotification/internal/domain/alarm"
	"github.com/Soumi0401/SimpleNotification/internal/logger"
)

// Dispatcher abstracts the method channel handler the transport depends on.
type Dispatcher interface {
	Dispatch(ctx context.Context, method string, args map[string]any) (any, error)
}

// Response is the body of a successful call.
type Response struct {
	Result any `json:"result"`
}

// ErrorResponse is the body of a failed call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Path returns the URL path of a channel method.
func Path(channel, method string) string {
	return "/channels/" + channel + "/" + method
}

// handler binds a dispatcher to one channel name.
type handler struct {
	dispatcher Dispatcher
	channel    string
}

// NewRouter creates the echo instance serving channel on dispatcher.
// Access logs go to accessLog; a nil logger uses the global one.
func NewRouter(channel string, dispatcher Dispatcher, accessLog *zap.SugaredLogger) *echo.Echo {
	if accessLog == nil {
		accessLog = logger.Logger()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			accessLog.Debugw(
				"HTTP request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.String(),
				"request_id", v.RequestID,
			)

			return nil
		},
	}))
	e.Use(middleware.Recover())

	h := &handler{
		dispatcher: dispatcher,
		channel:    channel,
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.POST("/channels/*", h.invoke)

	return e
}

// invoke decodes the call, dispatches it and writes the result.
func (h *handler) invoke(c echo.Context) error {
	path := c.Param("*")

	pos := strings.LastIndex(path, "/")
	if pos <= 0 || path[:pos] != h.channel {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown channel"})
	}

	method := path[pos+1:]

	// Only the body carries arguments; the wildcard path param must not leak into them.
	var args map[string]any
	if err := new(echo.DefaultBinder).BindBody(c, &args); err != nil {
		return err
	}

	ctx := logger.WithKV(c.Request().Context(), "request_id", c.Response().Header().Get(echo.HeaderXRequestID))

	result, err := h.dispatcher.Dispatch(ctx, method, args)
	if err != nil {
		return writeError(ctx, c, method, err)
	}

	return c.JSON(http.StatusOK, Response{Result: result})
}

// writeError maps dispatcher errors to HTTP statuses.
func writeError(ctx context.Context, c echo.Context, method string, err error) error {
	switch {
	case errors.Is(err, bridge.ErrNotImplemented):
		return c.JSON(http.StatusNotImplemented, ErrorResponse{Error: "not implemented"})
	case errors.Is(err, domain.ErrInvalidArgument):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		logger.ErrorKV(ctx, "Channel call failed", "method", method, "error", err)

		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}
