package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/totegamma/i18n-store/internal/log"
)

// InjectRequest attaches the request id and route data to the request
// context so every log line of the request carries them.
func InjectRequest(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		requestID := c.Response().Header().Get(echo.HeaderXRequestID)
		ctx := log.InjectRequest(req.Context(), req, requestID)
		c.SetRequest(req.WithContext(ctx))
		return next(c)
	}
}

// RequestLogger logs one line per request once the handler has returned.
func RequestLogger() echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogLatency:   true,
		LogError:     true,
		HandleError:  true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			attrs := []slog.Attr{
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remoteIp", v.RemoteIP),
				slog.String("userAgent", v.UserAgent),
			}
			if v.Error != nil {
				log.Error(ctx, "request", v.Error, attrs...)
				return nil
			}
			log.Info(ctx, "request", attrs...)
			return nil
		},
	})
}
