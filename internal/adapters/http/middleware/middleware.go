package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shyjal/goplaces/internal/adapters/http/dto"
	"github.com/shyjal/goplaces/internal/domain"
	"github.com/shyjal/goplaces/internal/observability"
)

const RequestIDKey = "RequestID"

func AddRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Writer.Header().Set("X-Request-Id", requestID)
		c.Set(RequestIDKey, requestID)

		ctx := observability.WithRequestID(c.Request.Context(), requestID)
		ctx = observability.WithRequestStartTime(ctx, time.Now())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireMultipart rejects requests that are not multipart forms and
// caps the body at maxsize bytes.
func RequireMultipart(maxsize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		contentType := c.GetHeader("Content-Type")

		parts := strings.Split(contentType, ";")
		if len(parts) == 0 || strings.TrimSpace(strings.ToLower(parts[0])) != "multipart/form-data" {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid content type, expected multipart/form-data"})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxsize)
		c.Next()
	}
}

func RateLimiterMiddleware(limiter domain.RequestLimiterRepository, logger domain.LoggingRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		log := logger.With("service.name", "rate_limiter", "http.request.id", c.GetString(RequestIDKey))
		if ip == "" {
			log.Warn("extract_user_ip", "reason", "invalid_user_ip")
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid client ip"})
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), ip)
		if err != nil {
			// A broken limiter backend should not take the service down.
			log.Warn("rate_limit_check", "reason", "limiter_unavailable", "error.message", err.Error())
			c.Next()
			return
		}
		if !allowed {
			log.Warn("rate_limit_check", "reason", "rate_limit_exceeded", "client.ip", ip)
			status, body := dto.MapErr(domain.ErrTooManyRequests)
			c.AbortWithStatusJSON(status, body)
			return
		}

		c.Next()
	}
}

func LoggingRequestMiddleware(logger domain.LoggingRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.With(
			"http.request.id", c.GetString(RequestIDKey),
			"http.request.method", c.Request.Method,
			"url.path", c.Request.URL.Path,
			"user_agent.original", c.Request.UserAgent())

		log.Debug("http_request_start")

		start, ok := observability.GetRequestStartTime(c.Request.Context())
		if !ok {
			start = time.Now()
		}
		c.Next()

		log.Info("http_request_end",
			"http.response.status_code", c.Writer.Status(),
			"event.duration", time.Since(start).Nanoseconds())
	}
}

func PanicRecoveryMiddleware(logger domain.LoggingRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("internal server error",
					"http.request.id", c.GetString(RequestIDKey),
					"http.request.method", c.Request.Method,
					"url.path", c.Request.URL.Path,
					"reason", fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
			}
		}()

		c.Next()
	}
}
