package handler

import (
	"net/http"
	"strings"
	"time"

	"liveparallel-server/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Ключ, под которым UID пользователя лежит в контексте Gin.
const contextUserIDKey = "userID"

// AuthMiddleware проверяет Bearer токен и кладет UID пользователя в контекст.
// В debug-режиме проверка отключена и UID берется из заголовка X-Debug-User-Id.
func AuthMiddleware(verifier auth.IdentityVerifier, debugMode bool, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("AuthMiddleware")
	return func(c *gin.Context) {
		if debugMode {
			uid := c.GetHeader("X-Debug-User-Id")
			if uid == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{Message: "Unauthorized: missing X-Debug-User-Id header"})
				return
			}
			c.Set(contextUserIDKey, uid)
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Authorization header missing", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{Message: "Unauthorized: missing token"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Malformed Authorization header", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{Message: "Unauthorized: malformed token header"})
			return
		}

		uid, err := verifier.VerifyToken(c.Request.Context(), parts[1])
		if err != nil {
			// Сам токен в лог не пишем
			log.Warn("Token verification failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{Message: "Unauthorized: invalid token"})
			return
		}

		c.Set(contextUserIDKey, uid)
		c.Next()
	}
}

// getUserIDFromContext достает UID, положенный AuthMiddleware.
// При отсутствии прерывает запрос с 401.
func getUserIDFromContext(c *gin.Context) (string, bool) {
	value, exists := c.Get(contextUserIDKey)
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{Message: "Unauthorized"})
		return "", false
	}
	uid, ok := value.(string)
	if !ok || uid == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{Message: "Unauthorized"})
		return "", false
	}
	return uid, true
}

// ZapLoggingMiddleware логирует HTTP запросы через zap.
// Healthcheck и metrics не логируются, чтобы не засорять вывод.
func ZapLoggingMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		if path == "/health" || path == "/metrics" {
			c.Next()
			return
		}

		c.Next()

		latency := time.Since(start)
		if rawQuery := c.Request.URL.RawQuery; rawQuery != "" {
			path = path + "?" + rawQuery
		}

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", latency),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("HTTP request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
