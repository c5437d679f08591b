package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// リクエストIDのヘッダー名とコンテキストキー
const (
	headerRequestID = "X-Request-Id"
	keyRequestID    = "request_id"
)

// securityHeaders はすべてのレスポンスにセキュリティヘッダーを付ける
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer-when-downgrade")
		c.Next()
	}
}

// requestID はリクエストIDを払い出す
// クライアントが UUID 形式のIDを送ってきた場合はそれを引き継ぐ
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(keyRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// accessLog はリクエストごとにアクセスログを出力する
func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"bytes", c.Writer.Size(),
			"remote", c.ClientIP(),
			"elapsed", time.Since(start),
			"request_id", c.GetString(keyRequestID),
		)
	}
}

// recovery はハンドラーのpanicをログに残して 500 を返す
func recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, err any) {
		logger.Error("panic recovered",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}
