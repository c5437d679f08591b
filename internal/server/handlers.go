package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"ploscaru/internal/assets"
	"ploscaru/internal/stats"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
)

// Handler は静的アセットと診断エンドポイントのハンドラー
type Handler struct {
	backend   assets.Backend
	collector stats.Collector
	logger    *slog.Logger
}

// ErrorResponse はエラー時のJSONレスポンス
type ErrorResponse struct {
	Error string `json:"error"`
}

// Static は静的アセットを返す
func (h *Handler) Static(c *gin.Context) {
	method := c.Request.Method
	if method != http.MethodGet && method != http.MethodHead {
		h.MethodNotAllowed(c)
		return
	}
	headOnly := method == http.MethodHead

	// アセットが見つかった
	if payload, ok := h.backend.Resolve(c.Request.URL.Path); ok {
		writeAsset(c, http.StatusOK, payload, headOnly)
		return
	}

	// ブラウザにはHTMLの404ページを返す
	if prefersHTML(c.GetHeader("Accept")) {
		if page, ok := h.backend.NotFoundPage(); ok {
			writeAsset(c, http.StatusNotFound, page, headOnly)
			return
		}
	}

	h.logger.Debug("asset not found", "path", c.Request.URL.Path)
	writeJSON(c, http.StatusNotFound, ErrorResponse{Error: "not_found"}, headOnly)
}

// Stats はメモリ使用量を返す
func (h *Handler) Stats(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	writeJSON(c, http.StatusOK, h.collector.Collect(), c.Request.Method == http.MethodHead)
}

// MethodNotAllowed は 405 を返す
func (h *Handler) MethodNotAllowed(c *gin.Context) {
	c.Header("Allow", strings.Join(allowedMethods, ", "))
	writeJSON(c, http.StatusMethodNotAllowed, ErrorResponse{Error: "method_not_allowed"}, false)
}

// ヘルパー関数

// prefersHTML はAcceptヘッダーがHTMLを求めているかどうかを返す
func prefersHTML(accept string) bool {
	accept = strings.ToLower(accept)
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

// writeAsset はアセットをレスポンスとして書き込む
func writeAsset(c *gin.Context, status int, payload *assets.Payload, headOnly bool) {
	c.Header("Content-Type", payload.ContentType)
	if payload.CacheControl != "" {
		c.Header("Cache-Control", payload.CacheControl)
	}
	writeBody(c, status, payload.Body, headOnly)
}

// writeJSON はvをJSONとして書き込む
func writeJSON(c *gin.Context, status int, v any, headOnly bool) {
	body, err := json.Marshal(v)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/json")
	writeBody(c, status, body, headOnly)
}

// writeBody はステータスとContent-Lengthを書き込み、HEADでなければ本文も書き込む
//
// HEAD でもヘッダーを確定させておかないと、gin が NoRoute の既定本文で上書きする。
func writeBody(c *gin.Context, status int, body []byte, headOnly bool) {
	c.Header("Content-Length", strconv.Itoa(len(body)))
	c.Status(status)
	c.Writer.WriteHeaderNow()

	if headOnly {
		return
	}

	// 書き込みエラーはクライアント切断なので無視する
	_, _ = c.Writer.Write(body)
}
