package server

import (
	"log/slog"
	"net/http"

	"ploscaru/internal/assets"
	"ploscaru/internal/stats"

	"github.com/gin-gonic/gin"
)

// NewRouter はルーティングを設定したginエンジンを作成する
//
// /stats 以外のパスはすべて静的アセットとして扱う。
// GET/HEAD 以外のメソッドには 405 を返す。
func NewRouter(backend assets.Backend, collector stats.Collector, logger *slog.Logger) *gin.Engine {
	h := &Handler{
		backend:   backend,
		collector: collector,
		logger:    logger,
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	// 末尾スラッシュの扱いは候補パスの解決に任せる
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false
	_ = engine.SetTrustedProxies(nil)

	engine.Use(
		recovery(logger),
		requestID(),
		accessLog(logger),
		securityHeaders(),
	)

	// 診断エンドポイント
	engine.GET("/stats", h.Stats)
	engine.HEAD("/stats", h.Stats)

	// "/" と "/{path}" は NoRoute で受ける
	engine.NoRoute(h.Static)
	engine.NoMethod(h.MethodNotAllowed)

	return engine
}

// allowedMethods は定義済みルートで受け付けるメソッド
var allowedMethods = []string{http.MethodGet, http.MethodHead}
