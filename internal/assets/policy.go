package assets

import (
	"mime"
	"path"
	"strings"
)

// DefaultContentType は拡張子から種類が分からない場合のContent-Type
const DefaultContentType = "application/octet-stream"

// キャッシュポリシー
const (
	cacheImmutable  = "public, max-age=31536000, immutable"
	cacheShort      = "public, max-age=86400"
	cacheRevalidate = "public, max-age=0, must-revalidate, stale-while-revalidate=30"
)

// サイトでよく使う拡張子と、mime パッケージの組み込みテーブルに無い拡張子
// ここに無いものはOSの mime.types を含む mime パッケージに任せる
var contentTypes = map[string]string{
	".html":        "text/html",
	".htm":         "text/html",
	".css":         "text/css",
	".js":          "text/javascript",
	".mjs":         "text/javascript",
	".json":        "application/json",
	".svg":         "image/svg+xml",
	".png":         "image/png",
	".jpg":         "image/jpeg",
	".jpeg":        "image/jpeg",
	".gif":         "image/gif",
	".webp":        "image/webp",
	".woff":        "font/woff",
	".woff2":       "font/woff2",
	".ttf":         "font/ttf",
	".otf":         "font/otf",
	".ico":         "image/x-icon",
	".txt":         "text/plain",
	".map":         "application/json",
	".xml":         "application/xml",
	".webmanifest": "application/manifest+json",
}

var cachePolicies = map[string]string{
	".woff":  cacheImmutable,
	".woff2": cacheImmutable,
	".png":   cacheImmutable,
	".jpg":   cacheImmutable,
	".jpeg":  cacheImmutable,
	".gif":   cacheImmutable,
	".svg":   cacheImmutable,
	".webp":  cacheImmutable,
	".css":   cacheImmutable,
	".js":    cacheShort,
	".html":  cacheRevalidate,
}

func extension(p string) string {
	return strings.ToLower(path.Ext(p))
}

// ContentTypeFor はファイルの拡張子からMIMEタイプ（パラメータ無し）を返す
func ContentTypeFor(p string) string {
	ext := extension(p)
	if ext == "" {
		return DefaultContentType
	}
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}

	ct := mime.TypeByExtension(ext)
	if ct == "" {
		return DefaultContentType
	}

	essence, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return DefaultContentType
	}
	return essence
}

// CacheControlFor は拡張子に対応する Cache-Control を返す
// 該当しない拡張子は空文字列（ヘッダーを付けない）
func CacheControlFor(p string) string {
	return cachePolicies[extension(p)]
}
