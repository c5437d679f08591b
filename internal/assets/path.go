package assets

import "strings"

// IndexFile はルートや空パスに対応するファイル名
const IndexFile = "index.html"

// NotFoundFile はHTML向け404ページのファイル名
const NotFoundFile = "404.html"

// Sanitize は信頼できない相対パスを安全なルート相対パスに変換する
//
// 空セグメントと "." は捨て、".." は直前のセグメントを取り除く。
// 取り除くセグメントが無い場合はルートより上に出ようとしているので false を返す。
// 戻り値の区切り文字は常に "/" で、先頭の "/" は付かない。
func Sanitize(raw string) (string, bool) {
	segments := make([]string, 0, strings.Count(raw, "/")+1)

	for _, segment := range strings.Split(raw, "/") {
		switch segment {
		case "", ".":
			continue
		case "..":
			if len(segments) == 0 {
				return "", false
			}
			segments = segments[:len(segments)-1]
		default:
			segments = append(segments, segment)
		}
	}

	return strings.Join(segments, "/"), true
}

// NormalizeRequestPath はHTTPリクエストパスを正規化する
// 空文字列と "/" は index.html になる
func NormalizeRequestPath(path string) (string, bool) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed == "/" {
		return IndexFile, true
	}

	cleaned, ok := Sanitize(strings.TrimPrefix(trimmed, "/"))
	if !ok {
		return "", false
	}
	if cleaned == "" {
		return IndexFile, true
	}

	return cleaned, true
}

// Candidates は正規化済みパスに対して試すファイルパスを優先順に返す
//
// 最後のセグメントに "." が無ければ Pretty URL とみなし、
// "{p}.html" と "{p}/index.html" を後ろに追加する。
func Candidates(normalized string) []string {
	base := normalized
	if i := strings.LastIndexByte(normalized, '/'); i >= 0 {
		base = normalized[i+1:]
	}

	if strings.Contains(base, ".") {
		return []string{normalized}
	}

	return []string{
		normalized,
		normalized + ".html",
		normalized + "/" + IndexFile,
	}
}
