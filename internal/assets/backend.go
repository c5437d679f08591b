package assets

// Payload は解決されたアセットの内容
type Payload struct {
	Body         []byte
	ContentType  string
	CacheControl string // 空なら Cache-Control を付けない
}

// Backend はアセットの取得元を表す
//
// 実装は起動時に一度だけ作られ、以降は複数のゴルーチンから
// ロック無しで同時に呼び出される。
type Backend interface {
	// Resolve はリクエストパスを正規化し、候補パスを順に探して最初に見つかったアセットを返す
	Resolve(requestPath string) (*Payload, bool)

	// NotFoundPage は 404.html を返す
	NotFoundPage() (*Payload, bool)
}

// lookupFunc は候補パス1件を読み込む
type lookupFunc func(rel string) (*Payload, bool)

// resolve はバックエンド共通の解決処理
func resolve(lookup lookupFunc, requestPath string) (*Payload, bool) {
	normalized, ok := NormalizeRequestPath(requestPath)
	if !ok {
		return nil, false
	}

	for _, candidate := range Candidates(normalized) {
		if payload, ok := lookup(candidate); ok {
			return payload, true
		}
	}

	return nil, false
}

// newPayload は本文と拡張子由来のヘッダー値からPayloadを作る
func newPayload(rel string, body []byte) *Payload {
	return &Payload{
		Body:         body,
		ContentType:  ContentTypeFor(rel),
		CacheControl: CacheControlFor(rel),
	}
}
