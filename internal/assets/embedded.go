package assets

import "io/fs"

// EmbeddedBackend はバイナリに埋め込まれた読み取り専用のファイルツリーから配信する
type EmbeddedBackend struct {
	fsys fs.FS
}

// NewEmbedded は fsys を配信元とするEmbeddedBackendを作成する
// fsys が nil の場合はバイナリに埋め込まれたサイトを使う
func NewEmbedded(fsys fs.FS) *EmbeddedBackend {
	if fsys == nil {
		fsys = Site()
	}
	return &EmbeddedBackend{fsys: fsys}
}

// Resolve implements Backend.
func (b *EmbeddedBackend) Resolve(requestPath string) (*Payload, bool) {
	return resolve(b.load, requestPath)
}

// NotFoundPage implements Backend.
func (b *EmbeddedBackend) NotFoundPage() (*Payload, bool) {
	return b.load(NotFoundFile)
}

// load は埋め込みテーブルを完全一致で引く
func (b *EmbeddedBackend) load(rel string) (*Payload, bool) {
	rel, ok := Sanitize(rel)
	if !ok || !fs.ValidPath(rel) {
		return nil, false
	}

	info, err := fs.Stat(b.fsys, rel)
	if err != nil || !info.Mode().IsRegular() {
		return nil, false
	}

	// fs.ReadFile は呼び出し側が所有するコピーを返す
	body, err := fs.ReadFile(b.fsys, rel)
	if err != nil {
		return nil, false
	}

	return newPayload(rel, body), true
}
