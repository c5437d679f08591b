package assets

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DiskBackend はディスク上のディレクトリから配信する
//
// ルートは起動時に一度だけ正規化（絶対パス化とシンボリックリンク解決）する。
// 正規化に失敗した場合は劣化状態になり、以降のすべての検索が未検出になる。
// 再試行はしない。
type DiskBackend struct {
	root          string
	canonicalRoot string // 空なら劣化状態
	logger        *slog.Logger
}

// NewDisk はrootを配信元とするDiskBackendを作成する
func NewDisk(root string, logger *slog.Logger) *DiskBackend {
	if logger == nil {
		logger = slog.Default()
	}

	b := &DiskBackend{
		root:   root,
		logger: logger,
	}

	canonical, err := canonicalize(root)
	if err != nil {
		logger.Warn("static directory is not available; disk mode will return 404",
			"static_dir", root,
			"error", err,
		)
		return b
	}

	b.canonicalRoot = canonical
	return b
}

// Root は設定されたルートディレクトリを返す
func (b *DiskBackend) Root() string {
	return b.root
}

// CanonicalRoot は正規化済みのルートを返す。劣化状態では空文字列
func (b *DiskBackend) CanonicalRoot() string {
	return b.canonicalRoot
}

// Degraded は起動時にルートを正規化できなかったかどうかを返す
func (b *DiskBackend) Degraded() bool {
	return b.canonicalRoot == ""
}

// Resolve implements Backend.
func (b *DiskBackend) Resolve(requestPath string) (*Payload, bool) {
	return resolve(b.load, requestPath)
}

// NotFoundPage implements Backend.
func (b *DiskBackend) NotFoundPage() (*Payload, bool) {
	return b.load(NotFoundFile)
}

// load は候補パス1件をディスクから読み込む
// 毎回 stat と正規化を行い、起動後に作られたシンボリックリンクによる脱出も防ぐ
func (b *DiskBackend) load(rel string) (*Payload, bool) {
	if b.Degraded() {
		return nil, false
	}

	rel, ok := Sanitize(rel)
	if !ok || rel == "" {
		return nil, false
	}

	candidate := filepath.Join(b.root, filepath.FromSlash(rel))

	info, err := os.Stat(candidate)
	if err != nil || !info.Mode().IsRegular() {
		return nil, false
	}

	target, err := canonicalize(candidate)
	if err != nil {
		return nil, false
	}

	if !within(b.canonicalRoot, target) {
		b.logger.Warn("blocked candidate outside static root",
			"candidate", candidate,
			"resolved", target,
			"root", b.canonicalRoot,
		)
		return nil, false
	}

	body, err := os.ReadFile(target)
	if err != nil {
		b.logger.Debug("failed to read static file", "path", target, "error", err)
		return nil, false
	}

	return newPayload(rel, body), true
}

// canonicalize は絶対パス化したうえでシンボリックリンクを解決する
func canonicalize(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// within は target が root 配下にあるかどうかを返す
func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	if rel == "." || filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
