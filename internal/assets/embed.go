package assets

import (
	"embed"
	"fmt"
	"io/fs"
)

// siteDir はビルド時に埋め込むサイトのディレクトリ
const siteDir = "static"

//go:embed all:static
var siteFS embed.FS

// Site returns the site tree bundled into the binary.
func Site() fs.FS {
	sub, err := fs.Sub(siteFS, siteDir)
	if err != nil {
		// siteDir は定数なので通常は到達しない
		panic(fmt.Sprintf("埋め込み静的ファイルシステムの作成に失敗: %v", err))
	}
	return sub
}
