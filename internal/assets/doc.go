// Package assets は静的サイトのアセット解決を担う
//
// # 責務
// - リクエストパスの正規化とディレクトリトラバーサルの拒否
// - 拡張子なしパス（Pretty URL）の候補パス列挙
// - 埋め込みアセットとディスク上のアセットの読み込み
// - Content-Type と Cache-Control の決定
//
// # 仕様
//   - Backend インターフェースで埋め込み版とディスク版を同じように扱う
//   - バックエンドは起動時に一度だけ選択され、以降は読み取り専用
//   - トラバーサルの拒否と「ファイルが存在しない」は区別せず、どちらも未検出として返す
//   - ディスク版は正規化済みルートの外を指すファイル（シンボリックリンク経由を含む）を配信しない
//   - 候補パスは「完全一致 → .html 付与 → /index.html」の順で探索する
package assets
