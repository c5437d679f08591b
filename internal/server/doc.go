// Package server は、HTTPサーバーのルーティングとライフサイクルを管理します。
//
// このパッケージは、静的アセットのHTTPレスポンス化、
// 診断エンドポイント、サーバーの起動とグレースフルシャットダウンを担当します。
//
// 責務:
//   - ルーティング（GET/HEAD の振り分け、405 の応答）
//   - 静的アセットのレスポンス生成（200、HTML の 404 ページ、JSON の 404）
//   - セキュリティヘッダーとリクエストIDの付与、アクセスログ
//   - HTTPサーバーの起動と停止
//
// 仕様:
//   - ルーティングには gin を使用
//   - ライフサイクルは Starting → Serving → ShuttingDown → Stopped の順に遷移し、
//     バインド失敗、サーブループの予期しない終了、シャットダウンのタイムアウトで Failed になる
//   - SIGINT/SIGTERM を受けるとグレースフルシャットダウンに入り、猶予時間内に
//     終わらなければエラーを返す（接続の強制切断はしない）
package server
