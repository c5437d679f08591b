// Package main はploscaruサーバーコマンドの実装です
//
// 使用方法:
//
//	go run ./cmd serve --assets disk --static-dir ./internal/assets/static
//	go build -o ploscaru ./cmd
package main

import (
	"context"
	"os"

	"ploscaru/internal/app"
)

func main() {
	// コンテキストを作成
	ctx := context.Background()

	// サーバーを起動し、終了コードを返す
	os.Exit(app.Run(ctx, os.Args[1:], os.Stderr))
}
