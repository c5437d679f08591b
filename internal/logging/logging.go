// Package logging はslogロガーの構築を担う
package logging

import (
	"io"
	"log/slog"
	"strings"

	"ploscaru/internal/config"
)

// ParseLevel はログレベル名をslog.Levelに変換する
// 不明な名前はinfoとして扱う
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(name)))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// New は設定に従ってwへ出力するロガーを作成する
func New(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
