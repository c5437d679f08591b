package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig は設定値の検証エラー
var ErrInvalidConfig = errors.New("invalid configuration")

// AssetMode はアセットの配信元
type AssetMode string

// AssetMode の定数定義
const (
	AssetModeEmbedded AssetMode = "embedded" // バイナリに埋め込んだアセット
	AssetModeDisk     AssetMode = "disk"     // ディスク上のディレクトリ
)

// String implements pflag.Value.
func (m *AssetMode) String() string {
	return string(*m)
}

// Set implements pflag.Value.
func (m *AssetMode) Set(value string) error {
	mode := AssetMode(strings.ToLower(strings.TrimSpace(value)))
	if !mode.Valid() {
		return fmt.Errorf("unknown asset mode %q (want %q or %q)", value, AssetModeEmbedded, AssetModeDisk)
	}
	*m = mode
	return nil
}

// Type implements pflag.Value.
func (m *AssetMode) Type() string {
	return "mode"
}

// Valid は既知のモードかどうかを返す
func (m AssetMode) Valid() bool {
	return m == AssetModeEmbedded || m == AssetModeDisk
}

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	Server ServerConfig `yaml:"server"`
	Assets AssetsConfig `yaml:"assets"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig はHTTPサーバーの設定
type ServerConfig struct {
	Host string `yaml:"host"` // リッスンするホスト
	Port int    `yaml:"port"` // リッスンするポート番号

	// タイムアウト設定
	ReadTimeout            time.Duration `yaml:"read_timeout"`             // 読み込みタイムアウト
	WriteTimeout           time.Duration `yaml:"write_timeout"`            // 書き込みタイムアウト
	ShutdownTimeoutSeconds int           `yaml:"shutdown_timeout_seconds"` // グレースフルシャットダウンの猶予（秒）
}

// AssetsConfig は静的アセットの設定
type AssetsConfig struct {
	Mode      AssetMode `yaml:"mode"`       // embedded または disk
	StaticDir string    `yaml:"static_dir"` // disk モードのルートディレクトリ
}

// LogConfig はログ出力の設定
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text または json
}

// デフォルト値
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 9327
	DefaultStaticDir       = "internal/assets/static"
	DefaultShutdownTimeout = 5
)

// Default はデフォルト設定を返す
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:                   DefaultHost,
			Port:                   DefaultPort,
			ReadTimeout:            10 * time.Second,
			WriteTimeout:           30 * time.Second,
			ShutdownTimeoutSeconds: DefaultShutdownTimeout,
		},
		Assets: AssetsConfig{
			Mode:      AssetModeEmbedded,
			StaticDir: DefaultStaticDir,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load は設定を読み込む
//
// 優先順位は低い順に、デフォルト値、--config で指定したYAMLファイル、
// 環境変数、コマンドラインフラグ。
// 先頭の "serve" サブコマンドは省略できる。
func Load(args []string) (*Config, error) {
	if len(args) > 0 && args[0] == "serve" {
		args = args[1:]
	}

	cfg := Default()
	flags := newFlags(cfg)
	if err := flags.set.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if rest := flags.set.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("%w: unexpected argument: %s", ErrInvalidConfig, rest[0])
	}

	// 設定ファイル
	if flags.configPath != "" {
		if err := cfg.loadFile(flags.configPath); err != nil {
			return nil, err
		}
	}

	// 環境変数
	cfg.applyEnv()

	// コマンドラインオプションで設定を上書き
	flags.apply(cfg)

	// 設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

// loadFile はYAMLファイルの内容でcfgを上書きする
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}

	return nil
}

// applyEnv は環境変数の値でcfgを上書きする
func (c *Config) applyEnv() {
	c.Server.Host = getEnvOrDefault("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvAsIntOrDefault("PORT", c.Server.Port)
	c.Assets.StaticDir = getEnvOrDefault("STATIC_DIR", c.Assets.StaticDir)
	c.Assets.Mode = AssetMode(strings.ToLower(getEnvOrDefault("ASSET_MODE", string(c.Assets.Mode))))
	c.Log.Level = getEnvOrDefault("LOG_LEVEL", c.Log.Level)
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	// サーバー設定の検証
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: 無効なポート番号: %d", ErrInvalidConfig, c.Server.Port)
	}
	if c.Server.ShutdownTimeoutSeconds < 0 {
		return fmt.Errorf("%w: 無効なシャットダウンタイムアウト: %d", ErrInvalidConfig, c.Server.ShutdownTimeoutSeconds)
	}

	// アセット設定の検証
	if !c.Assets.Mode.Valid() {
		return fmt.Errorf("%w: 無効なアセットモード: %q", ErrInvalidConfig, c.Assets.Mode)
	}
	if c.Assets.Mode == AssetModeDisk && c.Assets.StaticDir == "" {
		return fmt.Errorf("%w: disk モードには static_dir が必要です", ErrInvalidConfig)
	}

	// ログ設定の検証
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: 無効なログレベル: %q", ErrInvalidConfig, c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: 無効なログ形式: %q", ErrInvalidConfig, c.Log.Format)
	}

	return nil
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// ShutdownTimeout はグレースフルシャットダウンの猶予時間を返す
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

// getEnvOrDefault は環境変数を取得し、設定されていない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は環境変数を整数として取得し、設定されていない場合はデフォルト値を返す
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
