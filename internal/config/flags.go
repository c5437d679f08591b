package config

import (
	"io"

	"github.com/spf13/pflag"
)

// flagValues はコマンドラインフラグの値を保持する
type flagValues struct {
	set *pflag.FlagSet

	configPath      string
	host            string
	port            int
	assets          AssetMode
	staticDir       string
	shutdownTimeout int
	useDisk         bool
	logLevel        string
	logFormat       string
}

// newFlags はdefaultsの値を既定値とするフラグセットを作成する
func newFlags(defaults *Config) *flagValues {
	f := &flagValues{
		set:    pflag.NewFlagSet("ploscaru", pflag.ContinueOnError),
		assets: defaults.Assets.Mode,
	}
	// ヘルプとエラーの表示は呼び出し側で行う
	f.set.SetOutput(io.Discard)
	f.set.Usage = func() {}

	f.set.StringVar(&f.configPath, "config", "", "YAML設定ファイルのパス")
	f.set.StringVar(&f.host, "host", defaults.Server.Host, "サーバーのホスト")
	f.set.IntVarP(&f.port, "port", "p", defaults.Server.Port, "サーバーのポート (環境変数 PORT より優先)")
	f.set.Var(&f.assets, "assets", "アセットの配信元 (embedded または disk)")
	f.set.StringVar(&f.staticDir, "static-dir", defaults.Assets.StaticDir, "disk モードで配信するディレクトリ")
	f.set.IntVar(&f.shutdownTimeout, "shutdown-timeout-seconds", defaults.Server.ShutdownTimeoutSeconds, "グレースフルシャットダウンの猶予（秒）")
	f.set.BoolVar(&f.useDisk, "use-disk", false, "--assets=disk と同じ")
	f.set.StringVar(&f.logLevel, "log-level", defaults.Log.Level, "ログレベル (debug, info, warn, error)")
	f.set.StringVar(&f.logFormat, "log-format", defaults.Log.Format, "ログ形式 (text または json)")

	return f
}

// apply は明示的に指定されたフラグだけをcfgに反映する
func (f *flagValues) apply(cfg *Config) {
	f.set.Visit(func(flag *pflag.Flag) {
		switch flag.Name {
		case "host":
			cfg.Server.Host = f.host
		case "port":
			cfg.Server.Port = f.port
		case "assets":
			cfg.Assets.Mode = f.assets
		case "static-dir":
			cfg.Assets.StaticDir = f.staticDir
		case "shutdown-timeout-seconds":
			cfg.Server.ShutdownTimeoutSeconds = f.shutdownTimeout
		case "log-level":
			cfg.Log.Level = f.logLevel
		case "log-format":
			cfg.Log.Format = f.logFormat
		}
	})

	if f.useDisk {
		cfg.Assets.Mode = AssetModeDisk
	}
}

// Usage はフラグの説明を返す
func Usage() string {
	return newFlags(Default()).set.FlagUsages()
}
