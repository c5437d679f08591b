package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"ploscaru/internal/config"
)

// ライフサイクルのエラー
var (
	// ErrBind はリッスンソケットを開けなかったことを表す
	ErrBind = errors.New("listen failed")
	// ErrServeLoopExited はシャットダウン要求前にサーブループが終了したことを表す
	ErrServeLoopExited = errors.New("serve loop exited unexpectedly")
	// ErrShutdownTimeout はグレースフルシャットダウンが猶予時間内に終わらなかったことを表す
	ErrShutdownTimeout = errors.New("graceful shutdown timed out")
)

// State はサーバーのライフサイクル状態
type State int32

// State の定数定義
const (
	StateStarting     State = iota // ソケットをバインド中
	StateServing                   // リクエストを処理中
	StateShuttingDown              // グレースフルシャットダウン中
	StateStopped                   // 正常に停止
	StateFailed                    // 異常終了
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateServing:
		return "serving"
	case StateShuttingDown:
		return "shutting_down"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Server はHTTPサーバーを管理する構造体
type Server struct {
	config     *config.Config
	httpServer *http.Server
	logger     *slog.Logger

	state atomic.Int32
	addr  atomic.Pointer[net.Addr]

	// 終了シグナル
	signals  chan os.Signal
	stopCh   chan struct{}
	stopOnce sync.Once
	ready    chan struct{}
}

// New は新しいServerインスタンスを作成する
func New(cfg *config.Config, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		config: cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:              cfg.ServerAddress(),
			Handler:           handler,
			ReadTimeout:       cfg.Server.ReadTimeout,
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		signals: make(chan os.Signal, 1),
		stopCh:  make(chan struct{}),
		ready:   make(chan struct{}),
	}
}

// State は現在のライフサイクル状態を返す
func (s *Server) State() State {
	return State(s.state.Load())
}

func (s *Server) setState(state State) {
	prev := State(s.state.Swap(int32(state)))
	if prev != state {
		s.logger.Debug("server state changed", "from", prev, "to", state)
	}
}

// Ready はリッスンソケットのバインドが完了すると閉じられる
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr はバインドしたアドレスを返す。バインド前は nil
func (s *Server) Addr() net.Addr {
	if addr := s.addr.Load(); addr != nil {
		return *addr
	}
	return nil
}

// Stop はグレースフルシャットダウンを要求する
// 何度呼んでもよい
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

// Run はサーバーを起動し、終了するまでブロックする
//
// SIGINT/SIGTERM、Stop の呼び出し、ctx のキャンセルのいずれかで
// グレースフルシャットダウンに入る。正常に停止した場合は nil を返す。
func (s *Server) Run(ctx context.Context) error {
	s.setState(StateStarting)

	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		s.setState(StateFailed)
		return fmt.Errorf("%w: %s: %w", ErrBind, s.httpServer.Addr, err)
	}
	addr := listener.Addr()
	s.addr.Store(&addr)

	// シグナルハンドリング
	signal.Notify(s.signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(s.signals)

	// サーバーを別ゴルーチンで起動
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(listener)
	}()

	s.setState(StateServing)
	close(s.ready)
	s.logger.Info("HTTP server started",
		"address", addr.String(),
		"shutdown_timeout", s.config.ShutdownTimeout(),
	)

	// サーブループの終了か終了要求を待つ
	select {
	case err := <-serveErr:
		s.setState(StateFailed)
		return fmt.Errorf("%w: %w", ErrServeLoopExited, err)
	case sig := <-s.signals:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	case <-s.stopCh:
		s.logger.Info("shutdown requested")
	case <-ctx.Done():
		s.logger.Info("context canceled", "error", ctx.Err())
	}

	return s.shutdown(serveErr)
}

// shutdown は猶予時間内にサーブループの終了を待つ
// 猶予時間を過ぎても処理中の接続は切断しない
func (s *Server) shutdown(serveErr <-chan error) error {
	s.setState(StateShuttingDown)

	timeout := s.config.ShutdownTimeout()
	s.logger.Info("shutting down server", "shutdown_timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.setState(StateFailed)
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s", ErrShutdownTimeout, timeout)
		}
		return fmt.Errorf("サーバーのシャットダウンに失敗: %w", err)
	}

	// Shutdown が成功していれば Serve は ErrServerClosed で戻っている
	if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
		s.setState(StateFailed)
		return fmt.Errorf("%w: %w", ErrServeLoopExited, err)
	}

	s.setState(StateStopped)
	s.logger.Info("server stopped gracefully")
	return nil
}
