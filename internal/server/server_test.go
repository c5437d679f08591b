package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"syscall"
	"testing"
	"time"

	"ploscaru/internal/assets"
	"ploscaru/internal/config"
	"ploscaru/internal/stats"
)

// testConfig はランダムポートでリッスンするテスト用の設定を返す
func testConfig(shutdownTimeoutSeconds int) *config.Config {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0 // ランダムポートを使用
	cfg.Server.ReadTimeout = 5 * time.Second
	cfg.Server.WriteTimeout = 5 * time.Second
	cfg.Server.ShutdownTimeoutSeconds = shutdownTimeoutSeconds
	return cfg
}

// startServer はサーバーを別ゴルーチンで起動し、バインドを待つ
func startServer(t *testing.T, ctx context.Context, srv *Server) <-chan error {
	t.Helper()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx)
	}()

	select {
	case <-srv.Ready():
	case err := <-errCh:
		t.Fatalf("サーバーの起動に失敗しました: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("サーバーの起動がタイムアウトしました")
	}

	if srv.State() != StateServing {
		t.Fatalf("state = %s, want %s", srv.State(), StateServing)
	}
	return errCh
}

// waitResult はRunの戻り値を待つ
func waitResult(t *testing.T, errCh <-chan error) error {
	t.Helper()

	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("サーバーの停止がタイムアウトしました")
		return nil
	}
}

// TestServerStartAndShutdown はサーバーの起動とシャットダウンをテストする
func TestServerStartAndShutdown(t *testing.T) {
	srv := New(testConfig(1), http.NotFoundHandler(), discardLogger())

	// テスト用のコンテキスト（タイムアウト付き）
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := startServer(t, ctx, srv)

	// コンテキストをキャンセルしてサーバーを停止
	cancel()

	if err := waitResult(t, errCh); err != nil {
		t.Fatalf("サーバーの起動/停止でエラーが発生しました: %v", err)
	}
	if srv.State() != StateStopped {
		t.Errorf("state = %s, want %s", srv.State(), StateStopped)
	}
}

// TestServerSignal は終了シグナルによるシャットダウンをテストする
func TestServerSignal(t *testing.T) {
	srv := New(testConfig(1), http.NotFoundHandler(), discardLogger())
	errCh := startServer(t, context.Background(), srv)

	srv.signals <- syscall.SIGTERM

	if err := waitResult(t, errCh); err != nil {
		t.Fatalf("シグナルによる停止でエラーが発生しました: %v", err)
	}
	if srv.State() != StateStopped {
		t.Errorf("state = %s, want %s", srv.State(), StateStopped)
	}

	// 停止後の重複した停止要求は何もしない
	srv.Stop()
	srv.Stop()
	select {
	case srv.signals <- syscall.SIGINT:
	default:
	}
	if srv.State() != StateStopped {
		t.Errorf("state = %s, want %s", srv.State(), StateStopped)
	}
}

// TestServerStopIdempotent は Stop を複数回呼べることをテストする
func TestServerStopIdempotent(t *testing.T) {
	srv := New(testConfig(1), http.NotFoundHandler(), discardLogger())
	errCh := startServer(t, context.Background(), srv)

	srv.Stop()
	srv.Stop()

	if err := waitResult(t, errCh); err != nil {
		t.Fatalf("停止でエラーが発生しました: %v", err)
	}
}

// TestServerEndpoints はサーバーのエンドポイントをテストする
func TestServerEndpoints(t *testing.T) {
	router := NewRouter(assets.NewEmbedded(nil), stats.NewRuntimeCollector(), discardLogger())
	srv := New(testConfig(1), router, discardLogger())

	// テスト用のコンテキスト
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := startServer(t, ctx, srv)
	baseURL := fmt.Sprintf("http://%s", srv.Addr())

	// テストケース
	testCases := []struct {
		name           string
		method         string
		endpoint       string
		expectedStatus int
	}{
		{"ルートエンドポイント", http.MethodGet, "/", http.StatusOK},
		{"Pretty URL", http.MethodGet, "/about", http.StatusOK},
		{"HEAD", http.MethodHead, "/about", http.StatusOK},
		{"統計エンドポイント", http.MethodGet, "/stats", http.StatusOK},
		{"存在しないパス", http.MethodGet, "/does-not-exist", http.StatusNotFound},
		{"許可されないメソッド", http.MethodPost, "/", http.StatusMethodNotAllowed},
	}

	// 各エンドポイントをテスト
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, baseURL+tc.endpoint, nil)
			if err != nil {
				t.Fatalf("リクエストの作成に失敗しました: %v", err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("HTTPリクエストでエラーが発生しました: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tc.expectedStatus {
				t.Errorf("予期しないステータスコード: got %d, want %d",
					resp.StatusCode, tc.expectedStatus)
			}

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("本文の読み込みに失敗しました: %v", err)
			}
			if tc.method == http.MethodHead {
				if len(body) != 0 {
					t.Errorf("HEAD の本文が空ではありません: %q", body)
				}
				if resp.ContentLength <= 0 {
					t.Errorf("HEAD の Content-Length = %d", resp.ContentLength)
				}
			} else if got := resp.Header.Get("Content-Length"); got != strconv.Itoa(len(body)) {
				t.Errorf("Content-Length = %q, body length %d", got, len(body))
			}
		})
	}

	cancel()
	if err := waitResult(t, errCh); err != nil {
		t.Fatalf("停止でエラーが発生しました: %v", err)
	}
}

// blockingHandler は release が閉じられるまで応答しないハンドラーを返す
func blockingHandler(entered chan<- struct{}, release <-chan struct{}) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entered <- struct{}{}
		<-release
		w.WriteHeader(http.StatusOK)
	})
}

// TestServerInFlightRequestCompletes は処理中のリクエストが猶予時間内に完了することをテストする
func TestServerInFlightRequestCompletes(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	srv := New(testConfig(5), blockingHandler(entered, release), discardLogger())
	errCh := startServer(t, context.Background(), srv)

	respCh := make(chan int, 1)
	go func() {
		resp, err := http.Get(fmt.Sprintf("http://%s/slow", srv.Addr()))
		if err != nil {
			respCh <- 0
			return
		}
		resp.Body.Close()
		respCh <- resp.StatusCode
	}()

	<-entered
	srv.Stop()

	// シャットダウン中であることを確認してから処理を完了させる
	deadline := time.Now().Add(2 * time.Second)
	for srv.State() != StateShuttingDown && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if srv.State() != StateShuttingDown {
		t.Fatalf("state = %s, want %s", srv.State(), StateShuttingDown)
	}
	close(release)

	if err := waitResult(t, errCh); err != nil {
		t.Fatalf("停止でエラーが発生しました: %v", err)
	}
	if srv.State() != StateStopped {
		t.Errorf("state = %s, want %s", srv.State(), StateStopped)
	}
	if status := <-respCh; status != http.StatusOK {
		t.Errorf("処理中のリクエストが完了しませんでした: status %d", status)
	}
}

// TestServerShutdownTimeout は猶予時間を過ぎた場合にエラーになることをテストする
func TestServerShutdownTimeout(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	defer close(release)

	// 猶予時間0秒: 処理中の接続があれば即座にタイムアウトする
	srv := New(testConfig(0), blockingHandler(entered, release), discardLogger())
	errCh := startServer(t, context.Background(), srv)

	go func() {
		resp, err := http.Get(fmt.Sprintf("http://%s/slow", srv.Addr()))
		if err == nil {
			resp.Body.Close()
		}
	}()

	<-entered
	srv.Stop()

	err := waitResult(t, errCh)
	if !errors.Is(err, ErrShutdownTimeout) {
		t.Fatalf("got %v, want ErrShutdownTimeout", err)
	}
	if srv.State() != StateFailed {
		t.Errorf("state = %s, want %s", srv.State(), StateFailed)
	}
}

// TestServerZeroTimeoutWithoutConnections は接続が無ければ猶予時間0でも正常に停止することをテストする
func TestServerZeroTimeoutWithoutConnections(t *testing.T) {
	srv := New(testConfig(0), http.NotFoundHandler(), discardLogger())
	errCh := startServer(t, context.Background(), srv)

	srv.Stop()

	if err := waitResult(t, errCh); err != nil {
		t.Fatalf("停止でエラーが発生しました: %v", err)
	}
}

// TestServerBindFailure はバインド失敗をテストする
func TestServerBindFailure(t *testing.T) {
	// ポートを占有しておく
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("リッスンに失敗しました: %v", err)
	}
	defer occupied.Close()

	cfg := testConfig(1)
	cfg.Server.Port = occupied.Addr().(*net.TCPAddr).Port
	srv := New(cfg, http.NotFoundHandler(), discardLogger())

	err = srv.Run(context.Background())
	if !errors.Is(err, ErrBind) {
		t.Fatalf("got %v, want ErrBind", err)
	}
	if srv.State() != StateFailed {
		t.Errorf("state = %s, want %s", srv.State(), StateFailed)
	}
	if srv.Addr() != nil {
		t.Errorf("Addr() = %v, want nil", srv.Addr())
	}
}

// TestServerServeLoopExit はサーブループが予期せず終了した場合をテストする
func TestServerServeLoopExit(t *testing.T) {
	srv := New(testConfig(1), http.NotFoundHandler(), discardLogger())
	errCh := startServer(t, context.Background(), srv)

	// シャットダウン要求を経ずにサーブループを止める
	if err := srv.httpServer.Close(); err != nil {
		t.Fatalf("Close に失敗しました: %v", err)
	}

	err := waitResult(t, errCh)
	if !errors.Is(err, ErrServeLoopExited) {
		t.Fatalf("got %v, want ErrServeLoopExited", err)
	}
	if srv.State() != StateFailed {
		t.Errorf("state = %s, want %s", srv.State(), StateFailed)
	}
}

func TestStateString(t *testing.T) {
	testCases := map[State]string{
		StateStarting:     "starting",
		StateServing:      "serving",
		StateShuttingDown: "shutting_down",
		StateStopped:      "stopped",
		StateFailed:       "failed",
		State(42):         "State(42)",
	}

	for state, want := range testCases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int32(state), got, want)
		}
	}
}
