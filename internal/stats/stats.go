// Package stats はプロセスのメモリ使用量を収集する
//
// 診断エンドポイントから必要なときだけ呼び出される。
// プロセス全体で共有する可変状態は持たない。
package stats

import (
	"fmt"
	"runtime"
)

// RuntimeName は診断レスポンスに載せる実行環境名
const RuntimeName = "go/gin"

// Snapshot は診断エンドポイントのレスポンス
type Snapshot struct {
	Runtime string `json:"runtime"`
	Memory  Memory `json:"memory"`
}

// Memory はメモリ使用量（"12.34 MB" 形式）
type Memory struct {
	RSS       string `json:"rss"`
	HeapUsed  string `json:"heap_used"`
	HeapTotal string `json:"heap_total"`
}

// Collector はSnapshotを収集する
type Collector interface {
	Collect() Snapshot
}

// RuntimeCollector はGoランタイムとOSからメモリ使用量を取得する
type RuntimeCollector struct {
	// テストで差し替える
	residentBytes    func() (uint64, bool)
	maxResidentBytes func() (uint64, bool)
}

// NewRuntimeCollector は新しいRuntimeCollectorを作成する
func NewRuntimeCollector() *RuntimeCollector {
	return &RuntimeCollector{
		residentBytes:    residentBytes,
		maxResidentBytes: maxResidentBytes,
	}
}

// Collect implements Collector.
func (c *RuntimeCollector) Collect() Snapshot {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	heapUsed := ms.HeapAlloc
	heapTotal := max(ms.HeapSys, heapUsed)

	// RSS は /proc の値、無ければ最大RSS、それも無ければヒープ全体
	rss, ok := c.residentBytes()
	if !ok {
		rss, ok = c.maxResidentBytes()
	}
	if !ok {
		rss = heapTotal
	}

	return Snapshot{
		Runtime: RuntimeName,
		Memory: Memory{
			RSS:       FormatMB(rss),
			HeapUsed:  FormatMB(heapUsed),
			HeapTotal: FormatMB(heapTotal),
		},
	}
}

// FormatMB はバイト数を "12.34 MB" 形式にする
func FormatMB(bytes uint64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/(1024*1024))
}
