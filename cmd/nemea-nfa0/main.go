// nemea-nfa0 は NFA0 アーカイブをホストの展開アプリケーションへ追加する共有ライブラリです。
//
// ビルド:
//
//	go build -buildmode=c-shared -o nemea_nfa0.so ./cmd/nemea-nfa0
//
// 設定ファイルを使う場合は NFA0_CONFIG に YAML ファイルのパスを指定します。
package main

import "C"

import (
	"log/slog"

	"github.com/shiroemons/go-nemea/internal/bridge"
	"github.com/shiroemons/go-nemea/internal/cabi"
	"github.com/shiroemons/go-nemea/internal/config"
	"github.com/shiroemons/go-nemea/pkg/nfa0"
)

func init() {
	cabi.Register(cabi.Plugin{
		LogPrefix: "[NFA0] ",
		New:       newDispatcher,
	})
}

// newDispatcher は設定に従って NFA0 形式のブリッジを作成します
func newDispatcher(cfg *config.Config, logger *slog.Logger) bridge.Dispatcher {
	logger.Debug("loaded configuration",
		"name", config.Name,
		"version", config.Version,
		"extensions", cfg.Extensions,
		"max_entries", cfg.MaxEntries,
	)
	format := nfa0.NewFormat(cfg.FormatOptions(logger))
	return bridge.New[*nfa0.Archive](format, cabi.Memory{}, logger)
}

func main() {}
