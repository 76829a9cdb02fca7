// Package cabi はホストが dlopen で読み込む C の関数テーブルとエントリポイントを提供します。
//
// プラグインの main パッケージは init で Register を呼び、RD_PluginInit の時点で
// 設定の読み込みとホストへのログ転送を準備したうえで Dispatcher を作成します。
// すべての C 側の呼び出しは Register された 1 つの Dispatcher に転送されます。
package cabi

/*
#include "rd_plugin.h"
*/
import "C"

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/shiroemons/go-nemea/internal/bridge"
	"github.com/shiroemons/go-nemea/internal/config"
)

// ErrNotRegistered は Register されていない状態で初期化された場合のエラー
var ErrNotRegistered = errors.New("形式が登録されていません")

// Plugin はプラグインの登録内容
type Plugin struct {
	// LogPrefix はホストへ出力するすべてのメッセージの先頭に付ける文字列
	LogPrefix string

	// New は設定とロガーから Dispatcher を作成します
	New func(cfg *config.Config, logger *slog.Logger) bridge.Dispatcher
}

var (
	mu         sync.RWMutex
	plugin     *Plugin
	dispatcher bridge.Dispatcher
)

// Register はプラグインを登録します。2 回目以降の呼び出しは無視します
func Register(p Plugin) {
	mu.Lock()
	defer mu.Unlock()
	if plugin != nil {
		return
	}
	plugin = &p
}

// start は設定を読み込んで Dispatcher を作成し、初期化します
func start(sink *hostSink) bool {
	mu.Lock()
	defer mu.Unlock()

	if plugin == nil || plugin.New == nil {
		sink.logError(ErrNotRegistered.Error())
		return false
	}
	if dispatcher != nil {
		return true
	}

	cfg, err := config.Load()
	if err != nil {
		sink.logError(plugin.LogPrefix + err.Error())
		return false
	}

	logger := newLogger(sink, cfg, plugin.LogPrefix)
	d := plugin.New(cfg, logger)
	if d == nil || !d.Init() {
		return false
	}
	dispatcher = d
	return true
}

// stop は Dispatcher の終了処理を呼び出して登録を外します
func stop() {
	mu.Lock()
	defer mu.Unlock()
	if dispatcher == nil {
		return
	}
	dispatcher.Shutdown()
	dispatcher = nil
}

// current は初期化済みの Dispatcher を返します。未初期化なら nil を返します
func current() bridge.Dispatcher {
	mu.RLock()
	defer mu.RUnlock()
	return dispatcher
}
