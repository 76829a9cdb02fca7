package cabi

/*
#include <stdlib.h>
#include "rd_plugin.h"
*/
import "C"

import (
	"log/slog"
	"strings"
	"sync"
	"unsafe"

	"github.com/shiroemons/go-nemea/internal/config"
	"github.com/shiroemons/go-nemea/internal/hostlog"
)

var (
	hostOnce sync.Once
	host     *hostSink
)

// bindHost はホストの関数テーブルを一度だけ記録します。2 回目以降は最初の値を返します
func bindHost(api *C.HostAPI) *hostSink {
	hostOnce.Do(func() {
		host = &hostSink{api: api}
	})
	return host
}

// hostSink はホストのログコールバックを hostlog.Sink として扱います
//
// api はホストが所有し、プラグインがアンロードされるまで有効です。
type hostSink struct {
	api *C.HostAPI
}

var _ hostlog.Sink = (*hostSink)(nil)

// Log はテキストをレベルに応じた log, warn, error のいずれかに渡します
func (s *hostSink) Log(level hostlog.Level, msg string) {
	cmsg := C.CString(sanitize(msg))
	defer C.free(unsafe.Pointer(cmsg))
	C.nemea_host_log(s.api, cLevel(level), cmsg)
}

// LogFmt は log_fmtv に型付き引数を渡します。log_fmtv がなければ展開済みのテキストを Log で出力します
func (s *hostSink) LogFmt(level hostlog.Level, format string, args []hostlog.Arg) {
	if !C.nemea_host_has_fmtv(s.api) {
		s.Log(level, hostlog.Render(format, args))
		return
	}

	cfmt := C.CString(sanitize(format))
	defer C.free(unsafe.Pointer(cfmt))

	var cargs *C.RD_LogArg
	if len(args) > 0 {
		cargs = (*C.RD_LogArg)(C.calloc(C.size_t(len(args)), C.sizeof_RD_LogArg))
		if cargs == nil {
			s.Log(level, hostlog.Render(format, args))
			return
		}
		defer C.free(unsafe.Pointer(cargs))
	}

	var strs []*C.char
	defer func() {
		for _, p := range strs {
			C.free(unsafe.Pointer(p))
		}
	}()

	for i, a := range args {
		ci := C.size_t(i)
		switch a.Kind {
		case hostlog.KindBool:
			C.nemea_arg_bool(cargs, ci, C.bool(a.Bool))
		case hostlog.KindInt64:
			C.nemea_arg_s64(cargs, ci, C.longlong(a.Int64))
		case hostlog.KindUint64:
			C.nemea_arg_u64(cargs, ci, C.ulonglong(a.Uint64))
		case hostlog.KindFloat64:
			C.nemea_arg_f64(cargs, ci, C.double(a.Float64))
		default:
			str := a.Format()
			p := C.CString(str)
			strs = append(strs, p)
			C.nemea_arg_string(cargs, ci, p, C.size_t(len(str)))
		}
	}

	C.nemea_host_log_fmtv(s.api, cLevel(level), cfmt, cargs, C.size_t(len(args)))
}

// logError はロガーを作る前の失敗をホストへ伝えます
func (s *hostSink) logError(msg string) {
	s.Log(hostlog.LevelError, msg)
}

func cLevel(level hostlog.Level) C.RD_LogLevel {
	switch level {
	case hostlog.LevelWarn:
		return C.RD_LOG_LVL_WARN
	case hostlog.LevelError:
		return C.RD_LOG_LVL_ERROR
	default:
		return C.RD_LOG_LVL_INFO
	}
}

// sanitize は C 文字列にできない NUL を可視化します
func sanitize(s string) string {
	return strings.ReplaceAll(s, "\x00", `\0`)
}

// newLogger はホストへ転送する slog.Logger を作成します
func newLogger(sink hostlog.Sink, cfg *config.Config, prefix string) *slog.Logger {
	return slog.New(hostlog.NewHandler(sink, &hostlog.HandlerOptions{
		Level:  cfg.Level(),
		Prefix: prefix,
	}))
}
