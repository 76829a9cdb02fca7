// Package hostlog はホストアプリケーションのログコールバックへ転送する slog.Handler を提供します。
//
// ホストのフォーマット関数は "{}" を引数の位置として解釈し、"{{" と "}}" をエスケープとして扱います。
// Handler はメッセージの後ろに属性ごとに " key={}" を付け足し、値を型付き引数として渡します。
package hostlog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Level はホスト側のログレベル
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// String はレベル名を返します
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Sink はホストのログコールバックのインターフェース
//
// 実装は複数のゴルーチンから同時に呼ばれても安全でなければなりません。
type Sink interface {
	// Log はテキストをそのまま出力します
	Log(level Level, msg string)

	// LogFmt は "{}" を含むフォーマット文字列と型付き引数を出力します
	LogFmt(level Level, format string, args []Arg)
}

// HandlerOptions は Handler の設定
type HandlerOptions struct {
	// Level はこれ未満のレコードを捨てるレベル。nil なら slog.LevelInfo
	Level slog.Leveler

	// Prefix はすべてのメッセージの先頭に付ける文字列
	Prefix string
}

// Handler は slog.Record をホストのログ呼び出しに変換します
type Handler struct {
	sink    Sink
	opts    HandlerOptions
	preFmt  string // WithAttrs で追加済みの " key={}" 列
	preArgs []Arg
	group   string // WithGroup による "a.b." 形式の接頭辞
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler は新しい Handler を作成します
func NewHandler(sink Sink, opts *HandlerOptions) *Handler {
	h := &Handler{sink: sink}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

// Enabled は level が出力対象かを返します
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.opts.Level != nil {
		min = h.opts.Level.Level()
	}
	return level >= min
}

// Handle はレコードをホストへ転送します
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	level := hostLevel(r.Level)
	msg := h.opts.Prefix + r.Message

	if h.preFmt == "" && r.NumAttrs() == 0 {
		h.sink.Log(level, msg)
		return nil
	}

	var b strings.Builder
	b.WriteString(escape(msg))
	b.WriteString(h.preFmt)

	args := make([]Arg, 0, len(h.preArgs)+r.NumAttrs())
	args = append(args, h.preArgs...)
	r.Attrs(func(a slog.Attr) bool {
		args = appendAttr(&b, args, h.group, a)
		return true
	})

	if len(args) == 0 {
		h.sink.Log(level, msg)
		return nil
	}
	h.sink.LogFmt(level, b.String(), args)
	return nil
}

// WithAttrs は attrs を常に付加する Handler を返します
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := h.clone()
	var b strings.Builder
	b.WriteString(h2.preFmt)
	for _, a := range attrs {
		h2.preArgs = appendAttr(&b, h2.preArgs, h2.group, a)
	}
	h2.preFmt = b.String()
	return h2
}

// WithGroup は以降の属性キーに name を付ける Handler を返します
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := h.clone()
	h2.group += name + "."
	return h2
}

func (h *Handler) clone() *Handler {
	h2 := *h
	h2.preArgs = append([]Arg(nil), h.preArgs...)
	return &h2
}

// appendAttr は a を " key={}" と引数に展開します。グループは "group.key" に平坦化します
func appendAttr(b *strings.Builder, args []Arg, prefix string, a slog.Attr) []Arg {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return args
	}
	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			args = appendAttr(b, args, inner, ga)
		}
		return args
	}

	b.WriteByte(' ')
	b.WriteString(escape(prefix + a.Key))
	b.WriteString("={}")
	return append(args, argOf(a.Value))
}

// hostLevel は slog のレベルをホストの 3 段階に丸めます
func hostLevel(l slog.Level) Level {
	switch {
	case l >= slog.LevelError:
		return LevelError
	case l >= slog.LevelWarn:
		return LevelWarn
	default:
		return LevelInfo
	}
}

var braceEscaper = strings.NewReplacer("{", "{{", "}", "}}")

func escape(s string) string {
	return braceEscaper.Replace(s)
}
