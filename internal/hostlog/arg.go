package hostlog

import (
	"fmt"
	"log/slog"
)

// ArgKind はホストへ渡す引数の型
type ArgKind int

// 値はホストの RD_LogArgType と一致します
const (
	KindString ArgKind = iota
	KindBool
	KindInt64
	KindUint64
	KindFloat64
)

// Arg はホストのフォーマット関数に渡す型付き引数
type Arg struct {
	Kind    ArgKind
	Str     string
	Bool    bool
	Int64   int64
	Uint64  uint64
	Float64 float64
}

// String は文字列引数を作成します
func String(s string) Arg { return Arg{Kind: KindString, Str: s} }

// Bool は真偽値引数を作成します
func Bool(b bool) Arg { return Arg{Kind: KindBool, Bool: b} }

// Int64 は符号付き整数引数を作成します
func Int64(i int64) Arg { return Arg{Kind: KindInt64, Int64: i} }

// Uint64 は符号なし整数引数を作成します
func Uint64(u uint64) Arg { return Arg{Kind: KindUint64, Uint64: u} }

// Float64 は浮動小数点数引数を作成します
func Float64(f float64) Arg { return Arg{Kind: KindFloat64, Float64: f} }

// Format はホストと同じ規則で引数を文字列にします
func (a Arg) Format() string {
	switch a.Kind {
	case KindString:
		return a.Str
	case KindBool:
		if a.Bool {
			return "true"
		}
		return "false"
	case KindInt64:
		return fmt.Sprint(a.Int64)
	case KindUint64:
		return fmt.Sprint(a.Uint64)
	case KindFloat64:
		return fmt.Sprintf("%f", a.Float64)
	default:
		return "<invalid arg>"
	}
}

// argOf は slog.Value を引数に変換します。対応する型がなければ文字列にします
func argOf(v slog.Value) Arg {
	switch v.Kind() {
	case slog.KindString:
		return String(v.String())
	case slog.KindBool:
		return Bool(v.Bool())
	case slog.KindInt64:
		return Int64(v.Int64())
	case slog.KindUint64:
		return Uint64(v.Uint64())
	case slog.KindFloat64:
		return Float64(v.Float64())
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return String(err.Error())
		}
		return String(fmt.Sprint(v.Any()))
	default:
		// Duration, Time など
		return String(v.String())
	}
}
