package nfa0

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMagic は先頭 4 バイトが "NFA0" でない場合のエラー
	ErrInvalidMagic = errors.New("invalid magic")

	// ErrUnsupportedVersion はバージョンフィールドが 1 でない場合のエラー
	ErrUnsupportedVersion = errors.New("unsupported version")

	// ErrUnexpectedHeader はヘッダの 2 つ目の定数フィールドが 1 でない場合のエラー
	ErrUnexpectedHeader = errors.New("unexpected header constant")

	// ErrTruncated はヘッダまたはインデックスがバッファに収まらない場合のエラー
	ErrTruncated = errors.New("truncated container")

	// ErrTooManyEntries はエントリ数が上限を超えている場合のエラー
	ErrTooManyEntries = errors.New("too many entries")

	// ErrEntryOutOfRange はエントリのインデックスが範囲外の場合のエラー
	ErrEntryOutOfRange = errors.New("entry index out of range")

	// ErrShortRead はエントリのデータがコンテナ末尾を越えている場合のエラー
	ErrShortRead = errors.New("short read")
)

// FormatError は NFA0 コンテナ操作のエラー
type FormatError struct {
	Op   string // 実行していた操作
	Name string // ファイル名またはエントリ名
	Err  error  // 元のエラー
}

// Error はエラーメッセージを返します
func (e *FormatError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("nfa0: %s %s: %v", e.Op, e.Name, e.Err)
	}
	return fmt.Sprintf("nfa0: %s: %v", e.Op, e.Err)
}

// Unwrap は元のエラーを返します
func (e *FormatError) Unwrap() error {
	return e.Err
}

func newFormatError(op, name string, err error) *FormatError {
	return &FormatError{
		Op:   op,
		Name: name,
		Err:  err,
	}
}
