// Package nfa0 は Nemea の NFA0 コンテナ（不思議の幻想郷CHRONICLE -クロニクル- の .bin ファイル）を
// 読み込むためのパッケージです。
//
// コンテナの構造 (すべてリトルエンディアン):
//
//	0x00  magic     "NFA0"
//	0x04  version   uint32 (= 1)
//	0x08  count     uint32
//	0x0C  constant  uint32 (= 1)
//	0x10  count 個のインデックスレコード (148 バイト):
//	      checksum  [8]byte   (未使用)
//	      size      uint32 ^ 0x08080808
//	      offset    uint32 ^ 0x08080808
//	      reserved  [4]byte
//	      name      [128]byte 各バイト ^ 0x08 した UTF-16LE (NUL 終端)
//
// エントリのデータは offset から size バイトで、各バイトが 0x08 で XOR されています。
//
// 基本的な使い方:
//
//	archive, err := nfa0.Parse(data)
//	if err != nil {
//	    return err
//	}
//	for _, e := range archive.Entries() {
//	    // エントリを処理...
//	}
package nfa0

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/shiroemons/go-nemea/pkg/crypto"
)

// NFA0 形式のマジックナンバーと定数
const (
	// Magic はコンテナの識別子
	Magic = "NFA0"

	// Version はサポートするバージョン
	Version = 1

	// headerConstant はヘッダ末尾の用途不明な定数
	headerConstant = 1

	// HeaderSize はヘッダのバイト数
	HeaderSize = 16

	// RecordSize はインデックスレコード 1 件のバイト数
	RecordSize = 148

	// Key は名前とデータの XOR キー
	Key byte = 0x08

	nameFieldSize = 128

	recordSizeOffset   = 8
	recordOffsetOffset = 12
	recordNameOffset   = 20
)

// FieldMask は size と offset フィールドの XOR パターン
var FieldMask = [4]byte{Key, Key, Key, Key}

// Entry は NFA0 コンテナ内のエントリを表します
type Entry struct {
	Name   string // "/" 区切りのパス
	Offset uint32 // データのオフセット
	Size   uint32 // データのサイズ
}

// Archive は解析済みの NFA0 コンテナを表します
type Archive struct {
	data    *bytes.Reader
	entries []Entry
}

// Parse は data を NFA0 コンテナとして解析します。
// Archive は data をそのまま保持するため、呼び出し側は以後 data を変更してはいけません。
func Parse(data []byte) (*Archive, error) {
	return ParseWithLimit(data, 0)
}

// ParseWithLimit は Parse と同じですが、エントリ数が maxEntries を超える場合は
// ErrTooManyEntries を返します。maxEntries が 0 なら上限はありません。
func ParseWithLimit(data []byte, maxEntries uint32) (*Archive, error) {
	count, err := readHeader(data)
	if err != nil {
		return nil, newFormatError("parse header", "", err)
	}
	if maxEntries > 0 && count > maxEntries {
		return nil, newFormatError("parse header", "", fmt.Errorf("%w: %d > %d", ErrTooManyEntries, count, maxEntries))
	}

	// インデックス全体がバッファに収まることを確認してから確保する
	indexEnd := uint64(HeaderSize) + uint64(count)*RecordSize
	if indexEnd > uint64(len(data)) {
		return nil, newFormatError("parse index", "", fmt.Errorf("%w: index needs %d bytes, have %d", ErrTruncated, indexEnd, len(data)))
	}

	entries := make([]Entry, 0, count)
	for i := uint32(0); i < count; i++ {
		start := HeaderSize + int(i)*RecordSize
		entries = append(entries, readRecord(data[start:start+RecordSize]))
	}

	return &Archive{
		data:    bytes.NewReader(data),
		entries: entries,
	}, nil
}

// readHeader はヘッダを検証してエントリ数を返します
func readHeader(data []byte) (uint32, error) {
	if len(data) < HeaderSize {
		return 0, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, HeaderSize, len(data))
	}
	if string(data[0:4]) != Magic {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMagic, data[0:4])
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != Version {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	count := binary.LittleEndian.Uint32(data[8:12])
	if c := binary.LittleEndian.Uint32(data[12:16]); c != headerConstant {
		return 0, fmt.Errorf("%w: %d", ErrUnexpectedHeader, c)
	}
	return count, nil
}

// readRecord は 148 バイトのインデックスレコードを復号します
func readRecord(rec []byte) Entry {
	return Entry{
		Name:   decodeName(rec[recordNameOffset : recordNameOffset+nameFieldSize]),
		Size:   crypto.Uint32LE(rec[recordSizeOffset:], FieldMask),
		Offset: crypto.Uint32LE(rec[recordOffsetOffset:], FieldMask),
	}
}

// EntryCount はエントリ数を返します
func (a *Archive) EntryCount() int {
	return len(a.entries)
}

// Entry は idx 番目のエントリを返します
func (a *Archive) Entry(idx int) (Entry, bool) {
	if idx < 0 || idx >= len(a.entries) {
		return Entry{}, false
	}
	return a.entries[idx], true
}

// Entries は全エントリのコピーを宣言順で返します
func (a *Archive) Entries() []Entry {
	out := make([]Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// EntryName はエントリ名を返します
func (a *Archive) EntryName(idx int) (string, bool) {
	e, ok := a.Entry(idx)
	if !ok {
		return "", false
	}
	return e.Name, true
}

// EntrySize はエントリのサイズを返します。範囲外なら 0 を返します
func (a *Archive) EntrySize(idx int) uint64 {
	e, ok := a.Entry(idx)
	if !ok {
		return 0
	}
	return uint64(e.Size)
}

// OpenStream は idx 番目のエントリを読み出して復号します。
// 失敗してもアーカイブや他のエントリには影響しません。
func (a *Archive) OpenStream(idx int) ([]byte, error) {
	e, ok := a.Entry(idx)
	if !ok {
		return nil, newFormatError("open stream", fmt.Sprintf("#%d", idx), ErrEntryOutOfRange)
	}

	end := uint64(e.Offset) + uint64(e.Size)
	if end > uint64(a.data.Size()) {
		return nil, newFormatError("open stream", e.Name, fmt.Errorf("%w: entry ends at %d, container is %d bytes", ErrShortRead, end, a.data.Size()))
	}

	content := make([]byte, e.Size)
	if len(content) > 0 {
		if _, err := a.data.ReadAt(content, int64(e.Offset)); err != nil {
			return nil, newFormatError("open stream", e.Name, fmt.Errorf("%w: %w", ErrShortRead, err))
		}
	}
	crypto.XOR(content, Key)

	return content, nil
}

// WriteEntry は idx 番目のエントリを復号して w に書き込みます
func (a *Archive) WriteEntry(idx int, w io.Writer) (int64, error) {
	content, err := a.OpenStream(idx)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(content)
	return int64(n), err
}
