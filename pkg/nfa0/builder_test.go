package nfa0

import (
	"encoding/binary"
	"testing"

	"golang.org/x/text/transform"

	"github.com/shiroemons/go-nemea/pkg/crypto"
)

// テスト用のヘルパー関数

// fixtureEntry はテスト用コンテナに格納するエントリ
type fixtureEntry struct {
	name string
	data []byte
}

// buildContainer はエントリを宣言順に格納した NFA0 コンテナを生成します。
// データはインデックスの直後に詰めて配置します。
func buildContainer(t *testing.T, entries ...fixtureEntry) []byte {
	t.Helper()

	buf := make([]byte, HeaderSize+len(entries)*RecordSize)
	putHeader(buf, uint32(len(entries)))

	offset := uint32(len(buf))
	for i, e := range entries {
		rec := buf[HeaderSize+i*RecordSize : HeaderSize+(i+1)*RecordSize]
		putRecord(t, rec, e.name, uint32(len(e.data)), offset)

		payload := make([]byte, len(e.data))
		copy(payload, e.data)
		crypto.XOR(payload, Key)
		buf = append(buf, payload...)
		offset += uint32(len(e.data))
	}
	return buf
}

// putHeader は 16 バイトのヘッダを書き込みます
func putHeader(buf []byte, count uint32) {
	copy(buf[0:4], Magic)
	binary.LittleEndian.PutUint32(buf[4:8], Version)
	binary.LittleEndian.PutUint32(buf[8:12], count)
	binary.LittleEndian.PutUint32(buf[12:16], headerConstant)
}

// putRecord は 148 バイトのインデックスレコードを書き込みます
func putRecord(t *testing.T, rec []byte, name string, size, offset uint32) {
	t.Helper()

	copy(rec[0:8], []byte("CHECKSUM"))
	crypto.PutUint32LE(rec[recordSizeOffset:], size, FieldMask)
	crypto.PutUint32LE(rec[recordOffsetOffset:], offset, FieldMask)
	copy(rec[16:20], []byte{0xAA, 0xBB, 0xCC, 0xDD})
	copy(rec[recordNameOffset:], encodeName(t, name))
}

// encodeName は name を難読化済みの 128 バイトの名前フィールドにします
func encodeName(t *testing.T, name string) []byte {
	t.Helper()

	encoded, _, err := transform.Bytes(utf16le.NewEncoder(), []byte(name))
	if err != nil {
		t.Fatalf("UTF-16 エンコードに失敗: %v", err)
	}
	if len(encoded) > nameFieldSize {
		t.Fatalf("名前が長すぎます: %d バイト", len(encoded))
	}

	field := make([]byte, nameFieldSize)
	copy(field, encoded)
	crypto.XOR(field, Key)
	return field
}
