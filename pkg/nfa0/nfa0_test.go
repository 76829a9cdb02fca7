package nfa0

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Scenario(t *testing.T) {
	plain := []byte{0xDE, 0xAD, 0xBE, 0xEF}

	// ヘッダ + レコード 1 件 + データ 4 バイトを手で組み立てる
	data := make([]byte, HeaderSize+RecordSize)
	copy(data, "NFA0")
	binary.LittleEndian.PutUint32(data[4:], 1)
	binary.LittleEndian.PutUint32(data[8:], 1)
	binary.LittleEndian.PutUint32(data[12:], 1)
	rec := data[HeaderSize:]
	binary.LittleEndian.PutUint32(rec[8:], 4^0x08080808)
	binary.LittleEndian.PutUint32(rec[12:], uint32(HeaderSize+RecordSize)^0x08080808)
	name := []byte{'a', 0, '.', 0, 't', 0, 'x', 0, 't', 0}
	for i := 0; i < nameFieldSize; i++ {
		var b byte
		if i < len(name) {
			b = name[i]
		}
		rec[20+i] = b ^ 0x08
	}
	for _, b := range plain {
		data = append(data, b^0x08)
	}

	archive, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, 1, archive.EntryCount())

	got, ok := archive.EntryName(0)
	require.True(t, ok)
	assert.Equal(t, "a.txt", got)
	assert.Equal(t, uint64(4), archive.EntrySize(0))

	content, err := archive.OpenStream(0)
	require.NoError(t, err)
	assert.Equal(t, plain, content)
}

func TestParse_RoundTrip(t *testing.T) {
	entries := []fixtureEntry{
		{name: "script/main.txt", data: []byte("hello, gensokyo")},
		{name: "画像/背景.png", data: bytes.Repeat([]byte{0x00, 0x08, 0xFF}, 100)},
		{name: "empty.dat", data: []byte{}},
		{name: "script/main.txt", data: []byte("duplicate")},
	}
	archive, err := Parse(buildContainer(t, entries...))
	require.NoError(t, err)
	require.Equal(t, len(entries), archive.EntryCount())

	for i, want := range entries {
		name, ok := archive.EntryName(i)
		require.True(t, ok)
		assert.Equal(t, want.name, name, "entry %d", i)
		assert.Equal(t, uint64(len(want.data)), archive.EntrySize(i), "entry %d", i)

		content, err := archive.OpenStream(i)
		require.NoError(t, err)
		assert.Equal(t, want.data, content, "entry %d", i)
	}

	// 重複した名前も宣言順のまま保持される
	all := archive.Entries()
	assert.Equal(t, all[0].Name, all[3].Name)
	assert.NotEqual(t, all[0].Offset, all[3].Offset)
}

func TestParse_Rejects(t *testing.T) {
	valid := buildContainer(t, fixtureEntry{name: "a.txt", data: []byte("abcd")})

	mutate := func(f func(b []byte) []byte) []byte {
		b := bytes.Clone(valid)
		return f(b)
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"空バッファ", nil, ErrTruncated},
		{"ヘッダ未満", valid[:HeaderSize-1], ErrTruncated},
		{"マジック不一致", mutate(func(b []byte) []byte { copy(b, "NFA1"); return b }), ErrInvalidMagic},
		{"バージョン不一致", mutate(func(b []byte) []byte { binary.LittleEndian.PutUint32(b[4:], 2); return b }), ErrUnsupportedVersion},
		{"定数不一致", mutate(func(b []byte) []byte { binary.LittleEndian.PutUint32(b[12:], 0); return b }), ErrUnexpectedHeader},
		{"インデックス途中で切れている", valid[:HeaderSize+RecordSize-1], ErrTruncated},
		{"エントリ数が巨大", mutate(func(b []byte) []byte { binary.LittleEndian.PutUint32(b[8:], 0xFFFFFFFF); return b }), ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archive, err := Parse(tt.data)
			require.Error(t, err)
			assert.Nil(t, archive)
			assert.ErrorIs(t, err, tt.want)

			var fe *FormatError
			assert.True(t, errors.As(err, &fe))
		})
	}
}

func TestParseWithLimit(t *testing.T) {
	data := buildContainer(t,
		fixtureEntry{name: "a", data: []byte("1")},
		fixtureEntry{name: "b", data: []byte("2")},
	)

	_, err := ParseWithLimit(data, 1)
	assert.ErrorIs(t, err, ErrTooManyEntries)

	archive, err := ParseWithLimit(data, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, archive.EntryCount())
}

func TestParse_EmptyArchive(t *testing.T) {
	archive, err := Parse(buildContainer(t))
	require.NoError(t, err)
	assert.Equal(t, 0, archive.EntryCount())
	assert.Empty(t, archive.Entries())
}

func TestArchive_OutOfRange(t *testing.T) {
	archive, err := Parse(buildContainer(t, fixtureEntry{name: "a.txt", data: []byte("abcd")}))
	require.NoError(t, err)

	for _, idx := range []int{-1, 1, 100} {
		name, ok := archive.EntryName(idx)
		assert.False(t, ok)
		assert.Empty(t, name)
		assert.Zero(t, archive.EntrySize(idx))

		content, err := archive.OpenStream(idx)
		assert.Nil(t, content)
		assert.ErrorIs(t, err, ErrEntryOutOfRange)
	}
}

func TestArchive_OpenStreamIdempotent(t *testing.T) {
	archive, err := Parse(buildContainer(t, fixtureEntry{name: "a.txt", data: []byte("same bytes")}))
	require.NoError(t, err)

	first, err := archive.OpenStream(0)
	require.NoError(t, err)
	second, err := archive.OpenStream(0)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// 返されたバッファを書き換えても次の読み出しには影響しない
	first[0] ^= 0xFF
	third, err := archive.OpenStream(0)
	require.NoError(t, err)
	assert.Equal(t, second, third)

	e, ok := archive.Entry(0)
	require.True(t, ok)
	assert.Equal(t, uint32(len("same bytes")), e.Size)
}

func TestArchive_OpenStreamShortRead(t *testing.T) {
	data := buildContainer(t,
		fixtureEntry{name: "ok.txt", data: []byte("fine")},
		fixtureEntry{name: "broken.txt", data: []byte("cut")},
	)
	// 2 件目のデータを途中で切り落とす
	data = data[:len(data)-1]

	archive, err := Parse(data)
	require.NoError(t, err)

	content, err := archive.OpenStream(1)
	assert.Nil(t, content)
	assert.ErrorIs(t, err, ErrShortRead)

	// 失敗しても他のエントリは読める
	content, err = archive.OpenStream(0)
	require.NoError(t, err)
	assert.Equal(t, []byte("fine"), content)
}

func TestArchive_OffsetBeyondContainer(t *testing.T) {
	data := buildContainer(t, fixtureEntry{name: "a.txt", data: []byte("abcd")})
	rec := data[HeaderSize : HeaderSize+RecordSize]
	putRecord(t, rec, "a.txt", 4, 0xFFFFFFF0)

	archive, err := Parse(data)
	require.NoError(t, err)

	_, err = archive.OpenStream(0)
	assert.ErrorIs(t, err, ErrShortRead)
}

func TestArchive_WriteEntry(t *testing.T) {
	archive, err := Parse(buildContainer(t, fixtureEntry{name: "a.txt", data: []byte("written")}))
	require.NoError(t, err)

	var sb strings.Builder
	n, err := archive.WriteEntry(0, &sb)
	require.NoError(t, err)
	assert.Equal(t, int64(len("written")), n)
	assert.Equal(t, "written", sb.String())

	_, err = archive.WriteEntry(5, &sb)
	assert.ErrorIs(t, err, ErrEntryOutOfRange)
}

func TestFormatError_Error(t *testing.T) {
	err := newFormatError("open stream", "a.txt", ErrShortRead)
	assert.Equal(t, "nfa0: open stream a.txt: short read", err.Error())

	err = newFormatError("parse header", "", ErrInvalidMagic)
	assert.Equal(t, "nfa0: parse header: invalid magic", err.Error())
	assert.ErrorIs(t, err, ErrInvalidMagic)
}
