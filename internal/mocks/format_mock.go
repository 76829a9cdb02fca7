package mocks

import (
	"bytes"
	"errors"
)

// ErrMockStream は MockArchive.StreamErr の既定値として使えるエラー
var ErrMockStream = errors.New("mock stream error")

// MockArchive は rdformat.Archive のモック
type MockArchive struct {
	Names     []string
	Data      [][]byte
	StreamErr error
	Closed    int
	CloseErr  error
}

// EntryCount はエントリ数を返します
func (a *MockArchive) EntryCount() int {
	return len(a.Names)
}

// EntryName はエントリ名を返します
func (a *MockArchive) EntryName(idx int) (string, bool) {
	if idx < 0 || idx >= len(a.Names) {
		return "", false
	}
	return a.Names[idx], true
}

// EntrySize はデータのサイズを返します
func (a *MockArchive) EntrySize(idx int) uint64 {
	if idx < 0 || idx >= len(a.Data) {
		return 0
	}
	return uint64(len(a.Data[idx]))
}

// OpenStream はデータのコピーを返します
func (a *MockArchive) OpenStream(idx int) ([]byte, error) {
	if a.StreamErr != nil {
		return nil, a.StreamErr
	}
	if idx < 0 || idx >= len(a.Data) {
		return nil, errors.New("index out of range")
	}
	return bytes.Clone(a.Data[idx]), nil
}

// Close は呼び出し回数を数えます
func (a *MockArchive) Close() error {
	a.Closed++
	return a.CloseErr
}

// MockFormat は rdformat.Format[*MockArchive] のモック
//
// "MOCK" で始まるバッファだけを受け付け、TryOpen のたびに NewArchive の結果を返します。
type MockFormat struct {
	TagValue         string
	DescriptionValue string
	InitResult       bool
	InitCalls        int
	ShutdownCalls    int
	NewArchive       func() *MockArchive
	Opened           []*MockArchive
}

// Init は InitResult を返します
func (f *MockFormat) Init() bool {
	f.InitCalls++
	return f.InitResult
}

// Shutdown は呼び出し回数を数えます
func (f *MockFormat) Shutdown() {
	f.ShutdownCalls++
}

// Tag は TagValue を返します
func (f *MockFormat) Tag() string {
	return f.TagValue
}

// Description は DescriptionValue を返します
func (f *MockFormat) Description() string {
	return f.DescriptionValue
}

// CanHandleFile は "MOCK" で始まるかを返します
func (f *MockFormat) CanHandleFile(buf []byte, ext string) bool {
	return bytes.HasPrefix(buf, []byte("MOCK"))
}

// TryOpen は "MOCK" で始まるバッファなら新しい MockArchive を返します
func (f *MockFormat) TryOpen(buf []byte, fileName string) (*MockArchive, bool) {
	if !f.CanHandleFile(buf, "") || f.NewArchive == nil {
		return nil, false
	}
	a := f.NewArchive()
	f.Opened = append(f.Opened, a)
	return a, true
}
