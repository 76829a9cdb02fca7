// Package mocks はテスト用のモック実装を提供します
package mocks

import (
	"sync"
	"unsafe"
)

// MockMemory は Go のヒープで C のメモリ確保を模倣するモック
//
// 確保した領域はすべて記録し、解放・所有権移譲・二重解放を数えます。
type MockMemory struct {
	mu          sync.Mutex
	live        map[unsafe.Pointer][]byte
	transferred map[unsafe.Pointer][]byte
	Frees       int
	BadFrees    int
	FailBytes   bool
}

// NewMockMemory は新しい MockMemory を作成します
func NewMockMemory() *MockMemory {
	return &MockMemory{
		live:        make(map[unsafe.Pointer][]byte),
		transferred: make(map[unsafe.Pointer][]byte),
	}
}

// CString は NUL 終端のコピーを確保します
func (m *MockMemory) CString(s string) unsafe.Pointer {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := append([]byte(s), 0)
	p := unsafe.Pointer(&buf[0])
	m.live[p] = buf
	return p
}

// Bytes はコピーを確保して移譲済みとして記録します
func (m *MockMemory) Bytes(b []byte) unsafe.Pointer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailBytes {
		return nil
	}
	buf := make([]byte, len(b)+1)
	copy(buf, b)
	p := unsafe.Pointer(&buf[0])
	m.transferred[p] = buf[:len(b)]
	return p
}

// Free は CString の領域を解放します
func (m *MockMemory) Free(p unsafe.Pointer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live[p]; !ok {
		m.BadFrees++
		return
	}
	delete(m.live, p)
	m.Frees++
}

// Live は解放されていない CString の数を返します
func (m *MockMemory) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Transferred は Bytes で移譲した領域の数を返します
func (m *MockMemory) Transferred() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.transferred)
}

// GoString は CString で確保した領域を文字列として読み戻します。
// 未確保または解放済みなら false を返します
func (m *MockMemory) GoString(p unsafe.Pointer) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf, ok := m.live[p]
	if !ok {
		return "", false
	}
	return string(buf[:len(buf)-1]), true
}

// GoBytes は Bytes で移譲した領域を読み戻します
func (m *MockMemory) GoBytes(p unsafe.Pointer) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf, ok := m.transferred[p]
	return buf, ok
}
