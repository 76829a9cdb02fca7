package cabi

/*
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	"github.com/shiroemons/go-nemea/internal/bridge"
)

// Memory は C のヒープを使う bridge.Memory。ホストは返された領域を free で解放できます
type Memory struct{}

var _ bridge.Memory = Memory{}

// CString は C.CString で NUL 終端のコピーを確保します
func (Memory) CString(s string) unsafe.Pointer {
	return unsafe.Pointer(C.CString(s))
}

// Bytes は malloc で確保した領域に b をコピーします。空でも 1 バイト確保します
func (Memory) Bytes(b []byte) unsafe.Pointer {
	n := max(len(b), 1)
	p := C.malloc(C.size_t(n))
	if p == nil {
		return nil
	}
	copy(unsafe.Slice((*byte)(p), n), b)
	return p
}

// Free は C.free で解放します
func (Memory) Free(p unsafe.Pointer) {
	C.free(p)
}
