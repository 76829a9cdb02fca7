package cabi

/*
#include "rd_plugin.h"
*/
import "C"

import (
	"math"
	"unsafe"

	"github.com/shiroemons/go-nemea/internal/bridge"
)

//export RD_PluginInit
func RD_PluginInit(api *C.HostAPI) C.bool {
	if api == nil {
		return false
	}
	return C.bool(start(bindHost(api)))
}

//export RD_PluginShutdown
func RD_PluginShutdown() {
	stop()
}

//export RD_GetArchiveFormat
func RD_GetArchiveFormat(ctx *C.struct_sdk_ctx) *C.ArchiveFormatVTable {
	if current() == nil {
		return nil
	}
	return C.nemea_format_vtable()
}

//export nemeaFormatNew
func nemeaFormatNew() C.uintptr_t {
	d := current()
	if d == nil {
		return 0
	}
	return C.uintptr_t(d.Construct())
}

//export nemeaCanHandleFile
func nemeaCanHandleFile(buf *C.uint8_t, size C.uint64_t, ext *C.char) C.bool {
	d := current()
	b, ok := view(buf, size)
	if d == nil || !ok {
		return false
	}
	return C.bool(d.CanHandleFile(b, C.GoString(ext)))
}

//export nemeaTryOpen
func nemeaTryOpen(buf *C.uint8_t, size C.uint64_t, fileName *C.char) C.uintptr_t {
	d := current()
	b, ok := view(buf, size)
	if d == nil || !ok {
		return 0
	}
	return C.uintptr_t(d.TryOpen(b, C.GoString(fileName)))
}

//export nemeaTag
func nemeaTag() *C.char {
	d := current()
	if d == nil {
		return nil
	}
	return (*C.char)(d.Tag())
}

//export nemeaDescription
func nemeaDescription() *C.char {
	d := current()
	if d == nil {
		return nil
	}
	return (*C.char)(d.Description())
}

//export nemeaEntryCount
func nemeaEntryCount(inst C.uintptr_t) C.size_t {
	d := current()
	if d == nil {
		return 0
	}
	return C.size_t(d.EntryCount(bridge.Handle(inst)))
}

//export nemeaEntryName
func nemeaEntryName(inst C.uintptr_t, idx C.size_t) *C.char {
	d := current()
	i, ok := index(idx)
	if d == nil || !ok {
		return nil
	}
	return (*C.char)(d.EntryName(bridge.Handle(inst), i))
}

//export nemeaEntrySize
func nemeaEntrySize(inst C.uintptr_t, idx C.size_t) C.size_t {
	d := current()
	i, ok := index(idx)
	if d == nil || !ok {
		return 0
	}
	size := d.EntrySize(bridge.Handle(inst), i)
	if uint64(C.size_t(size)) != size {
		return 0
	}
	return C.size_t(size)
}

//export nemeaOpenStream
func nemeaOpenStream(inst C.uintptr_t, idx C.size_t, outSize *C.size_t) *C.uint8_t {
	if outSize != nil {
		*outSize = 0
	}
	d := current()
	i, ok := index(idx)
	if d == nil || !ok {
		return nil
	}
	p, n := d.OpenStream(bridge.Handle(inst), i)
	if p == nil {
		return nil
	}
	if outSize != nil {
		*outSize = C.size_t(n)
	}
	return (*C.uint8_t)(p)
}

//export nemeaDestroy
func nemeaDestroy(inst C.uintptr_t) {
	if d := current(); d != nil {
		d.Destroy(bridge.Handle(inst))
	}
}

// view はホストのバッファをコピーせずにスライスとして参照します
func view(buf *C.uint8_t, size C.uint64_t) ([]byte, bool) {
	if buf == nil || uint64(size) > math.MaxInt {
		return nil, false
	}
	if size == 0 {
		return []byte{}, true
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(buf)), int(size)), true
}

// index は size_t のインデックスを int に変換します
func index(idx C.size_t) (int, bool) {
	if uint64(idx) > math.MaxInt {
		return 0, false
	}
	return int(idx), true
}
