package cabi

/*
#include <stdlib.h>
#include "rd_plugin.h"

static int table_new_ok(void) {
    return nemea_format_vtable()->new(NULL) != NULL;
}

static int32_t table_can_handle_file(const uint8_t *buf, uint64_t size, const char *ext) {
    return nemea_format_vtable()->can_handle_file(NULL, buf, size, ext);
}

static ArchiveBaseHandle *table_try_open(const uint8_t *buf, uint64_t size, const char *file_name) {
    return nemea_format_vtable()->try_open(NULL, buf, size, file_name);
}

static const char *table_tag(void) {
    return nemea_format_vtable()->get_tag(NULL);
}

static const char *table_description(void) {
    return nemea_format_vtable()->get_description(NULL);
}

static ArchiveInstance table_inst(const ArchiveBaseHandle *h, int null_inst) {
    return (null_inst || h == NULL) ? NULL : h->inst;
}

static int table_handle_ok(const ArchiveBaseHandle *h) {
    return h != NULL && h->inst != NULL && h->vtable == nemea_base_vtable();
}

static uintptr_t table_handle_key(const ArchiveBaseHandle *h) {
    return h == NULL ? 0 : (uintptr_t)h->inst;
}

static size_t table_entry_count(const ArchiveBaseHandle *h, int null_inst) {
    return nemea_base_vtable()->get_entry_count(table_inst(h, null_inst));
}

static const char *table_entry_name(const ArchiveBaseHandle *h, int null_inst, size_t idx) {
    return nemea_base_vtable()->get_entry_name(table_inst(h, null_inst), idx);
}

static size_t table_entry_size(const ArchiveBaseHandle *h, int null_inst, size_t idx) {
    return nemea_base_vtable()->get_entry_size(table_inst(h, null_inst), idx);
}

static const uint8_t *table_open_stream(const ArchiveBaseHandle *h, int null_inst, size_t idx, size_t *out_size) {
    return nemea_base_vtable()->open_stream(table_inst(h, null_inst), idx, out_size);
}

static void table_destroy(ArchiveBaseHandle *h) {
    nemea_base_vtable()->destroy(h);
}
*/
import "C"

import "unsafe"

// このファイルは C の関数テーブルをホストと同じ経路で呼び出す Go のラッパーです。
// テストは import "C" を使えないため、ここで C の型を隠します。

// tableHandle は try_open が返した ArchiveBaseHandle
type tableHandle struct {
	p *C.ArchiveBaseHandle
}

// valid はハンドルにインスタンスと基本テーブルが設定されているかを返します
func (h tableHandle) valid() bool {
	return C.table_handle_ok(h.p) != 0
}

// outSizeUnset は open_stream の out_size に事前に入れておく値
const outSizeUnset = 0xDEAD

func cbool(b bool) C.int {
	if b {
		return 1
	}
	return 0
}

// cBytes は buf を C のヒープにコピーします。nil は NULL のまま渡します
func cBytes(buf []byte) (*C.uint8_t, func()) {
	if buf == nil {
		return nil, func() {}
	}
	p := Memory{}.Bytes(buf)
	return (*C.uint8_t)(p), func() { C.free(p) }
}

// cOptString は s を C 文字列にします。nil は NULL のまま渡します
func cOptString(s *string) (*C.char, func()) {
	if s == nil {
		return nil, func() {}
	}
	p := C.CString(*s)
	return p, func() { C.free(unsafe.Pointer(p)) }
}

func goOptString(p *C.char) (string, bool) {
	if p == nil {
		return "", false
	}
	return C.GoString(p), true
}

// tableFormatAvailable は RD_GetArchiveFormat がテーブルを返すかを返します
func tableFormatAvailable() bool {
	return RD_GetArchiveFormat(nil) != nil
}

// tableNew は new が NULL 以外を返すかを返します
func tableNew() bool {
	return C.table_new_ok() != 0
}

func tableCanHandleFile(buf []byte, ext *string) int32 {
	cbuf, freeBuf := cBytes(buf)
	defer freeBuf()
	cext, freeExt := cOptString(ext)
	defer freeExt()
	return int32(C.table_can_handle_file(cbuf, C.uint64_t(len(buf)), cext))
}

// tableCanHandleFileSize は実際のバッファ長と異なるサイズを申告します
func tableCanHandleFileSize(buf []byte, size uint64, ext string) int32 {
	cbuf, freeBuf := cBytes(buf)
	defer freeBuf()
	cext, freeExt := cOptString(&ext)
	defer freeExt()
	return int32(C.table_can_handle_file(cbuf, C.uint64_t(size), cext))
}

func tableTryOpen(buf []byte, fileName *string) tableHandle {
	cbuf, freeBuf := cBytes(buf)
	defer freeBuf()
	cname, freeName := cOptString(fileName)
	defer freeName()
	return tableHandle{p: C.table_try_open(cbuf, C.uint64_t(len(buf)), cname)}
}

func tableTag() (string, bool) {
	return goOptString(C.table_tag())
}

func tableDescription() (string, bool) {
	return goOptString(C.table_description())
}

func tableEntryCount(h tableHandle, nullInst bool) uint64 {
	return uint64(C.table_entry_count(h.p, cbool(nullInst)))
}

func tableEntryName(h tableHandle, nullInst bool, idx uint64) (string, bool) {
	return goOptString(C.table_entry_name(h.p, cbool(nullInst), C.size_t(idx)))
}

func tableEntrySize(h tableHandle, nullInst bool, idx uint64) uint64 {
	return uint64(C.table_entry_size(h.p, cbool(nullInst), C.size_t(idx)))
}

// tableOpenStream は open_stream を呼び、受け取った領域をコピーしてから free します。
// withOut が false なら out_size に NULL を渡します
func tableOpenStream(h tableHandle, nullInst bool, idx uint64, withOut bool) (data []byte, outSize uint64, ok bool) {
	size := C.size_t(outSizeUnset)
	var out *C.size_t
	if withOut {
		out = &size
	}
	p := C.table_open_stream(h.p, cbool(nullInst), C.size_t(idx), out)
	if p == nil {
		return nil, uint64(size), false
	}
	defer C.free(unsafe.Pointer(p))
	if !withOut {
		return nil, uint64(size), true
	}
	return C.GoBytes(unsafe.Pointer(p), C.int(size)), uint64(size), true
}

// exportOpenStreamNoOut は Go 側の open_stream を out_size なしで直接呼びます
func exportOpenStreamNoOut(h tableHandle, idx uint64) bool {
	p := nemeaOpenStream(C.table_handle_key(h.p), C.size_t(idx), nil)
	if p == nil {
		return false
	}
	C.free(unsafe.Pointer(p))
	return true
}

func tableDestroy(h tableHandle) {
	C.table_destroy(h.p)
}

// viewAccepts は view が size バイトのバッファを受け付けるかを返します
func viewAccepts(size uint64) bool {
	var b C.uint8_t
	_, ok := view(&b, C.uint64_t(size))
	return ok
}

// indexAccepts は index が idx を int に変換できるかを返します
func indexAccepts(idx uint64) bool {
	_, ok := index(C.size_t(idx))
	return ok
}
