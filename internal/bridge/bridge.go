// Package bridge は rdformat.Format を C の関数テーブルから呼び出せる形に変換する汎用ブリッジです。
//
// Bridge[A] は 1 つの具体的な形式ごとに 1 つ作成します。開いたアーカイブは Bridge 内の
// レジストリに登録され、ホストには不透明な Handle だけが渡ります。Handle はプロセス全体で
// 一意なので、別の Bridge が発行した Handle は常に「存在しない」として扱われます。
//
// メモリの所有権は 2 種類です:
//   - 移譲 (Memory.Bytes): OpenStream の結果。以後ホストが所有し、ブリッジは解放しません
//   - 貸与 (Memory.CString): エントリ名・タグ・説明。ブリッジが所有し、ホストは読むだけです。
//     エントリ名は Destroy で解放され、タグと説明はプロセス終了まで残ります
package bridge

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/shiroemons/go-nemea/pkg/rdformat"
)

// Handle は開いたアーカイブを指す不透明な値。0 は NULL を表します
type Handle uintptr

// Memory はホストと共有するメモリの確保と解放のインターフェース
type Memory interface {
	// CString は s の NUL 終端コピーを確保します。解放は Free で行います
	CString(s string) unsafe.Pointer

	// Bytes は b のコピーを確保して返します。所有権は呼び出し先へ移ります。
	// b が空でも nil 以外を返し、確保に失敗した場合のみ nil を返します
	Bytes(b []byte) unsafe.Pointer

	// Free は CString で確保した領域を解放します
	Free(p unsafe.Pointer)
}

// Dispatcher は C の関数テーブルから呼び出される型消去済みの操作群
//
// 引数のポインタの NULL 判定とサイズ変換は呼び出し側 (internal/cabi) が行います。
type Dispatcher interface {
	Init() bool
	Shutdown()

	// 形式テーブル
	Construct() Handle
	CanHandleFile(buf []byte, ext string) bool
	TryOpen(buf []byte, fileName string) Handle
	Tag() unsafe.Pointer
	Description() unsafe.Pointer

	// インスタンステーブル
	EntryCount(h Handle) int
	EntryName(h Handle, idx int) unsafe.Pointer
	EntrySize(h Handle, idx int) uint64
	OpenStream(h Handle, idx int) (unsafe.Pointer, int)
	Destroy(h Handle)
}

// Bridge は形式 A を Dispatcher として公開します
type Bridge[A rdformat.Archive] struct {
	format rdformat.Format[A]
	mem    Memory
	logger *slog.Logger

	mu        sync.Mutex
	instances map[Handle]*instance[A]

	identOnce sync.Once
	tag       unsafe.Pointer
	desc      unsafe.Pointer
}

// instance は登録済みのアーカイブとホストに貸しているエントリ名
type instance[A rdformat.Archive] struct {
	mu      sync.Mutex
	archive A
	names   []unsafe.Pointer
}

var _ Dispatcher = (*Bridge[rdformat.Archive])(nil)

// New は新しい Bridge を作成します。logger が nil ならログを破棄します
func New[A rdformat.Archive](format rdformat.Format[A], mem Memory, logger *slog.Logger) *Bridge[A] {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bridge[A]{
		format:    format,
		mem:       mem,
		logger:    logger.With("format", format.Tag()),
		instances: make(map[Handle]*instance[A]),
	}
}

// Init は形式の初期化を呼び出します
func (b *Bridge[A]) Init() bool {
	return b.format.Init()
}

// Shutdown は形式の終了処理を呼び出します。破棄されていないインスタンスは警告のみ出します
func (b *Bridge[A]) Shutdown() {
	if n := b.OpenCount(); n > 0 {
		b.logger.Warn("shutting down with open archives", "open", n)
	}
	b.format.Shutdown()
}

// OpenCount は破棄されていないインスタンス数を返します
func (b *Bridge[A]) OpenCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.instances)
}

// Construct は形式テーブル用の Handle を返します。状態は持ちません
func (b *Bridge[A]) Construct() Handle {
	return nextHandle()
}

// CanHandleFile は形式の判定をそのまま返します
func (b *Bridge[A]) CanHandleFile(buf []byte, ext string) bool {
	return b.format.CanHandleFile(buf, ext)
}

// TryOpen はアーカイブを開いて登録し、その Handle を返します。失敗したら 0 を返します
func (b *Bridge[A]) TryOpen(buf []byte, fileName string) Handle {
	archive, ok := b.format.TryOpen(buf, fileName)
	if !ok {
		return 0
	}

	h := nextHandle()
	b.mu.Lock()
	b.instances[h] = &instance[A]{archive: archive}
	b.mu.Unlock()
	return h
}

// Tag はタグの C 文字列を返します
func (b *Bridge[A]) Tag() unsafe.Pointer {
	b.initIdentity()
	return b.tag
}

// Description は説明の C 文字列を返します
func (b *Bridge[A]) Description() unsafe.Pointer {
	b.initIdentity()
	return b.desc
}

// initIdentity はタグと説明を一度だけ確保します。プロセス終了まで解放しません
func (b *Bridge[A]) initIdentity() {
	b.identOnce.Do(func() {
		id := rdformat.IdentityOf(b.format)
		b.tag = b.cstring(id.Tag)
		b.desc = b.cstring(id.Description)
	})
}

// EntryCount はエントリ数を返します。不明な Handle なら 0 を返します
func (b *Bridge[A]) EntryCount(h Handle) int {
	inst := b.lookup(h)
	if inst == nil {
		return 0
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.archive.EntryCount()
}

// EntryName はエントリ名の C 文字列を返します。領域は Destroy まで有効です
func (b *Bridge[A]) EntryName(h Handle, idx int) unsafe.Pointer {
	inst := b.lookup(h)
	if inst == nil {
		return nil
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()

	name, ok := inst.archive.EntryName(idx)
	if !ok {
		return nil
	}
	if inst.names == nil {
		inst.names = make([]unsafe.Pointer, inst.archive.EntryCount())
	}
	if idx >= len(inst.names) {
		return nil
	}
	if p := inst.names[idx]; p != nil {
		return p
	}

	p := b.cstring(name)
	inst.names[idx] = p
	return p
}

// EntrySize はエントリのサイズを返します。不明な Handle や範囲外なら 0 を返します
func (b *Bridge[A]) EntrySize(h Handle, idx int) uint64 {
	inst := b.lookup(h)
	if inst == nil {
		return 0
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.archive.EntrySize(idx)
}

// OpenStream はエントリの内容をホスト所有の領域にコピーして返します。
// 失敗したら (nil, 0) を返します。返した領域をブリッジが解放することはありません
func (b *Bridge[A]) OpenStream(h Handle, idx int) (unsafe.Pointer, int) {
	inst := b.lookup(h)
	if inst == nil {
		return nil, 0
	}
	inst.mu.Lock()
	data, err := inst.archive.OpenStream(idx)
	inst.mu.Unlock()
	if err != nil {
		b.logger.Debug("open stream failed", "index", idx, "error", err)
		return nil, 0
	}

	p := b.mem.Bytes(data)
	if p == nil {
		b.logger.Error("failed to allocate stream buffer", "index", idx, "size", len(data))
		return nil, 0
	}
	return p, len(data)
}

// Destroy は登録を解除し、貸していたエントリ名を解放します。0 や不明な Handle は無視します
func (b *Bridge[A]) Destroy(h Handle) {
	if h == 0 {
		return
	}
	b.mu.Lock()
	inst, ok := b.instances[h]
	delete(b.instances, h)
	b.mu.Unlock()
	if !ok {
		b.logger.Debug("destroy of unknown handle ignored", "handle", uint64(h))
		return
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()
	for i, p := range inst.names {
		if p != nil {
			b.mem.Free(p)
			inst.names[i] = nil
		}
	}
	if c, ok := any(inst.archive).(io.Closer); ok {
		if err := c.Close(); err != nil {
			b.logger.Warn("closing archive failed", "error", err)
		}
	}
}

func (b *Bridge[A]) lookup(h Handle) *instance[A] {
	if h == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.instances[h]
}

// handleSeq はプロセス全体で Handle を一意にします。
// 別の Bridge が発行した Handle がこの Bridge のインスタンスに一致することはありません
var handleSeq atomic.Uintptr

func nextHandle() Handle {
	return Handle(handleSeq.Add(1))
}

// cstring は NUL を含む文字列を C 文字列にせず nil を返します
func (b *Bridge[A]) cstring(s string) unsafe.Pointer {
	if strings.IndexByte(s, 0) >= 0 {
		b.logger.Warn("refusing to pass string with embedded NUL", "value", strings.ReplaceAll(s, "\x00", `\0`))
		return nil
	}
	return b.mem.CString(s)
}
