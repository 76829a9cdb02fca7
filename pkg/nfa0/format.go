package nfa0

import (
	"bytes"
	"io"
	"log/slog"
	"strings"

	"github.com/shiroemons/go-nemea/pkg/rdformat"
)

const (
	tag         = "NFA0"
	description = "NFA0 format as seen in 不思議の幻想郷CHRONICLE -クロニクル-"
)

// DefaultExtensions は CanHandleFile が受け付ける既定の拡張子
var DefaultExtensions = []string{"bin"}

// Options は Format の設定
type Options struct {
	// Extensions は受け付ける拡張子（先頭の "." は無視、大文字小文字を区別しない）。
	// 空なら DefaultExtensions を使います。
	Extensions []string

	// MaxEntries はエントリ数の上限。0 なら上限なし
	MaxEntries uint32

	// Logger は診断ログの出力先。nil なら破棄します
	Logger *slog.Logger
}

// Format は NFA0 形式を rdformat.Format として提供します
type Format struct {
	extensions []string
	maxEntries uint32
	logger     *slog.Logger
}

var _ rdformat.Format[*Archive] = (*Format)(nil)

// NewFormat は新しい Format を作成します
func NewFormat(opts Options) *Format {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	normalized := make([]string, 0, len(exts))
	for _, ext := range exts {
		normalized = append(normalized, normalizeExt(ext))
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Format{
		extensions: normalized,
		maxEntries: opts.MaxEntries,
		logger:     logger,
	}
}

// Init はプラグインの初期化を記録します
func (f *Format) Init() bool {
	f.logger.Info("Nemea NFA0 plugin initialized")
	return true
}

// Shutdown は何もしません
func (f *Format) Shutdown() {
	f.logger.Debug("Nemea NFA0 plugin shutting down")
}

// Tag は "NFA0" を返します
func (f *Format) Tag() string {
	return tag
}

// Description は形式の説明を返します
func (f *Format) Description() string {
	return description
}

// CanHandleFile は拡張子とマジックナンバーを確認します
func (f *Format) CanHandleFile(buf []byte, ext string) bool {
	if !f.acceptsExt(ext) {
		return false
	}
	return len(buf) >= HeaderSize && string(buf[0:4]) == Magic
}

// TryOpen は buf のコピーを NFA0 コンテナとして解析します
func (f *Format) TryOpen(buf []byte, fileName string) (*Archive, bool) {
	archive, err := ParseWithLimit(bytes.Clone(buf), f.maxEntries)
	if err != nil {
		f.logger.Debug("not an NFA0 container", "file", fileName, "reason", err.Error())
		return nil, false
	}
	f.logger.Debug("opened NFA0 container", "file", fileName, "entries", archive.EntryCount())
	return archive, true
}

func (f *Format) acceptsExt(ext string) bool {
	ext = normalizeExt(ext)
	for _, want := range f.extensions {
		if ext == want {
			return true
		}
	}
	return false
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
