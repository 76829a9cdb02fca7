// Package rdformat はホストのアーカイブ展開アプリケーションへ提供するアーカイブ形式の
// 能力（capability）を定義します。
//
// 具体的な形式は Format と Archive を実装し、internal/bridge がそれを C から呼び出せる
// 関数テーブルへ変換します。
//
// 基本的な使い方:
//
//	var f rdformat.Format[*nfa0.Archive] = nfa0.NewFormat(nfa0.Options{})
//	if f.CanHandleFile(buf, "bin") {
//	    if archive, ok := f.TryOpen(buf, "data.bin"); ok {
//	        for i := 0; i < archive.EntryCount(); i++ {
//	            name, _ := archive.EntryName(i)
//	            data, err := archive.OpenStream(i)
//	            // エントリを処理...
//	        }
//	    }
//	}
package rdformat

// Archive は開かれたアーカイブの基本インターフェース
//
// インデックスは 0 から EntryCount()-1 までで、範囲外のインデックスは未定義動作ではなく
// 空の結果になります。1 つのインスタンスを複数のゴルーチンから同時に呼び出してはいけません。
type Archive interface {
	// EntryCount はエントリ数を返します
	EntryCount() int

	// EntryName はエントリ名を返します。範囲外なら false を返します
	EntryName(idx int) (string, bool)

	// EntrySize はエントリのバイト数を返します。範囲外なら 0 を返します
	EntrySize(idx int) uint64

	// OpenStream はエントリの内容を新しく確保したバッファに読み出します。
	// 返されたバッファはアーカイブ内部のバッファと領域を共有しません。
	OpenStream(idx int) ([]byte, error)
}

// Format はアーカイブ形式そのもの（インスタンスではない）のインターフェース
//
// 型パラメータ A は TryOpen が生成する具体的なアーカイブ型です。
type Format[A Archive] interface {
	// Init はプラグインのロード時に一度だけ呼ばれます。false を返すとロードを拒否します
	Init() bool

	// Shutdown はアンロード時に一度だけ呼ばれます。失敗してはいけません
	Shutdown()

	// Tag は短い形式コードを返します
	Tag() string

	// Description は人が読むための形式の説明を返します
	Description() string

	// CanHandleFile はバッファと拡張子からこの形式らしいかを高速に判定します。
	// buf を変更・保持してはいけません。判定は参考値で、最終判断は TryOpen です。
	CanHandleFile(buf []byte, ext string) bool

	// TryOpen はヘッダとインデックスを解析してアーカイブを開きます。
	// 構造が一致しない場合は false を返し、パニックしてはいけません。
	TryOpen(buf []byte, fileName string) (A, bool)
}

// Identity は形式の識別情報です
type Identity struct {
	Tag         string
	Description string
}

// IdentityOf は f の識別情報を返します
func IdentityOf[A Archive](f Format[A]) Identity {
	return Identity{
		Tag:         f.Tag(),
		Description: f.Description(),
	}
}
