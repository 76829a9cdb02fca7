package nfa0

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/shiroemons/go-nemea/pkg/crypto"
)

// utf16le は BOM を特別扱いしない UTF-16LE エンコーディング。
// 不正なサロゲートは U+FFFD に置き換えられます。
var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// decodeName は 128 バイトの名前フィールドを復号します。
// 不正な UTF-16 は U+FFFD に置き換えるため失敗しません。field は変更しません。
func decodeName(field []byte) string {
	buf := make([]byte, len(field))
	copy(buf, field)
	crypto.XOR(buf, Key)

	end := nameLength(buf)
	// atEOF で呼ぶため置換は末尾の半端なバイトにも及び、エラーは返りません
	decoded, _, _ := transform.Bytes(utf16le.NewDecoder(), buf[:end])
	return strings.ReplaceAll(string(decoded), `\`, "/")
}

// nameLength は最初の 16bit NUL の位置（バイト単位）を返します。
// 終端がなければフィールド全体（偶数バイトに切り詰め）を返します。
func nameLength(buf []byte) int {
	n := len(buf) &^ 1
	for i := 0; i < n; i += 2 {
		if buf[i] == 0 && buf[i+1] == 0 {
			return i
		}
	}
	return n
}
