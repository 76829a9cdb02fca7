// Package crypto はゲームアーカイブの難読化を解除するための XOR プリミティブを提供します。
//
// 主な機能:
//   - XOR: 単一バイトキーによる XOR
//   - XORPattern: 繰り返しバイトパターンによる XOR
//   - Uint32LE: マスク済みのリトルエンディアン 32bit 値の復号
package crypto

import "encoding/binary"

// XOR はデータストリームの各バイトを指定されたキーで XOR します。
func XOR(data []byte, key byte) {
	for i := range data {
		data[i] ^= key
	}
}

// XORPattern はデータストリームを pattern の繰り返しで XOR します。
// pattern が空の場合は何もしません。
func XORPattern(data []byte, pattern []byte) {
	if len(pattern) == 0 {
		return
	}
	for i := range data {
		data[i] ^= pattern[i%len(pattern)]
	}
}

// Uint32LE は 4 バイトを pattern で XOR したうえでリトルエンディアンの uint32 として読みます。
// 元の slice は変更しません。b は 4 バイト以上必要です。
func Uint32LE(b []byte, pattern [4]byte) uint32 {
	var tmp [4]byte
	copy(tmp[:], b[:4])
	XORPattern(tmp[:], pattern[:])
	return binary.LittleEndian.Uint32(tmp[:])
}

// PutUint32LE は v をリトルエンディアンで b に書き込み、pattern で XOR します。
// Uint32LE の逆変換です。
func PutUint32LE(b []byte, v uint32, pattern [4]byte) {
	binary.LittleEndian.PutUint32(b[:4], v)
	XORPattern(b[:4], pattern[:])
}
