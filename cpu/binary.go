package cpu

import (
	"encoding/binary"
)

// Pack renders words as big-endian byte pairs.
func Pack(words []uint16) (data []byte) {
	data = make([]byte, 0, 2*len(words))
	for _, word := range words {
		data = binary.BigEndian.AppendUint16(data, word)
	}
	return
}

// Unpack decodes big-endian byte pairs. A trailing odd byte is
// treated as the high half of a final word.
func Unpack(data []byte) (words []uint16) {
	words = make([]uint16, 0, (len(data)+1)/2)
	for len(data) >= 2 {
		words = append(words, binary.BigEndian.Uint16(data))
		data = data[2:]
	}
	if len(data) == 1 {
		words = append(words, uint16(data[0])<<8)
	}
	return
}
