package hwp

import (
	"crypto/aes"
	"encoding/binary"
	"fmt"
)

const (
	distributePreambleSize = 256
	distributeKeySize      = 16
	distributeHashSize     = 80
)

// msvcRand reproduces the linear congruential rand() of the Microsoft C
// runtime, which distributed documents use to scramble their preamble.
type msvcRand struct {
	state uint32
}

func newMSVCRand(seed uint32) *msvcRand { return &msvcRand{state: seed} }

func (r *msvcRand) next() uint32 {
	r.state = r.state*214013 + 2531011
	return (r.state >> 16) & 0x7FFF
}

// distributeMask expands seed into the 256-byte XOR mask: runs of a fill byte
// repeated 1..16 times, the last run cut short at 256 bytes.
func distributeMask(seed uint32) [distributePreambleSize]byte {
	var mask [distributePreambleSize]byte
	rnd := newMSVCRand(seed)
	for i := 0; i < len(mask); {
		fill := byte(rnd.next() & 0xFF)
		n := int(rnd.next()&0x0F) + 1
		for ; n > 0 && i < len(mask); n-- {
			mask[i] = fill
			i++
		}
	}
	return mask
}

// xorPreamble applies the seed's mask to a 256-byte preamble. It is its own
// inverse.
func xorPreamble(data [distributePreambleSize]byte, seed uint32) [distributePreambleSize]byte {
	mask := distributeMask(seed)
	var out [distributePreambleSize]byte
	for i := range data {
		out[i] = data[i] ^ mask[i]
	}
	return out
}

// distributeKey recovers the AES-128 key from the payload of a
// DISTRIBUTE_DOC_DATA record. The seed is the first four payload bytes; the key
// is the first 16 bytes of the 80-byte hash region at (seed & 0xF) + 4 in the
// unmasked preamble.
func distributeKey(payload []byte) ([]byte, error) {
	if len(payload) != distributePreambleSize {
		return nil, fmt.Errorf("%w: distribute data is %d bytes, want %d", ErrFormat, len(payload), distributePreambleSize)
	}
	var data [distributePreambleSize]byte
	copy(data[:], payload)
	seed := binary.LittleEndian.Uint32(data[:4])
	plain := xorPreamble(data, seed)
	off := int(seed&0x0F) + 4
	if off+distributeHashSize > len(plain) {
		return nil, fmt.Errorf("%w: key offset %d out of range", ErrCrypto, off)
	}
	hash := plain[off : off+distributeHashSize]
	return append([]byte(nil), hash[:distributeKeySize]...), nil
}

// decryptECB decrypts ciphertext block by block with AES in ECB mode. No
// padding is removed.
func decryptECB(key, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	bs := block.BlockSize()
	if len(ciphertext)%bs != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d is not a multiple of %d", ErrCrypto, len(ciphertext), bs)
	}
	out := make([]byte, len(ciphertext))
	for i := 0; i < len(ciphertext); i += bs {
		block.Decrypt(out[i:i+bs], ciphertext[i:i+bs])
	}
	return out, nil
}

// encryptECB is the inverse of decryptECB.
func encryptECB(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	bs := block.BlockSize()
	if len(plaintext)%bs != 0 {
		return nil, fmt.Errorf("%w: plaintext length %d is not a multiple of %d", ErrCrypto, len(plaintext), bs)
	}
	out := make([]byte, len(plaintext))
	for i := 0; i < len(plaintext); i += bs {
		block.Encrypt(out[i:i+bs], plaintext[i:i+bs])
	}
	return out, nil
}

// decryptDistributed strips the DISTRIBUTE_DOC_DATA record from a ViewText
// section stream and returns the decrypted remainder, which is then handled
// like a BodyText section stream.
func decryptDistributed(raw []byte) ([]byte, error) {
	rec, n, err := decodeRecordAt(raw, 0)
	if err != nil {
		return nil, err
	}
	if rec.Tag != TagDistributeDocData {
		return nil, tagErr(rec.Tag, fmt.Errorf("%w: expected %s", ErrFormat, TagDistributeDocData))
	}
	if rec.Size != distributePreambleSize {
		return nil, tagErr(rec.Tag, fmt.Errorf("%w: distribute data is %d bytes, want %d", ErrFormat, rec.Size, distributePreambleSize))
	}
	key, err := distributeKey(rec.Data)
	if err != nil {
		return nil, tagErr(rec.Tag, err)
	}
	return decryptECB(key, raw[n:])
}
