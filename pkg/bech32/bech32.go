// Package bech32 implements the checksum and character mapping used to encode
// native segregated witness addresses.
package bech32

import (
	"errors"
	"strings"
)

const (
	// Charset maps a 5-bit value to its bech32 symbol.
	Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"
	// Separator divides the human-readable part from the data part.
	Separator = '1'
	// ChecksumLength is the number of 5-bit groups of a checksum.
	ChecksumLength = 6
)

var generator = [5]uint32{
	0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3,
}

var (
	// ErrInvalidDataValue ...
	ErrInvalidDataValue = errors.New("data value exceeds the size of the source group")
	// ErrInvalidBitGroups ...
	ErrInvalidBitGroups = errors.New("bit group sizes must be in range [1, 8]")
	// ErrInvalidPadding ...
	ErrInvalidPadding = errors.New("non zero or excess padding bits")
)

// Expand returns the values of the human-readable part used for checksum
// computation: the high 3 bits of every char, a zero, then the low 5 bits.
func Expand(hrp string) []byte {
	values := make([]byte, 0, len(hrp)*2+1)
	for i := 0; i < len(hrp); i++ {
		values = append(values, hrp[i]>>5)
	}
	values = append(values, 0)
	for i := 0; i < len(hrp); i++ {
		values = append(values, hrp[i]&31)
	}
	return values
}

// Polymod computes the BCH checksum remainder of the given 5-bit values.
func Polymod(values []byte) uint32 {
	chk := uint32(1)
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (top>>uint(i))&1 == 1 {
				chk ^= generator[i]
			}
		}
	}
	return chk
}

// CreateChecksum returns the six 5-bit checksum groups, most significant
// first, for the given hrp and data.
func CreateChecksum(hrp string, data []byte) []byte {
	values := Expand(hrp)
	values = append(values, data...)
	values = append(values, make([]byte, ChecksumLength)...)
	mod := Polymod(values) ^ 1

	checksum := make([]byte, ChecksumLength)
	for i := 0; i < ChecksumLength; i++ {
		checksum[i] = byte(mod>>uint(5*(5-i))) & 31
	}
	return checksum
}

// Encode appends the checksum to data and maps every value to Charset,
// returning hrp + separator + symbols. Every data value must be < 32.
func Encode(hrp string, data []byte) (string, error) {
	var sb strings.Builder
	sb.Grow(len(hrp) + 1 + len(data) + ChecksumLength)
	sb.WriteString(hrp)
	sb.WriteByte(Separator)

	for _, v := range data {
		if v >= 32 {
			return "", ErrInvalidDataValue
		}
		sb.WriteByte(Charset[v])
	}
	for _, v := range CreateChecksum(hrp, data) {
		sb.WriteByte(Charset[v])
	}
	return sb.String(), nil
}

// ConvertBits regroups a bit stream from fromBits-wide groups into
// toBits-wide groups, most significant bit first. If pad is true an
// incomplete trailing group is zero padded, otherwise leftover bits must be
// zero and shorter than fromBits.
func ConvertBits(data []byte, fromBits, toBits uint8, pad bool) ([]byte, error) {
	if fromBits < 1 || fromBits > 8 || toBits < 1 || toBits > 8 {
		return nil, ErrInvalidBitGroups
	}

	maxv := uint32(1)<<toBits - 1
	out := make([]byte, 0, len(data)*int(fromBits)/int(toBits)+1)

	var acc uint32
	var bits uint8
	for _, v := range data {
		if uint32(v)>>fromBits != 0 {
			return nil, ErrInvalidDataValue
		}
		acc = acc<<fromBits | uint32(v)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte(acc>>bits&maxv))
		}
	}

	if pad {
		if bits > 0 {
			out = append(out, byte(acc<<(toBits-bits)&maxv))
		}
		return out, nil
	}
	if bits >= fromBits || acc<<(toBits-bits)&maxv != 0 {
		return nil, ErrInvalidPadding
	}
	return out, nil
}
