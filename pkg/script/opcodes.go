// Package script encodes the opcodes and redeem scripts needed to build
// multi-signature pay-to-script-hash addresses.
package script

import (
	"errors"

	"github.com/btcsuite/btcd/txscript"
)

const (
	// MaxPushNum is the biggest number with a dedicated push opcode.
	MaxPushNum = 16
	// OpCheckMultiSig ...
	OpCheckMultiSig = txscript.OP_CHECKMULTISIG
	// OpData33 pushes the next 33 bytes, ie. a compressed public key.
	OpData33 = txscript.OP_DATA_33

	compressedPubKeyLen = 33
)

var (
	// ErrOutOfRange ...
	ErrOutOfRange = errors.New("push number must be in range [1, 16]")
	// ErrInvalidPubKeyLength ...
	ErrInvalidPubKeyLength = errors.New("public key must be a 33 byte compressed key")
)

// PushNumOpcode returns the OP_1..OP_16 opcode pushing n onto the stack.
func PushNumOpcode(n uint8) (byte, error) {
	if n == 0 || n > MaxPushNum {
		return 0, ErrOutOfRange
	}
	return txscript.OP_1 - 1 + n, nil
}
