package script

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPubKeys = []string{
	"03d728ad6757d4784effea04d47baafa216cf474866c2d4dc99b1e8e3eb936e730",
	"03aeb681df5ac19e449a872b9e9347f1db5a0394d2ec5caf2a9c143f86e232b0d9",
	"02d83bba35a8022c247b645eed6f81ac41b7c1580de550e7e82c75ad63ee9ac2fd",
}

func TestPushNumOpcode(t *testing.T) {
	tests := []struct {
		n      uint8
		opcode byte
	}{
		{1, txscript.OP_1},
		{2, txscript.OP_2},
		{3, 0x53},
		{15, txscript.OP_15},
		{16, txscript.OP_16},
	}

	for _, tt := range tests {
		opcode, err := PushNumOpcode(tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.opcode, opcode)
	}

	assert.Equal(t, byte(0xae), byte(OpCheckMultiSig))
}

func TestFailingPushNumOpcode(t *testing.T) {
	for _, n := range []uint8{0, 17, 255} {
		_, err := PushNumOpcode(n)
		assert.Equal(t, ErrOutOfRange, err)
	}
}

func TestMultisigRedeemScript(t *testing.T) {
	keys := make([][]byte, 0, len(testPubKeys))
	addrPubKeys := make([]*btcutil.AddressPubKey, 0, len(testPubKeys))
	for _, k := range testPubKeys {
		key, _ := hex.DecodeString(k)
		keys = append(keys, key)

		addrPubKey, err := btcutil.NewAddressPubKey(key, &chaincfg.MainNetParams)
		require.NoError(t, err)
		addrPubKeys = append(addrPubKeys, addrPubKey)
	}

	for m := 1; m <= len(keys); m++ {
		script, err := MultisigRedeemScript(uint8(m), keys)
		require.NoError(t, err)

		expected, err := txscript.MultiSigScript(addrPubKeys, m)
		require.NoError(t, err)
		assert.Equal(t, expected, script)
		assert.Len(t, script, 3+len(keys)*34)
	}
}

func TestFailingMultisigRedeemScript(t *testing.T) {
	key, _ := hex.DecodeString(testPubKeys[0])

	tooManyKeys := make([][]byte, MaxPushNum+1)
	for i := range tooManyKeys {
		tooManyKeys[i] = key
	}

	tests := []struct {
		m    uint8
		keys [][]byte
		err  error
	}{
		{0, [][]byte{key}, ErrOutOfRange},
		{17, [][]byte{key}, ErrOutOfRange},
		{1, nil, ErrOutOfRange},
		{1, tooManyKeys, ErrOutOfRange},
		{1, [][]byte{key[:32]}, ErrInvalidPubKeyLength},
	}

	for _, tt := range tests {
		_, err := MultisigRedeemScript(tt.m, tt.keys)
		assert.ErrorIs(t, err, tt.err)
	}
}
