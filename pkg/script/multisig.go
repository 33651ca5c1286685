package script

import "fmt"

// MultisigRedeemScript returns the m-of-len(pubkeys) redeem script
//
//	<OP_m> <0x21 pubkey>... <OP_n> OP_CHECKMULTISIG
//
// Keys are serialized in the given order.
func MultisigRedeemScript(m uint8, pubkeys [][]byte) ([]byte, error) {
	if len(pubkeys) > MaxPushNum {
		return nil, ErrOutOfRange
	}

	opM, err := PushNumOpcode(m)
	if err != nil {
		return nil, fmt.Errorf("m: %w", err)
	}
	opN, err := PushNumOpcode(uint8(len(pubkeys)))
	if err != nil {
		return nil, fmt.Errorf("n: %w", err)
	}

	script := make([]byte, 0, 3+len(pubkeys)*(1+compressedPubKeyLen))
	script = append(script, opM)
	for _, key := range pubkeys {
		if len(key) != compressedPubKeyLen {
			return nil, ErrInvalidPubKeyLength
		}
		script = append(script, OpData33)
		script = append(script, key...)
	}
	script = append(script, opN, OpCheckMultiSig)

	return script, nil
}
