package wallet

import (
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// IsMnemonicValid returns whether the seed phrase is a BIP-39 mnemonic with a
// valid checksum. Extra whitespace between words is ignored.
func IsMnemonicValid(seedPhrase string) bool {
	return bip39.IsMnemonicValid(strings.Join(strings.Fields(seedPhrase), " "))
}
