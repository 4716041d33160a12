// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/manaproject/mana/builtin/settlement"
	"github.com/manaproject/mana/mana"
)

// DevAccount account for development.
type DevAccount struct {
	Address    mana.Address
	PrivateKey *ecdsa.PrivateKey
}

// DevAccounts returns the pre-funded accounts of solo mode. The first is
// the owner, the second the oracle.
var DevAccounts = sync.OnceValue(func() []DevAccount {
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
		"88d2d80b12b92feaa0da6d62309463d20408157723f2d7e799b6a74ead9a673b",
	}
	accs := make([]DevAccount, 0, len(privKeys))
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		accs = append(accs, DevAccount{mana.Address(crypto.PubkeyToAddress(pk.PublicKey)), pk})
	}
	return accs
})

// DevAllocation is minted to every dev account.
var DevAllocation = mana.Units(1_000_000)

// NewDevnet creates the builder of solo mode.
func NewDevnet(config settlement.Config) *Builder {
	accs := DevAccounts()
	b := new(Builder).
		Owner(accs[0].Address).
		Oracle(accs[1].Address).
		Engine(config)
	for _, a := range accs {
		b.Alloc(a.Address, DevAllocation)
	}
	return b
}
