// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package settlement

import (
	"github.com/manaproject/mana/builtin/reverts"
)

var (
	ErrOnlyOwner          = reverts.New(reverts.Unauthorized, "Only owner can call this function.")
	ErrOnlyOracle         = reverts.New(reverts.Unauthorized, "Only oracle can call this function.")
	ErrZeroStake          = reverts.New(reverts.InvalidState, "Stake amount must be greater than zero.")
	ErrAlreadyStaked      = reverts.New(reverts.InvalidState, "Already staked in this period.")
	ErrPredictionChanged  = reverts.New(reverts.InvalidState, "Prediction cannot change within a period.")
	ErrStakeOverflow      = reverts.New(reverts.InvalidState, "Total stake overflow.")
	ErrPeriodNotFound     = reverts.New(reverts.InvalidState, "Voting period does not exist.")
	ErrPriceAlreadySet    = reverts.New(reverts.InvalidState, "Actual price already set.")
	ErrPriceNotSet        = reverts.New(reverts.InvalidState, "Actual price not set yet.")
	ErrNotEligible        = reverts.New(reverts.NotEligible, "Not eligible for reward or already claimed.")
	ErrAlreadyInitialized = reverts.New(reverts.InvalidState, "Already initialized.")
	ErrInvalidOwner       = reverts.New(reverts.InvalidState, "New owner is the zero address.")
)

// ledgerFailure tags a ledger error as LedgerFailure, keeping its message.
func ledgerFailure(err error) error {
	if reverts.KindOf(err) == reverts.LedgerFailure {
		return err
	}
	return reverts.Wrap(reverts.LedgerFailure, err)
}
