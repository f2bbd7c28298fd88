package transactionvalidator

import (
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

// ValidateTransactionSignature checks that the sender of tx can be recovered
// from its signature. Transactions of the genesis block have no sender and
// must carry the placeholder signature instead.
func (v *transactionValidator) ValidateTransactionSignature(tx *externalapi.DomainTransaction, isGenesis bool) error {
	if isGenesis {
		if tx.IsSigned() {
			return errors.Wrapf(ruleerrors.ErrUnexpectedGenesisSignature,
				"genesis transaction %d carries a signature", tx.TransIndex)
		}
		return nil
	}

	_, err := v.signer.Sender(tx)
	if err != nil {
		return errors.Wrapf(ruleerrors.ErrBadTransactionSignature, "%s", err)
	}
	return nil
}
