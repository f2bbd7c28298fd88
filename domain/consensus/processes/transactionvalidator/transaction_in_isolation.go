package transactionvalidator

import (
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

// ValidateTransactionInIsolation validates the structure of a transaction
// without looking at the rest of the DAG
func (v *transactionValidator) ValidateTransactionInIsolation(tx *externalapi.DomainTransaction) error {
	err := v.checkTransactionDestination(tx)
	if err != nil {
		return err
	}

	err = v.checkTransactionValue(tx)
	if err != nil {
		return err
	}

	err = v.checkTransactionDataSize(tx)
	if err != nil {
		return err
	}

	return v.checkTransactionTimestamp(tx)
}

// checkTransactionDestination rejects transfers to the zero address, which
// accounts for senders that cannot be recovered
func (v *transactionValidator) checkTransactionDestination(tx *externalapi.DomainTransaction) error {
	if tx.To.IsZero() {
		return errors.Wrapf(ruleerrors.ErrBadTransactionDestination, "transaction is sent to the zero address")
	}
	return nil
}

func (v *transactionValidator) checkTransactionValue(tx *externalapi.DomainTransaction) error {
	if tx.Value == nil {
		return errors.Wrapf(ruleerrors.ErrBadTransactionValue, "transaction has no value")
	}
	if tx.Value.Sign() < 0 {
		return errors.Wrapf(ruleerrors.ErrBadTransactionValue, "transaction value of %s is negative", tx.Value)
	}
	return nil
}

func (v *transactionValidator) checkTransactionDataSize(tx *externalapi.DomainTransaction) error {
	if len(tx.Data) > v.maxTransactionDataSize {
		return errors.Wrapf(ruleerrors.ErrBadTransactionData, "transaction data is %d bytes long, "+
			"which is more than the allowed %d", len(tx.Data), v.maxTransactionDataSize)
	}
	return nil
}

func (v *transactionValidator) checkTransactionTimestamp(tx *externalapi.DomainTransaction) error {
	if tx.Timestamp < 0 {
		return errors.Wrapf(ruleerrors.ErrBadTransactionTimestamp, "transaction timestamp %d is negative", tx.Timestamp)
	}
	return nil
}
