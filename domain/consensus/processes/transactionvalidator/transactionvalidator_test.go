package transactionvalidator_test

import (
	"math/big"
	"testing"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/processes/transactionvalidator"
	"github.com/FranklinWaller/Rutile/domain/consensus/ruleerrors"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/txsigning"
	"github.com/pkg/errors"
)

const maxDataSize = 64

func TestValidateTransactionInIsolation(t *testing.T) {
	validator := transactionvalidator.New(maxDataSize, txsigning.New())

	tests := []struct {
		name        string
		modify      func(tx *externalapi.DomainTransaction)
		expectedErr error
	}{
		{"good one", func(tx *externalapi.DomainTransaction) {}, nil},
		{"zero destination", func(tx *externalapi.DomainTransaction) { tx.To = externalapi.ZeroAddress },
			ruleerrors.ErrBadTransactionDestination},
		{"zero value", func(tx *externalapi.DomainTransaction) { tx.Value = big.NewInt(0) }, nil},
		{"no value", func(tx *externalapi.DomainTransaction) { tx.Value = nil }, ruleerrors.ErrBadTransactionValue},
		{"negative value", func(tx *externalapi.DomainTransaction) { tx.Value = big.NewInt(-1) },
			ruleerrors.ErrBadTransactionValue},
		{"data at the limit", func(tx *externalapi.DomainTransaction) { tx.Data = make([]byte, maxDataSize) }, nil},
		{"data too long", func(tx *externalapi.DomainTransaction) { tx.Data = make([]byte, maxDataSize+1) },
			ruleerrors.ErrBadTransactionData},
		{"negative timestamp", func(tx *externalapi.DomainTransaction) { tx.Timestamp = -1 },
			ruleerrors.ErrBadTransactionTimestamp},
	}

	for _, test := range tests {
		tx := &externalapi.DomainTransaction{
			To:        externalapi.DomainAddress{1},
			Value:     big.NewInt(10),
			Timestamp: 1000,
		}
		test.modify(tx)

		err := validator.ValidateTransactionInIsolation(tx)
		if !errors.Is(err, test.expectedErr) {
			t.Fatalf("TestValidateTransactionInIsolation: %s: expected error %v, got %v",
				test.name, test.expectedErr, err)
		}
	}
}

func TestValidateTransactionSignature(t *testing.T) {
	validator := transactionvalidator.New(maxDataSize, txsigning.New())

	keyPair, err := txsigning.GenerateKeyPair()
	if err != nil {
		t.Fatalf("TestValidateTransactionSignature: GenerateKeyPair: %+v", err)
	}

	signed := &externalapi.DomainTransaction{To: externalapi.DomainAddress{1}, Value: big.NewInt(5)}
	err = txsigning.Sign(signed, keyPair)
	if err != nil {
		t.Fatalf("TestValidateTransactionSignature: Sign: %+v", err)
	}
	placeholder := &externalapi.DomainTransaction{To: externalapi.DomainAddress{1}, Value: big.NewInt(5), V: 1}

	err = validator.ValidateTransactionSignature(signed, false)
	if err != nil {
		t.Fatalf("TestValidateTransactionSignature: signed transaction was rejected: %+v", err)
	}

	err = validator.ValidateTransactionSignature(placeholder, false)
	if !errors.Is(err, ruleerrors.ErrBadTransactionSignature) {
		t.Fatalf("TestValidateTransactionSignature: expected ErrBadTransactionSignature "+
			"for a placeholder signature outside of genesis, got %v", err)
	}

	err = validator.ValidateTransactionSignature(placeholder, true)
	if err != nil {
		t.Fatalf("TestValidateTransactionSignature: genesis placeholder was rejected: %+v", err)
	}

	err = validator.ValidateTransactionSignature(signed, true)
	if !errors.Is(err, ruleerrors.ErrUnexpectedGenesisSignature) {
		t.Fatalf("TestValidateTransactionSignature: expected ErrUnexpectedGenesisSignature, got %v", err)
	}
}
