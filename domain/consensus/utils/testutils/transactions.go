package testutils

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/txsigning"
)

// KeyPair generates a fresh key pair and returns it along with its address
func KeyPair(t *testing.T) (*ecdsa.PrivateKey, externalapi.DomainAddress) {
	keyPair, err := txsigning.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %+v", err)
	}
	return keyPair, txsigning.Address(keyPair)
}

// SignedTransfer returns a transfer of value to the given address signed with keyPair
func SignedTransfer(t *testing.T, keyPair *ecdsa.PrivateKey, to externalapi.DomainAddress,
	value int64, nonce uint64) *externalapi.DomainTransaction {

	tx := &externalapi.DomainTransaction{
		To:        to,
		Value:     big.NewInt(value),
		Nonce:     nonce,
		GasLimit:  21000,
		GasPrice:  1,
		Timestamp: 1,
	}
	err := txsigning.Sign(tx, keyPair)
	if err != nil {
		t.Fatalf("Sign: %+v", err)
	}
	return tx
}

// GenesisCredit returns an unsigned genesis credit of value to the given address
func GenesisCredit(to externalapi.DomainAddress, value int64) *externalapi.DomainTransaction {
	return &externalapi.DomainTransaction{
		To:    to,
		Value: big.NewInt(value),
		Data:  make([]byte, externalapi.DomainHashSize),
		V:     1,
	}
}
