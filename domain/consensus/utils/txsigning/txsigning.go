// Package txsigning signs transactions with secp256k1 keys and recovers
// their senders from the signature.
package txsigning

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/consensushashing"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// ErrUnresolvableSender is returned when the sender of a transaction cannot
// be recovered from its signature
var ErrUnresolvableSender = errors.New("unresolvable transaction sender")

type signer struct{}

// New returns a secp256k1 model.TransactionSigner
func New() model.TransactionSigner {
	return signer{}
}

// Sign signs the transaction in place with keyPair
func (signer) Sign(transaction *externalapi.DomainTransaction, keyPair *ecdsa.PrivateKey) error {
	return Sign(transaction, keyPair)
}

// Sender recovers the address that signed transaction
func (signer) Sender(transaction *externalapi.DomainTransaction) (externalapi.DomainAddress, error) {
	return Sender(transaction)
}

// Sign signs the transaction in place with keyPair
func Sign(transaction *externalapi.DomainTransaction, keyPair *ecdsa.PrivateKey) error {
	signingHash := consensushashing.TransactionSigningHash(transaction)
	signature, err := crypto.Sign(signingHash.ByteSlice(), keyPair)
	if err != nil {
		return errors.Wrap(err, "failed signing transaction")
	}

	copy(transaction.R[:], signature[:32])
	copy(transaction.S[:], signature[32:64])
	transaction.V = signature[64]
	transaction.ResetCachedID()
	return nil
}

// Sender recovers the address that signed transaction
func Sender(transaction *externalapi.DomainTransaction) (externalapi.DomainAddress, error) {
	r := new(big.Int).SetBytes(transaction.R[:])
	s := new(big.Int).SetBytes(transaction.S[:])
	if !crypto.ValidateSignatureValues(transaction.V, r, s, true) {
		return externalapi.DomainAddress{}, errors.Wrapf(ErrUnresolvableSender,
			"signature values of transaction %s are out of range", consensushashing.TransactionID(transaction))
	}

	signature := make([]byte, crypto.SignatureLength)
	copy(signature[:32], transaction.R[:])
	copy(signature[32:64], transaction.S[:])
	signature[64] = transaction.V

	signingHash := consensushashing.TransactionSigningHash(transaction)
	publicKey, err := crypto.SigToPub(signingHash.ByteSlice(), signature)
	if err != nil {
		return externalapi.DomainAddress{}, errors.Wrapf(ErrUnresolvableSender,
			"failed recovering the public key of transaction %s: %s", consensushashing.TransactionID(transaction), err)
	}
	return externalapi.DomainAddress(crypto.PubkeyToAddress(*publicKey)), nil
}

// Address returns the address controlled by keyPair
func Address(keyPair *ecdsa.PrivateKey) externalapi.DomainAddress {
	return externalapi.DomainAddress(crypto.PubkeyToAddress(keyPair.PublicKey))
}

// GenerateKeyPair creates a new random key pair
func GenerateKeyPair() (*ecdsa.PrivateKey, error) {
	keyPair, err := crypto.GenerateKey()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return keyPair, nil
}
