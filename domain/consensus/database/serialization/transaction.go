package serialization

import (
	"math/big"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// DbTransaction is the RLP representation of a DomainTransaction
type DbTransaction struct {
	To              []byte
	Value           *big.Int
	Nonce           uint64
	GasLimit        uint64
	GasPrice        uint64
	Data            []byte
	Timestamp       uint64
	TransIndex      uint32
	R               []byte
	S               []byte
	V               uint8
	OutputStateRoot []byte
}

// DomainTransactionToDbTransaction converts DomainTransaction to DbTransaction
func DomainTransactionToDbTransaction(domainTransaction *externalapi.DomainTransaction) *DbTransaction {
	value := domainTransaction.Value
	if value == nil {
		value = new(big.Int)
	}
	return &DbTransaction{
		To:              domainTransaction.To[:],
		Value:           value,
		Nonce:           domainTransaction.Nonce,
		GasLimit:        domainTransaction.GasLimit,
		GasPrice:        domainTransaction.GasPrice,
		Data:            domainTransaction.Data,
		Timestamp:       uint64(domainTransaction.Timestamp),
		TransIndex:      domainTransaction.TransIndex,
		R:               domainTransaction.R[:],
		S:               domainTransaction.S[:],
		V:               domainTransaction.V,
		OutputStateRoot: DomainHashToDbHash(domainTransaction.OutputStateRoot),
	}
}

// DbTransactionToDomainTransaction converts DbTransaction to DomainTransaction
func DbTransactionToDomainTransaction(dbTransaction *DbTransaction) (*externalapi.DomainTransaction, error) {
	to, err := externalapi.NewDomainAddressFromByteSlice(dbTransaction.To)
	if err != nil {
		return nil, err
	}
	if len(dbTransaction.R) != externalapi.SignatureComponentSize ||
		len(dbTransaction.S) != externalapi.SignatureComponentSize {
		return nil, errors.Errorf("invalid signature component size. Want: %d, got: %d and %d",
			externalapi.SignatureComponentSize, len(dbTransaction.R), len(dbTransaction.S))
	}
	outputStateRoot, err := DbHashToDomainHash(dbTransaction.OutputStateRoot)
	if err != nil {
		return nil, err
	}

	value := dbTransaction.Value
	if value == nil {
		value = new(big.Int)
	}

	var data []byte
	if len(dbTransaction.Data) > 0 {
		data = dbTransaction.Data
	}

	domainTransaction := &externalapi.DomainTransaction{
		To:              to,
		Value:           value,
		Nonce:           dbTransaction.Nonce,
		GasLimit:        dbTransaction.GasLimit,
		GasPrice:        dbTransaction.GasPrice,
		Data:            data,
		Timestamp:       int64(dbTransaction.Timestamp),
		TransIndex:      dbTransaction.TransIndex,
		V:               dbTransaction.V,
		OutputStateRoot: outputStateRoot,
	}
	copy(domainTransaction.R[:], dbTransaction.R)
	copy(domainTransaction.S[:], dbTransaction.S)
	return domainTransaction, nil
}

// SerializeTransaction RLP-encodes a DomainTransaction
func SerializeTransaction(transaction *externalapi.DomainTransaction) ([]byte, error) {
	transactionBytes, err := rlp.EncodeToBytes(DomainTransactionToDbTransaction(transaction))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return transactionBytes, nil
}

// DeserializeTransaction decodes a DomainTransaction out of RLP-encoded bytes
func DeserializeTransaction(transactionBytes []byte) (*externalapi.DomainTransaction, error) {
	dbTransaction := &DbTransaction{}
	err := rlp.DecodeBytes(transactionBytes, dbTransaction)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return DbTransactionToDomainTransaction(dbTransaction)
}
