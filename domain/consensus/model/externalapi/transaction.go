package externalapi

import (
	"encoding/hex"
	"math/big"

	"github.com/pkg/errors"
)

// SignatureComponentSize is the size of each of the R and S components of a
// transaction signature.
const SignatureComponentSize = 32

// DomainTransaction represents a value transfer or record unit in the DAG
type DomainTransaction struct {
	To         DomainAddress
	Value      *big.Int
	Nonce      uint64
	GasLimit   uint64
	GasPrice   uint64
	Data       []byte
	Timestamp  int64
	TransIndex uint32

	R [SignatureComponentSize]byte
	S [SignatureComponentSize]byte
	V byte

	OutputStateRoot *DomainHash

	// ID is a field that is used to cache the transaction ID.
	// Always use consensushashing.TransactionID instead of accessing this field directly
	ID *DomainTransactionID
}

// IsSigned returns whether the transaction carries a signature other than
// the all-zero placeholder.
func (tx *DomainTransaction) IsSigned() bool {
	return tx.R != [SignatureComponentSize]byte{} || tx.S != [SignatureComponentSize]byte{}
}

// HasValue returns whether the transaction transfers a non-zero value.
func (tx *DomainTransaction) HasValue() bool {
	return tx.Value != nil && tx.Value.Sign() != 0
}

// Clone returns a clone of DomainTransaction
func (tx *DomainTransaction) Clone() *DomainTransaction {
	var valueClone *big.Int
	if tx.Value != nil {
		valueClone = new(big.Int).Set(tx.Value)
	}

	var dataClone []byte
	if tx.Data != nil {
		dataClone = make([]byte, len(tx.Data))
		copy(dataClone, tx.Data)
	}

	var idClone *DomainTransactionID
	if tx.ID != nil {
		idClone = tx.ID.Clone()
	}

	return &DomainTransaction{
		To:              tx.To,
		Value:           valueClone,
		Nonce:           tx.Nonce,
		GasLimit:        tx.GasLimit,
		GasPrice:        tx.GasPrice,
		Data:            dataClone,
		Timestamp:       tx.Timestamp,
		TransIndex:      tx.TransIndex,
		R:               tx.R,
		S:               tx.S,
		V:               tx.V,
		OutputStateRoot: tx.OutputStateRoot,
		ID:              idClone,
	}
}

// ResetCachedID clears the cached transaction ID. It must be called after
// any field of a transaction is modified.
func (tx *DomainTransaction) ResetCachedID() {
	tx.ID = nil
}

// DomainTransactionIDSize is the size of a DomainTransactionID
const DomainTransactionIDSize = DomainHashSize

// DomainTransactionID represents the ID of a transaction
type DomainTransactionID DomainHash

// NewDomainTransactionIDFromByteArray constructs a new TransactionID out of a byte array
func NewDomainTransactionIDFromByteArray(transactionIDBytes *[DomainTransactionIDSize]byte) *DomainTransactionID {
	return (*DomainTransactionID)(NewDomainHashFromByteArray(transactionIDBytes))
}

// NewDomainTransactionIDFromByteSlice constructs a new TransactionID out of a byte slice
func NewDomainTransactionIDFromByteSlice(transactionIDBytes []byte) (*DomainTransactionID, error) {
	hash, err := NewDomainHashFromByteSlice(transactionIDBytes)
	if err != nil {
		return nil, err
	}
	return (*DomainTransactionID)(hash), nil
}

// NewDomainTransactionIDFromString constructs a new TransactionID out of a hex string
func NewDomainTransactionIDFromString(transactionIDString string) (*DomainTransactionID, error) {
	if len(transactionIDString) != DomainTransactionIDSize*2 {
		return nil, errors.Errorf("transaction ID string length is %d, while it should be be %d",
			len(transactionIDString), DomainTransactionIDSize*2)
	}
	transactionIDBytes, err := hex.DecodeString(transactionIDString)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return NewDomainTransactionIDFromByteSlice(transactionIDBytes)
}

// String stringifies a transaction ID.
func (id DomainTransactionID) String() string {
	return DomainHash(id).String()
}

// Clone returns a clone of DomainTransactionID
func (id *DomainTransactionID) Clone() *DomainTransactionID {
	idClone := *id
	return &idClone
}

// Equal returns whether id equals to other
func (id *DomainTransactionID) Equal(other *DomainTransactionID) bool {
	return (*DomainHash)(id).Equal((*DomainHash)(other))
}

// ByteArray returns the bytes in this transactionID represented as a byte array.
// The transactionID bytes are cloned, therefore it is safe to modify the resulting array.
func (id *DomainTransactionID) ByteArray() *[DomainHashSize]byte {
	return (*DomainHash)(id).ByteArray()
}

// ByteSlice returns the bytes in this transactionID represented as a byte slice.
// The transactionID bytes are cloned, therefore it is safe to modify the resulting slice.
func (id *DomainTransactionID) ByteSlice() []byte {
	return (*DomainHash)(id).ByteSlice()
}
