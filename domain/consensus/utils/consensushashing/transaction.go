package consensushashing

import (
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/hashes"
)

// TransactionID generates the Hash for the transaction, signature and
// output-state-root included. The position of the transaction in its block
// is not covered, so the ID is fixed once the transaction is signed.
func TransactionID(tx *externalapi.DomainTransaction) *externalapi.DomainTransactionID {
	if tx.ID != nil {
		return tx.ID
	}

	writer := hashes.NewTransactionIDWriter()
	writeTransactionBody(writer, tx)
	writer.InfallibleWrite(tx.R[:])
	writer.InfallibleWrite(tx.S[:])
	writer.InfallibleWrite([]byte{tx.V})
	writeHash(writer, tx.OutputStateRoot)

	transactionID := externalapi.DomainTransactionID(*writer.Finalize())
	tx.ID = &transactionID
	return tx.ID
}

// TransactionIDs converts the provided slice of DomainTransactions
// to a corresponding slice of TransactionIDs
func TransactionIDs(txs []*externalapi.DomainTransaction) []*externalapi.DomainTransactionID {
	txIDs := make([]*externalapi.DomainTransactionID, len(txs))
	for i, tx := range txs {
		txIDs[i] = TransactionID(tx)
	}
	return txIDs
}

// TransactionSigningHash returns the hash a transaction signature commits
// to. It covers every field except the signature itself and the
// output-state-root and position-in-block.
func TransactionSigningHash(tx *externalapi.DomainTransaction) *externalapi.DomainHash {
	writer := hashes.NewTransactionSigningHashWriter()
	writeTransactionBody(writer, tx)
	return writer.Finalize()
}
