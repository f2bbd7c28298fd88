package externalapi

// ReceiptStatus is the outcome of executing a single transaction
type ReceiptStatus byte

const (
	// ReceiptStatusSuccess indicates that the transaction executed successfully
	ReceiptStatusSuccess ReceiptStatus = iota

	// ReceiptStatusRevert indicates that execution reverted
	ReceiptStatusRevert

	// ReceiptStatusFailure indicates that the transaction could not be executed at all
	ReceiptStatusFailure
)

var receiptStatusStrings = map[ReceiptStatus]string{
	ReceiptStatusSuccess: "Success",
	ReceiptStatusRevert:  "Revert",
	ReceiptStatusFailure: "Failure",
}

func (rs ReceiptStatus) String() string {
	return receiptStatusStrings[rs]
}

// DomainReceipt is the execution receipt of a single transaction
type DomainReceipt struct {
	TransactionID *DomainTransactionID
	Status        ReceiptStatus
	GasUsed       uint64
}

// Clone returns a clone of DomainReceipt
func (receipt *DomainReceipt) Clone() *DomainReceipt {
	var transactionIDClone *DomainTransactionID
	if receipt.TransactionID != nil {
		transactionIDClone = receipt.TransactionID.Clone()
	}
	return &DomainReceipt{
		TransactionID: transactionIDClone,
		Status:        receipt.Status,
		GasUsed:       receipt.GasUsed,
	}
}
