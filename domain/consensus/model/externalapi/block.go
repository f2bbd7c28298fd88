package externalapi

// DomainBlock represents a DAG block
type DomainBlock struct {
	Header       *DomainBlockHeader
	Transactions []*DomainTransaction

	// Receipts are produced by executing the block. They are not part of the
	// block identity.
	Receipts []*DomainReceipt
}

// IsGenesis returns whether the block has no parents
func (block *DomainBlock) IsGenesis() bool {
	return len(block.Header.ParentHashes) == 0
}

// Clone returns a clone of DomainBlock
func (block *DomainBlock) Clone() *DomainBlock {
	transactionClone := make([]*DomainTransaction, len(block.Transactions))
	for i, tx := range block.Transactions {
		transactionClone[i] = tx.Clone()
	}

	var receiptsClone []*DomainReceipt
	if block.Receipts != nil {
		receiptsClone = make([]*DomainReceipt, len(block.Receipts))
		for i, receipt := range block.Receipts {
			receiptsClone[i] = receipt.Clone()
		}
	}

	return &DomainBlock{
		Header:       block.Header.Clone(),
		Transactions: transactionClone,
		Receipts:     receiptsClone,
	}
}

// DomainBlockHeader represents the header part of a DAG block
type DomainBlockHeader struct {
	Number             uint64
	TimeInMilliseconds int64
	GasLimit           uint64
	ParentHashes       []*DomainHash
	HashMerkleRoot     *DomainHash
	Bits               uint32
	Nonce              uint64
}

// Clone returns a clone of DomainBlockHeader
func (header *DomainBlockHeader) Clone() *DomainBlockHeader {
	return &DomainBlockHeader{
		Number:             header.Number,
		TimeInMilliseconds: header.TimeInMilliseconds,
		GasLimit:           header.GasLimit,
		ParentHashes:       CloneHashes(header.ParentHashes),
		HashMerkleRoot:     header.HashMerkleRoot,
		Bits:               header.Bits,
		Nonce:              header.Nonce,
	}
}
