package serialization

import (
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// DbBlockHeader is the RLP representation of a DomainBlockHeader
type DbBlockHeader struct {
	Number             uint64
	TimeInMilliseconds uint64
	GasLimit           uint64
	ParentHashes       [][]byte
	HashMerkleRoot     []byte
	Bits               uint32
	Nonce              uint64
}

// DbReceipt is the RLP representation of a DomainReceipt
type DbReceipt struct {
	TransactionID []byte
	Status        uint8
	GasUsed       uint64
}

// DbBlock is the RLP representation of a DomainBlock
type DbBlock struct {
	Header       *DbBlockHeader
	Transactions []*DbTransaction
	Receipts     []*DbReceipt
}

// DomainBlockHeaderToDbBlockHeader converts DomainBlockHeader to DbBlockHeader
func DomainBlockHeaderToDbBlockHeader(header *externalapi.DomainBlockHeader) *DbBlockHeader {
	return &DbBlockHeader{
		Number:             header.Number,
		TimeInMilliseconds: uint64(header.TimeInMilliseconds),
		GasLimit:           header.GasLimit,
		ParentHashes:       DomainHashesToDbHashes(header.ParentHashes),
		HashMerkleRoot:     DomainHashToDbHash(header.HashMerkleRoot),
		Bits:               header.Bits,
		Nonce:              header.Nonce,
	}
}

// DbBlockHeaderToDomainBlockHeader converts DbBlockHeader to DomainBlockHeader
func DbBlockHeaderToDomainBlockHeader(dbHeader *DbBlockHeader) (*externalapi.DomainBlockHeader, error) {
	parentHashes, err := DbHashesToDomainHashes(dbHeader.ParentHashes)
	if err != nil {
		return nil, err
	}
	hashMerkleRoot, err := DbHashToDomainHash(dbHeader.HashMerkleRoot)
	if err != nil {
		return nil, err
	}
	return &externalapi.DomainBlockHeader{
		Number:             dbHeader.Number,
		TimeInMilliseconds: int64(dbHeader.TimeInMilliseconds),
		GasLimit:           dbHeader.GasLimit,
		ParentHashes:       parentHashes,
		HashMerkleRoot:     hashMerkleRoot,
		Bits:               dbHeader.Bits,
		Nonce:              dbHeader.Nonce,
	}, nil
}

// DomainBlockToDbBlock converts DomainBlock to DbBlock
func DomainBlockToDbBlock(domainBlock *externalapi.DomainBlock) *DbBlock {
	dbTransactions := make([]*DbTransaction, len(domainBlock.Transactions))
	for i, domainTransaction := range domainBlock.Transactions {
		dbTransactions[i] = DomainTransactionToDbTransaction(domainTransaction)
	}

	dbReceipts := make([]*DbReceipt, len(domainBlock.Receipts))
	for i, receipt := range domainBlock.Receipts {
		var transactionID []byte
		if receipt.TransactionID != nil {
			transactionID = receipt.TransactionID.ByteSlice()
		}
		dbReceipts[i] = &DbReceipt{
			TransactionID: transactionID,
			Status:        uint8(receipt.Status),
			GasUsed:       receipt.GasUsed,
		}
	}

	return &DbBlock{
		Header:       DomainBlockHeaderToDbBlockHeader(domainBlock.Header),
		Transactions: dbTransactions,
		Receipts:     dbReceipts,
	}
}

// DbBlockToDomainBlock converts DbBlock to DomainBlock
func DbBlockToDomainBlock(dbBlock *DbBlock) (*externalapi.DomainBlock, error) {
	if dbBlock.Header == nil {
		return nil, errors.New("block is missing its header")
	}
	header, err := DbBlockHeaderToDomainBlockHeader(dbBlock.Header)
	if err != nil {
		return nil, err
	}

	transactions := make([]*externalapi.DomainTransaction, len(dbBlock.Transactions))
	for i, dbTransaction := range dbBlock.Transactions {
		transactions[i], err = DbTransactionToDomainTransaction(dbTransaction)
		if err != nil {
			return nil, err
		}
	}

	var receipts []*externalapi.DomainReceipt
	if len(dbBlock.Receipts) > 0 {
		receipts = make([]*externalapi.DomainReceipt, len(dbBlock.Receipts))
		for i, dbReceipt := range dbBlock.Receipts {
			var transactionID *externalapi.DomainTransactionID
			if len(dbReceipt.TransactionID) > 0 {
				transactionID, err = externalapi.NewDomainTransactionIDFromByteSlice(dbReceipt.TransactionID)
				if err != nil {
					return nil, err
				}
			}
			receipts[i] = &externalapi.DomainReceipt{
				TransactionID: transactionID,
				Status:        externalapi.ReceiptStatus(dbReceipt.Status),
				GasUsed:       dbReceipt.GasUsed,
			}
		}
	}

	return &externalapi.DomainBlock{
		Header:       header,
		Transactions: transactions,
		Receipts:     receipts,
	}, nil
}

// SerializeBlock RLP-encodes a DomainBlock
func SerializeBlock(block *externalapi.DomainBlock) ([]byte, error) {
	blockBytes, err := rlp.EncodeToBytes(DomainBlockToDbBlock(block))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return blockBytes, nil
}

// DeserializeBlock decodes a DomainBlock out of RLP-encoded bytes
func DeserializeBlock(blockBytes []byte) (*externalapi.DomainBlock, error) {
	dbBlock := &DbBlock{}
	err := rlp.DecodeBytes(blockBytes, dbBlock)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return DbBlockToDomainBlock(dbBlock)
}
