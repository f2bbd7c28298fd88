package consensushashing

import (
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/hashes"
)

// BlockHash returns the given block's hash
func BlockHash(block *externalapi.DomainBlock) *externalapi.DomainHash {
	return HeaderHash(block.Header)
}

// HeaderHash returns the block header's hash
func HeaderHash(header *externalapi.DomainBlockHeader) *externalapi.DomainHash {
	writer := hashes.NewBlockHashWriter()
	writeUint64(writer, header.Number)
	writeUint64(writer, uint64(header.TimeInMilliseconds))
	writeUint64(writer, header.GasLimit)
	writeUint64(writer, uint64(len(header.ParentHashes)))
	for _, parentHash := range header.ParentHashes {
		writer.InfallibleWrite(parentHash.ByteSlice())
	}
	writeHash(writer, header.HashMerkleRoot)
	writeUint32(writer, header.Bits)
	writeUint64(writer, header.Nonce)
	return writer.Finalize()
}
