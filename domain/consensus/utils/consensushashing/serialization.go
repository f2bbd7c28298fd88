package consensushashing

import (
	"encoding/binary"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/hashes"
)

func writeUint64(w hashes.HashWriter, value uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value)
	w.InfallibleWrite(buf[:])
}

func writeUint32(w hashes.HashWriter, value uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], value)
	w.InfallibleWrite(buf[:])
}

func writeVarBytes(w hashes.HashWriter, data []byte) {
	writeUint64(w, uint64(len(data)))
	w.InfallibleWrite(data)
}

func writeHash(w hashes.HashWriter, hash *externalapi.DomainHash) {
	if hash == nil {
		w.InfallibleWrite([]byte{0})
		return
	}
	w.InfallibleWrite([]byte{1})
	w.InfallibleWrite(hash.ByteSlice())
}

// writeTransactionBody writes every field that a signature commits to.
// TransIndex is not one of them, since it is only known once the
// transaction is placed in a block.
func writeTransactionBody(w hashes.HashWriter, tx *externalapi.DomainTransaction) {
	w.InfallibleWrite(tx.To[:])
	if tx.Value == nil {
		writeVarBytes(w, nil)
	} else {
		writeVarBytes(w, tx.Value.Bytes())
	}
	writeUint64(w, tx.Nonce)
	writeUint64(w, tx.GasLimit)
	writeUint64(w, tx.GasPrice)
	writeVarBytes(w, tx.Data)
	writeUint64(w, uint64(tx.Timestamp))
}
