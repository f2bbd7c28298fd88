package transactionexecutor

import (
	"bytes"
	"context"

	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/consensushashing"
	"github.com/pkg/errors"
)

const (
	transactionGas        = 21000
	zeroDataByteGas       = 4
	nonZeroDataByteGas    = 16
	stakeOpcodeLength     = 4
	stakePayloadLength    = stakeOpcodeLength + externalapi.DomainAddressSize
	transactionCheckEvery = 256
)

// StakeOpcode prefixes the payload of a stake registration sent to
// externalapi.StakingAddress. The staking address follows it.
var StakeOpcode = []byte{0x00, 0x00, 0x00, 0x01}

// transactionExecutor runs the protocol contracts that are native to the
// node: plain value transfers and stake registrations.
type transactionExecutor struct{}

// New instantiates a new TransactionExecutor
func New() model.TransactionExecutor {
	return &transactionExecutor{}
}

// ExecuteBlock returns one receipt per transaction of block, in order
func (te *transactionExecutor) ExecuteBlock(ctx context.Context, block *externalapi.DomainBlock) (
	[]*externalapi.DomainReceipt, error) {

	receipts := make([]*externalapi.DomainReceipt, len(block.Transactions))
	for i, tx := range block.Transactions {
		if i%transactionCheckEvery == 0 {
			select {
			case <-ctx.Done():
				return nil, errors.WithStack(ctx.Err())
			default:
			}
		}

		receipts[i] = &externalapi.DomainReceipt{
			TransactionID: consensushashing.TransactionID(tx),
			Status:        te.executeTransaction(tx),
			GasUsed:       intrinsicGas(tx),
		}
	}
	return receipts, nil
}

func (te *transactionExecutor) executeTransaction(tx *externalapi.DomainTransaction) externalapi.ReceiptStatus {
	if tx.Value == nil {
		return externalapi.ReceiptStatusFailure
	}
	if tx.To == externalapi.StakingAddress {
		return executeStake(tx)
	}
	return externalapi.ReceiptStatusSuccess
}

func executeStake(tx *externalapi.DomainTransaction) externalapi.ReceiptStatus {
	if len(tx.Data) != stakePayloadLength || !bytes.Equal(tx.Data[:stakeOpcodeLength], StakeOpcode) {
		return externalapi.ReceiptStatusRevert
	}
	return externalapi.ReceiptStatusSuccess
}

// StakePayload returns the payload registering stakerAddress as a staker
func StakePayload(stakerAddress externalapi.DomainAddress) []byte {
	payload := make([]byte, 0, stakePayloadLength)
	payload = append(payload, StakeOpcode...)
	return append(payload, stakerAddress[:]...)
}

func intrinsicGas(tx *externalapi.DomainTransaction) uint64 {
	gas := uint64(transactionGas)
	for _, b := range tx.Data {
		if b == 0 {
			gas += zeroDataByteGas
		} else {
			gas += nonZeroDataByteGas
		}
	}
	return gas
}
