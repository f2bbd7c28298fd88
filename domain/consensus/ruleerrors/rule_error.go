package ruleerrors

import (
	"fmt"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// These constants are used to identify a specific RuleError.
var (
	// ErrDuplicateBlock indicates a block with the same hash already
	// exists.
	ErrDuplicateBlock = newRuleError("ErrDuplicateBlock")

	// ErrNoParents indicates that the block is missing parents
	ErrNoParents = newRuleError("ErrNoParents")

	// ErrGenesisAlreadyExists indicates that a block without parents was
	// submitted to a DAG that already has a genesis block.
	ErrGenesisAlreadyExists = newRuleError("ErrGenesisAlreadyExists")

	// ErrTooManyParents indicates that a block points to more then `MaxBlockParents` parents
	ErrTooManyParents = newRuleError("ErrTooManyParents")

	// ErrInvalidParentsRelation indicates that a block lists the same
	// parent more than once.
	ErrInvalidParentsRelation = newRuleError("ErrInvalidParentsRelation")

	// ErrInvalidAncestorBlock indicates that an ancestor of this block has
	// already failed validation.
	ErrInvalidAncestorBlock = newRuleError("ErrInvalidAncestorBlock")

	// ErrUnexpectedNumber indicates that the sequence number of a block is
	// not one more than the highest sequence number of its parents.
	ErrUnexpectedNumber = newRuleError("ErrUnexpectedNumber")

	// ErrTimeTooNew indicates the time is too far in the future as compared
	// to the current time.
	ErrTimeTooNew = newRuleError("ErrTimeTooNew")

	// ErrTargetTooHigh indicates specified bits do not align with
	// the expected value either because it is above the valid
	// range.
	ErrTargetTooHigh = newRuleError("ErrTargetTooHigh")

	// ErrInvalidPoW indicates that the block proof-of-work is invalid.
	ErrInvalidPoW = newRuleError("ErrInvalidPoW")

	// ErrBadMerkleRoot indicates the calculated merkle root does not match
	// the expected value.
	ErrBadMerkleRoot = newRuleError("ErrBadMerkleRoot")

	// ErrBlockGasLimitExceeded indicates that the transactions of a block
	// ask for more gas than the block allows.
	ErrBlockGasLimitExceeded = newRuleError("ErrBlockGasLimitExceeded")

	// ErrBadReceipts indicates that a block carries a number of receipts
	// different from its number of transactions, or receipts that belong
	// to other transactions.
	ErrBadReceipts = newRuleError("ErrBadReceipts")

	// ErrDuplicateTx indicates a block contains an identical transaction
	// (or at least two transactions which hash to the same value). A
	// valid block may only contain unique transactions.
	ErrDuplicateTx = newRuleError("ErrDuplicateTx")

	// ErrBadTransactionIndex indicates that the position-in-block index
	// of a transaction does not match its position.
	ErrBadTransactionIndex = newRuleError("ErrBadTransactionIndex")

	// ErrBadTransactionDestination indicates that a transaction is sent to
	// the zero address.
	ErrBadTransactionDestination = newRuleError("ErrBadTransactionDestination")

	// ErrBadTransactionValue indicates that a transaction has a missing
	// or negative value.
	ErrBadTransactionValue = newRuleError("ErrBadTransactionValue")

	// ErrBadTransactionData indicates that the payload of a transaction is
	// larger than allowed.
	ErrBadTransactionData = newRuleError("ErrBadTransactionData")

	// ErrBadTransactionTimestamp indicates that a transaction carries a
	// negative timestamp.
	ErrBadTransactionTimestamp = newRuleError("ErrBadTransactionTimestamp")

	// ErrBadTransactionSignature indicates that the sender of a
	// transaction could not be recovered from its signature.
	ErrBadTransactionSignature = newRuleError("ErrBadTransactionSignature")

	// ErrUnexpectedGenesisSignature indicates that a transaction of the
	// genesis block carries a real signature instead of the placeholder.
	ErrUnexpectedGenesisSignature = newRuleError("ErrUnexpectedGenesisSignature")

	// ErrTransactionRevert indicates that the execution of a transaction
	// reverted.
	ErrTransactionRevert = newRuleError("ErrTransactionRevert")
)

// RuleError identifies a rule violation. It is used to indicate that
// processing of a block or transaction failed due to one of the many validation
// rules. The caller can use type assertions to determine if a failure was
// specifically due to a rule violation.
type RuleError struct {
	message string
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

func newRuleError(message string) RuleError {
	return RuleError{message: message, inner: nil}
}

// ErrMissingParents indicates a block points to unknown parent(s).
type ErrMissingParents struct {
	MissingParentHashes []*externalapi.DomainHash
}

func (e ErrMissingParents) Error() string {
	return fmt.Sprintf("missing the following parent hashes: %v", e.MissingParentHashes)
}

// NewErrMissingParents creates a new ErrMissingParents error wrapped in a RuleError
func NewErrMissingParents(missingParentHashes []*externalapi.DomainHash) error {
	return errors.WithStack(RuleError{
		message: "ErrMissingParents",
		inner:   ErrMissingParents{missingParentHashes},
	})
}

// NoTransactionIndex is the TransactionIndex of an ErrInvalidAncestor that
// is not caused by a particular transaction.
const NoTransactionIndex = -1

// ErrInvalidAncestor indicates that a balance walk met an ancestor block
// that is missing or malformed.
type ErrInvalidAncestor struct {
	BlockHash        *externalapi.DomainHash
	TransactionIndex int
	Reason           error
}

func (e ErrInvalidAncestor) Error() string {
	if e.TransactionIndex == NoTransactionIndex {
		return fmt.Sprintf("block %s: %s", e.BlockHash, e.Reason)
	}
	return fmt.Sprintf("block %s, transaction %d: %s", e.BlockHash, e.TransactionIndex, e.Reason)
}

// Unwrap satisfies the errors.Unwrap interface
func (e ErrInvalidAncestor) Unwrap() error {
	return e.Reason
}

// NewErrInvalidAncestor creates a new ErrInvalidAncestor error wrapped in a RuleError
func NewErrInvalidAncestor(blockHash *externalapi.DomainHash, transactionIndex int, reason error) error {
	return errors.WithStack(RuleError{
		message: "ErrInvalidAncestor",
		inner:   ErrInvalidAncestor{BlockHash: blockHash, TransactionIndex: transactionIndex, Reason: reason},
	})
}

// InvalidTransaction is a struct containing an invalid transaction, and the error explaining why it's invalid.
type InvalidTransaction struct {
	Index int
	Error error
}

func (invalid InvalidTransaction) String() string {
	return fmt.Sprintf("(%d: %s)", invalid.Index, invalid.Error)
}

// ErrInvalidTransactionsInNewBlock indicates that some transactions in a new block are invalid
type ErrInvalidTransactionsInNewBlock struct {
	InvalidTransactions []InvalidTransaction
}

func (e ErrInvalidTransactionsInNewBlock) Error() string {
	return fmt.Sprint(e.InvalidTransactions)
}

// NewErrInvalidTransactionsInNewBlock Creates a new ErrInvalidTransactionsInNewBlock error wrapped in a RuleError
func NewErrInvalidTransactionsInNewBlock(invalidTransactions []InvalidTransaction) error {
	return errors.WithStack(RuleError{
		message: "ErrInvalidTransactionsInNewBlock",
		inner:   ErrInvalidTransactionsInNewBlock{invalidTransactions},
	})
}
