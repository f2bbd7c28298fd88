package serialization

import (
	"math/big"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// DbAccount is the RLP representation of an Account
type DbAccount struct {
	Address   []byte
	Balance   *big.Int
	Nonce     uint64
	StateRoot []byte
}

// AccountToDbAccount converts Account to DbAccount
func AccountToDbAccount(account *externalapi.Account) *DbAccount {
	return &DbAccount{
		Address:   account.Address[:],
		Balance:   account.Balance,
		Nonce:     account.Nonce,
		StateRoot: DomainHashToDbHash(account.StateRoot),
	}
}

// DbAccountToAccount converts DbAccount to Account
func DbAccountToAccount(dbAccount *DbAccount) (*externalapi.Account, error) {
	address, err := externalapi.NewDomainAddressFromByteSlice(dbAccount.Address)
	if err != nil {
		return nil, err
	}
	stateRoot, err := DbHashToDomainHash(dbAccount.StateRoot)
	if err != nil {
		return nil, err
	}
	balance := dbAccount.Balance
	if balance == nil {
		balance = new(big.Int)
	}
	return &externalapi.Account{
		Address:   address,
		Balance:   balance,
		Nonce:     dbAccount.Nonce,
		StateRoot: stateRoot,
	}, nil
}

// SerializeAccount RLP-encodes an Account. Negative balances cannot be
// serialized.
func SerializeAccount(account *externalapi.Account) ([]byte, error) {
	if account.Balance.Sign() < 0 {
		return nil, errors.Errorf("cannot serialize the negative balance %s of %s",
			account.Balance, account.Address)
	}
	accountBytes, err := rlp.EncodeToBytes(AccountToDbAccount(account))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return accountBytes, nil
}

// DeserializeAccount decodes an Account out of RLP-encoded bytes
func DeserializeAccount(accountBytes []byte) (*externalapi.Account, error) {
	dbAccount := &DbAccount{}
	err := rlp.DecodeBytes(accountBytes, dbAccount)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return DbAccountToAccount(dbAccount)
}
