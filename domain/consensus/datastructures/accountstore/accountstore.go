package accountstore

import (
	"github.com/FranklinWaller/Rutile/domain/consensus/database"
	"github.com/FranklinWaller/Rutile/domain/consensus/database/serialization"
	"github.com/FranklinWaller/Rutile/domain/consensus/model"
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

var bucket = database.MakeBucket([]byte("accounts"))

// accountStore represents a store of confirmed accounts
type accountStore struct{}

// New instantiates a new AccountStore
func New() model.AccountStore {
	return &accountStore{}
}

// Account returns the confirmed account of address
func (as *accountStore) Account(dbContext model.DBReader, address externalapi.DomainAddress) (*externalapi.Account, error) {
	accountBytes, err := dbContext.Get(as.addressAsKey(address))
	if database.IsNotFoundError(err) {
		return externalapi.NewZeroAccount(address), nil
	}
	if err != nil {
		return nil, err
	}
	return serialization.DeserializeAccount(accountBytes)
}

// Accounts returns every stored account
func (as *accountStore) Accounts(dbContext model.DBReader) ([]*externalapi.Account, error) {
	cursor, err := dbContext.Cursor(bucket)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var accounts []*externalapi.Account
	for ok := cursor.First(); ok; ok = cursor.Next() {
		accountBytes, err := cursor.Value()
		if err != nil {
			return nil, err
		}
		account, err := serialization.DeserializeAccount(accountBytes)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// Replace replaces every stored account with accounts
func (as *accountStore) Replace(dbTx model.DBTransaction, accounts []*externalapi.Account) error {
	existing, err := as.Accounts(dbTx)
	if err != nil {
		return err
	}
	for _, account := range existing {
		err := dbTx.Delete(as.addressAsKey(account.Address))
		if err != nil {
			return err
		}
	}

	for _, account := range accounts {
		if account.Balance.Sign() < 0 {
			return errors.Errorf("cannot store the negative balance %s of %s",
				account.Balance, account.Address)
		}
		accountBytes, err := serialization.SerializeAccount(account)
		if err != nil {
			return err
		}
		err = dbTx.Put(as.addressAsKey(account.Address), accountBytes)
		if err != nil {
			return err
		}
	}
	return nil
}

func (as *accountStore) addressAsKey(address externalapi.DomainAddress) model.DBKey {
	return bucket.Key(address[:])
}
