package externalapi

import "math/big"

func bigInt(value int64) *big.Int {
	return big.NewInt(value)
}
