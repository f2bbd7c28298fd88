package pow

import (
	"context"
	"math/big"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/consensushashing"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/math"
	"github.com/pkg/errors"
)

// HashToBig converts a DomainHash into a big.Int that can be used to
// perform math comparisons. The hash bytes are interpreted as little-endian.
func HashToBig(hash *externalapi.DomainHash) *big.Int {
	// A Hash is in little-endian, but the big package wants the bytes in
	// big-endian, so reverse them.
	buf := hash.ByteSlice()
	blen := len(buf)
	for i := 0; i < blen/2; i++ {
		buf[i], buf[blen-1-i] = buf[blen-1-i], buf[i]
	}

	return new(big.Int).SetBytes(buf)
}

// CheckProofOfWork checks that the hash of the header is at most the target
// its bits encode, and that the target itself is sane.
func CheckProofOfWork(header *externalapi.DomainBlockHeader, powMax *big.Int) error {
	target := math.CompactToBig(header.Bits)
	if target.Sign() <= 0 {
		return errors.Errorf("block target difficulty of %064x is too low", target)
	}
	if target.Cmp(powMax) > 0 {
		return errors.Errorf("block target difficulty of %064x is higher than max of %064x",
			target, powMax)
	}

	hashNum := HashToBig(consensushashing.HeaderHash(header))
	if hashNum.Cmp(target) > 0 {
		return errors.Errorf("block hash of %064x is higher than expected max of %064x",
			hashNum, target)
	}
	return nil
}

// ErrNonceExhausted is returned by Solve when no nonce satisfies the target
var ErrNonceExhausted = errors.New("exhausted the nonce space")

// Solve increments the header nonce until the header satisfies its own
// target. It checks ctx every few thousand attempts.
func Solve(ctx context.Context, header *externalapi.DomainBlockHeader) error {
	target := math.CompactToBig(header.Bits)
	if target.Sign() <= 0 {
		return errors.Errorf("cannot solve for the non-positive target %s", target)
	}

	const checkInterval = 4096
	for nonce := uint64(0); ; nonce++ {
		if nonce%checkInterval == 0 {
			select {
			case <-ctx.Done():
				return errors.WithStack(ctx.Err())
			default:
			}
		}

		header.Nonce = nonce
		if HashToBig(consensushashing.HeaderHash(header)).Cmp(target) <= 0 {
			return nil
		}
		if nonce == ^uint64(0) {
			return errors.WithStack(ErrNonceExhausted)
		}
	}
}
