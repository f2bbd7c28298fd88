package blockvalidator

import (
	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/ruleerrors"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/math"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/pow"
	"github.com/pkg/errors"
)

// ValidateProofOfWork ensures that the target of the header is within the
// network limit and that the header hash satisfies it
func (v *blockValidator) ValidateProofOfWork(header *externalapi.DomainBlockHeader) error {
	target := math.CompactToBig(header.Bits)
	if target.Sign() <= 0 || target.Cmp(v.powMax) > 0 {
		return errors.Wrapf(ruleerrors.ErrTargetTooHigh, "block target difficulty of %064x is out of "+
			"the range (0, %064x]", target, v.powMax)
	}

	err := pow.CheckProofOfWork(header, v.powMax)
	if err != nil {
		return errors.Wrapf(ruleerrors.ErrInvalidPoW, "%s", err)
	}
	return nil
}
