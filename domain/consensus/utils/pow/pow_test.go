package pow

import (
	"context"
	"testing"

	"github.com/FranklinWaller/Rutile/domain/consensus/model/externalapi"
	"github.com/FranklinWaller/Rutile/domain/consensus/utils/math"
)

func TestSolveAndCheck(t *testing.T) {
	const bits = 0x1f7fffff
	powMax := math.CompactToBig(0x207fffff)
	header := &externalapi.DomainBlockHeader{
		Number:         2,
		ParentHashes:   []*externalapi.DomainHash{externalapi.NewZeroHash()},
		HashMerkleRoot: externalapi.NewZeroHash(),
		Bits:           bits,
	}

	err := Solve(context.Background(), header)
	if err != nil {
		t.Fatalf("TestSolveAndCheck: Solve: %+v", err)
	}
	err = CheckProofOfWork(header, powMax)
	if err != nil {
		t.Fatalf("TestSolveAndCheck: CheckProofOfWork of a solved header: %+v", err)
	}

	header.Bits = 0x2100ffff
	err = CheckProofOfWork(header, powMax)
	if err == nil {
		t.Fatalf("TestSolveAndCheck: a target above the maximum was accepted")
	}
}

func TestSolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	header := &externalapi.DomainBlockHeader{HashMerkleRoot: externalapi.NewZeroHash(), Bits: 0x03000001}
	err := Solve(ctx, header)
	if err == nil {
		t.Fatalf("TestSolveCancelled: expected an error from a cancelled context")
	}
}
