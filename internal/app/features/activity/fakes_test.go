package activity_test

import (
	"context"
	"math/big"

	"github.com/dalemusser/tokenvote/internal/app/system/controller"
	"github.com/dalemusser/tokenvote/internal/app/system/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// chainOnly answers chain id and balance reads and nothing else.
type chainOnly struct{}

func (chainOnly) ChainID() *big.Int { return big.NewInt(1337) }

func (chainOnly) BlockNumber(ctx context.Context) (uint64, error) { return 1, nil }

func (chainOnly) BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (chainOnly) Token(addr common.Address, signer *ledger.Signer) controller.Token { return nil }

func (chainOnly) Ballot(addr common.Address) controller.Ballot { return nil }

func (chainOnly) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return nil, nil
}
