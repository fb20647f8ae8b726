package dashboard_test

import (
	"context"
	"math/big"
	"sync"

	"github.com/dalemusser/tokenvote/internal/app/system/backend"
	"github.com/dalemusser/tokenvote/internal/app/system/controller"
	"github.com/dalemusser/tokenvote/internal/app/system/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var tokenAddr = common.HexToAddress("0x1000000000000000000000000000000000000001")

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

type stubLedger struct {
	token   stubToken
	mined   chan struct{}
	waitErr error
}

func (l *stubLedger) ChainID() *big.Int { return big.NewInt(1337) }

func (l *stubLedger) BlockNumber(ctx context.Context) (uint64, error) { return 7, nil }

func (l *stubLedger) BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error) {
	return ether(2), nil
}

func (l *stubLedger) Token(addr common.Address, signer *ledger.Signer) controller.Token {
	return l.token
}

func (l *stubLedger) Ballot(addr common.Address) controller.Ballot {
	return nil
}

func (l *stubLedger) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if l.mined != nil {
		select {
		case <-l.mined:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if l.waitErr != nil {
		return nil, l.waitErr
	}
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: tx.Hash()}, nil
}

type stubToken struct{}

func (stubToken) TotalSupply(ctx context.Context) (*big.Int, error) { return ether(1000), nil }

func (stubToken) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	return ether(3), nil
}

func (stubToken) Delegate(ctx context.Context, delegatee common.Address) (*types.Transaction, error) {
	to := tokenAddr
	return types.NewTx(&types.LegacyTx{Nonce: 1, To: &to, Gas: 50000, GasPrice: big.NewInt(1)}), nil
}

type stubBackend struct {
	mu      sync.Mutex
	mints   []string
	mintErr error
}

func (b *stubBackend) TokenAddress(ctx context.Context) (common.Address, error) {
	return tokenAddr, nil
}

func (b *stubBackend) BallotAddress(ctx context.Context) (common.Address, error) {
	return common.Address{}, &backend.StatusError{Op: "ballot address", Code: 500, Body: "boom"}
}

func (b *stubBackend) RequestTokens(ctx context.Context, addr common.Address, amount string) (*backend.MintReceipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mints = append(b.mints, amount)
	if b.mintErr != nil {
		return nil, b.mintErr
	}
	return &backend.MintReceipt{Amount: 5, TxHash: "0xabc"}, nil
}

func (b *stubBackend) mintCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.mints)
}
