// internal/app/system/controller/ports.go
package controller

import (
	"context"
	"math/big"

	"github.com/dalemusser/tokenvote/internal/app/store/activity"
	"github.com/dalemusser/tokenvote/internal/app/system/backend"
	"github.com/dalemusser/tokenvote/internal/app/system/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Ledger is the chain endpoint the controller queries.
type Ledger interface {
	ChainID() *big.Int
	BlockNumber(ctx context.Context) (uint64, error)
	BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error)
	Token(addr common.Address, signer *ledger.Signer) Token
	Ballot(addr common.Address) Ballot
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Token is a bound token contract.
type Token interface {
	TotalSupply(ctx context.Context) (*big.Int, error)
	BalanceOf(ctx context.Context, account common.Address) (*big.Int, error)
	Delegate(ctx context.Context, delegatee common.Address) (*types.Transaction, error)
}

// Ballot is a bound ballot contract.
type Ballot interface {
	VotingPower(ctx context.Context, account common.Address) (*big.Int, error)
	VotesCast(ctx context.Context, account common.Address) (*big.Int, error)
}

// Backend hands out contract addresses and mints tokens.
type Backend interface {
	TokenAddress(ctx context.Context) (common.Address, error)
	BallotAddress(ctx context.Context) (common.Address, error)
	RequestTokens(ctx context.Context, addr common.Address, amount string) (*backend.MintReceipt, error)
}

// Wallets grants access to keystore accounts.
type Wallets interface {
	Unlock(account, passphrase string, chainID *big.Int) (*ledger.Signer, error)
	Lock(addr common.Address) error
}

// Recorder persists transaction activity.
type Recorder interface {
	Record(ctx context.Context, event activity.Event)
	SetStatus(ctx context.Context, txHash, status, errMsg string)
}

// FromConn adapts a ledger connection to the Ledger port.
func FromConn(c *ledger.Conn) Ledger {
	return connLedger{c}
}

type connLedger struct {
	*ledger.Conn
}

func (l connLedger) Token(addr common.Address, signer *ledger.Signer) Token {
	return l.Conn.Token(addr, signer)
}

func (l connLedger) Ballot(addr common.Address) Ballot {
	return l.Conn.Ballot(addr)
}
