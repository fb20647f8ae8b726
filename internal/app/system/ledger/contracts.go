// internal/app/system/ledger/contracts.go
package ledger

import (
	"context"
	"fmt"
	"math/big"

	"github.com/dalemusser/tokenvote/internal/app/system/metrics"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Token is a binding to the governance token.
type Token struct {
	contract *bind.BoundContract
	signer   *Signer
}

// NewToken binds the token at addr. transactor may be nil for a read-only
// binding; Delegate then fails with ErrReadOnly.
func NewToken(addr common.Address, caller bind.ContractCaller, transactor bind.ContractTransactor, signer *Signer) *Token {
	return &Token{
		contract: bind.NewBoundContract(addr, TokenABI, caller, transactor, nil),
		signer:   signer,
	}
}

// TotalSupply reads totalSupply().
func (t *Token) TotalSupply(ctx context.Context) (*big.Int, error) {
	return callUint(ctx, t.contract, "totalSupply")
}

// BalanceOf reads balanceOf(account).
func (t *Token) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	return callUint(ctx, t.contract, "balanceOf", account)
}

// Delegate sends delegate(delegatee) signed by the binding's signer.
func (t *Token) Delegate(ctx context.Context, delegatee common.Address) (*types.Transaction, error) {
	if t.signer == nil {
		return nil, ErrReadOnly
	}
	tx, err := t.contract.Transact(t.signer.TransactOpts(ctx), "delegate", delegatee)
	metrics.LedgerCall("delegate", err)
	if err != nil {
		return nil, fmt.Errorf("delegate to %s: %w", delegatee.Hex(), err)
	}
	return tx, nil
}

// Ballot is a binding to the tokenized ballot.
type Ballot struct {
	contract *bind.BoundContract
}

// NewBallot binds the ballot at addr. Only read calls are exposed, so the
// binding never needs a signer.
func NewBallot(addr common.Address, caller bind.ContractCaller) *Ballot {
	return &Ballot{
		contract: bind.NewBoundContract(addr, BallotABI, caller, nil, nil),
	}
}

// VotingPower reads votingPower(account).
func (b *Ballot) VotingPower(ctx context.Context, account common.Address) (*big.Int, error) {
	return callUint(ctx, b.contract, "votingPower", account)
}

// VotesCast reads votesCast(account).
func (b *Ballot) VotesCast(ctx context.Context, account common.Address) (*big.Int, error) {
	return callUint(ctx, b.contract, "votesCast", account)
}

func callUint(ctx context.Context, c *bind.BoundContract, method string, args ...interface{}) (*big.Int, error) {
	var out []interface{}
	err := c.Call(&bind.CallOpts{Context: ctx}, &out, method, args...)
	metrics.LedgerCall(method, err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%s: expected 1 result, got %d", method, len(out))
	}
	v, ok := abi.ConvertType(out[0], new(big.Int)).(*big.Int)
	if !ok || v == nil {
		return nil, fmt.Errorf("%s: unexpected result type %T", method, out[0])
	}
	return v, nil
}
