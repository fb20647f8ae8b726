// Package ledger is the dashboard's connection to an Ethereum-compatible
// chain: a read-only JSON-RPC handle, signers layered on top of it, and
// typed bindings for the token and ballot contracts.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/dalemusser/tokenvote/internal/app/system/metrics"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

var (
	// ErrTxFailed is returned when a mined transaction reverted.
	ErrTxFailed = errors.New("transaction failed")
	// ErrReadOnly is returned when a state-changing call is made on a
	// binding that has no signer.
	ErrReadOnly = errors.New("binding has no signer")
)

// Conn is a read-only handle to a JSON-RPC endpoint. It is shared by every
// dashboard session and lives for the whole process.
type Conn struct {
	client  *ethclient.Client
	chainID *big.Int
	log     *zap.Logger
}

// Dial connects to rpcURL. A zero chainID is resolved by asking the node.
func Dial(ctx context.Context, rpcURL string, chainID int64, logger *zap.Logger) (*Conn, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}

	id := big.NewInt(chainID)
	if chainID == 0 {
		id, err = client.ChainID(ctx)
		metrics.LedgerCall("chain_id", err)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("chain id: %w", err)
		}
	}

	logger.Info("ledger connected",
		zap.String("rpc_url", rpcURL),
		zap.String("chain_id", id.String()))

	return &Conn{client: client, chainID: id, log: logger}, nil
}

// ChainID returns the chain id used for signing.
func (c *Conn) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// BlockNumber returns the latest block height.
func (c *Conn) BlockNumber(ctx context.Context) (uint64, error) {
	n, err := c.client.BlockNumber(ctx)
	metrics.LedgerCall("block_number", err)
	if err != nil {
		return 0, fmt.Errorf("block number: %w", err)
	}
	return n, nil
}

// BalanceAt returns the native balance of addr at the latest block.
func (c *Conn) BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error) {
	bal, err := c.client.BalanceAt(ctx, addr, nil)
	metrics.LedgerCall("balance_at", err)
	if err != nil {
		return nil, fmt.Errorf("balance of %s: %w", addr.Hex(), err)
	}
	return bal, nil
}

// Token binds the token contract at addr. A nil signer gives a read-only
// binding.
func (c *Conn) Token(addr common.Address, signer *Signer) *Token {
	return NewToken(addr, c.client, c.client, signer)
}

// Ballot binds the ballot contract at addr.
func (c *Conn) Ballot(addr common.Address) *Ballot {
	return NewBallot(addr, c.client)
}

// WaitMined blocks until tx has a receipt.
func (c *Conn) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return WaitMined(ctx, c.client, tx)
}

// Close releases the underlying RPC client.
func (c *Conn) Close() {
	c.client.Close()
}

// WaitMined waits for tx's receipt and turns a reverted receipt into
// ErrTxFailed.
func WaitMined(ctx context.Context, b bind.DeployBackend, tx *types.Transaction) (*types.Receipt, error) {
	start := time.Now()
	receipt, err := bind.WaitMined(ctx, b, tx)
	metrics.LedgerCall("wait_mined", err)
	if err != nil {
		return nil, fmt.Errorf("wait for %s: %w", tx.Hash().Hex(), err)
	}
	metrics.TxFinality(time.Since(start))

	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s", ErrTxFailed, tx.Hash().Hex())
	}
	return receipt, nil
}
