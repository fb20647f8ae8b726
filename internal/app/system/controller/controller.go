// internal/app/system/controller/controller.go

// Package controller holds the per-session dashboard controller. It turns
// user actions into ledger reads, backend calls and one signed transaction,
// and publishes every result to a display.Store.
//
// Every operation returns its error and also records it against the display
// field it was meant to update. Precondition failures (no token address, no
// wallet, and so on) return a sentinel without making any external call and
// leave the display untouched.
package controller

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/dalemusser/tokenvote/internal/app/store/activity"
	"github.com/dalemusser/tokenvote/internal/app/system/display"
	"github.com/dalemusser/tokenvote/internal/app/system/ledger"
	"github.com/dalemusser/tokenvote/internal/app/system/timeouts"
	"github.com/dalemusser/tokenvote/internal/app/system/units"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoTokenAddress  = errors.New("token address not known")
	ErrNoBallotAddress = errors.New("ballot address not known")
	ErrNoWallet        = errors.New("no wallet connected")
	ErrNotReady        = errors.New("token binding and signer required")
	ErrNoKeystore      = errors.New("keystore not configured")
	ErrTxFailed        = ledger.ErrTxFailed
)

// Native currency balances always use 18 decimals.
const nativeDecimals = 18

// Options configures a Controller.
type Options struct {
	// SessionID tags recorded activity.
	SessionID string
	// Decimals is the token's fixed-point scale. Zero means units.DefaultDecimals.
	Decimals int
	// Wallets unlocks keystore accounts. Nil disables ConnectWallet.
	Wallets Wallets
	// Recorder persists mint and delegation activity. May be nil.
	Recorder Recorder
	Logger   *zap.Logger
}

// Controller serves one dashboard session. All methods are safe for
// concurrent use.
type Controller struct {
	id       string
	ledger   Ledger
	backend  Backend
	wallets  Wallets
	recorder Recorder
	decimals int
	display  *display.Store
	log      *zap.Logger

	mu     sync.Mutex
	signer *ledger.Signer

	tokens  ledger.Cache[Token]
	ballots ledger.Cache[Ballot]
}

// New creates a controller with an empty display.
func New(l Ledger, b Backend, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SessionID != "" {
		logger = logger.With(zap.String("session", opts.SessionID))
	}
	decimals := opts.Decimals
	if decimals <= 0 {
		decimals = units.DefaultDecimals
	}
	return &Controller{
		id:       opts.SessionID,
		ledger:   l,
		backend:  b,
		wallets:  opts.Wallets,
		recorder: opts.Recorder,
		decimals: decimals,
		display:  display.NewStore(logger),
		log:      logger,
	}
}

// Snapshot returns the current display state.
func (c *Controller) Snapshot() *display.Snapshot {
	return c.display.Snapshot()
}

// Close locks a keystore signer and stops the display store.
func (c *Controller) Close() {
	c.mu.Lock()
	s := c.signer
	c.signer = nil
	c.mu.Unlock()

	c.lock(s)
	c.display.Close()
}

// RefreshBlock shows the loading placeholder, then concurrently fetches the
// latest block and the token address. A new token address triggers
// RefreshTokenInfo.
func (c *Controller) RefreshBlock(ctx context.Context) error {
	t := c.display.Begin(display.FieldBlock)
	c.display.Apply(t, func(s *display.Snapshot) {
		s.BlockNumber = nil
		s.BlockLoading = true
	})

	var g errgroup.Group
	g.Go(func() error {
		n, err := c.ledger.BlockNumber(ctx)
		if err != nil {
			c.display.Fail(t, err)
			c.log.Warn("block number failed", zap.Error(err))
			return fmt.Errorf("block number: %w", err)
		}
		c.display.Apply(t, func(s *display.Snapshot) {
			s.BlockNumber = display.Uint(n)
			s.BlockLoading = false
		})
		return nil
	})
	g.Go(func() error {
		if err := c.refreshTokenAddress(ctx); err != nil {
			return err
		}
		return c.RefreshTokenInfo(ctx)
	})
	return g.Wait()
}

// ClearBlock removes the block number from the display.
func (c *Controller) ClearBlock() {
	c.display.Set(display.FieldBlock, func(s *display.Snapshot) {
		s.BlockNumber = nil
		s.BlockLoading = false
	})
}

func (c *Controller) refreshTokenAddress(ctx context.Context) error {
	t := c.display.Begin(display.FieldTokenAddress)
	addr, err := c.backend.TokenAddress(ctx)
	if err != nil {
		c.display.Fail(t, err)
		c.log.Warn("token address failed", zap.Error(err))
		return fmt.Errorf("token address: %w", err)
	}
	c.display.Apply(t, func(s *display.Snapshot) {
		s.TokenAddress = addr.Hex()
	})
	return nil
}

// RefreshBallotAddress fetches the ballot address, then runs
// RefreshBallotInfo.
func (c *Controller) RefreshBallotAddress(ctx context.Context) error {
	t := c.display.Begin(display.FieldBallotAddress)
	addr, err := c.backend.BallotAddress(ctx)
	if err != nil {
		c.display.Fail(t, err)
		c.log.Warn("ballot address failed", zap.Error(err))
		return fmt.Errorf("ballot address: %w", err)
	}
	c.display.Apply(t, func(s *display.Snapshot) {
		s.BallotAddress = addr.Hex()
	})
	return c.RefreshBallotInfo(ctx)
}

// RefreshTokenInfo reads the token supply, and the user's token balance when
// a wallet is connected.
func (c *Controller) RefreshTokenInfo(ctx context.Context) error {
	tok, ok := c.tokenBinding()
	if !ok {
		return ErrNoTokenAddress
	}

	var g errgroup.Group
	g.Go(func() error {
		return c.read(ctx, display.FieldTokenSupply, c.decimals, tok.TotalSupply,
			func(s *display.Snapshot, v *float64) { s.TokenSupply = v })
	})
	if user, ok := c.user(); ok {
		g.Go(func() error { return c.readTokenBalance(ctx, tok, user) })
	}
	return g.Wait()
}

// RefreshBallotInfo reads the user's voting power and votes cast. Without a
// wallet both values are cleared.
func (c *Controller) RefreshBallotInfo(ctx context.Context) error {
	snap := c.display.Snapshot()
	if snap.BallotAddress == "" {
		return ErrNoBallotAddress
	}
	addr := common.HexToAddress(snap.BallotAddress)
	ballot, err := c.ballots.Get(addr, ledger.ReadOnly, func() (Ballot, error) {
		return c.ledger.Ballot(addr), nil
	})
	if err != nil {
		return err
	}

	user, ok := c.user()
	if !ok {
		c.display.Set(display.FieldVotingPower, func(s *display.Snapshot) { s.VotingPower = nil })
		c.display.Set(display.FieldVotesCast, func(s *display.Snapshot) { s.VotesCast = nil })
		return nil
	}

	var g errgroup.Group
	g.Go(func() error {
		return c.read(ctx, display.FieldVotingPower, c.decimals,
			func(ctx context.Context) (*big.Int, error) { return ballot.VotingPower(ctx, user) },
			func(s *display.Snapshot, v *float64) { s.VotingPower = v })
	})
	g.Go(func() error {
		return c.read(ctx, display.FieldVotesCast, c.decimals,
			func(ctx context.Context) (*big.Int, error) { return ballot.VotesCast(ctx, user) },
			func(s *display.Snapshot, v *float64) { s.VotesCast = v })
	})
	return g.Wait()
}

// CreateWallet connects a freshly generated in-memory key.
func (c *Controller) CreateWallet(ctx context.Context) error {
	signer, err := ledger.NewGeneratedSigner(c.ledger.ChainID())
	if err != nil {
		c.display.Fail(c.display.Begin(display.FieldUser), err)
		return fmt.Errorf("create wallet: %w", err)
	}
	return c.connect(ctx, signer)
}

// ConnectWallet unlocks a keystore account with its passphrase and connects
// it.
func (c *Controller) ConnectWallet(ctx context.Context, account, passphrase string) error {
	if c.wallets == nil {
		return ErrNoKeystore
	}
	signer, err := c.wallets.Unlock(strings.TrimSpace(account), passphrase, c.ledger.ChainID())
	if err != nil {
		c.display.Fail(c.display.Begin(display.FieldUser), err)
		c.log.Warn("wallet access refused", zap.String("account", account), zap.Error(err))
		return fmt.Errorf("connect wallet: %w", err)
	}
	return c.connect(ctx, signer)
}

// connect installs signer and loads the values that depend on the user.
func (c *Controller) connect(ctx context.Context, signer *ledger.Signer) error {
	// The user ticket is issued under mu so the displayed user follows the
	// same order as signer swaps.
	c.mu.Lock()
	prev := c.signer
	c.signer = signer
	ut := c.display.Begin(display.FieldUser)
	c.mu.Unlock()

	if prev != nil && prev.Address() != signer.Address() {
		c.lock(prev)
		// Values read for the previous user no longer apply.
		c.display.Set(display.FieldLedgerBalance, func(s *display.Snapshot) { s.LedgerBalance = nil })
		c.display.Set(display.FieldTokenBalance, func(s *display.Snapshot) { s.TokenBalance = nil })
		c.display.Set(display.FieldVotingPower, func(s *display.Snapshot) { s.VotingPower = nil })
		c.display.Set(display.FieldVotesCast, func(s *display.Snapshot) { s.VotesCast = nil })
	}

	user := signer.Address()
	c.display.Apply(ut, func(s *display.Snapshot) {
		s.UserAddress = user.Hex()
		s.WalletKind = string(signer.Kind())
	})
	c.log.Info("wallet connected",
		zap.String("address", user.Hex()),
		zap.String("kind", string(signer.Kind())))

	var g errgroup.Group
	g.Go(func() error {
		return c.read(ctx, display.FieldLedgerBalance, nativeDecimals,
			func(ctx context.Context) (*big.Int, error) { return c.ledger.BalanceAt(ctx, user) },
			func(s *display.Snapshot, v *float64) { s.LedgerBalance = v })
	})
	if tok, ok := c.tokenBinding(); ok {
		g.Go(func() error { return c.readTokenBalance(ctx, tok, user) })
	}
	if c.display.Snapshot().BallotAddress != "" {
		g.Go(func() error { return c.RefreshBallotInfo(ctx) })
	}
	return g.Wait()
}

// RequestTokenMint asks the backend to mint amount tokens to the connected
// user. The request is sent once.
func (c *Controller) RequestTokenMint(ctx context.Context, amount string) error {
	user, ok := c.user()
	if !ok {
		return ErrNoWallet
	}
	amount = strings.TrimSpace(amount)
	if _, err := units.ParseUnits(amount, c.decimals); err != nil {
		err = fmt.Errorf("amount %q: %w", amount, err)
		c.display.Fail(c.display.Begin(display.FieldMintTx), err)
		return err
	}

	bt := c.display.Begin(display.FieldTokenBalance)
	mt := c.display.Begin(display.FieldMintTx)
	rcpt, err := c.backend.RequestTokens(ctx, user, amount)
	if err != nil {
		c.display.Fail(mt, err)
		c.record(ctx, activity.Event{
			Address: user.Hex(),
			Kind:    activity.KindMint,
			Amount:  amount,
			Status:  activity.StatusFailed,
			Error:   err.Error(),
		})
		return fmt.Errorf("request tokens: %w", err)
	}

	c.display.Apply(bt, func(s *display.Snapshot) { s.TokenBalance = display.Float(rcpt.Amount) })
	c.display.Apply(mt, func(s *display.Snapshot) { s.MintTx = rcpt.TxHash })
	c.record(ctx, activity.Event{
		Address: user.Hex(),
		Kind:    activity.KindMint,
		Amount:  amount,
		TxHash:  rcpt.TxHash,
		Status:  activity.StatusConfirmed,
	})
	return nil
}

// SelfDelegate delegates the user's voting weight to themselves, waits for
// the transaction to be mined and refreshes the ballot values.
func (c *Controller) SelfDelegate(ctx context.Context) error {
	tx, err := c.StartDelegation(ctx)
	if err != nil {
		return err
	}
	return c.FinishDelegation(ctx, tx)
}

// StartDelegation sends delegate(user) and marks the delegation pending.
func (c *Controller) StartDelegation(ctx context.Context) (*types.Transaction, error) {
	signer := c.currentSigner()
	tok, ok := c.tokenBinding()
	if signer == nil || !ok {
		return nil, ErrNotReady
	}
	user := signer.Address()

	t := c.display.Begin(display.FieldDelegateTx)
	tx, err := tok.Delegate(ctx, user)
	if err != nil {
		c.display.Fail(t, err)
		c.log.Warn("delegate failed", zap.Error(err))
		c.record(ctx, activity.Event{
			Address: user.Hex(),
			Kind:    activity.KindDelegate,
			Status:  activity.StatusFailed,
			Error:   err.Error(),
		})
		return nil, fmt.Errorf("delegate: %w", err)
	}

	hash := tx.Hash().Hex()
	c.display.Apply(t, func(s *display.Snapshot) {
		s.DelegateTx = hash
		s.DelegationPending = true
	})
	c.record(ctx, activity.Event{
		Address: user.Hex(),
		Kind:    activity.KindDelegate,
		TxHash:  hash,
		Status:  activity.StatusSubmitted,
	})
	return tx, nil
}

// FinishDelegation waits for tx, clears the pending flag and, on success,
// refreshes the ballot values.
func (c *Controller) FinishDelegation(ctx context.Context, tx *types.Transaction) error {
	hash := tx.Hash().Hex()
	t := c.display.Begin(display.FieldDelegateTx)

	_, err := c.ledger.WaitMined(ctx, tx)
	c.display.Apply(t, func(s *display.Snapshot) { s.DelegationPending = false })
	if err != nil {
		c.display.Fail(t, err)
		c.log.Warn("delegation not confirmed", zap.String("tx", hash), zap.Error(err))
		c.setStatus(ctx, hash, activity.StatusFailed, err.Error())
		return fmt.Errorf("delegation %s: %w", hash, err)
	}
	c.setStatus(ctx, hash, activity.StatusConfirmed, "")

	if err := c.RefreshBallotInfo(ctx); err != nil && !errors.Is(err, ErrNoBallotAddress) {
		return err
	}
	return nil
}

// read runs call under a ticket for f and publishes the scaled result.
func (c *Controller) read(
	ctx context.Context,
	f display.Field,
	decimals int,
	call func(context.Context) (*big.Int, error),
	set func(*display.Snapshot, *float64),
) error {
	t := c.display.Begin(f)
	v, err := call(ctx)
	if err != nil {
		c.display.Fail(t, err)
		c.log.Warn("ledger read failed", zap.String("field", string(f)), zap.Error(err))
		return fmt.Errorf("%s: %w", f, err)
	}
	val := display.Float(units.ToFloat(v, decimals))
	c.display.Apply(t, func(s *display.Snapshot) { set(s, val) })
	return nil
}

func (c *Controller) readTokenBalance(ctx context.Context, tok Token, user common.Address) error {
	return c.read(ctx, display.FieldTokenBalance, c.decimals,
		func(ctx context.Context) (*big.Int, error) { return tok.BalanceOf(ctx, user) },
		func(s *display.Snapshot, v *float64) { s.TokenBalance = v })
}

// tokenBinding returns the token bound with the best available credential,
// or false when no token address is known.
func (c *Controller) tokenBinding() (Token, bool) {
	snap := c.display.Snapshot()
	if snap.TokenAddress == "" {
		return nil, false
	}
	addr := common.HexToAddress(snap.TokenAddress)
	signer := c.currentSigner()
	tok, err := c.tokens.Get(addr, signer.Identity(), func() (Token, error) {
		return c.ledger.Token(addr, signer), nil
	})
	if err != nil {
		return nil, false
	}
	return tok, true
}

// user returns the connected signer's address. The signer, not the
// snapshot, is authoritative.
func (c *Controller) user() (common.Address, bool) {
	s := c.currentSigner()
	if s == nil {
		return common.Address{}, false
	}
	return s.Address(), true
}

func (c *Controller) currentSigner() *ledger.Signer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signer
}

func (c *Controller) lock(s *ledger.Signer) {
	if s == nil || s.Kind() != ledger.KindKeystore || c.wallets == nil {
		return
	}
	if err := c.wallets.Lock(s.Address()); err != nil {
		c.log.Warn("keystore lock failed", zap.String("address", s.Address().Hex()), zap.Error(err))
	}
}

// recordContext detaches activity writes from ctx, which is often the
// request or job context that just expired.
func recordContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), timeouts.Short())
}

func (c *Controller) record(ctx context.Context, ev activity.Event) {
	if c.recorder == nil {
		return
	}
	ev.SessionID = c.id
	ctx, cancel := recordContext(ctx)
	defer cancel()
	c.recorder.Record(ctx, ev)
}

func (c *Controller) setStatus(ctx context.Context, hash, status, errMsg string) {
	if c.recorder == nil {
		return
	}
	ctx, cancel := recordContext(ctx)
	defer cancel()
	c.recorder.SetStatus(ctx, hash, status, errMsg)
}
