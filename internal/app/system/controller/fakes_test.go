package controller_test

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/dalemusser/tokenvote/internal/app/store/activity"
	"github.com/dalemusser/tokenvote/internal/app/system/backend"
	"github.com/dalemusser/tokenvote/internal/app/system/controller"
	"github.com/dalemusser/tokenvote/internal/app/system/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	tokenAddr  = common.HexToAddress("0x1000000000000000000000000000000000000001")
	ballotAddr = common.HexToAddress("0x2000000000000000000000000000000000000002")
)

// wei returns n * 10^18 / div.
func wei(n, div int64) *big.Int {
	v := new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	return v.Div(v, big.NewInt(div))
}

type fakeLedger struct {
	mu sync.Mutex

	block     func(ctx context.Context) (uint64, error)
	balance   *big.Int
	token     *fakeToken
	ballot    *fakeBallot
	waitErr   error
	waitCalls int
	// waitUntilDone makes WaitMined block until ctx ends.
	waitUntilDone bool

	tokenBinds  int
	ballotBinds int
	signers     []*ledger.Signer
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		block:   func(context.Context) (uint64, error) { return 42, nil },
		balance: wei(5, 2),
		token:   &fakeToken{supply: wei(1000, 1), balance: wei(3, 1)},
		ballot:  &fakeBallot{power: wei(10, 1), cast: wei(1, 1)},
	}
}

var _ controller.Ledger = (*fakeLedger)(nil)

func (l *fakeLedger) ChainID() *big.Int { return big.NewInt(1337) }

func (l *fakeLedger) BlockNumber(ctx context.Context) (uint64, error) {
	return l.block(ctx)
}

func (l *fakeLedger) BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error) {
	return l.balance, nil
}

func (l *fakeLedger) Token(addr common.Address, signer *ledger.Signer) controller.Token {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokenBinds++
	l.signers = append(l.signers, signer)
	return l.token
}

func (l *fakeLedger) Ballot(addr common.Address) controller.Ballot {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ballotBinds++
	return l.ballot
}

func (l *fakeLedger) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	l.mu.Lock()
	l.waitCalls++
	err := l.waitErr
	block := l.waitUntilDone
	l.mu.Unlock()
	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: tx.Hash()}, nil
}

func (l *fakeLedger) binds() (tokens, ballots int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tokenBinds, l.ballotBinds
}

func (l *fakeLedger) lastSigner() *ledger.Signer {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.signers) == 0 {
		return nil
	}
	return l.signers[len(l.signers)-1]
}

type fakeToken struct {
	mu          sync.Mutex
	supply      *big.Int
	balance     *big.Int
	delegateErr error
	reads       int
	delegated   []common.Address
}

func (t *fakeToken) TotalSupply(ctx context.Context) (*big.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reads++
	return t.supply, nil
}

func (t *fakeToken) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reads++
	return t.balance, nil
}

func (t *fakeToken) Delegate(ctx context.Context, delegatee common.Address) (*types.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.delegateErr != nil {
		return nil, t.delegateErr
	}
	t.delegated = append(t.delegated, delegatee)
	to := tokenAddr
	return types.NewTx(&types.LegacyTx{Nonce: uint64(len(t.delegated)), To: &to, Gas: 50000, GasPrice: big.NewInt(1)}), nil
}

func (t *fakeToken) readCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reads
}

func (t *fakeToken) delegations() []common.Address {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]common.Address(nil), t.delegated...)
}

type fakeBallot struct {
	mu    sync.Mutex
	power *big.Int
	cast  *big.Int
	reads int
}

func (b *fakeBallot) VotingPower(ctx context.Context, account common.Address) (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reads++
	return b.power, nil
}

func (b *fakeBallot) VotesCast(ctx context.Context, account common.Address) (*big.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reads++
	return b.cast, nil
}

func (b *fakeBallot) setPower(v *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.power = v
}

func (b *fakeBallot) readCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reads
}

type mintCall struct {
	addr   common.Address
	amount string
}

type fakeBackend struct {
	mu         sync.Mutex
	token      common.Address
	ballot     common.Address
	tokenErr   error
	ballotErr  error
	mintErr    error
	receipt    backend.MintReceipt
	mints      []mintCall
	tokenCalls int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		token:   tokenAddr,
		ballot:  ballotAddr,
		receipt: backend.MintReceipt{Amount: 5, TxHash: "0xabc"},
	}
}

var _ controller.Backend = (*fakeBackend)(nil)

func (b *fakeBackend) TokenAddress(ctx context.Context) (common.Address, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokenCalls++
	return b.token, b.tokenErr
}

func (b *fakeBackend) BallotAddress(ctx context.Context) (common.Address, error) {
	return b.ballot, b.ballotErr
}

func (b *fakeBackend) RequestTokens(ctx context.Context, addr common.Address, amount string) (*backend.MintReceipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mints = append(b.mints, mintCall{addr: addr, amount: amount})
	if b.mintErr != nil {
		return nil, b.mintErr
	}
	r := b.receipt
	return &r, nil
}

func (b *fakeBackend) mintCalls() []mintCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]mintCall(nil), b.mints...)
}

type statusUpdate struct {
	hash, status, err string
}

type fakeRecorder struct {
	mu       sync.Mutex
	events   []activity.Event
	statuses []statusUpdate
	// ctxErrs holds ctx.Err() as seen by every call.
	ctxErrs []error
}

var _ controller.Recorder = (*fakeRecorder)(nil)

func (r *fakeRecorder) Record(ctx context.Context, ev activity.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	r.ctxErrs = append(r.ctxErrs, ctx.Err())
}

func (r *fakeRecorder) SetStatus(ctx context.Context, hash, status, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, statusUpdate{hash, status, errMsg})
	r.ctxErrs = append(r.ctxErrs, ctx.Err())
}

var errUnavailable = errors.New("service unavailable")
