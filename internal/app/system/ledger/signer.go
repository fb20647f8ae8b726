// internal/app/system/ledger/signer.go
package ledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// Kind says where a signer's key lives.
type Kind string

const (
	// KindGenerated is a throwaway key generated in memory.
	KindGenerated Kind = "generated"
	// KindKeystore is an account from the node operator's keystore,
	// unlocked with its passphrase.
	KindKeystore Kind = "keystore"
)

// ReadOnly is the credential identity of a binding without a signer.
const ReadOnly = "read-only"

var (
	ErrUnknownAccount = errors.New("account not found in keystore")
	ErrAccessDenied   = errors.New("account access denied")
)

// Signer can authorize state-changing calls for one address.
type Signer struct {
	kind    Kind
	address common.Address
	opts    *bind.TransactOpts
}

// NewGeneratedSigner creates a signer over a fresh random key.
func NewGeneratedSigner(chainID *big.Int) (*Signer, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return NewKeySigner(key, chainID)
}

// NewKeySigner wraps an existing private key.
func NewKeySigner(key *ecdsa.PrivateKey, chainID *big.Int) (*Signer, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("transactor: %w", err)
	}
	return &Signer{
		kind:    KindGenerated,
		address: crypto.PubkeyToAddress(key.PublicKey),
		opts:    opts,
	}, nil
}

// Address returns the signing address.
func (s *Signer) Address() common.Address { return s.address }

// Kind returns where the key lives.
func (s *Signer) Kind() Kind { return s.kind }

// Identity keys binding caches. A nil signer is the read-only identity.
func (s *Signer) Identity() string {
	if s == nil {
		return ReadOnly
	}
	return string(s.kind) + ":" + s.address.Hex()
}

// TransactOpts returns a copy of the signer's transact options bound to ctx.
func (s *Signer) TransactOpts(ctx context.Context) *bind.TransactOpts {
	opts := *s.opts
	opts.Context = ctx
	return &opts
}

// Keystore exposes the accounts of an encrypted key directory. Unlocking an
// account with its passphrase is the server-side equivalent of a browser
// wallet granting account access.
type Keystore struct {
	ks  *keystore.KeyStore
	log *zap.Logger
}

// OpenKeystore opens dir with the standard scrypt parameters.
func OpenKeystore(dir string, logger *zap.Logger) *Keystore {
	return OpenKeystoreWithParams(dir, keystore.StandardScryptN, keystore.StandardScryptP, logger)
}

// OpenKeystoreWithParams opens dir with explicit scrypt parameters.
func OpenKeystoreWithParams(dir string, scryptN, scryptP int, logger *zap.Logger) *Keystore {
	return &Keystore{
		ks:  keystore.NewKeyStore(dir, scryptN, scryptP),
		log: logger,
	}
}

// Accounts lists the addresses in the keystore.
func (k *Keystore) Accounts() []common.Address {
	accts := k.ks.Accounts()
	out := make([]common.Address, len(accts))
	for i, a := range accts {
		out[i] = a.Address
	}
	return out
}

// NewAccount creates an encrypted account.
func (k *Keystore) NewAccount(passphrase string) (common.Address, error) {
	acct, err := k.ks.NewAccount(passphrase)
	if err != nil {
		return common.Address{}, fmt.Errorf("new account: %w", err)
	}
	return acct.Address, nil
}

// Unlock grants access to account and returns a signer for it.
func (k *Keystore) Unlock(account, passphrase string, chainID *big.Int) (*Signer, error) {
	if !common.IsHexAddress(account) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAccount, account)
	}
	acct, err := k.ks.Find(accounts.Account{Address: common.HexToAddress(account)})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, account)
	}
	if err := k.ks.Unlock(acct, passphrase); err != nil {
		k.log.Warn("keystore unlock refused",
			zap.String("account", acct.Address.Hex()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrAccessDenied, err)
	}

	opts, err := bind.NewKeyStoreTransactorWithChainID(k.ks, acct, chainID)
	if err != nil {
		return nil, fmt.Errorf("transactor: %w", err)
	}
	return &Signer{kind: KindKeystore, address: acct.Address, opts: opts}, nil
}

// Lock drops the decrypted key for addr.
func (k *Keystore) Lock(addr common.Address) error {
	return k.ks.Lock(addr)
}
