// internal/app/system/display/snapshot.go
package display

import (
	"maps"
	"time"
)

// Field names one display value. Every field is written by exactly one kind
// of completion and is ordered independently of the others.
type Field string

const (
	FieldBlock         Field = "block"
	FieldLedgerBalance Field = "ledger_balance"
	FieldTokenBalance  Field = "token_balance"
	FieldTokenSupply   Field = "token_supply"
	FieldVotingPower   Field = "voting_power"
	FieldVotesCast     Field = "votes_cast"
	FieldUser          Field = "user"
	FieldTokenAddress  Field = "token_address"
	FieldBallotAddress Field = "ballot_address"
	FieldMintTx        Field = "mint_tx"
	FieldDelegateTx    Field = "delegate_tx"
)

// Snapshot is an immutable view of everything the dashboard shows.
// Nil pointers and empty strings mean "not fetched yet".
//
// A Snapshot returned by Store.Snapshot must not be modified.
type Snapshot struct {
	Version uint64 `json:"version"`

	BlockNumber  *uint64 `json:"blockNumber,omitempty"`
	BlockLoading bool    `json:"blockLoading"`

	UserAddress string `json:"userAddress,omitempty"`
	WalletKind  string `json:"walletKind,omitempty"`

	LedgerBalance *float64 `json:"ledgerBalance,omitempty"`
	TokenBalance  *float64 `json:"tokenBalance,omitempty"`
	TokenSupply   *float64 `json:"tokenSupply,omitempty"`
	VotingPower   *float64 `json:"votingPower,omitempty"`
	VotesCast     *float64 `json:"votesCast,omitempty"`

	TokenAddress  string `json:"tokenAddress,omitempty"`
	BallotAddress string `json:"ballotAddress,omitempty"`

	MintTx            string `json:"mintTx,omitempty"`
	DelegateTx        string `json:"delegateTx,omitempty"`
	DelegationPending bool   `json:"delegationPending"`

	// Errors holds the last failure per field. A successful write to a
	// field clears its entry.
	Errors map[Field]string `json:"errors,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`

	// applied is the ticket sequence that last wrote each field.
	applied map[Field]uint64
}

// HasWallet reports whether a user address is known.
func (s *Snapshot) HasWallet() bool { return s.UserAddress != "" }

// Err returns the recorded error message for f, if any.
func (s *Snapshot) Err(f Field) string {
	if s.Errors == nil {
		return ""
	}
	return s.Errors[f]
}

func (s *Snapshot) clone() *Snapshot {
	c := *s
	c.Errors = maps.Clone(s.Errors)
	c.applied = maps.Clone(s.applied)
	if c.applied == nil {
		c.applied = make(map[Field]uint64)
	}
	return &c
}

func (s *Snapshot) setError(f Field, msg string) {
	if s.Errors == nil {
		s.Errors = make(map[Field]string)
	}
	s.Errors[f] = msg
	if f == FieldBlock {
		s.BlockLoading = false
	}
}

func (s *Snapshot) clearError(f Field) {
	delete(s.Errors, f)
	if len(s.Errors) == 0 {
		s.Errors = nil
	}
}

// Float is a helper for building optional display values.
func Float(v float64) *float64 { return &v }

// Uint is a helper for building optional display values.
func Uint(v uint64) *uint64 { return &v }
