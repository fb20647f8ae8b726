// internal/app/features/dashboard/page.go
package dashboard

import (
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/tokenvote/internal/app/features/errors"
	"github.com/dalemusser/tokenvote/internal/app/system/display"
	"github.com/dalemusser/tokenvote/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/ethereum/go-ethereum/common"
)

const notLoaded = "-"

type valueVM struct {
	Text string
	Err  string
}

type dashboardData struct {
	viewdata.BaseVM

	Block         valueVM
	TokenAddress  valueVM
	BallotAddress valueVM
	User          valueVM
	WalletKind    string

	LedgerBalance valueVM
	TokenBalance  valueVM
	TokenSupply   valueVM
	VotingPower   valueVM
	VotesCast     valueVM

	MintTx            valueVM
	DelegateTx        valueVM
	DelegationPending bool

	HasWallet   bool
	HasToken    bool
	HasBallot   bool
	CanDelegate bool
	Accounts    []string
	UpdatedAt   string
}

// ServeDashboard renders the dashboard for the caller's session.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.session(w, r)
	if !ok {
		return
	}
	var accounts []common.Address
	if h.Keystore != nil {
		accounts = h.Keystore.Accounts()
	}
	data := newDashboardData(viewdata.NewBaseVM(r, "Dashboard", "/dashboard"), c.Snapshot(), accounts)
	templates.Render(w, r, "dashboard_page", data)
}

// ServeState handles GET /dashboard/state.
func (h *Handler) ServeState(w http.ResponseWriter, r *http.Request) {
	c, _, ok := h.session(w, r)
	if !ok {
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, c.Snapshot())
}

func newDashboardData(base viewdata.BaseVM, s *display.Snapshot, accounts []common.Address) dashboardData {
	d := dashboardData{
		BaseVM:        base,
		Block:         valueVM{Text: blockText(s), Err: s.Err(display.FieldBlock)},
		TokenAddress:  text(s.TokenAddress, s.Err(display.FieldTokenAddress)),
		BallotAddress: text(s.BallotAddress, s.Err(display.FieldBallotAddress)),
		User:          text(s.UserAddress, s.Err(display.FieldUser)),
		WalletKind:    s.WalletKind,

		LedgerBalance: amount(s.LedgerBalance, s.Err(display.FieldLedgerBalance)),
		TokenBalance:  amount(s.TokenBalance, s.Err(display.FieldTokenBalance)),
		TokenSupply:   amount(s.TokenSupply, s.Err(display.FieldTokenSupply)),
		VotingPower:   amount(s.VotingPower, s.Err(display.FieldVotingPower)),
		VotesCast:     amount(s.VotesCast, s.Err(display.FieldVotesCast)),

		MintTx:            text(s.MintTx, s.Err(display.FieldMintTx)),
		DelegateTx:        text(s.DelegateTx, s.Err(display.FieldDelegateTx)),
		DelegationPending: s.DelegationPending,

		HasWallet: s.HasWallet(),
		HasToken:  s.TokenAddress != "",
		HasBallot: s.BallotAddress != "",
	}
	d.CanDelegate = d.HasWallet && d.HasToken && !d.DelegationPending
	for _, a := range accounts {
		d.Accounts = append(d.Accounts, a.Hex())
	}
	if !s.UpdatedAt.IsZero() {
		d.UpdatedAt = s.UpdatedAt.Format("15:04:05")
	}
	return d
}

func blockText(s *display.Snapshot) string {
	switch {
	case s.BlockLoading:
		return "Loading..."
	case s.BlockNumber != nil:
		return strconv.FormatUint(*s.BlockNumber, 10)
	default:
		return notLoaded
	}
}

func text(v, err string) valueVM {
	if v == "" {
		v = notLoaded
	}
	return valueVM{Text: v, Err: err}
}

func amount(v *float64, err string) valueVM {
	if v == nil {
		return valueVM{Text: notLoaded, Err: err}
	}
	return valueVM{Text: strconv.FormatFloat(*v, 'f', -1, 64), Err: err}
}
