// internal/app/system/ledger/abi.go
package ledger

import (
	"bytes"
	"embed"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Embed the contract interface descriptions.
//
//go:embed abi/*.json
var abiFS embed.FS

var (
	// TokenABI is the governance token interface (ERC20Votes subset).
	TokenABI = mustLoadABI("abi/token.json")
	// BallotABI is the tokenized ballot interface.
	BallotABI = mustLoadABI("abi/ballot.json")
)

func mustLoadABI(name string) abi.ABI {
	raw, err := abiFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("ledger: read %s: %v", name, err))
	}
	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("ledger: parse %s: %v", name, err))
	}
	return parsed
}
