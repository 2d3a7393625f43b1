package app

import (
	"sort"

	"github.com/cryptoji/Tokens-Flipper/internal/lottery"
	"github.com/cryptoji/Tokens-Flipper/internal/state"
)

// GenesisState is the app_state section of the CometBFT genesis file.
type GenesisState struct {
	Operator string            `json:"operator"`
	Accounts map[string]uint64 `json:"accounts,omitempty"`
}

func (g GenesisState) Validate() error {
	if g.Operator == "" {
		return ErrInvalidGenesis.Wrap("missing operator")
	}
	if g.Operator == lottery.EscrowAccount {
		return ErrInvalidGenesis.Wrap("operator cannot be a module account")
	}
	var total uint64
	for _, addr := range g.sortedAccounts() {
		if addr == "" {
			return ErrInvalidGenesis.Wrap("empty account address")
		}
		if addr == lottery.EscrowAccount {
			return ErrInvalidGenesis.Wrap("escrow must start empty")
		}
		bal := g.Accounts[addr]
		if total > ^uint64(0)-bal {
			return ErrInvalidGenesis.Wrap("total supply overflows uint64")
		}
		total += bal
	}
	return nil
}

// Apply writes the genesis accounts into a fresh state.
func (g GenesisState) Apply(st *state.State) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if st.Height != 0 || len(st.Configs) != 0 || len(st.Sessions) != 0 {
		return ErrInvalidGenesis.Wrap("state already initialized")
	}
	st.Operator = g.Operator
	for _, addr := range g.sortedAccounts() {
		if err := st.Credit(addr, g.Accounts[addr]); err != nil {
			return ErrInvalidGenesis.Wrap(err.Error())
		}
	}
	return nil
}

func (g GenesisState) sortedAccounts() []string {
	out := make([]string, 0, len(g.Accounts))
	for addr := range g.Accounts {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}
