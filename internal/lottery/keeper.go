package lottery

import (
	"cosmossdk.io/log"

	"github.com/cryptoji/Tokens-Flipper/internal/state"
)

const (
	// ModuleName is the error codespace and log module.
	ModuleName = "lottery"

	// EscrowAccount custodies every committed deposit until it is paid out.
	EscrowAccount = "lottery/escrow"
)

// BankKeeper moves value between accounts. A failed Transfer must leave both
// balances untouched.
type BankKeeper interface {
	Transfer(from, to string, amount uint64) error
}

// Keeper runs the game against one State. It is not safe for concurrent use;
// the owner serializes calls (the ABCI app holds a single lock per block and
// executes every tx against a staged clone).
//
// The current height is read from State.Height, which the owner advances
// before executing a block.
type Keeper struct {
	st     *state.State
	bank   BankKeeper
	logger log.Logger

	events []Event
}

func NewKeeper(st *state.State, bank BankKeeper, logger log.Logger) *Keeper {
	if st == nil {
		panic("lottery keeper: state is nil")
	}
	if bank == nil {
		panic("lottery keeper: bank keeper is nil")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Keeper{
		st:     st,
		bank:   bank,
		logger: logger.With("module", "x/"+ModuleName),
	}
}

// Events returns the events emitted since the keeper was created.
func (k *Keeper) Events() []Event {
	return k.events
}

func (k *Keeper) height() int64 {
	return k.st.Height
}

func (k *Keeper) requireOperator(caller string) error {
	if caller == "" {
		return ErrInvalidRequest.Wrap("missing caller")
	}
	if k.st.Operator == "" {
		return ErrUnauthorized.Wrap("no operator configured")
	}
	if caller != k.st.Operator {
		return ErrUnauthorized.Wrapf("caller %q", caller)
	}
	return nil
}

func (k *Keeper) session(id uint64) (*state.Session, state.GameConfig, error) {
	if id >= uint64(len(k.st.Sessions)) {
		return nil, state.GameConfig{}, ErrSessionNotFound.Wrapf("session %d not found", id)
	}
	s := k.st.Sessions[id]
	if s.ConfigID >= uint64(len(k.st.Configs)) {
		return nil, state.GameConfig{}, ErrConfigNotFound.Wrapf("session %d references config %d", id, s.ConfigID)
	}
	return s, k.st.Configs[s.ConfigID], nil
}
