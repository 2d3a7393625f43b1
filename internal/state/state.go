package state

import (
	"encoding/json"
	"fmt"

	"github.com/cometbft/cometbft/crypto/tmhash"
	"github.com/holiman/uint256"
)

type State struct {
	Height int64 `json:"height"`

	// Operator is the single administrative account allowed to create
	// configurations and sessions and to mint devnet funds.
	Operator string `json:"operator,omitempty"`

	Accounts    map[string]uint64 `json:"accounts,omitempty"`
	AccountKeys map[string][]byte `json:"accountKeys,omitempty"` // addr -> ed25519 pubkey (32 bytes)
	NonceMax    map[string]uint64 `json:"nonceMax,omitempty"`    // signer -> last accepted tx.nonce (u64), for replay protection

	// Append-only arenas addressed by dense 0-based index.
	Configs  []GameConfig `json:"configs,omitempty"`
	Sessions []*Session   `json:"sessions,omitempty"`
}

func NewState() *State {
	st := &State{}
	st.normalize()
	return st
}

func (s *State) normalize() {
	if s.Accounts == nil {
		s.Accounts = map[string]uint64{}
	}
	if s.AccountKeys == nil {
		s.AccountKeys = map[string][]byte{}
	}
	if s.NonceMax == nil {
		s.NonceMax = map[string]uint64{}
	}
	for _, sess := range s.Sessions {
		sess.normalize()
	}
}

// Clone returns a deep copy of state suitable for staged tx execution.
func (s *State) Clone() (*State, error) {
	if s == nil {
		return nil, fmt.Errorf("state is nil")
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode state clone: %w", err)
	}
	var out State
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode state clone: %w", err)
	}
	out.normalize()
	return &out, nil
}

// AppHash is the tmhash of the canonical JSON encoding. encoding/json writes
// map keys in sorted order and empty collections are omitted, so equal states
// hash equally regardless of insertion order.
func (s *State) AppHash() []byte {
	b, _ := json.Marshal(s)
	return tmhash.Sum(b)
}

// ---- Bank ----

func (s *State) Balance(addr string) uint64 {
	return s.Accounts[addr]
}

func (s *State) Credit(addr string, amount uint64) error {
	bal := s.Accounts[addr]
	if bal > ^uint64(0)-amount {
		return fmt.Errorf("balance overflow: have=%d add=%d", bal, amount)
	}
	s.Accounts[addr] = bal + amount
	return nil
}

// Transfer moves amount from one account to another. Both sides are checked
// before either balance changes.
func (s *State) Transfer(from, to string, amount uint64) error {
	if from == "" || to == "" {
		return fmt.Errorf("transfer: missing account")
	}
	if from == to || amount == 0 {
		return nil
	}
	if bal := s.Accounts[from]; bal < amount {
		return fmt.Errorf("insufficient funds: have=%d need=%d", bal, amount)
	}
	if bal := s.Accounts[to]; bal > ^uint64(0)-amount {
		return fmt.Errorf("balance overflow: have=%d add=%d", bal, amount)
	}
	s.Accounts[from] -= amount
	s.Accounts[to] += amount
	return nil
}

// ---- Lottery ----

// GameConfig is immutable once appended to State.Configs.
type GameConfig struct {
	ID                 uint64 `json:"id"`
	ParticipantsNumber uint64 `json:"participantsNumber"`
	WinnersNumber      uint64 `json:"winnersNumber"`
	Duration           uint64 `json:"duration"` // blocks
}

type Participant struct {
	Secret    []byte `json:"secret"` // 32-byte commitment (base64 in JSON)
	Committed bool   `json:"committed"`
	Revealed  bool   `json:"revealed,omitempty"`
	Rewarded  bool   `json:"rewarded,omitempty"`

	// Seeded marks the operator slot enrolled at session creation. It paid
	// no deposit and is neither winner-eligible nor refundable.
	Seeded bool `json:"seeded,omitempty"`
}

type Session struct {
	ID       uint64 `json:"id"`
	ConfigID uint64 `json:"configId"`
	Deposit  uint64 `json:"deposit"`

	// Random accumulates revealed numbers modulo 2^256.
	Random *uint256.Int `json:"random"`

	CommitCount uint64 `json:"commitCount"`
	RevealCount uint64 `json:"revealCount"`

	// DepositorReveals counts reveals from slots that paid a deposit. The
	// operator slot's reveal adds entropy but never settles a session.
	DepositorReveals uint64 `json:"depositorReveals"`

	CreatedHeight int64 `json:"createdHeight"`
	Deadline      int64 `json:"deadline"`

	OperatorSeeded bool `json:"operatorSeeded,omitempty"`
	Completed      bool `json:"completed,omitempty"`
	Closed         bool `json:"closed,omitempty"`

	// SettledHeight is the height complete or close ran at; selection is
	// replayable from it.
	SettledHeight int64 `json:"settledHeight,omitempty"`

	Participants []string                `json:"participants,omitempty"` // commit order
	Winners      []string                `json:"winners,omitempty"`
	Entries      map[string]*Participant `json:"entries,omitempty"`
	WinnerSet    map[string]bool         `json:"winnerSet,omitempty"`
}

func (s *Session) normalize() {
	if s.Random == nil {
		s.Random = new(uint256.Int)
	}
	if s.Entries == nil {
		s.Entries = map[string]*Participant{}
	}
	if s.WinnerSet == nil {
		s.WinnerSet = map[string]bool{}
	}
}

// NewSession returns an empty open session.
func NewSession(id, configID, deposit uint64, createdHeight, deadline int64) *Session {
	s := &Session{
		ID:            id,
		ConfigID:      configID,
		Deposit:       deposit,
		CreatedHeight: createdHeight,
		Deadline:      deadline,
	}
	s.normalize()
	return s
}

// OwnerInvolved reports whether the session was created without the operator
// slot.
func (s *Session) OwnerInvolved() bool {
	return !s.OperatorSeeded
}

func (s *Session) Participant(addr string) *Participant {
	if s == nil {
		return nil
	}
	return s.Entries[addr]
}

// Finalized reports whether the session reached either terminal state.
func (s *Session) Finalized() bool {
	return s.Completed || s.Closed
}

// Contributors is the number of slots that paid a deposit.
func (s *Session) Contributors() uint64 {
	n := uint64(len(s.Participants))
	if s.OperatorSeeded && n > 0 {
		n--
	}
	return n
}

type SessionPhase string

const (
	PhaseOpen      SessionPhase = "open"
	PhaseCommitted SessionPhase = "committed"
	PhaseRevealed  SessionPhase = "revealed"
	PhaseExpired   SessionPhase = "expired"
	PhaseCompleted SessionPhase = "completed"
	PhaseClosed    SessionPhase = "closed"
)

// Phase derives the state-machine phase at the given height.
func (s *Session) Phase(cfg GameConfig, height int64) SessionPhase {
	switch {
	case s.Completed:
		return PhaseCompleted
	case s.Closed:
		return PhaseClosed
	case s.RevealCount == cfg.ParticipantsNumber:
		return PhaseRevealed
	case height > s.Deadline:
		return PhaseExpired
	case s.CommitCount == cfg.ParticipantsNumber:
		return PhaseCommitted
	default:
		return PhaseOpen
	}
}
