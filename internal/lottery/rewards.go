package lottery

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/cryptoji/Tokens-Flipper/internal/state"
)

// Payout describes how a completed session's pool splits.
//
// Reward is PrizePool / Winners, truncated. Remainder (PrizePool mod Winners)
// is never distributed and stays in escrow. With zero winners the whole pool
// stays in escrow.
type Payout struct {
	PrizePool uint64 `json:"prizePool"`
	Winners   uint64 `json:"winners"`
	Reward    uint64 `json:"reward"`
	Remainder uint64 `json:"remainder"`
}

// ComputePayout splits deposit*contributors across winners.
func ComputePayout(deposit, contributors, winners uint64) (Payout, error) {
	pool := sdkmath.NewUint(deposit).MulUint64(contributors)
	if !pool.BigInt().IsUint64() {
		return Payout{}, ErrInvalidRequest.Wrapf("prize pool %s overflows uint64", pool.String())
	}
	out := Payout{PrizePool: pool.Uint64(), Winners: winners}
	if winners == 0 {
		out.Remainder = out.PrizePool
		return out, nil
	}
	out.Reward = pool.QuoUint64(winners).Uint64()
	out.Remainder = pool.Mod(sdkmath.NewUint(winners)).Uint64()
	return out, nil
}

// SessionPayout is ComputePayout over a completed session's final state.
func SessionPayout(s *state.Session) (Payout, error) {
	if s == nil {
		return Payout{}, fmt.Errorf("session is nil")
	}
	return ComputePayout(s.Deposit, s.Contributors(), uint64(len(s.Winners)))
}

// Claim pays caller what it is owed by a finalized session: its winner share
// of a completed session, or its deposit back from a closed one. Each
// participant is paid at most once. The transfer happens before the rewarded
// flag is set, so a failed transfer leaves the session untouched.
func (k *Keeper) Claim(caller string, sessionID uint64) (uint64, error) {
	if caller == "" {
		return 0, ErrInvalidRequest.Wrap("missing caller")
	}
	s, _, err := k.session(sessionID)
	if err != nil {
		return 0, err
	}
	if !s.Finalized() {
		return 0, ErrNotFinalized.Wrapf("session %d", sessionID)
	}

	p := s.Participant(caller)
	var amount uint64
	switch {
	case s.Completed:
		if !s.WinnerSet[caller] || p == nil {
			return 0, ErrNotEligible.Wrapf("%q did not win session %d", caller, sessionID)
		}
		payout, err := SessionPayout(s)
		if err != nil {
			return 0, err
		}
		amount = payout.Reward
	default:
		if p == nil || !p.Committed || p.Seeded {
			return 0, ErrNotEligible.Wrapf("%q has no deposit in session %d", caller, sessionID)
		}
		amount = s.Deposit
	}
	if p.Rewarded {
		return 0, ErrAlreadyRewarded.Wrapf("session %d", sessionID)
	}

	if err := k.bank.Transfer(EscrowAccount, caller, amount); err != nil {
		return 0, ErrCustodyFailed.Wrap(err.Error())
	}
	p.Rewarded = true

	k.emit(EventTypeRewardSent,
		"sessionId", u64(sessionID),
		"address", caller,
		"amount", u64(amount),
	)
	return amount, nil
}
