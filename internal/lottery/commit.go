package lottery

import (
	"github.com/holiman/uint256"

	"github.com/cryptoji/Tokens-Flipper/internal/state"
)

// Commit records caller's commitment and escrows amount, which must equal the
// session deposit.
func (k *Keeper) Commit(caller string, sessionID uint64, secret []byte, amount uint64) error {
	if caller == "" {
		return ErrInvalidRequest.Wrap("missing caller")
	}
	if len(secret) != SecretSize {
		return ErrInvalidRequest.Wrapf("secret must be %d bytes", SecretSize)
	}
	s, cfg, err := k.session(sessionID)
	if err != nil {
		return err
	}
	if s.Finalized() {
		return ErrGameFinalized.Wrapf("session %d", sessionID)
	}
	if height := k.height(); height > s.Deadline {
		return ErrGameExpired.Wrapf("height=%d deadline=%d", height, s.Deadline)
	}
	if s.CommitCount >= cfg.ParticipantsNumber {
		return ErrPoolFull.Wrapf("%d/%d committed", s.CommitCount, cfg.ParticipantsNumber)
	}
	if p := s.Participant(caller); p != nil && p.Committed {
		return ErrAlreadyCommitted.Wrapf("session %d", sessionID)
	}
	if amount != s.Deposit {
		return ErrBadDeposit.Wrapf("got %d want %d", amount, s.Deposit)
	}
	if err := k.bank.Transfer(caller, EscrowAccount, amount); err != nil {
		return ErrBadDeposit.Wrap(err.Error())
	}

	s.Participants = append(s.Participants, caller)
	s.Entries[caller] = &state.Participant{
		Secret:    append([]byte(nil), secret...),
		Committed: true,
	}
	s.CommitCount++

	k.emit(EventTypeCommitted, "sessionId", u64(sessionID), "address", caller)
	return nil
}

// Reveal opens caller's commitment and folds number into the session's
// random accumulator (mod 2^256). Reveals open only once every slot is
// committed.
func (k *Keeper) Reveal(caller string, sessionID uint64, number *uint256.Int) error {
	if caller == "" {
		return ErrInvalidRequest.Wrap("missing caller")
	}
	if number == nil {
		return ErrInvalidRequest.Wrap("missing number")
	}
	s, cfg, err := k.session(sessionID)
	if err != nil {
		return err
	}
	if s.Finalized() {
		return ErrGameFinalized.Wrapf("session %d", sessionID)
	}
	if height := k.height(); height > s.Deadline {
		return ErrGameExpired.Wrapf("height=%d deadline=%d", height, s.Deadline)
	}
	if s.CommitCount != cfg.ParticipantsNumber {
		return ErrPoolNotFull.Wrapf("%d/%d committed", s.CommitCount, cfg.ParticipantsNumber)
	}
	if s.RevealCount >= cfg.ParticipantsNumber {
		return ErrAllRevealed.Wrapf("session %d", sessionID)
	}
	p := s.Participant(caller)
	if p == nil || !p.Committed {
		return ErrNotCommitted.Wrapf("session %d", sessionID)
	}
	if p.Revealed {
		return ErrAlreadyRevealed.Wrapf("session %d", sessionID)
	}
	if !VerifyCommitment(p.Secret, number, caller) {
		return ErrBadReveal.Wrapf("session %d", sessionID)
	}

	s.RevealCount++
	if !p.Seeded {
		s.DepositorReveals++
	}
	s.Random.Add(s.Random, number)
	p.Revealed = true

	k.emit(EventTypeRevealed, "sessionId", u64(sessionID), "address", caller)
	return nil
}
