package lottery

import (
	"github.com/holiman/uint256"
)

// Slot is one committed position, in commit order, as seen by the selector.
type Slot struct {
	Address  string
	Revealed bool
	// Seeded slots occupy a position but never win.
	Seeded bool
}

// SelectionSeed returns (random + height) mod participantsNumber with the
// addition wrapping at 2^256.
func SelectionSeed(random *uint256.Int, height uint64, participantsNumber uint64) uint64 {
	if participantsNumber == 0 {
		return 0
	}
	sum := new(uint256.Int)
	if random != nil {
		sum.Set(random)
	}
	sum.AddUint64(sum, height)
	return sum.Mod(sum, uint256.NewInt(participantsNumber)).Uint64()
}

// SelectionWindow returns the run [start, start+size) of slot indexes the
// walk visits. The run is centred on seed (right-biased for even sizes) and
// shifted as little as needed to fit inside [0, slots).
func SelectionWindow(seed, winnersNumber, slots uint64) (start, size uint64) {
	if slots == 0 || winnersNumber == 0 {
		return 0, 0
	}
	size = min(winnersNumber, slots)
	half := (size - 1) / 2
	if seed > half {
		start = seed - half
	}
	return min(start, slots-size), size
}

// WalkOrder lists the window's indexes in visiting order: centre first, then
// alternately one step right and one step left.
func WalkOrder(start, size uint64) []uint64 {
	if size == 0 {
		return nil
	}
	center := start + (size-1)/2
	end := start + size
	out := make([]uint64, 0, size)
	out = append(out, center)
	for step := uint64(1); uint64(len(out)) < size; step++ {
		if center+step < end {
			out = append(out, center+step)
		}
		if step <= center-start && uint64(len(out)) < size {
			out = append(out, center-step)
		}
	}
	return out
}

// SelectWinners is the pure selection function. It returns the revealed,
// non-seeded addresses inside the walk window in walk order, each at most
// once. Identical inputs always yield an identical sequence.
func SelectWinners(random *uint256.Int, height uint64, participantsNumber, winnersNumber uint64, slots []Slot) []string {
	seed := SelectionSeed(random, height, participantsNumber)
	start, size := SelectionWindow(seed, winnersNumber, uint64(len(slots)))

	seen := make(map[string]bool, size)
	var winners []string
	for _, idx := range WalkOrder(start, size) {
		slot := slots[idx]
		if !slot.Revealed || slot.Seeded || seen[slot.Address] {
			continue
		}
		seen[slot.Address] = true
		winners = append(winners, slot.Address)
	}
	return winners
}

// Complete selects the winners of a session that every slot revealed in, or
// whose deadline passed after at least one depositor revealed.
func (k *Keeper) Complete(sessionID uint64) ([]string, error) {
	s, cfg, err := k.session(sessionID)
	if err != nil {
		return nil, err
	}
	if s.Completed {
		return nil, ErrGameFinalized.Wrapf("session %d", sessionID)
	}
	if s.Closed {
		return nil, ErrGameClosed.Wrapf("session %d", sessionID)
	}
	if s.DepositorReveals == 0 {
		return nil, ErrNoReveals.Wrapf("session %d: %d reveals, none from a depositor", sessionID, s.RevealCount)
	}
	height := k.height()
	if s.RevealCount != cfg.ParticipantsNumber && height <= s.Deadline {
		return nil, ErrNotReady.Wrapf("%d/%d revealed, deadline=%d height=%d", s.RevealCount, cfg.ParticipantsNumber, s.Deadline, height)
	}

	slots := make([]Slot, len(s.Participants))
	for i, addr := range s.Participants {
		p := s.Participant(addr)
		slots[i] = Slot{Address: addr, Revealed: p != nil && p.Revealed, Seeded: p != nil && p.Seeded}
	}
	selected := SelectWinners(s.Random, uint64(height), cfg.ParticipantsNumber, cfg.WinnersNumber, slots)

	var winners []string
	seen := make(map[string]bool, len(selected))
	for _, addr := range selected {
		if seen[addr] || s.WinnerSet[addr] {
			continue
		}
		seen[addr] = true
		winners = append(winners, addr)
	}
	payout, err := ComputePayout(s.Deposit, s.Contributors(), uint64(len(winners)))
	if err != nil {
		return nil, err
	}

	for _, addr := range winners {
		s.WinnerSet[addr] = true
		s.Winners = append(s.Winners, addr)
	}
	s.Completed = true
	s.SettledHeight = height

	k.emit(EventTypeCompleted,
		"sessionId", u64(sessionID),
		"winners", joinAddrs(s.Winners),
		"reward", u64(payout.Reward),
		"remainder", u64(payout.Remainder),
	)
	k.logger.Info("session completed", "sessionId", sessionID, "winners", len(s.Winners), "reward", payout.Reward)
	return append([]string(nil), s.Winners...), nil
}
