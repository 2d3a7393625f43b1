package lottery_test

import (
	"errors"
	"fmt"
	"testing"

	"cosmossdk.io/log"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/cryptoji/Tokens-Flipper/internal/lottery"
	"github.com/cryptoji/Tokens-Flipper/internal/state"
)

const (
	operator = "op"
	deposit  = uint64(10)
)

var players = []string{"alice", "bob", "carol", "dave", "eve"}

type transferCall struct {
	from, to string
	amount   uint64
}

// fakeBank records transfers and applies them to the state's balances. When
// failAt is set, transfers to that account fail.
type fakeBank struct {
	st     *state.State
	calls  []transferCall
	failTo string
}

func (b *fakeBank) Transfer(from, to string, amount uint64) error {
	if b.failTo != "" && to == b.failTo {
		return fmt.Errorf("custody offline")
	}
	if err := b.st.Transfer(from, to, amount); err != nil {
		return err
	}
	b.calls = append(b.calls, transferCall{from: from, to: to, amount: amount})
	return nil
}

func newKeeper(t *testing.T) (*lottery.Keeper, *state.State, *fakeBank) {
	t.Helper()
	st := state.NewState()
	st.Height = 100
	st.Operator = operator
	for _, p := range players {
		st.Accounts[p] = 1000
	}
	bank := &fakeBank{st: st}
	return lottery.NewKeeper(st, bank, log.NewNopLogger()), st, bank
}

func secretFor(addr string, n uint64) []byte {
	return lottery.Commitment(uint256.NewInt(n), addr)
}

func numberFor(addr string) uint64 {
	return uint64(len(addr))*7919 + 13
}

// openSession creates config {p, w, duration} and a session on it.
func openSession(t *testing.T, k *lottery.Keeper, p, w, duration uint64) uint64 {
	t.Helper()
	cfgID, err := k.CreateConfig(operator, p, w, duration)
	require.NoError(t, err)
	sid, err := k.CreateSession(operator, cfgID, deposit, lottery.Enrollment{})
	require.NoError(t, err)
	return sid
}

func commitAll(t *testing.T, k *lottery.Keeper, sid uint64, addrs ...string) {
	t.Helper()
	for _, a := range addrs {
		require.NoError(t, k.Commit(a, sid, secretFor(a, numberFor(a)), deposit), "commit %s", a)
	}
}

func revealAll(t *testing.T, k *lottery.Keeper, sid uint64, addrs ...string) {
	t.Helper()
	for _, a := range addrs {
		require.NoError(t, k.Reveal(a, sid, uint256.NewInt(numberFor(a))), "reveal %s", a)
	}
}

func requireKind(t *testing.T, err error, target error, kind lottery.Kind) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, target), "got %v, want %v", err, target)
	require.Equal(t, kind, lottery.KindOf(err))
}

func TestCreateConfig_Validation(t *testing.T) {
	k, st, _ := newKeeper(t)

	_, err := k.CreateConfig(operator, 0, 0, 10)
	requireKind(t, err, lottery.ErrInvalidConfig, lottery.KindValidation)
	_, err = k.CreateConfig(operator, 4, 0, 10)
	requireKind(t, err, lottery.ErrInvalidConfig, lottery.KindValidation)
	_, err = k.CreateConfig(operator, 2, 3, 10)
	requireKind(t, err, lottery.ErrInvalidConfig, lottery.KindValidation)
	_, err = k.CreateConfig("alice", 4, 2, 10)
	requireKind(t, err, lottery.ErrUnauthorized, lottery.KindAuthorization)

	st.Operator = ""
	_, err = k.CreateConfig(operator, 4, 2, 10)
	requireKind(t, err, lottery.ErrUnauthorized, lottery.KindAuthorization)
	require.Zero(t, k.ConfigCount())
}

func TestCreateConfig_AppendsStableIndexes(t *testing.T) {
	k, _, _ := newKeeper(t)

	for i := uint64(0); i < 3; i++ {
		id, err := k.CreateConfig(operator, 4+i, 2, 10)
		require.NoError(t, err)
		require.Equal(t, i, id)
	}
	cfg, err := k.GetConfig(1)
	require.NoError(t, err)
	require.Equal(t, state.GameConfig{ID: 1, ParticipantsNumber: 5, WinnersNumber: 2, Duration: 10}, cfg)

	_, err = k.GetConfig(3)
	requireKind(t, err, lottery.ErrConfigNotFound, lottery.KindNotFound)

	ev := k.Events()
	require.Len(t, ev, 3)
	require.Equal(t, lottery.EventTypeConfigurationCreated, ev[2].Type)
	require.Equal(t, "2", ev[2].Attr("configId"))
}

func TestCreateSession_DeadlineAndEnrollment(t *testing.T) {
	k, st, _ := newKeeper(t)
	cfgID, err := k.CreateConfig(operator, 4, 2, 10)
	require.NoError(t, err)

	sid, err := k.CreateSession(operator, cfgID, deposit, lottery.Enrollment{})
	require.NoError(t, err)
	s, err := k.GetSession(sid)
	require.NoError(t, err)
	require.Equal(t, st.Height+10, s.Deadline)
	require.Zero(t, s.CommitCount)
	require.True(t, s.OwnerInvolved())

	opSecret := secretFor(operator, 99)
	sid2, err := k.CreateSession(operator, cfgID, deposit, lottery.Enrollment{OperatorSeeded: true, Secret: opSecret})
	require.NoError(t, err)
	s2, err := k.GetSession(sid2)
	require.NoError(t, err)
	require.Equal(t, uint64(1), s2.CommitCount)
	require.Equal(t, []string{operator}, s2.Participants)
	require.True(t, s2.Entries[operator].Committed)
	require.True(t, s2.Entries[operator].Seeded)
	require.False(t, s2.Entries[operator].Revealed)
	require.Equal(t, uint64(2), k.SessionCount())

	// The seeded slot moves no value.
	require.Zero(t, st.Balance(lottery.EscrowAccount))
}

func TestCreateSession_Rejects(t *testing.T) {
	k, _, _ := newKeeper(t)
	cfgID, err := k.CreateConfig(operator, 4, 2, 10)
	require.NoError(t, err)
	single, err := k.CreateConfig(operator, 1, 1, 10)
	require.NoError(t, err)

	_, err = k.CreateSession(operator, 7, deposit, lottery.Enrollment{})
	requireKind(t, err, lottery.ErrConfigNotFound, lottery.KindNotFound)
	_, err = k.CreateSession("alice", cfgID, deposit, lottery.Enrollment{})
	requireKind(t, err, lottery.ErrUnauthorized, lottery.KindAuthorization)
	_, err = k.CreateSession(operator, cfgID, 0, lottery.Enrollment{})
	requireKind(t, err, lottery.ErrInvalidRequest, lottery.KindValidation)
	_, err = k.CreateSession(operator, cfgID, deposit, lottery.Enrollment{OperatorSeeded: true, Secret: []byte{1}})
	requireKind(t, err, lottery.ErrInvalidRequest, lottery.KindValidation)
	_, err = k.CreateSession(operator, single, deposit, lottery.Enrollment{OperatorSeeded: true, Secret: secretFor(operator, 1)})
	requireKind(t, err, lottery.ErrInvalidRequest, lottery.KindValidation)

	_, err = k.GetSession(0)
	requireKind(t, err, lottery.ErrSessionNotFound, lottery.KindNotFound)
}

func TestCommit_EscrowsDepositAndEnforcesSlots(t *testing.T) {
	k, st, bank := newKeeper(t)
	sid := openSession(t, k, 2, 1, 10)

	commitAll(t, k, sid, "alice")
	err := k.Commit("alice", sid, secretFor("alice", 1), deposit)
	requireKind(t, err, lottery.ErrAlreadyCommitted, lottery.KindAlreadyDone)

	err = k.Commit("bob", sid, secretFor("bob", 1), deposit-1)
	requireKind(t, err, lottery.ErrBadDeposit, lottery.KindValidation)

	commitAll(t, k, sid, "bob")
	err = k.Commit("carol", sid, secretFor("carol", 1), deposit)
	requireKind(t, err, lottery.ErrPoolFull, lottery.KindPhase)

	s, err := k.GetSession(sid)
	require.NoError(t, err)
	require.Equal(t, uint64(2), s.CommitCount)
	require.Equal(t, []string{"alice", "bob"}, s.Participants)
	require.Equal(t, 2*deposit, st.Balance(lottery.EscrowAccount))
	require.Equal(t, []transferCall{
		{from: "alice", to: lottery.EscrowAccount, amount: deposit},
		{from: "bob", to: lottery.EscrowAccount, amount: deposit},
	}, bank.calls)
}

func TestCommit_FailedEscrowLeavesSessionUntouched(t *testing.T) {
	k, st, _ := newKeeper(t)
	sid := openSession(t, k, 2, 1, 10)
	st.Accounts["alice"] = deposit - 1

	err := k.Commit("alice", sid, secretFor("alice", 1), deposit)
	requireKind(t, err, lottery.ErrBadDeposit, lottery.KindValidation)

	s, err := k.GetSession(sid)
	require.NoError(t, err)
	require.Zero(t, s.CommitCount)
	require.Empty(t, s.Participants)
	require.Nil(t, s.Participant("alice"))
	require.Equal(t, deposit-1, st.Balance("alice"))
}

func TestCommit_RejectsAfterDeadline(t *testing.T) {
	k, st, _ := newKeeper(t)
	sid := openSession(t, k, 2, 1, 10)

	st.Height += 10
	commitAll(t, k, sid, "alice")

	st.Height++
	err := k.Commit("bob", sid, secretFor("bob", 1), deposit)
	requireKind(t, err, lottery.ErrGameExpired, lottery.KindPhase)
}

func TestReveal_PhaseOrdering(t *testing.T) {
	k, _, _ := newKeeper(t)
	sid := openSession(t, k, 2, 1, 10)

	commitAll(t, k, sid, "alice")
	err := k.Reveal("alice", sid, uint256.NewInt(numberFor("alice")))
	requireKind(t, err, lottery.ErrPoolNotFull, lottery.KindPhase)

	commitAll(t, k, sid, "bob")
	err = k.Reveal("carol", sid, uint256.NewInt(1))
	requireKind(t, err, lottery.ErrNotCommitted, lottery.KindAuthorization)

	revealAll(t, k, sid, "alice")
	err = k.Reveal("alice", sid, uint256.NewInt(numberFor("alice")))
	requireKind(t, err, lottery.ErrAlreadyRevealed, lottery.KindAlreadyDone)

	revealAll(t, k, sid, "bob")
	err = k.Reveal("bob", sid, uint256.NewInt(numberFor("bob")))
	requireKind(t, err, lottery.ErrAllRevealed, lottery.KindPhase)
}

func TestReveal_RejectsAfterDeadlineAndOnFinalizedSessions(t *testing.T) {
	k, st, _ := newKeeper(t)

	expired := openSession(t, k, 2, 1, 10)
	commitAll(t, k, expired, "alice", "bob")
	st.Height += 11
	err := k.Reveal("alice", expired, uint256.NewInt(numberFor("alice")))
	requireKind(t, err, lottery.ErrGameExpired, lottery.KindPhase)

	require.NoError(t, k.Close("alice", expired))
	err = k.Reveal("bob", expired, uint256.NewInt(numberFor("bob")))
	requireKind(t, err, lottery.ErrGameFinalized, lottery.KindPhase)

	completed := openSession(t, k, 3, 1, 10)
	commitAll(t, k, completed, "alice", "bob", "carol")
	revealAll(t, k, completed, "alice")
	st.Height += 11
	_, err = k.Complete(completed)
	require.NoError(t, err)
	err = k.Reveal("bob", completed, uint256.NewInt(numberFor("bob")))
	requireKind(t, err, lottery.ErrGameFinalized, lottery.KindPhase)
	require.Equal(t, uint64(1), mustSession(t, k, completed).RevealCount)
}

// Scenario C.
func TestReveal_MismatchedNumberIsRejected(t *testing.T) {
	k, _, _ := newKeeper(t)
	sid := openSession(t, k, 2, 1, 10)
	commitAll(t, k, sid, "alice", "bob")

	err := k.Reveal("alice", sid, uint256.NewInt(numberFor("alice")+1))
	requireKind(t, err, lottery.ErrBadReveal, lottery.KindIntegrity)

	// Bob cannot open Alice's commitment either: the hash binds the address.
	s, err := k.GetSession(sid)
	require.NoError(t, err)
	s.Entries["bob"].Secret = append([]byte(nil), s.Entries["alice"].Secret...)
	err = k.Reveal("bob", sid, uint256.NewInt(numberFor("alice")))
	requireKind(t, err, lottery.ErrBadReveal, lottery.KindIntegrity)

	require.Zero(t, s.RevealCount)
	require.True(t, s.Random.IsZero())
	require.False(t, s.Entries["alice"].Revealed)
}

func TestReveal_AccumulatorWrapsAt256Bits(t *testing.T) {
	k, _, _ := newKeeper(t)
	sid := openSession(t, k, 2, 1, 10)

	maxWord := new(uint256.Int).SetAllOne()
	require.NoError(t, k.Commit("alice", sid, lottery.Commitment(maxWord, "alice"), deposit))
	require.NoError(t, k.Commit("bob", sid, lottery.Commitment(uint256.NewInt(5), "bob"), deposit))
	require.NoError(t, k.Reveal("alice", sid, maxWord))
	require.NoError(t, k.Reveal("bob", sid, uint256.NewInt(5)))

	s, err := k.GetSession(sid)
	require.NoError(t, err)
	require.Equal(t, uint64(4), s.Random.Uint64())
	require.True(t, s.Random.IsUint64())
}

// Scenario A.
func TestScenarioA_AllRevealTwoWinnersSplitPool(t *testing.T) {
	k, st, _ := newKeeper(t)
	sid := openSession(t, k, 4, 2, 10)
	addrs := players[:4]

	commitAll(t, k, sid, addrs...)
	revealAll(t, k, sid, addrs...)

	st.Height += 3
	winners, err := k.Complete(sid)
	require.NoError(t, err)
	require.Len(t, winners, 2)
	require.NotEqual(t, winners[0], winners[1])

	s, err := k.GetSession(sid)
	require.NoError(t, err)
	require.True(t, s.Completed)
	require.False(t, s.Closed)
	require.Equal(t, st.Height, s.SettledHeight)

	payout, err := lottery.SessionPayout(s)
	require.NoError(t, err)
	require.Equal(t, lottery.Payout{PrizePool: 4 * deposit, Winners: 2, Reward: 2 * deposit}, payout)

	for _, w := range winners {
		before := st.Balance(w)
		amount, err := k.Claim(w, sid)
		require.NoError(t, err)
		require.Equal(t, 2*deposit, amount)
		require.Equal(t, before+2*deposit, st.Balance(w))
	}
	require.Zero(t, st.Balance(lottery.EscrowAccount))

	for _, a := range addrs {
		if s.WinnerSet[a] {
			continue
		}
		_, err := k.Claim(a, sid)
		requireKind(t, err, lottery.ErrNotEligible, lottery.KindAuthorization)
	}

	var completed *lottery.Event
	for _, ev := range k.Events() {
		if ev.Type == lottery.EventTypeCompleted {
			ev := ev
			completed = &ev
		}
	}
	require.NotNil(t, completed)
	require.Equal(t, winners[0]+","+winners[1], completed.Attr("winners"))
}

// Scenario B.
func TestScenarioB_NoRevealsCloseAndRefund(t *testing.T) {
	k, st, _ := newKeeper(t)
	sid := openSession(t, k, 4, 2, 10)
	commitAll(t, k, sid, "alice", "bob")

	err := k.Close("alice", sid)
	requireKind(t, err, lottery.ErrNotExpiredOrHasReveals, lottery.KindPhase)

	st.Height += 11
	err = k.Close("carol", sid)
	requireKind(t, err, lottery.ErrNotParticipant, lottery.KindAuthorization)

	_, err = k.Complete(sid)
	requireKind(t, err, lottery.ErrNoReveals, lottery.KindPhase)

	require.NoError(t, k.Close("bob", sid))
	err = k.Close("alice", sid)
	requireKind(t, err, lottery.ErrGameClosed, lottery.KindPhase)
	_, err = k.Complete(sid)
	requireKind(t, err, lottery.ErrGameClosed, lottery.KindPhase)

	for _, a := range []string{"alice", "bob"} {
		amount, err := k.Claim(a, sid)
		require.NoError(t, err)
		require.Equal(t, deposit, amount)
		require.Equal(t, uint64(1000), st.Balance(a))
	}
	_, err = k.Claim("carol", sid)
	requireKind(t, err, lottery.ErrNotEligible, lottery.KindAuthorization)
	require.Zero(t, st.Balance(lottery.EscrowAccount))
}

// Scenario D.
func TestScenarioD_SecondClaimFails(t *testing.T) {
	k, st, _ := newKeeper(t)
	sid := openSession(t, k, 2, 1, 10)
	commitAll(t, k, sid, "alice", "bob")
	revealAll(t, k, sid, "alice", "bob")
	winners, err := k.Complete(sid)
	require.NoError(t, err)
	require.Len(t, winners, 1)

	_, err = k.Claim(winners[0], sid)
	require.NoError(t, err)
	bal := st.Balance(winners[0])

	_, err = k.Claim(winners[0], sid)
	requireKind(t, err, lottery.ErrAlreadyRewarded, lottery.KindAlreadyDone)
	require.Equal(t, bal, st.Balance(winners[0]))
}

func TestComplete_Preconditions(t *testing.T) {
	k, st, _ := newKeeper(t)
	sid := openSession(t, k, 3, 1, 10)

	_, err := k.Claim("alice", sid)
	requireKind(t, err, lottery.ErrNotFinalized, lottery.KindPhase)

	commitAll(t, k, sid, "alice", "bob", "carol")
	_, err = k.Complete(sid)
	requireKind(t, err, lottery.ErrNoReveals, lottery.KindPhase)

	revealAll(t, k, sid, "alice")
	_, err = k.Complete(sid)
	requireKind(t, err, lottery.ErrNotReady, lottery.KindPhase)

	st.Height += 11
	_, err = k.Complete(sid)
	require.NoError(t, err)

	_, err = k.Complete(sid)
	requireKind(t, err, lottery.ErrGameFinalized, lottery.KindPhase)
	err = k.Close("alice", sid)
	requireKind(t, err, lottery.ErrGameFinalized, lottery.KindPhase)
	err = k.Commit("dave", sid, secretFor("dave", 1), deposit)
	requireKind(t, err, lottery.ErrGameFinalized, lottery.KindPhase)

	_, err = k.Complete(42)
	requireKind(t, err, lottery.ErrSessionNotFound, lottery.KindNotFound)
}

func TestComplete_ExpiredSkipsNonRevealers(t *testing.T) {
	k, st, _ := newKeeper(t)
	sid := openSession(t, k, 5, 5, 10)
	commitAll(t, k, sid, players...)
	revealAll(t, k, sid, "alice", "carol")

	st.Height += 11
	winners, err := k.Complete(sid)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"alice", "carol"}, winners)

	payout, err := lottery.SessionPayout(mustSession(t, k, sid))
	require.NoError(t, err)
	require.Equal(t, 5*deposit/2, payout.Reward)
	require.Equal(t, 5*deposit%2, payout.Remainder)

	_, err = k.Claim("bob", sid)
	requireKind(t, err, lottery.ErrNotEligible, lottery.KindAuthorization)
}

func TestOperatorSeededSlot_NeverWinsNorRefunds(t *testing.T) {
	k, st, _ := newKeeper(t)
	cfgID, err := k.CreateConfig(operator, 3, 3, 10)
	require.NoError(t, err)
	sid, err := k.CreateSession(operator, cfgID, deposit, lottery.Enrollment{OperatorSeeded: true, Secret: secretFor(operator, numberFor(operator))})
	require.NoError(t, err)

	commitAll(t, k, sid, "alice", "bob")
	err = k.Commit("carol", sid, secretFor("carol", 1), deposit)
	requireKind(t, err, lottery.ErrPoolFull, lottery.KindPhase)

	revealAll(t, k, sid, operator, "alice", "bob")
	winners, err := k.Complete(sid)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"alice", "bob"}, winners)

	s := mustSession(t, k, sid)
	payout, err := lottery.SessionPayout(s)
	require.NoError(t, err)
	require.Equal(t, 2*deposit, payout.PrizePool)
	require.Equal(t, deposit, payout.Reward)

	_, err = k.Claim(operator, sid)
	requireKind(t, err, lottery.ErrNotEligible, lottery.KindAuthorization)
	for _, w := range winners {
		_, err := k.Claim(w, sid)
		require.NoError(t, err)
	}
	require.Zero(t, st.Balance(lottery.EscrowAccount))
}

func TestOperatorSeededSlot_ClosedSessionRefundsOnlyDepositors(t *testing.T) {
	k, st, _ := newKeeper(t)
	cfgID, err := k.CreateConfig(operator, 3, 1, 10)
	require.NoError(t, err)
	sid, err := k.CreateSession(operator, cfgID, deposit, lottery.Enrollment{OperatorSeeded: true, Secret: secretFor(operator, 1)})
	require.NoError(t, err)
	commitAll(t, k, sid, "alice")

	st.Height += 11
	require.NoError(t, k.Close(operator, sid))

	_, err = k.Claim(operator, sid)
	requireKind(t, err, lottery.ErrNotEligible, lottery.KindAuthorization)
	amount, err := k.Claim("alice", sid)
	require.NoError(t, err)
	require.Equal(t, deposit, amount)
}

func TestOperatorSeededSlot_RevealAloneDoesNotBlockRefunds(t *testing.T) {
	k, st, _ := newKeeper(t)
	cfgID, err := k.CreateConfig(operator, 3, 1, 10)
	require.NoError(t, err)
	sid, err := k.CreateSession(operator, cfgID, deposit, lottery.Enrollment{OperatorSeeded: true, Secret: secretFor(operator, numberFor(operator))})
	require.NoError(t, err)
	commitAll(t, k, sid, "alice", "bob")

	revealAll(t, k, sid, operator)
	s := mustSession(t, k, sid)
	require.Equal(t, uint64(1), s.RevealCount)
	require.Zero(t, s.DepositorReveals)

	st.Height += 11
	_, err = k.Complete(sid)
	requireKind(t, err, lottery.ErrNoReveals, lottery.KindPhase)

	require.NoError(t, k.Close("alice", sid))
	for _, p := range []string{"alice", "bob"} {
		amount, err := k.Claim(p, sid)
		require.NoError(t, err)
		require.Equal(t, deposit, amount)
	}
	_, err = k.Claim(operator, sid)
	requireKind(t, err, lottery.ErrNotEligible, lottery.KindAuthorization)
	require.Zero(t, st.Balance(lottery.EscrowAccount))
}

func TestOperatorSeededSlot_DepositorRevealBlocksClose(t *testing.T) {
	k, st, _ := newKeeper(t)
	cfgID, err := k.CreateConfig(operator, 3, 3, 10)
	require.NoError(t, err)
	sid, err := k.CreateSession(operator, cfgID, deposit, lottery.Enrollment{OperatorSeeded: true, Secret: secretFor(operator, numberFor(operator))})
	require.NoError(t, err)
	commitAll(t, k, sid, "alice", "bob")
	revealAll(t, k, sid, operator, "bob")

	st.Height += 11
	err = k.Close("alice", sid)
	requireKind(t, err, lottery.ErrNotExpiredOrHasReveals, lottery.KindPhase)

	winners, err := k.Complete(sid)
	require.NoError(t, err)
	require.Equal(t, []string{"bob"}, winners)
}

func TestClaim_CustodyFailureKeepsParticipantUnrewarded(t *testing.T) {
	k, st, bank := newKeeper(t)
	sid := openSession(t, k, 2, 1, 10)
	commitAll(t, k, sid, "alice", "bob")
	st.Height += 11
	require.NoError(t, k.Close("alice", sid))

	bank.failTo = "alice"
	_, err := k.Claim("alice", sid)
	requireKind(t, err, lottery.ErrCustodyFailed, lottery.KindCustody)
	require.False(t, mustSession(t, k, sid).Entries["alice"].Rewarded)

	bank.failTo = ""
	amount, err := k.Claim("alice", sid)
	require.NoError(t, err)
	require.Equal(t, deposit, amount)
}

func TestClaims_NeverExceedPrizePool(t *testing.T) {
	for w := uint64(1); w <= 5; w++ {
		t.Run(fmt.Sprintf("winners=%d", w), func(t *testing.T) {
			k, st, _ := newKeeper(t)
			sid := openSession(t, k, 5, w, 10)
			commitAll(t, k, sid, players...)
			revealAll(t, k, sid, players[:4]...)
			st.Height += 11

			winners, err := k.Complete(sid)
			require.NoError(t, err)
			require.LessOrEqual(t, uint64(len(winners)), w)

			var paid uint64
			for _, a := range winners {
				amount, err := k.Claim(a, sid)
				require.NoError(t, err)
				paid += amount
			}
			payout, err := lottery.SessionPayout(mustSession(t, k, sid))
			require.NoError(t, err)
			require.LessOrEqual(t, paid, payout.PrizePool)
			require.Equal(t, payout.PrizePool-paid, st.Balance(lottery.EscrowAccount))
		})
	}
}

func mustSession(t *testing.T, k *lottery.Keeper, id uint64) *state.Session {
	t.Helper()
	s, err := k.GetSession(id)
	require.NoError(t, err)
	return s
}
