package lottery

import (
	"strconv"

	"github.com/cryptoji/Tokens-Flipper/internal/state"
)

// Enrollment selects how a session's slots are filled at creation.
type Enrollment struct {
	// OperatorSeeded enrolls the operator as the first committed slot using
	// Secret. The slot pays no deposit, so it is never paid out.
	OperatorSeeded bool
	Secret         []byte
}

// CreateSession opens a session over config configID. The deadline is fixed
// at currentHeight + duration.
func (k *Keeper) CreateSession(caller string, configID uint64, deposit uint64, enroll Enrollment) (uint64, error) {
	if err := k.requireOperator(caller); err != nil {
		return 0, err
	}
	cfg, err := k.GetConfig(configID)
	if err != nil {
		return 0, err
	}
	if deposit == 0 {
		return 0, ErrInvalidRequest.Wrap("deposit must be > 0")
	}
	if enroll.OperatorSeeded {
		if len(enroll.Secret) != SecretSize {
			return 0, ErrInvalidRequest.Wrapf("creator secret must be %d bytes", SecretSize)
		}
		if cfg.ParticipantsNumber < 2 {
			return 0, ErrInvalidRequest.Wrap("operator-seeded session needs a free slot")
		}
	}

	height := k.height()
	deadline, err := addInt64AndU64Checked(height, cfg.Duration, "session deadline")
	if err != nil {
		return 0, ErrInvalidRequest.Wrap(err.Error())
	}

	id := uint64(len(k.st.Sessions))
	s := state.NewSession(id, configID, deposit, height, deadline)
	if enroll.OperatorSeeded {
		s.OperatorSeeded = true
		s.Participants = append(s.Participants, caller)
		s.Entries[caller] = &state.Participant{
			Secret:    append([]byte(nil), enroll.Secret...),
			Committed: true,
			Seeded:    true,
		}
		s.CommitCount = 1
	}
	k.st.Sessions = append(k.st.Sessions, s)

	k.emit(EventTypeSessionCreated,
		"sessionId", u64(id),
		"configId", u64(configID),
		"deposit", u64(deposit),
		"deadline", u64(uint64(deadline)),
		"operatorSeeded", strconv.FormatBool(enroll.OperatorSeeded),
	)
	k.logger.Info("session created", "sessionId", id, "configId", configID, "deadline", deadline)
	return id, nil
}

// GetSession returns the stored session. Callers must treat it as read-only.
func (k *Keeper) GetSession(id uint64) (*state.Session, error) {
	s, _, err := k.session(id)
	return s, err
}

func (k *Keeper) SessionCount() uint64 {
	return uint64(len(k.st.Sessions))
}

// Close finalizes a session no depositor revealed in before its deadline.
// Every committed participant that paid a deposit may then claim it back.
func (k *Keeper) Close(caller string, sessionID uint64) error {
	s, _, err := k.session(sessionID)
	if err != nil {
		return err
	}
	if s.Closed {
		return ErrGameClosed.Wrapf("session %d", sessionID)
	}
	if s.Completed {
		return ErrGameFinalized.Wrapf("session %d", sessionID)
	}
	if p := s.Participant(caller); p == nil || !p.Committed {
		return ErrNotParticipant.Wrapf("session %d", sessionID)
	}
	height := k.height()
	if height <= s.Deadline || s.DepositorReveals != 0 {
		return ErrNotExpiredOrHasReveals.Wrapf("height=%d deadline=%d reveals=%d", height, s.Deadline, s.DepositorReveals)
	}

	s.Closed = true
	s.SettledHeight = height

	k.emit(EventTypeClosed, "sessionId", u64(sessionID))
	k.logger.Info("session closed", "sessionId", sessionID, "commits", s.CommitCount)
	return nil
}
