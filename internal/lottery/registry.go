package lottery

import (
	"github.com/cryptoji/Tokens-Flipper/internal/state"
)

// CreateConfig appends an immutable game configuration and returns its index.
func (k *Keeper) CreateConfig(caller string, participantsNumber, winnersNumber, duration uint64) (uint64, error) {
	if err := k.requireOperator(caller); err != nil {
		return 0, err
	}
	if participantsNumber == 0 {
		return 0, ErrInvalidConfig.Wrap("participantsNumber must be > 0")
	}
	if winnersNumber == 0 {
		return 0, ErrInvalidConfig.Wrap("winnersNumber must be > 0")
	}
	if winnersNumber > participantsNumber {
		return 0, ErrInvalidConfig.Wrapf("winnersNumber %d exceeds participantsNumber %d", winnersNumber, participantsNumber)
	}

	id := uint64(len(k.st.Configs))
	k.st.Configs = append(k.st.Configs, state.GameConfig{
		ID:                 id,
		ParticipantsNumber: participantsNumber,
		WinnersNumber:      winnersNumber,
		Duration:           duration,
	})

	k.emit(EventTypeConfigurationCreated,
		"configId", u64(id),
		"participantsNumber", u64(participantsNumber),
		"winnersNumber", u64(winnersNumber),
		"duration", u64(duration),
	)
	k.logger.Info("configuration created", "configId", id, "participants", participantsNumber, "winners", winnersNumber)
	return id, nil
}

func (k *Keeper) GetConfig(id uint64) (state.GameConfig, error) {
	if id >= uint64(len(k.st.Configs)) {
		return state.GameConfig{}, ErrConfigNotFound.Wrapf("config %d not found", id)
	}
	return k.st.Configs[id], nil
}

func (k *Keeper) ConfigCount() uint64 {
	return uint64(len(k.st.Configs))
}
