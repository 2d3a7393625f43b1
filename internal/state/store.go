package state

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"

	dbm "github.com/cosmos/cosmos-db"
)

const storeName = "flipper"

// Store persists State into a cosmos-db key/value database. Configurations
// and sessions are written under their dense index so the on-disk layout
// mirrors the append-only arenas.
type Store struct {
	db dbm.DB
}

type storeMeta struct {
	Height       int64             `json:"height"`
	Operator     string            `json:"operator,omitempty"`
	Accounts     map[string]uint64 `json:"accounts,omitempty"`
	AccountKeys  map[string][]byte `json:"accountKeys,omitempty"`
	NonceMax     map[string]uint64 `json:"nonceMax,omitempty"`
	ConfigCount  uint64            `json:"configCount"`
	SessionCount uint64            `json:"sessionCount"`
}

// OpenStore opens (or creates) the database under <home>/data.
func OpenStore(home string, backend string) (*Store, error) {
	if backend == "" {
		backend = string(dbm.GoLevelDBBackend)
	}
	db, err := dbm.NewDB(storeName, dbm.BackendType(backend), filepath.Join(home, "data"))
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", backend, err)
	}
	return &Store{db: db}, nil
}

func NewStore(db dbm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the persisted state, or a fresh state for an empty database.
func (s *Store) Load() (*State, error) {
	bz, err := s.db.Get(MetaKey)
	if err != nil {
		return nil, fmt.Errorf("read state meta: %w", err)
	}
	if bz == nil {
		return NewState(), nil
	}
	var m storeMeta
	if err := json.Unmarshal(bz, &m); err != nil {
		return nil, fmt.Errorf("decode state meta: %w", err)
	}

	st := &State{
		Height:      m.Height,
		Operator:    m.Operator,
		Accounts:    m.Accounts,
		AccountKeys: m.AccountKeys,
		NonceMax:    m.NonceMax,
	}

	err = s.iterate(ConfigKeyPrefix, func(id uint64, v []byte) error {
		if id != uint64(len(st.Configs)) {
			return fmt.Errorf("config index gap: got %d want %d", id, len(st.Configs))
		}
		var c GameConfig
		if err := json.Unmarshal(v, &c); err != nil {
			return fmt.Errorf("decode config %d: %w", id, err)
		}
		st.Configs = append(st.Configs, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.iterate(SessionKeyPrefix, func(id uint64, v []byte) error {
		if id != uint64(len(st.Sessions)) {
			return fmt.Errorf("session index gap: got %d want %d", id, len(st.Sessions))
		}
		var sess Session
		if err := json.Unmarshal(v, &sess); err != nil {
			return fmt.Errorf("decode session %d: %w", id, err)
		}
		st.Sessions = append(st.Sessions, &sess)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uint64(len(st.Configs)) != m.ConfigCount {
		return nil, fmt.Errorf("config count mismatch: stored=%d found=%d", m.ConfigCount, len(st.Configs))
	}
	if uint64(len(st.Sessions)) != m.SessionCount {
		return nil, fmt.Errorf("session count mismatch: stored=%d found=%d", m.SessionCount, len(st.Sessions))
	}

	st.normalize()
	return st, nil
}

// Save writes the full state in a single synced batch.
func (s *Store) Save(st *State) error {
	if st == nil {
		return fmt.Errorf("state is nil")
	}
	batch := s.db.NewBatch()
	defer func() { _ = batch.Close() }()

	meta, err := json.Marshal(storeMeta{
		Height:       st.Height,
		Operator:     st.Operator,
		Accounts:     st.Accounts,
		AccountKeys:  st.AccountKeys,
		NonceMax:     st.NonceMax,
		ConfigCount:  uint64(len(st.Configs)),
		SessionCount: uint64(len(st.Sessions)),
	})
	if err != nil {
		return fmt.Errorf("encode state meta: %w", err)
	}
	if err := batch.Set(MetaKey, meta); err != nil {
		return err
	}

	for i := range st.Configs {
		bz, err := json.Marshal(st.Configs[i])
		if err != nil {
			return fmt.Errorf("encode config %d: %w", i, err)
		}
		if err := batch.Set(ConfigKey(uint64(i)), bz); err != nil {
			return err
		}
	}
	for i, sess := range st.Sessions {
		bz, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("encode session %d: %w", i, err)
		}
		if err := batch.Set(SessionKey(uint64(i)), bz); err != nil {
			return err
		}
	}

	if err := batch.WriteSync(); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

func (s *Store) iterate(prefix []byte, cb func(id uint64, value []byte) error) error {
	it, err := s.db.Iterator(prefix, prefixEnd(prefix))
	if err != nil {
		return err
	}
	defer it.Close()

	for ; it.Valid(); it.Next() {
		key := it.Key()
		if len(key) != 1+8 || key[0] != prefix[0] {
			continue
		}
		if err := cb(binary.BigEndian.Uint64(key[1:]), it.Value()); err != nil {
			return err
		}
	}
	return it.Error()
}
