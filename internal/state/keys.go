package state

import "encoding/binary"

var (
	// MetaKey stores height, operator, balances, account keys and nonces.
	MetaKey = []byte{0x01}

	// ConfigKeyPrefix stores GameConfig by id: ConfigKeyPrefix || u64be(id).
	ConfigKeyPrefix = []byte{0x02}

	// SessionKeyPrefix stores Session by id: SessionKeyPrefix || u64be(id).
	SessionKeyPrefix = []byte{0x03}
)

func ConfigKey(id uint64) []byte {
	return indexKey(ConfigKeyPrefix[0], id)
}

func SessionKey(id uint64) []byte {
	return indexKey(SessionKeyPrefix[0], id)
}

func indexKey(prefix byte, id uint64) []byte {
	bz := make([]byte, 1+8)
	bz[0] = prefix
	binary.BigEndian.PutUint64(bz[1:], id)
	return bz
}

func prefixEnd(prefix []byte) []byte {
	return []byte{prefix[0] + 1}
}
