package lottery

import (
	"fmt"
	"strings"
)

// Event types observed by off-chain clients.
const (
	EventTypeConfigurationCreated = "ConfigurationCreated"
	EventTypeSessionCreated       = "SessionCreated"
	EventTypeCommitted            = "Committed"
	EventTypeRevealed             = "Revealed"
	EventTypeCompleted            = "Completed"
	EventTypeClosed               = "Closed"
	EventTypeRewardSent           = "RewardSent"
)

type Attribute struct {
	Key   string
	Value string
}

type Event struct {
	Type       string
	Attributes []Attribute
}

func newEvent(typ string, kv ...string) Event {
	ev := Event{Type: typ}
	for i := 0; i+1 < len(kv); i += 2 {
		ev.Attributes = append(ev.Attributes, Attribute{Key: kv[i], Value: kv[i+1]})
	}
	return ev
}

// Attr returns the value of key, or "".
func (e Event) Attr(key string) string {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

func (k *Keeper) emit(typ string, kv ...string) {
	k.events = append(k.events, newEvent(typ, kv...))
}

func u64(v uint64) string { return fmt.Sprintf("%d", v) }

func joinAddrs(addrs []string) string { return strings.Join(addrs, ",") }
