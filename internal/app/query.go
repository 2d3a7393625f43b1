package app

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"

	"github.com/cryptoji/Tokens-Flipper/internal/lottery"
	"github.com/cryptoji/Tokens-Flipper/internal/state"
)

type accountView struct {
	Addr       string `json:"addr"`
	Balance    uint64 `json:"balance"`
	Nonce      uint64 `json:"nonce"`
	Registered bool   `json:"registered"`
}

type sessionSummary struct {
	ID               uint64             `json:"id"`
	ConfigID         uint64             `json:"configId"`
	Deposit          uint64             `json:"deposit"`
	CommitCount      uint64             `json:"commitCount"`
	RevealCount      uint64             `json:"revealCount"`
	DepositorReveals uint64             `json:"depositorReveals"`
	Deadline         int64              `json:"deadline"`
	Phase            state.SessionPhase `json:"phase"`
}

type sessionView struct {
	*state.Session
	Phase state.SessionPhase `json:"phase"`
}

type participantView struct {
	Session uint64 `json:"sessionId"`
	Address string `json:"address"`
	Winner  bool   `json:"winner"`
	*state.Participant
}

func (a *FlipperApp) Query(_ context.Context, req *abci.QueryRequest) (*abci.QueryResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	v, err := a.query(strings.TrimSpace(req.Path))
	if err != nil {
		codespace, code, logMsg := errorsmod.ABCIInfo(err, false)
		return &abci.QueryResponse{Codespace: codespace, Code: code, Log: logMsg, Height: a.st.Height}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return &abci.QueryResponse{Code: 1, Log: err.Error(), Height: a.st.Height}, nil
	}
	return &abci.QueryResponse{Code: abci.CodeTypeOK, Value: b, Height: a.st.Height}, nil
}

// Paths:
// - /account/<addr>
// - /configs
// - /config/<id>
// - /sessions
// - /session/<id>
// - /session/<id>/participant/<addr>
// - /session/<id>/payout
func (a *FlipperApp) query(path string) (any, error) {
	k := lottery.NewKeeper(a.st, a.st, a.rootLogger)
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")

	switch {
	case len(parts) >= 2 && parts[0] == "account":
		// Module accounts contain a slash.
		addr := strings.Join(parts[1:], "/")
		_, registered := a.st.AccountKeys[addr]
		return accountView{
			Addr:       addr,
			Balance:    a.st.Balance(addr),
			Nonce:      a.st.NonceMax[addr],
			Registered: registered,
		}, nil

	case path == "/configs":
		return append([]state.GameConfig{}, a.st.Configs...), nil

	case len(parts) == 2 && parts[0] == "config":
		id, err := parseID(parts[1])
		if err != nil {
			return nil, err
		}
		return k.GetConfig(id)

	case path == "/sessions":
		out := make([]sessionSummary, 0, len(a.st.Sessions))
		for _, s := range a.st.Sessions {
			cfg, err := k.GetConfig(s.ConfigID)
			if err != nil {
				return nil, err
			}
			out = append(out, sessionSummary{
				ID:               s.ID,
				ConfigID:         s.ConfigID,
				Deposit:          s.Deposit,
				CommitCount:      s.CommitCount,
				RevealCount:      s.RevealCount,
				DepositorReveals: s.DepositorReveals,
				Deadline:         s.Deadline,
				Phase:            s.Phase(cfg, a.st.Height),
			})
		}
		return out, nil

	case len(parts) >= 2 && parts[0] == "session":
		id, err := parseID(parts[1])
		if err != nil {
			return nil, err
		}
		s, err := k.GetSession(id)
		if err != nil {
			return nil, err
		}
		switch {
		case len(parts) == 2:
			cfg, err := k.GetConfig(s.ConfigID)
			if err != nil {
				return nil, err
			}
			return sessionView{Session: s, Phase: s.Phase(cfg, a.st.Height)}, nil
		case len(parts) == 3 && parts[2] == "payout":
			if !s.Completed {
				return nil, lottery.ErrNotFinalized.Wrapf("session %d has not completed", id)
			}
			return lottery.SessionPayout(s)
		case len(parts) >= 4 && parts[2] == "participant":
			addr := strings.Join(parts[3:], "/")
			p := s.Participant(addr)
			if p == nil {
				return nil, lottery.ErrNotParticipant.Wrapf("%q in session %d", addr, id)
			}
			return participantView{Session: id, Address: addr, Winner: s.WinnerSet[addr], Participant: p}, nil
		}
	}
	return nil, ErrUnknownQuery.Wrap(path)
}

func parseID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, lottery.ErrInvalidRequest.Wrapf("invalid id %q", raw)
	}
	return id, nil
}
