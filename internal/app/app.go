package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	abci "github.com/cometbft/cometbft/abci/types"

	"github.com/cryptoji/Tokens-Flipper/internal/codec"
	"github.com/cryptoji/Tokens-Flipper/internal/state"
)

const (
	AppVersion uint64 = 1
)

// FlipperApp is the ABCI application. All state access goes through mu:
// FinalizeBlock executes txs one at a time, each against a staged clone that
// replaces the live state only when the tx succeeds.
type FlipperApp struct {
	*abci.BaseApplication

	rootLogger log.Logger
	logger     log.Logger
	store      *state.Store

	mu       sync.Mutex
	st       *state.State
	lastHash []byte
}

func New(store *state.Store, logger log.Logger) (*FlipperApp, error) {
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	st, err := store.Load()
	if err != nil {
		return nil, err
	}
	a := &FlipperApp{
		BaseApplication: abci.NewBaseApplication(),
		rootLogger:      logger,
		logger:          logger.With("module", "app"),
		store:           store,
		st:              st,
		lastHash:        st.AppHash(),
	}
	a.logger.Info("state loaded", "height", st.Height, "configs", len(st.Configs), "sessions", len(st.Sessions))
	return a, nil
}

func (a *FlipperApp) Info(_ context.Context, _ *abci.InfoRequest) (*abci.InfoResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return &abci.InfoResponse{
		Data:             "Tokens Flipper (v0)",
		Version:          "v0",
		AppVersion:       AppVersion,
		LastBlockHeight:  a.st.Height,
		LastBlockAppHash: a.lastHash,
	}, nil
}

func (a *FlipperApp) CheckTx(_ context.Context, req *abci.CheckTxRequest) (*abci.CheckTxResponse, error) {
	env, err := codec.DecodeTxEnvelope(req.Tx)
	if err != nil {
		return checkErr(ErrTxDecode.Wrap(err.Error())), nil
	}
	if !knownTxType(env.Type) {
		return checkErr(ErrUnknownTx.Wrap(env.Type)), nil
	}
	// Only structural validation; signatures and nonces are checked on delivery.
	if err := requireSignedEnvelope(env); err != nil {
		return checkErr(err), nil
	}
	return &abci.CheckTxResponse{Code: abci.CodeTypeOK}, nil
}

func (a *FlipperApp) InitChain(_ context.Context, req *abci.InitChainRequest) (*abci.InitChainResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(req.AppStateBytes) == 0 {
		return &abci.InitChainResponse{AppHash: a.lastHash}, nil
	}
	var gen GenesisState
	if err := json.Unmarshal(req.AppStateBytes, &gen); err != nil {
		return nil, ErrInvalidGenesis.Wrap(err.Error())
	}
	if err := gen.Apply(a.st); err != nil {
		return nil, err
	}
	a.lastHash = a.st.AppHash()
	a.logger.Info("genesis applied", "operator", gen.Operator, "accounts", len(gen.Accounts))
	return &abci.InitChainResponse{AppHash: a.lastHash}, nil
}

func (a *FlipperApp) FinalizeBlock(_ context.Context, req *abci.FinalizeBlockRequest) (*abci.FinalizeBlockResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.st.Height = req.Height

	txResults := make([]*abci.ExecTxResult, 0, len(req.Txs))
	rejected := 0
	for _, txBytes := range req.Txs {
		res := a.deliverTx(txBytes, req.Height)
		if res.Code != abci.CodeTypeOK {
			rejected++
		}
		txResults = append(txResults, res)
	}

	a.lastHash = a.st.AppHash()
	a.logger.Info("finalized block", "height", req.Height, "txs", len(req.Txs), "rejected", rejected)

	return &abci.FinalizeBlockResponse{
		TxResults: txResults,
		AppHash:   a.lastHash,
	}, nil
}

func (a *FlipperApp) Commit(_ context.Context, _ *abci.CommitRequest) (*abci.CommitResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Persist after each block; returning the error halts the node loudly.
	if err := a.store.Save(a.st); err != nil {
		a.logger.Error("failed to persist state", "height", a.st.Height, "err", err)
		return nil, err
	}
	return &abci.CommitResponse{}, nil
}

// deliverTx executes one tx against a staged copy of the state. The copy is
// swapped in only when the tx succeeds, so a failing tx leaves no trace.
func (a *FlipperApp) deliverTx(txBytes []byte, height int64) *abci.ExecTxResult {
	env, err := codec.DecodeTxEnvelope(txBytes)
	if err != nil {
		return execErr(ErrTxDecode.Wrap(err.Error()))
	}

	staged, err := a.st.Clone()
	if err != nil {
		return execErr(err)
	}
	staged.Height = height

	res, err := a.execTx(staged, env)
	if err != nil {
		a.logger.Debug("tx rejected", "type", env.Type, "signer", env.Signer, "err", err)
		return execErr(err)
	}
	a.st = staged
	return res
}

func execErr(err error) *abci.ExecTxResult {
	codespace, code, logMsg := errorsmod.ABCIInfo(err, false)
	return &abci.ExecTxResult{Codespace: codespace, Code: code, Log: logMsg}
}

func checkErr(err error) *abci.CheckTxResponse {
	codespace, code, logMsg := errorsmod.ABCIInfo(err, false)
	return &abci.CheckTxResponse{Codespace: codespace, Code: code, Log: logMsg}
}

func okEvent(typ string, attrs map[string]string) *abci.ExecTxResult {
	ev := abci.Event{Type: typ}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ev.Attributes = append(ev.Attributes, abci.EventAttribute{Key: k, Value: attrs[k], Index: true})
	}
	return &abci.ExecTxResult{
		Code:   abci.CodeTypeOK,
		Events: []abci.Event{ev},
	}
}
