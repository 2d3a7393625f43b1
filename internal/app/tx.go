package app

import (
	"encoding/json"
	"fmt"

	abci "github.com/cometbft/cometbft/abci/types"

	"github.com/cryptoji/Tokens-Flipper/internal/codec"
	"github.com/cryptoji/Tokens-Flipper/internal/lottery"
	"github.com/cryptoji/Tokens-Flipper/internal/state"
)

func knownTxType(typ string) bool {
	switch typ {
	case codec.TypeAuthRegisterAccount,
		codec.TypeBankMint,
		codec.TypeBankSend,
		codec.TypeLotteryCreateConfig,
		codec.TypeLotteryCreateSession,
		codec.TypeLotteryCommit,
		codec.TypeLotteryReveal,
		codec.TypeLotteryComplete,
		codec.TypeLotteryClose,
		codec.TypeLotteryClaim:
		return true
	default:
		return false
	}
}

func decodeValue(env codec.TxEnvelope, v any) error {
	if err := json.Unmarshal(env.Value, v); err != nil {
		return ErrTxDecode.Wrapf("bad %s value: %v", env.Type, err)
	}
	return nil
}

// execTx authenticates env and routes it. st is the staged state; any error
// discards it.
func (a *FlipperApp) execTx(st *state.State, env codec.TxEnvelope) (*abci.ExecTxResult, error) {
	if !knownTxType(env.Type) {
		return nil, ErrUnknownTx.Wrap(env.Type)
	}

	if env.Type == codec.TypeAuthRegisterAccount {
		var msg codec.AuthRegisterAccountTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		if msg.Account == lottery.EscrowAccount {
			return nil, ErrUnauthorized.Wrap("module accounts cannot register keys")
		}
		if err := requireRegisterAccountAuth(st, env, msg); err != nil {
			return nil, err
		}
		if err := consumeNonce(st, env); err != nil {
			return nil, err
		}
		st.AccountKeys[msg.Account] = append([]byte(nil), msg.PubKey...)
		return okEvent("AccountRegistered", map[string]string{"account": msg.Account}), nil
	}

	caller, err := requireAccountAuth(st, env)
	if err != nil {
		return nil, err
	}
	if err := consumeNonce(st, env); err != nil {
		return nil, err
	}

	switch env.Type {
	case codec.TypeBankMint:
		var msg codec.BankMintTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		if msg.To == "" || msg.Amount == 0 {
			return nil, ErrTxDecode.Wrap("missing to/amount")
		}
		if st.Operator == "" || caller != st.Operator {
			return nil, ErrUnauthorized.Wrap("bank/mint is operator-only")
		}
		if err := st.Credit(msg.To, msg.Amount); err != nil {
			return nil, ErrInsufficient.Wrap(err.Error())
		}
		return okEvent("BankMinted", map[string]string{
			"to":     msg.To,
			"amount": fmt.Sprintf("%d", msg.Amount),
		}), nil

	case codec.TypeBankSend:
		var msg codec.BankSendTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		if msg.From == "" || msg.To == "" || msg.Amount == 0 {
			return nil, ErrTxDecode.Wrap("missing from/to/amount")
		}
		if msg.From != caller {
			return nil, ErrUnauthorized.Wrapf("tx signer %q cannot spend from %q", caller, msg.From)
		}
		if msg.To == lottery.EscrowAccount {
			return nil, ErrUnauthorized.Wrap("escrow is funded by lottery/commit only")
		}
		if err := st.Transfer(msg.From, msg.To, msg.Amount); err != nil {
			return nil, ErrInsufficient.Wrap(err.Error())
		}
		return okEvent("BankSent", map[string]string{
			"from":   msg.From,
			"to":     msg.To,
			"amount": fmt.Sprintf("%d", msg.Amount),
		}), nil
	}

	k := lottery.NewKeeper(st, st, a.rootLogger)
	if err := routeLottery(k, caller, env); err != nil {
		return nil, err
	}
	return lotteryResult(k.Events()), nil
}

func routeLottery(k *lottery.Keeper, caller string, env codec.TxEnvelope) error {
	switch env.Type {
	case codec.TypeLotteryCreateConfig:
		var msg codec.LotteryCreateConfigTx
		if err := decodeValue(env, &msg); err != nil {
			return err
		}
		_, err := k.CreateConfig(caller, msg.ParticipantsNumber, msg.WinnersNumber, msg.Duration)
		return err

	case codec.TypeLotteryCreateSession:
		var msg codec.LotteryCreateSessionTx
		if err := decodeValue(env, &msg); err != nil {
			return err
		}
		_, err := k.CreateSession(caller, msg.ConfigID, msg.Deposit, lottery.Enrollment{
			OperatorSeeded: msg.OperatorSeeded,
			Secret:         msg.CreatorSecret,
		})
		return err

	case codec.TypeLotteryCommit:
		var msg codec.LotteryCommitTx
		if err := decodeValue(env, &msg); err != nil {
			return err
		}
		return k.Commit(caller, msg.SessionID, msg.Secret, msg.Amount)

	case codec.TypeLotteryReveal:
		var msg codec.LotteryRevealTx
		if err := decodeValue(env, &msg); err != nil {
			return err
		}
		return k.Reveal(caller, msg.SessionID, msg.Number)

	case codec.TypeLotteryComplete:
		var msg codec.LotteryCompleteTx
		if err := decodeValue(env, &msg); err != nil {
			return err
		}
		_, err := k.Complete(msg.SessionID)
		return err

	case codec.TypeLotteryClose:
		var msg codec.LotteryCloseTx
		if err := decodeValue(env, &msg); err != nil {
			return err
		}
		return k.Close(caller, msg.SessionID)

	case codec.TypeLotteryClaim:
		var msg codec.LotteryClaimTx
		if err := decodeValue(env, &msg); err != nil {
			return err
		}
		_, err := k.Claim(caller, msg.SessionID)
		return err

	default:
		return ErrUnknownTx.Wrap(env.Type)
	}
}

// lotteryResult converts keeper events, keeping attribute order.
func lotteryResult(events []lottery.Event) *abci.ExecTxResult {
	res := &abci.ExecTxResult{Code: abci.CodeTypeOK}
	for _, e := range events {
		ev := abci.Event{Type: e.Type}
		for _, at := range e.Attributes {
			ev.Attributes = append(ev.Attributes, abci.EventAttribute{Key: at.Key, Value: at.Value, Index: true})
		}
		res.Events = append(res.Events, ev)
	}
	return res
}
