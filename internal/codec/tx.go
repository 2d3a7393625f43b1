package codec

import (
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"
)

// TxEnvelope is the v0 transaction container.
//
// CometBFT transactions are opaque bytes; txs are JSON-encoded envelopes
// routed on Type.
type TxEnvelope struct {
	// Basic routing.
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`

	// v0 tx auth:
	// - Nonce: included in the signed message for replay protection (must increase per signer).
	// - Signer: account id of the caller.
	// - Sig: Ed25519 signature over (type, nonce, signer, sha256(value)).
	Nonce  string `json:"nonce,omitempty"`
	Signer string `json:"signer,omitempty"`
	Sig    []byte `json:"sig,omitempty"`
}

func DecodeTxEnvelope(txBytes []byte) (TxEnvelope, error) {
	var env TxEnvelope
	if err := json.Unmarshal(txBytes, &env); err != nil {
		return TxEnvelope{}, fmt.Errorf("invalid tx json: %w", err)
	}
	if env.Type == "" {
		return TxEnvelope{}, fmt.Errorf("missing tx.type")
	}
	return env, nil
}

// Tx types.
const (
	TypeAuthRegisterAccount = "auth/register_account"
	TypeBankMint            = "bank/mint"
	TypeBankSend            = "bank/send"

	TypeLotteryCreateConfig  = "lottery/create_config"
	TypeLotteryCreateSession = "lottery/create_session"
	TypeLotteryCommit        = "lottery/commit"
	TypeLotteryReveal        = "lottery/reveal"
	TypeLotteryComplete      = "lottery/complete"
	TypeLotteryClose         = "lottery/close"
	TypeLotteryClaim         = "lottery/claim"
)

// ---- Bank ----

type BankMintTx struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

type BankSendTx struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

// ---- Auth (v0) ----

// v0: account pubkey registration for tx authentication.
type AuthRegisterAccountTx struct {
	Account string `json:"account"`
	PubKey  []byte `json:"pubKey"` // base64 (32 bytes)
}

// ---- Lottery ----

type LotteryCreateConfigTx struct {
	ParticipantsNumber uint64 `json:"participantsNumber"`
	WinnersNumber      uint64 `json:"winnersNumber"`
	Duration           uint64 `json:"duration"` // blocks
}

type LotteryCreateSessionTx struct {
	ConfigID       uint64 `json:"configId"`
	Deposit        uint64 `json:"deposit"`
	OperatorSeeded bool   `json:"operatorSeeded,omitempty"`
	CreatorSecret  []byte `json:"creatorSecret,omitempty"` // base64 (32 bytes)
}

type LotteryCommitTx struct {
	SessionID uint64 `json:"sessionId"`
	Secret    []byte `json:"secret"` // base64 (32 bytes)
	Amount    uint64 `json:"amount"`
}

type LotteryRevealTx struct {
	SessionID uint64       `json:"sessionId"`
	Number    *uint256.Int `json:"number"` // decimal or 0x-hex string
}

type LotteryCompleteTx struct {
	SessionID uint64 `json:"sessionId"`
}

type LotteryCloseTx struct {
	SessionID uint64 `json:"sessionId"`
}

type LotteryClaimTx struct {
	SessionID uint64 `json:"sessionId"`
}
