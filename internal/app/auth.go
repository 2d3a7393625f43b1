package app

import (
	"crypto/ed25519"
	"crypto/sha256"
	"strconv"

	"github.com/cryptoji/Tokens-Flipper/internal/codec"
	"github.com/cryptoji/Tokens-Flipper/internal/state"
)

const txAuthDomainV0 = "flipper/tx/v0"

func txAuthSignBytesV0(typ string, value []byte, nonce string, signer string) []byte {
	// signBytes = DOMAIN || 0x00 || type || 0x00 || nonce || 0x00 || signer || 0x00 || sha256(value)
	sum := sha256.Sum256(value)
	out := make([]byte, 0, len(txAuthDomainV0)+1+len(typ)+1+len(nonce)+1+len(signer)+1+sha256.Size)
	out = append(out, []byte(txAuthDomainV0)...)
	out = append(out, 0)
	out = append(out, []byte(typ)...)
	out = append(out, 0)
	out = append(out, []byte(nonce)...)
	out = append(out, 0)
	out = append(out, []byte(signer)...)
	out = append(out, 0)
	out = append(out, sum[:]...)
	return out
}

func requireSignedEnvelope(env codec.TxEnvelope) error {
	if env.Nonce == "" {
		return ErrUnauthenticated.Wrap("missing tx.nonce")
	}
	if env.Signer == "" {
		return ErrUnauthenticated.Wrap("missing tx.signer")
	}
	if len(env.Sig) == 0 {
		return ErrUnauthenticated.Wrap("missing tx.sig")
	}
	if len(env.Sig) != ed25519.SignatureSize {
		return ErrUnauthenticated.Wrapf("invalid tx.sig length: got %d want %d", len(env.Sig), ed25519.SignatureSize)
	}
	return nil
}

func requireRegisterAccountAuth(st *state.State, env codec.TxEnvelope, msg codec.AuthRegisterAccountTx) error {
	if msg.Account == "" {
		return ErrUnauthenticated.Wrap("missing account")
	}
	if len(msg.PubKey) != ed25519.PublicKeySize {
		return ErrUnauthenticated.Wrapf("pubKey must be %d bytes", ed25519.PublicKeySize)
	}
	if err := requireSignedEnvelope(env); err != nil {
		return err
	}
	if env.Signer != msg.Account {
		return ErrUnauthenticated.Wrapf("tx signer mismatch: signer=%q want=%q", env.Signer, msg.Account)
	}
	if _, ok := st.AccountKeys[msg.Account]; ok {
		return ErrUnauthorized.Wrapf("account %q already registered", msg.Account)
	}
	pub := ed25519.PublicKey(msg.PubKey)
	msgBytes := txAuthSignBytesV0(env.Type, env.Value, env.Nonce, env.Signer)
	if !ed25519.Verify(pub, msgBytes, env.Sig) {
		return ErrUnauthenticated.Wrap("invalid signature")
	}
	return nil
}

// requireAccountAuth verifies that env is signed by the registered key of
// env.Signer and returns the signer as the authenticated caller.
func requireAccountAuth(st *state.State, env codec.TxEnvelope) (string, error) {
	if err := requireSignedEnvelope(env); err != nil {
		return "", err
	}
	account := env.Signer
	pub := st.AccountKeys[account]
	if len(pub) != ed25519.PublicKeySize {
		return "", ErrUnauthenticated.Wrapf("account %q missing pubKey (auth/register_account required)", account)
	}
	msg := txAuthSignBytesV0(env.Type, env.Value, env.Nonce, env.Signer)
	if !ed25519.Verify(ed25519.PublicKey(pub), msg, env.Sig) {
		return "", ErrUnauthenticated.Wrap("invalid signature")
	}
	return account, nil
}

// consumeNonce enforces strictly increasing u64 nonces per signer.
func consumeNonce(st *state.State, env codec.TxEnvelope) error {
	n, err := strconv.ParseUint(env.Nonce, 10, 64)
	if err != nil {
		return ErrInvalidNonce.Wrapf("invalid tx.nonce %q", env.Nonce)
	}
	if last, ok := st.NonceMax[env.Signer]; ok && n <= last {
		return ErrInvalidNonce.Wrapf("replayed tx.nonce: got %d, last accepted %d", n, last)
	}
	st.NonceMax[env.Signer] = n
	return nil
}
