package app

import (
	errorsmod "cosmossdk.io/errors"
)

// Codespace for failures raised by the ABCI layer itself (decoding, auth,
// bank). Lottery failures carry the "lottery" codespace.
const Codespace = "flipper"

var (
	ErrTxDecode        = errorsmod.Register(Codespace, 2, "tx decode error")
	ErrUnknownTx       = errorsmod.Register(Codespace, 3, "unknown tx type")
	ErrUnauthenticated = errorsmod.Register(Codespace, 4, "unauthenticated")
	ErrInvalidNonce    = errorsmod.Register(Codespace, 5, "invalid nonce")
	ErrUnauthorized    = errorsmod.Register(Codespace, 6, "unauthorized")
	ErrInsufficient    = errorsmod.Register(Codespace, 7, "insufficient funds")
	ErrInvalidGenesis  = errorsmod.Register(Codespace, 8, "invalid genesis")
	ErrUnknownQuery    = errorsmod.Register(Codespace, 9, "unknown query path")
)
