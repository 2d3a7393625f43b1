package lottery

import (
	"errors"

	errorsmod "cosmossdk.io/errors"
)

// Kind groups the registered errors into the failure classes callers act on.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindPhase         Kind = "phase"
	KindAuthorization Kind = "authorization"
	KindIntegrity     Kind = "integrity"
	KindAlreadyDone   Kind = "already_done"
	KindCustody       Kind = "custody"
)

type kindedError struct {
	err  *errorsmod.Error
	kind Kind
}

var registered []kindedError

func register(code uint32, kind Kind, desc string) *errorsmod.Error {
	e := errorsmod.Register(ModuleName, code, desc)
	registered = append(registered, kindedError{err: e, kind: kind})
	return e
}

// x/lottery sentinel errors.
var (
	ErrInvalidRequest = register(1, KindValidation, "invalid request")
	ErrInvalidConfig  = register(2, KindValidation, "invalid configuration")
	ErrBadDeposit     = register(3, KindValidation, "bad deposit")

	ErrConfigNotFound  = register(10, KindNotFound, "configuration not found")
	ErrSessionNotFound = register(11, KindNotFound, "session not found")

	ErrGameFinalized          = register(20, KindPhase, "game finalized")
	ErrGameClosed             = register(21, KindPhase, "game closed")
	ErrGameExpired            = register(22, KindPhase, "game expired")
	ErrPoolFull               = register(23, KindPhase, "pool full")
	ErrPoolNotFull            = register(24, KindPhase, "pool not full")
	ErrAllRevealed            = register(25, KindPhase, "all participants revealed")
	ErrNoReveals              = register(26, KindPhase, "no reveals")
	ErrNotReady               = register(27, KindPhase, "not ready to complete")
	ErrNotExpiredOrHasReveals = register(28, KindPhase, "not expired or has reveals")
	ErrNotFinalized           = register(29, KindPhase, "game not finalized")

	ErrUnauthorized   = register(40, KindAuthorization, "caller is not the operator")
	ErrNotCommitted   = register(41, KindAuthorization, "caller has not committed")
	ErrNotParticipant = register(42, KindAuthorization, "caller is not a participant")
	ErrNotEligible    = register(43, KindAuthorization, "caller is not eligible for a reward")

	ErrBadReveal     = register(50, KindIntegrity, "reveal does not match commitment")
	ErrCustodyFailed = register(51, KindCustody, "custody transfer failed")

	ErrAlreadyCommitted = register(60, KindAlreadyDone, "already committed")
	ErrAlreadyRevealed  = register(61, KindAlreadyDone, "already revealed")
	ErrAlreadyRewarded  = register(62, KindAlreadyDone, "already rewarded")
)

// KindOf classifies err. Errors not registered by this package yield "".
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, r := range registered {
		if errors.Is(err, r.err) {
			return r.kind
		}
	}
	return ""
}
