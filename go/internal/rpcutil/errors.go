package rpcutil

import (
	"errors"

	"connectrpc.com/connect"
	"github.com/mcdev12/hoops/go/internal/apperr"
)

const (
	// ErrorCodeHeader carries the stable machine-readable failure code.
	ErrorCodeHeader = "X-Error-Code"
	// ErrorParamPrefix prefixes structured failure parameters.
	ErrorParamPrefix = "X-Error-Param-"
)

// ConnectCode maps an engine code onto a connect status code.
func ConnectCode(code apperr.Code) connect.Code {
	switch code {
	case apperr.CodeInvalidBid, apperr.CodeTradeInvalid, apperr.CodeInvalidRequest:
		return connect.CodeInvalidArgument
	case apperr.CodeBidTooLow, apperr.CodeInsufficientCap, apperr.CodeRosterLimit,
		apperr.CodePlayerAlreadyTaken, apperr.CodeAlreadyAccepted, apperr.CodeProposerCannotAccept,
		apperr.CodeTradeNotPending:
		return connect.CodeFailedPrecondition
	case apperr.CodePlayerNotInRoster, apperr.CodeTradeNotFound:
		return connect.CodeNotFound
	case apperr.CodeNotAuthorized:
		return connect.CodePermissionDenied
	case apperr.CodeConflict:
		return connect.CodeAborted
	case apperr.CodeInternal, apperr.CodeTradeFailed:
		return connect.CodeInternal
	}
	return connect.CodeUnknown
}

// ToConnectError restricts err to the operation's codes and converts it into
// a connect error. The engine code and params travel as response metadata so
// clients never have to parse messages.
func ToConnectError(err error, codes apperr.CodeSet) error {
	if err == nil {
		return nil
	}
	var ce *connect.Error
	if errors.As(err, &ce) {
		return ce
	}
	e := apperr.Restrict(err, codes)
	out := connect.NewError(ConnectCode(e.Code), errors.New(e.Message))
	out.Meta().Set(ErrorCodeHeader, string(e.Code))
	for k, v := range e.Params {
		out.Meta().Set(ErrorParamPrefix+k, v)
	}
	return out
}

// InvalidArgument wraps request decoding failures.
func InvalidArgument(err error) error {
	out := connect.NewError(connect.CodeInvalidArgument, err)
	out.Meta().Set(ErrorCodeHeader, string(apperr.CodeInvalidRequest))
	return out
}
