package rpcutil

import (
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
)

// UserIDHeader is set by the authenticating proxy in front of the API. The
// engine trusts it without re-authenticating.
const UserIDHeader = "X-User-Id"

// CallerID extracts the caller's user id.
func CallerID(h http.Header) (uuid.UUID, error) {
	raw := h.Get(UserIDHeader)
	if raw == "" {
		return uuid.Nil, connect.NewError(connect.CodeUnauthenticated, errors.New("missing caller identity"))
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("invalid caller identity: %w", err))
	}
	return id, nil
}

// ParseID parses a request field that must hold a uuid.
func ParseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, InvalidArgument(fmt.Errorf("%s must be a uuid: %w", field, err))
	}
	return id, nil
}
