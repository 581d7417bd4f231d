// Package rpcutil holds the connect plumbing shared by the market services.
package rpcutil

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// JSONCodec lets connect handlers exchange plain Go structs as JSON. It
// replaces the protojson codec registered under the same name.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// HandlerOptions returns the options every market handler is built with.
func HandlerOptions(extra ...connect.HandlerOption) []connect.HandlerOption {
	opts := []connect.HandlerOption{
		connect.WithCodec(JSONCodec{}),
		connect.WithInterceptors(NewLoggingInterceptor()),
	}
	return append(opts, extra...)
}
