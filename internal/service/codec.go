// Package service exposes the ledger over Connect RPC.
//
// Messages are plain Go structs carried by a JSON codec; there is no
// generated protobuf code. Amounts travel as decimal strings with two
// fractional digits.
package service

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// JSONCodec marshals messages with encoding/json. It is registered under
// the name "json", so clients send Content-Type application/json.
type JSONCodec struct{}

var _ connect.Codec = JSONCodec{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// WithJSON returns the codec option for both handlers and clients.
func WithJSON() connect.Option {
	return connect.WithCodec(JSONCodec{})
}
