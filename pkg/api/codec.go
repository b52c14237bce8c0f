// Package api holds the wire messages of the splitx.v1 RPC services.
//
// Messages are plain structs carried by Connect with a JSON codec; amounts are
// decimal strings and timestamps RFC 3339.
package api

import (
	"encoding/json"
	"fmt"
)

// Codec marshals messages as JSON. It is registered on every handler and
// client under the name "json", replacing Connect's protobuf-only default.
type Codec struct{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", msg, err)
	}
	return data, nil
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}
