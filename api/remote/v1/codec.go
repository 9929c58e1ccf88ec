package remotev1

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// codecName replaces connect's built-in protojson codec for the
// application/json content type.
const codecName = "json"

type jsonCodec struct{}

// Codec returns the JSON codec for remotebean messages.
func Codec() connect.Codec {
	return jsonCodec{}
}

func (jsonCodec) Name() string {
	return codecName
}

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	return json.Unmarshal(data, msg)
}
