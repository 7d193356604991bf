package codec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Subprotocol selects binary frames carrying google.protobuf.Value messages
// instead of JSON text.
const Subprotocol = "chancellery.v1+proto"

// ToProto re-encodes a JSON document as a serialized structpb.Value.
func ToProto(jsonDoc []byte) ([]byte, error) {
	var doc any
	if err := json.Unmarshal(jsonDoc, &doc); err != nil {
		return nil, err
	}
	v, err := structpb.NewValue(doc)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(v)
}

// FromProto turns a serialized structpb.Value back into JSON.
func FromProto(frame []byte) ([]byte, error) {
	var v structpb.Value
	if err := proto.Unmarshal(frame, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return json.Marshal(v.AsInterface())
}

// DecodeClientProto decodes a binary client frame.
func DecodeClientProto(frame []byte) (ClientMessage, error) {
	doc, err := FromProto(frame)
	if err != nil {
		return ClientMessage{}, err
	}
	return DecodeClient(doc)
}
