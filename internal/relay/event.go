package relay

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Kind discriminates the events sent to connections.
type Kind string

const (
	KindNew Kind = "new" // channel now exists
	KindDel Kind = "del" // channel no longer exists
	KindMsg Kind = "msg" // payload published to a subscribed channel
)

// Event is one outbound record for a connection.
type Event struct {
	Type Kind
	ID   string
	Msg  any
}

type advertFrame struct {
	T  Kind   `json:"t" msgpack:"t"`
	ID string `json:"id" msgpack:"id"`
}

type messageFrame struct {
	T   Kind   `json:"t" msgpack:"t"`
	ID  string `json:"id" msgpack:"id"`
	Msg any    `json:"msg" msgpack:"msg"`
}

// frame returns the wire shape: advertisements carry no msg key at all, while a
// message always carries one, even when the payload is null.
func (e Event) frame() any {
	if e.Type == KindMsg {
		return messageFrame{T: e.Type, ID: e.ID, Msg: e.Msg}
	}
	return advertFrame{T: e.Type, ID: e.ID}
}

// Codec encodes events into websocket frames.
type Codec interface {
	// Subprotocol is the websocket subprotocol that selects this codec, or "" for the default.
	Subprotocol() string
	FrameType() int
	Encode(Event) ([]byte, error)
}

type jsonCodec struct{}

func (jsonCodec) Subprotocol() string { return "" }
func (jsonCodec) FrameType() int      { return websocket.TextMessage }

func (jsonCodec) Encode(e Event) ([]byte, error) {
	b, err := json.Marshal(e.frame())
	if err != nil {
		return nil, fmt.Errorf("encode %s event for %q: %w", e.Type, e.ID, err)
	}
	return b, nil
}

type msgpackCodec struct{}

func (msgpackCodec) Subprotocol() string { return "msgpack" }
func (msgpackCodec) FrameType() int      { return websocket.BinaryMessage }

func (msgpackCodec) Encode(e Event) ([]byte, error) {
	e.Msg = msgpackValue(e.Msg)
	b, err := msgpack.Marshal(e.frame())
	if err != nil {
		return nil, fmt.Errorf("encode %s event for %q: %w", e.Type, e.ID, err)
	}
	return b, nil
}

// msgpackValue returns a copy of v with every json.Number replaced by the
// narrowest exact Go number: int64, then uint64, then float64. Payloads are
// shared between connections and must not be modified in place.
func msgpackValue(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if u, err := strconv.ParseUint(v.String(), 10, 64); err == nil {
			return u
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = msgpackValue(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = msgpackValue(e)
		}
		return out
	}
	return v
}

var (
	// JSONCodec sends events as JSON text frames.
	JSONCodec Codec = jsonCodec{}
	// MsgpackCodec sends events as msgpack binary frames.
	MsgpackCodec Codec = msgpackCodec{}
)

// Subprotocols lists the websocket subprotocols a server can offer, in preference order.
func Subprotocols() []string {
	return []string{MsgpackCodec.Subprotocol()}
}

// CodecFor returns the codec negotiated by subprotocol, falling back to JSON.
func CodecFor(subprotocol string) Codec {
	if subprotocol == MsgpackCodec.Subprotocol() {
		return MsgpackCodec
	}
	return JSONCodec
}
