// Package protocol implements the wire protocol from spec §4.H: clients
// write a stream of Operation frames, the server writes one Response
// frame per request, in order. Both are framed as self-delimited JSON
// objects over the connection, using the same json.Decoder streaming
// idiom as internal/kvs's persisted record codec.
package protocol

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"kvd/internal/engine"
)

// Op names the client-issued operation kind. Get is wire-only: it is
// never persisted (internal/kvs only ever writes Set/Remove frames).
type Op string

const (
	OpSet    Op = "set"
	OpGet    Op = "get"
	OpRemove Op = "rm"
)

// Operation is a single client request frame.
type Operation struct {
	Op    Op     `json:"op"`
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

// Response is a single server reply frame. Status 0 means success;
// non-zero means failure, with Msg carrying the failure's text. A
// successful Get's value is carried in Msg as well, since the wire
// protocol has no separate payload field (spec §4.H).
type Response struct {
	Status int     `json:"status"`
	Msg    *string `json:"msg,omitempty"`
}

func strPtr(s string) *string { return &s }

// OkResponse builds a status-0 response with no message (set/remove
// success).
func OkResponse() Response { return Response{Status: 0} }

// ValueResponse builds a status-0 response carrying a Get hit's value.
func ValueResponse(value string) Response { return Response{Status: 0, Msg: strPtr(value)} }

// ErrResponse builds a status -1 response carrying a failure message,
// e.g. "Key not found" for a miss, or the real error kind/text for
// anything else (spec §9 Open Question: the two must stay distinct on
// the wire even though both use status -1).
func ErrResponse(msg string) Response { return Response{Status: -1, Msg: strPtr(msg)} }

// Decoder decodes a stream of self-delimited JSON frames from a
// connection. The server uses it to read Operations; the client uses it
// to read Responses.
type Decoder struct {
	dec *json.Decoder
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: json.NewDecoder(bufio.NewReader(r))}
}

// DecodeOperation decodes the next Operation frame. It returns io.EOF
// unwrapped when the peer closed the connection between requests (spec
// §5: "a client disconnecting causes the handler to observe EOF on its
// next decode and exit"), and an UnknownOperation error when the frame
// decodes but names an operation that should never arrive on this side.
func (d *Decoder) DecodeOperation() (Operation, error) {
	var op Operation
	if err := d.dec.Decode(&op); err != nil {
		if err == io.EOF {
			return Operation{}, io.EOF
		}
		return Operation{}, engine.SerdeError("decode operation frame", err)
	}
	switch op.Op {
	case OpSet, OpGet, OpRemove:
		return op, nil
	default:
		return Operation{}, engine.New(engine.KindUnknownOperation, fmt.Sprintf("unrecognized operation %q", op.Op))
	}
}

// DecodeResponse decodes the next Response frame, used by the client
// after writing an Operation.
func (d *Decoder) DecodeResponse() (Response, error) {
	var resp Response
	if err := d.dec.Decode(&resp); err != nil {
		if err == io.EOF {
			return Response{}, io.EOF
		}
		return Response{}, engine.SerdeError("decode response frame", err)
	}
	return resp, nil
}

// Encoder encodes a stream of JSON frames to a connection. The server
// uses it to write Responses; the client uses it to write Operations.
type Encoder struct {
	enc *json.Encoder
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{enc: json.NewEncoder(w)}
}

func (e *Encoder) EncodeOperation(op Operation) error {
	if err := e.enc.Encode(op); err != nil {
		return engine.IoError("write operation frame", err)
	}
	return nil
}

func (e *Encoder) EncodeResponse(resp Response) error {
	if err := e.enc.Encode(resp); err != nil {
		return engine.IoError("write response frame", err)
	}
	return nil
}
