package protocol

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"kvd/internal/engine"
)

func TestOperationRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	ops := []Operation{
		{Op: OpSet, Key: "a", Value: "1"},
		{Op: OpGet, Key: "a"},
		{Op: OpRemove, Key: "a"},
	}
	for _, o := range ops {
		require.NoError(t, enc.EncodeOperation(o))
	}

	dec := NewDecoder(&buf)
	for _, want := range ops {
		got, err := dec.DecodeOperation()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := dec.DecodeOperation()
	require.ErrorIs(t, err, io.EOF)
}

func TestDecodeOperationUnknownOp(t *testing.T) {
	buf := bytes.NewBufferString(`{"op":"frobnicate","key":"a"}`)
	dec := NewDecoder(buf)

	_, err := dec.DecodeOperation()
	require.Error(t, err)
	var kerr *engine.Error
	require.ErrorAs(t, err, &kerr)
	require.Equal(t, engine.KindUnknownOperation, kerr.Kind)
}

func TestResponseRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	responses := []Response{OkResponse(), ValueResponse("bar"), ErrResponse("Key not found")}
	for _, r := range responses {
		require.NoError(t, enc.EncodeResponse(r))
	}

	dec := NewDecoder(&buf)
	for _, want := range responses {
		got, err := dec.DecodeResponse()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := dec.DecodeResponse()
	require.ErrorIs(t, err, io.EOF)
}
