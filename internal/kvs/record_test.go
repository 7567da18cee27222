package kvs

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	n1, err := encodeSet(&buf, "a", "1")
	require.NoError(t, err)
	n2, err := encodeRemove(&buf, "b")
	require.NoError(t, err)

	stream := newRecordStream(&buf)

	rec, off, err := stream.next()
	require.NoError(t, err)
	require.Equal(t, record{Kind: kindSet, Key: "a", Value: "1"}, rec)
	require.Equal(t, int64(n1), off)

	rec, off, err = stream.next()
	require.NoError(t, err)
	require.Equal(t, record{Kind: kindRm, Key: "b"}, rec)
	require.Equal(t, int64(n1+n2), off)

	_, _, err = stream.next()
	require.ErrorIs(t, err, io.EOF)
}

func TestRecordStreamMalformedMidStream(t *testing.T) {
	buf := bytes.NewBufferString(`{"kind":"set","key":"a","value":"1"}{"kind":`)
	stream := newRecordStream(buf)

	_, _, err := stream.next()
	require.NoError(t, err)

	_, _, err = stream.next()
	require.Error(t, err)
	require.NotErrorIs(t, err, io.EOF)
}
