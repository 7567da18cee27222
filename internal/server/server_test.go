package server

import (
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"kvd/internal/engine"
	"kvd/internal/kvs"
	"kvd/internal/pool"
	"kvd/internal/protocol"
)

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "kvd-server-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func startServer(t *testing.T) (*Server, func()) {
	t.Helper()
	st, err := kvs.Open(tempDir(t))
	require.NoError(t, err)

	p := pool.NewSharedQueuePool(4)
	s := New("127.0.0.1:0", func() engine.Engine { return st.Clone() }, p)

	ready := make(chan struct{})
	go func() {
		ln, lerr := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, lerr)
		s.mu.Lock()
		s.ln = ln
		s.mu.Unlock()
		close(ready)
		_ = s.serveOn(ln)
	}()
	<-ready

	return s, func() {
		s.Close()
		st.Close()
		p.Shutdown()
	}
}

func TestServerSetGetRemoveRoundTrip(t *testing.T) {
	s, cleanup := startServer(t)
	defer cleanup()

	conn, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	enc := protocol.NewEncoder(conn)
	dec := protocol.NewDecoder(conn)

	require.NoError(t, enc.EncodeOperation(protocol.Operation{Op: protocol.OpSet, Key: "a", Value: "1"}))
	resp, err := dec.DecodeResponse()
	require.NoError(t, err)
	require.Equal(t, 0, resp.Status)

	require.NoError(t, enc.EncodeOperation(protocol.Operation{Op: protocol.OpGet, Key: "a"}))
	resp, err = dec.DecodeResponse()
	require.NoError(t, err)
	require.Equal(t, 0, resp.Status)
	require.NotNil(t, resp.Msg)
	require.Equal(t, "1", *resp.Msg)

	require.NoError(t, enc.EncodeOperation(protocol.Operation{Op: protocol.OpRemove, Key: "a"}))
	resp, err = dec.DecodeResponse()
	require.NoError(t, err)
	require.Equal(t, 0, resp.Status)

	require.NoError(t, enc.EncodeOperation(protocol.Operation{Op: protocol.OpGet, Key: "a"}))
	resp, err = dec.DecodeResponse()
	require.NoError(t, err)
	require.Equal(t, -1, resp.Status)
	require.Equal(t, "Key not found", *resp.Msg)
}

func TestServerRemoveMissingKey(t *testing.T) {
	s, cleanup := startServer(t)
	defer cleanup()

	conn, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	enc := protocol.NewEncoder(conn)
	dec := protocol.NewDecoder(conn)

	require.NoError(t, enc.EncodeOperation(protocol.Operation{Op: protocol.OpRemove, Key: "missing"}))
	resp, err := dec.DecodeResponse()
	require.NoError(t, err)
	require.Equal(t, -1, resp.Status)
	require.Equal(t, "Key not found", *resp.Msg)
}

func TestServerClientDisconnectEndsHandler(t *testing.T) {
	s, cleanup := startServer(t)
	defer cleanup()

	conn, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	conn.Close()

	// Close waits for in-flight handlers; it returning confirms the
	// handler observed EOF and exited rather than blocking forever.
}
