package mixnode

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIngressDeliversFrames(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	in := NewIngress(8)
	in.Serve(listener)
	defer in.Stop()

	conn, err := net.Dial("tcp", listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, WriteFrame(conn, testPacket(1)))

	select {
	case frame := <-in.Frames():
		require.Equal(t, testPacket(1), frame)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ingress frame")
	}
}

func TestIngressRefusesWhenQueueFull(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	in := NewIngress(1)
	in.Serve(listener)
	defer in.Stop()

	// Fill the single-capacity queue, leaving the frame unread so the
	// queue stays full.
	conn1, err := net.Dial("tcp", listener.Addr().String())
	require.NoError(t, err)
	defer conn1.Close()
	require.NoError(t, WriteFrame(conn1, testPacket(1)))

	require.Eventually(t, func() bool {
		return len(in.Frames()) == 1
	}, time.Second, 5*time.Millisecond)

	// A second connection should be refused (closed immediately) while
	// the queue is full.
	conn2, err := net.Dial("tcp", listener.Addr().String())
	require.NoError(t, err)
	defer conn2.Close()

	buf := make([]byte, 1)
	conn2.SetReadDeadline(time.Now().Add(time.Second))
	_, err = conn2.Read(buf)
	require.Error(t, err) // EOF: the server closed the connection
}
