package vm

import (
	"bytes"
	"net"
	"os"
	"strings"
	"testing"
	"time"
)

// TestDebugChannelStepAndDump drives the single-step and register-dump
// commands end to end over the real Unix datagram transport, then steps into
// TRAP HALT and checks that the server loop stops.
func TestDebugChannelStepAndDump(t *testing.T) {
	machine := New(0, strings.NewReader(""), &bytes.Buffer{})
	machine.Memory().Write(0, 0b0001_000_000_1_00001) // ADD R0, R0, #1
	machine.Memory().Write(1, 0xF025)                 // TRAP HALT

	channel, err := NewDebugChannel(machine)
	if err != nil {
		t.Skipf("unix datagram sockets unavailable in this sandbox: %v", err)
	}
	defer channel.Close()

	done := make(chan error, 1)
	go func() { done <- channel.Serve() }()

	client, err := net.DialUnix("unixgram", &net.UnixAddr{Name: DebugClientSocket, Net: "unixgram"}, &net.UnixAddr{Name: DebugServerSocket, Net: "unixgram"})
	assert(t, err == nil, "dial debug client: %v", err)
	defer client.Close()
	defer os.Remove(DebugClientSocket)

	buf := make([]byte, 256)

	send := func(cmd string) string {
		client.SetDeadline(time.Now().Add(2 * time.Second))
		_, err := client.Write([]byte(cmd))
		assert(t, err == nil, "send %q: %v", cmd, err)
		n, err := client.Read(buf)
		assert(t, err == nil, "recv reply to %q: %v", cmd, err)
		return string(buf[:n])
	}

	reply := send("n")
	assert(t, reply == "instruction: 0b1111000000100101", "unexpected single-step reply: %q", reply)

	reply = send("r")
	segments := strings.Split(reply, "::")
	assert(t, len(segments) == int(numRegisters), "register dump has %d segments, want %d", len(segments), numRegisters)

	send("n") // steps into TRAP HALT; server loop exits after replying

	select {
	case err := <-done:
		assert(t, err == ErrHalt, "Serve() = %v, want ErrHalt", err)
	case <-time.After(2 * time.Second):
		t.Fatal("debug server did not stop after HALT")
	}
}

func TestDebugChannelInvalidCommand(t *testing.T) {
	machine := New(0, strings.NewReader(""), &bytes.Buffer{})
	channel := &DebugChannel{vm: machine}

	reply, err := channel.handle("bogus")
	assert(t, err == nil, "handle(bogus) error: %v", err)
	assert(t, reply == "Invalid Command", "reply = %q, want %q", reply, "Invalid Command")
}
