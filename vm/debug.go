package vm

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

// Fixed filesystem paths for the debug channel's local datagram endpoint.
// The server removes any stale socket file at its own path before binding;
// the client path is assumed to already be bound by the peer.
const (
	DebugServerSocket = "/tmp/lc3vm-debug-server.sock"
	DebugClientSocket = "/tmp/lc3vm-debug-client.sock"
)

// DebugChannel serves the single-step/register-dump/step-N protocol over a
// Unix datagram socket. It is strictly sequential: one request is received,
// fully serviced against the VM, and one reply is sent before the next
// receive — the VM core is not safe for concurrent use.
type DebugChannel struct {
	vm   *VM
	conn *net.UnixConn
	peer *net.UnixAddr
}

// NewDebugChannel binds the server-side datagram socket at DebugServerSocket,
// removing any stale socket file left behind by a prior run.
func NewDebugChannel(vm *VM) (*DebugChannel, error) {
	if err := os.Remove(DebugServerSocket); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("debug: remove stale socket: %w: %v", ErrIO, err)
	}

	addr := &net.UnixAddr{Name: DebugServerSocket, Net: "unixgram"}
	conn, err := net.ListenUnixgram("unixgram", addr)
	if err != nil {
		return nil, fmt.Errorf("debug: bind %s: %w: %v", DebugServerSocket, err, ErrIO)
	}

	return &DebugChannel{
		vm:   vm,
		conn: conn,
		peer: &net.UnixAddr{Name: DebugClientSocket, Net: "unixgram"},
	}, nil
}

// Close unlinks the server socket path, matching the clean-shutdown
// requirement that a stale endpoint never outlives the process.
func (d *DebugChannel) Close() error {
	err := d.conn.Close()
	os.Remove(DebugServerSocket)
	return err
}

// Serve runs the request/response loop until the VM halts or a fatal error
// occurs serving or stepping.
func (d *DebugChannel) Serve() error {
	buf := make([]byte, 256)
	for {
		n, _, err := d.conn.ReadFromUnix(buf)
		if err != nil {
			return fmt.Errorf("debug: recv: %w: %v", ErrIO, err)
		}

		reply, stepErr := d.handle(strings.TrimSpace(string(buf[:n])))

		if _, err := d.conn.WriteToUnix([]byte(reply), d.peer); err != nil {
			return fmt.Errorf("debug: send: %w: %v", ErrIO, err)
		}

		if stepErr != nil {
			return stepErr
		}
	}
}

// handle services exactly one command line and returns the reply payload
// and, if execution ended the session (HALT or a fatal error), that error.
func (d *DebugChannel) handle(cmd string) (reply string, err error) {
	switch cmd {
	case "n":
		if err := d.vm.Step(); err != nil {
			if errors.Is(err, ErrHalt) {
				return "halted", err
			}
			return err.Error(), err
		}
		pc := d.vm.Registers().Read(RPC)
		word, rerr := d.vm.Memory().Read(pc)
		if rerr != nil {
			return rerr.Error(), rerr
		}
		return fmt.Sprintf("instruction: 0b%016b", word), nil

	case "r":
		return d.vm.Registers().StateDump(), nil

	default:
		if k, perr := strconv.ParseUint(cmd, 10, 16); perr == nil {
			if err := d.vm.StepN(uint16(k)); err != nil {
				return err.Error(), err
			}
			return fmt.Sprintf("executed %d instructions", k), nil
		}
		return "Invalid Command", nil
	}
}
