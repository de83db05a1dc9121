package vm

import "errors"

// Sentinel package-scope errors returned by the core. Callers compare with
// errors.Is, and the CLI's top-level handler is the only place that turns
// one of these into a process exit code.
var (
	// ErrHalt is returned by Step when a TRAP HALT instruction executes. It
	// is not a failure; it signals clean termination.
	ErrHalt = errors.New("lc3: halt")

	// ErrReservedOpcode is returned when the decoder encounters RTI or RES,
	// neither of which this machine supports.
	ErrReservedOpcode = errors.New("lc3: reserved opcode (RTI/RES unsupported)")

	// ErrInvalidTrap is returned when a TRAP vector has no registered
	// service routine.
	ErrInvalidTrap = errors.New("lc3: invalid trap vector")

	// ErrIO is returned when a blocking stdin read (KBSR poll, GETC, IN)
	// fails.
	ErrIO = errors.New("lc3: input/output error")

	// ErrBadAddress names the closed [0, 0xFFFF] memory invariant. Memory is
	// indexed by uint16, so no address outside that range can be formed, and
	// no code path currently returns this error.
	ErrBadAddress = errors.New("lc3: address out of bounds")
)
