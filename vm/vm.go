// Package vm implements the LC-3 virtual machine core: its register file,
// word-addressed memory, instruction decoder and executors, TRAP service
// routines, and the fetch/step driver that ties them together.
//
// The package owns no process-level concerns (terminal mode, CLI flags,
// file I/O for object images) — those are boundary responsibilities of the
// caller, consistent with the core's own scope.
package vm

import (
	"bufio"
	"fmt"
	"io"
)

// VM holds one LC-3 machine instance: register file, memory, and the
// console streams its TRAPs and KBSR polling read and write.
type VM struct {
	regs *RegisterFile
	mem  *Memory

	console *bufio.Reader // shared by GETC/IN and KBSR polling
	stdout  *bufio.Writer
}

// New returns a machine with PC set to start, zeroed registers and memory,
// reading keyboard/TRAP input from stdin and writing TRAP/program output to
// stdout.
func New(start uint16, stdin io.Reader, stdout io.Writer) *VM {
	console := bufio.NewReader(stdin)
	return &VM{
		regs:    NewRegisterFile(start),
		mem:     NewMemory(console),
		console: console,
		stdout:  bufio.NewWriter(stdout),
	}
}

// Registers exposes the register file for callers (the debug channel, the
// interactive front end) that need direct read/dump access.
func (vm *VM) Registers() *RegisterFile { return vm.regs }

// Memory exposes the memory image for callers that need to load a program
// image before execution starts.
func (vm *VM) Memory() *Memory { return vm.mem }

// Flush flushes any buffered TRAP output. Callers should defer this on every
// exit path so a program that HALTs mid-line is not silently truncated.
func (vm *VM) Flush() error {
	return vm.stdout.Flush()
}

// Step performs exactly one fetch/decode/execute cycle:
//  1. read the word at mem[PC] (may trigger a KBSR side effect if PC==KBSR)
//  2. PC += 1 (wrapping)
//  3. decode and execute the fetched word
//
// It returns ErrHalt on a clean TRAP HALT, or a wrapped fatal error.
func (vm *VM) Step() error {
	pc := vm.regs.Read(RPC)

	word, err := vm.mem.Read(pc)
	if err != nil {
		return fmt.Errorf("fetch at %#04x: %w", pc, err)
	}

	vm.regs.Write(RPC, pc+1) // wrapping by uint16 overflow

	d := Decode(Instruction(word))
	return vm.execute(d)
}

// StepN performs Step exactly k times, stopping early (and returning the
// error) if any step fails or halts. k=0 is a no-op.
func (vm *VM) StepN(k uint16) error {
	for i := uint16(0); i < k; i++ {
		if err := vm.Step(); err != nil {
			return err
		}
	}
	return nil
}
