package vm

import (
	"fmt"
)

// TRAP vectors (low 8 bits of a TRAP instruction).
const (
	TrapGETC  byte = 0x20
	TrapOUT   byte = 0x21
	TrapPUTS  byte = 0x22
	TrapIN    byte = 0x23
	TrapPUTSP byte = 0x24
	TrapHALT  byte = 0x25
)

// trap dispatches vec against the VM's console, returning ErrHalt on TRAP
// HALT and a wrapped ErrInvalidTrap for any other undefined vector.
func (vm *VM) trap(vec byte) error {
	switch vec {
	case TrapGETC:
		return vm.trapGetc()
	case TrapOUT:
		return vm.trapOut()
	case TrapPUTS:
		return vm.trapPuts()
	case TrapIN:
		return vm.trapIn()
	case TrapPUTSP:
		return vm.trapPutsp()
	case TrapHALT:
		return ErrHalt
	default:
		return fmt.Errorf("trap %#02x: %w", vec, ErrInvalidTrap)
	}
}

func (vm *VM) trapGetc() error {
	b, err := vm.console.ReadByte()
	if err != nil {
		return fmt.Errorf("getc: %w: %v", ErrIO, err)
	}
	vm.regs.Write(R0, uint16(b))
	return nil
}

func (vm *VM) trapOut() error {
	c := byte(vm.regs.Read(R0) & 0xFF)
	if _, err := vm.stdout.Write([]byte{c}); err != nil {
		return fmt.Errorf("out: %w: %v", ErrIO, err)
	}
	return vm.stdout.Flush()
}

func (vm *VM) trapPuts() error {
	addr := vm.regs.Read(R0)
	for {
		w, err := vm.mem.Read(addr)
		if err != nil {
			return err
		}
		if w == 0 {
			break
		}
		if _, err := vm.stdout.Write([]byte{byte(w & 0xFF)}); err != nil {
			return fmt.Errorf("puts: %w: %v", ErrIO, err)
		}
		addr++
	}
	return vm.stdout.Flush()
}

func (vm *VM) trapIn() error {
	if _, err := fmt.Fprint(vm.stdout, "Enter a character: "); err != nil {
		return fmt.Errorf("in: %w: %v", ErrIO, err)
	}
	vm.stdout.Flush()
	return vm.trapGetc()
}

func (vm *VM) trapPutsp() error {
	addr := vm.regs.Read(R0)
	for {
		w, err := vm.mem.Read(addr)
		if err != nil {
			return err
		}
		if w == 0 {
			break
		}
		lo := byte(w & 0xFF)
		hi := byte(w >> 8)

		if _, err := vm.stdout.Write([]byte{lo}); err != nil {
			return fmt.Errorf("putsp: %w: %v", ErrIO, err)
		}
		if hi != 0 {
			if _, err := vm.stdout.Write([]byte{hi}); err != nil {
				return fmt.Errorf("putsp: %w: %v", ErrIO, err)
			}
		}
		addr++
	}
	return vm.stdout.Flush()
}
