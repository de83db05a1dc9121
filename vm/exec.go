package vm

import "fmt"

// execute dispatches a decoded instruction to its executor. All address and
// offset arithmetic here is plain uint16 addition, which wraps modulo 2^16
// on overflow by Go's own integer semantics — no explicit masking needed.
func (vm *VM) execute(d decoded) error {
	switch d.op {
	case OpBR:
		return vm.execBR(d)
	case OpADD:
		return vm.execADD(d)
	case OpLD:
		return vm.execLD(d)
	case OpST:
		return vm.execST(d)
	case OpJSR:
		return vm.execJSR(d)
	case OpAND:
		return vm.execAND(d)
	case OpLDR:
		return vm.execLDR(d)
	case OpSTR:
		return vm.execSTR(d)
	case OpNOT:
		return vm.execNOT(d)
	case OpLDI:
		return vm.execLDI(d)
	case OpSTI:
		return vm.execSTI(d)
	case OpJMP:
		return vm.execJMP(d)
	case OpLEA:
		return vm.execLEA(d)
	case OpTRAP:
		return vm.trap(d.trapVector)
	case OpRTI, OpRES:
		return fmt.Errorf("opcode %s: %w", d.op, ErrReservedOpcode)
	default:
		return fmt.Errorf("opcode %#x: %w", byte(d.op), ErrReservedOpcode)
	}
}

func (vm *VM) execBR(d decoded) error {
	cond := vm.regs.Read(RCOND)
	if d.nzp&cond != 0 {
		pc := vm.regs.Read(RPC)
		vm.regs.Write(RPC, pc+d.off9)
	}
	return nil
}

func (vm *VM) execADD(d decoded) error {
	lhs := vm.regs.Read(d.sr1)
	var rhs uint16
	if d.imm {
		rhs = d.imm5
	} else {
		rhs = vm.regs.Read(d.sr2)
	}
	vm.regs.Write(d.dr, lhs+rhs)
	vm.regs.UpdateFlags(d.dr)
	return nil
}

func (vm *VM) execAND(d decoded) error {
	lhs := vm.regs.Read(d.sr1)
	var rhs uint16
	if d.imm {
		rhs = d.imm5
	} else {
		rhs = vm.regs.Read(d.sr2)
	}
	vm.regs.Write(d.dr, lhs&rhs)
	vm.regs.UpdateFlags(d.dr)
	return nil
}

func (vm *VM) execNOT(d decoded) error {
	v := vm.regs.Read(d.sr1)
	vm.regs.Write(d.dr, ^v)
	vm.regs.UpdateFlags(d.dr) // LC-3 ISA updates flags after NOT; see design notes.
	return nil
}

func (vm *VM) execLD(d decoded) error {
	addr := vm.regs.Read(RPC) + d.off9
	v, err := vm.mem.Read(addr)
	if err != nil {
		return fmt.Errorf("LD at %#04x: %w", addr, err)
	}
	vm.regs.Write(d.dr, v)
	vm.regs.UpdateFlags(d.dr)
	return nil
}

func (vm *VM) execLDI(d decoded) error {
	ptr := vm.regs.Read(RPC) + d.off9
	addr, err := vm.mem.Read(ptr)
	if err != nil {
		return fmt.Errorf("LDI pointer at %#04x: %w", ptr, err)
	}
	v, err := vm.mem.Read(addr)
	if err != nil {
		return fmt.Errorf("LDI at %#04x: %w", addr, err)
	}
	vm.regs.Write(d.dr, v)
	vm.regs.UpdateFlags(d.dr)
	return nil
}

func (vm *VM) execLDR(d decoded) error {
	addr := vm.regs.Read(d.base) + d.off6
	v, err := vm.mem.Read(addr)
	if err != nil {
		return fmt.Errorf("LDR at %#04x: %w", addr, err)
	}
	vm.regs.Write(d.dr, v)
	vm.regs.UpdateFlags(d.dr)
	return nil
}

func (vm *VM) execLEA(d decoded) error {
	addr := vm.regs.Read(RPC) + d.off9
	vm.regs.Write(d.dr, addr)
	vm.regs.UpdateFlags(d.dr)
	return nil
}

func (vm *VM) execST(d decoded) error {
	addr := vm.regs.Read(RPC) + d.off9
	vm.mem.Write(addr, vm.regs.Read(d.sr))
	return nil
}

func (vm *VM) execSTI(d decoded) error {
	ptr := vm.regs.Read(RPC) + d.off9
	addr, err := vm.mem.Read(ptr)
	if err != nil {
		return fmt.Errorf("STI pointer at %#04x: %w", ptr, err)
	}
	vm.mem.Write(addr, vm.regs.Read(d.sr))
	return nil
}

func (vm *VM) execSTR(d decoded) error {
	addr := vm.regs.Read(d.base) + d.off6
	vm.mem.Write(addr, vm.regs.Read(d.sr))
	return nil
}

func (vm *VM) execJSR(d decoded) error {
	pc := vm.regs.Read(RPC)
	vm.regs.Write(R7, pc)
	if d.jsrFlag {
		vm.regs.Write(RPC, pc+d.off11)
	} else {
		vm.regs.Write(RPC, vm.regs.Read(d.base))
	}
	return nil
}

func (vm *VM) execJMP(d decoded) error {
	vm.regs.Write(RPC, vm.regs.Read(d.base))
	return nil
}
