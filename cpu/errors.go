// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrDestroyed     = errors.New("cpu has been destroyed")
	ErrUnknownOpcode = errors.New("unknown opcode")
)

// An OpcodeError is returned by a CPU running with strict opcodes when it
// fetches an opcode that has no implementation.
type OpcodeError struct {
	Opcode byte   // the offending opcode
	Addr   uint16 // address the opcode was fetched from
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode $%02X at $%04X", e.Opcode, e.Addr)
}

// Is reports whether 'target' is ErrUnknownOpcode.
func (e *OpcodeError) Is(target error) bool {
	return target == ErrUnknownOpcode
}
