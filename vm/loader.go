package vm

import (
	"encoding/binary"
	"fmt"
	"io"
)

// LoadImage reads a big-endian 16-bit word stream from r: the first word is
// the initial PC, and each subsequent word is stored at successive memory
// addresses starting at that PC. A truncated final odd byte silently ends
// loading at the last complete word. It returns the initial PC.
func LoadImage(mem *Memory, r io.Reader) (uint16, error) {
	var origin uint16
	if err := binary.Read(r, binary.BigEndian, &origin); err != nil {
		return 0, fmt.Errorf("lc3: read origin word: %w", err)
	}

	addr := origin
	for {
		var word uint16
		if err := binary.Read(r, binary.BigEndian, &word); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return 0, fmt.Errorf("lc3: read image word at %#04x: %w", addr, err)
		}
		mem.Write(addr, word)
		addr++
	}

	return origin, nil
}
