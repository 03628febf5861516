package dictionary

// Blob layout, version 1. Multi-byte fields are big endian.
//
//	header   magic "TAPD" | version | flags | max frequency | reserved
//	group    count (1 byte, or 2 bytes with bit 7 set) followed by count records
//	record   code (1 byte, 0xFF escapes a 2 byte code)
//	         flags (bit 7 terminal, bit 6 has children); with children the low
//	         6 bits and the next 2 bytes hold the 22 bit child group address
//	         frequency (1 byte, terminal records only)
const (
	headerSize = 8

	// Version is the only blob version this package reads and writes.
	Version = 1

	// MaxBlobSize is the largest blob a 22 bit child address can span.
	MaxBlobSize = 1 << 22

	// MaxGroupSize is the largest number of children a single node may have.
	MaxGroupSize = 0x7FFF

	// MaxFrequency is the largest frequency a terminal record can carry.
	MaxFrequency = 0xFF

	flagTerminal    = 0x80
	flagHasChildren = 0x40
	addressHighMask = 0x3F
	codeEscape      = 0xFF
	countWide       = 0x80
)

var magic = [4]byte{'T', 'A', 'P', 'D'}

// Node is a single child record: the edge code into the node, its terminal
// marker and the address of its own child group.
type Node struct {
	Code      uint16
	Terminal  bool
	Frequency int
	// Children is the offset of the child group, 0 for leaves.
	Children int
}

// HasChildren reports whether the node continues to deeper codes.
func (n Node) HasChildren() bool {
	return n.Children != 0
}

// Iterator walks the records of one child group in ascending code order.
// It is a value type so that traversal does not allocate.
type Iterator struct {
	buf       []byte
	pos       int
	remaining int
}

// Len returns the number of records not yet visited.
func (it *Iterator) Len() int {
	return it.remaining
}

// Next returns the next record of the group.
// Blobs are validated on load, so no bounds errors can occur here.
func (it *Iterator) Next() (Node, bool) {
	if it.remaining == 0 {
		return Node{}, false
	}
	n, next, _ := decodeNode(it.buf, it.pos)
	it.pos = next
	it.remaining--
	return n, true
}

// decodeCount reads a group count starting at pos.
func decodeCount(buf []byte, pos int) (count, next int, ok bool) {
	if pos >= len(buf) {
		return 0, pos, false
	}
	b := int(buf[pos])
	if b&countWide == 0 {
		return b, pos + 1, true
	}
	if pos+1 >= len(buf) {
		return 0, pos, false
	}
	return (b&^countWide)<<8 | int(buf[pos+1]), pos + 2, true
}

// decodeNode reads one child record starting at pos.
func decodeNode(buf []byte, pos int) (n Node, next int, ok bool) {
	if pos >= len(buf) {
		return n, pos, false
	}
	code := uint16(buf[pos])
	pos++
	if code == codeEscape {
		if pos+1 >= len(buf) {
			return n, pos, false
		}
		code = uint16(buf[pos])<<8 | uint16(buf[pos+1])
		pos += 2
	}
	n.Code = code

	if pos >= len(buf) {
		return n, pos, false
	}
	flags := buf[pos]
	n.Terminal = flags&flagTerminal != 0
	if flags&flagHasChildren != 0 {
		if pos+2 >= len(buf) {
			return n, pos, false
		}
		n.Children = int(flags&addressHighMask)<<16 | int(buf[pos+1])<<8 | int(buf[pos+2])
		pos += 3
	} else {
		pos++
	}

	if n.Terminal {
		if pos >= len(buf) {
			return n, pos, false
		}
		n.Frequency = int(buf[pos])
		pos++
	}
	return n, pos, true
}

// encodedCodeSize returns the number of bytes a code occupies.
func encodedCodeSize(code uint16) int {
	if code >= codeEscape {
		return 3
	}
	return 1
}

// encodedCountSize returns the number of bytes a group count occupies.
func encodedCountSize(count int) int {
	if count >= countWide {
		return 2
	}
	return 1
}

// appendCount encodes a group count.
func appendCount(dst []byte, count int) []byte {
	if count >= countWide {
		return append(dst, byte(count>>8)|countWide, byte(count))
	}
	return append(dst, byte(count))
}

// appendNode encodes one child record.
func appendNode(dst []byte, n Node) []byte {
	if n.Code >= codeEscape {
		dst = append(dst, codeEscape, byte(n.Code>>8), byte(n.Code))
	} else {
		dst = append(dst, byte(n.Code))
	}

	var flags byte
	if n.Terminal {
		flags |= flagTerminal
	}
	if n.Children != 0 {
		flags |= flagHasChildren | byte(n.Children>>16)&addressHighMask
		dst = append(dst, flags, byte(n.Children>>8), byte(n.Children))
	} else {
		dst = append(dst, flags)
	}

	if n.Terminal {
		dst = append(dst, byte(n.Frequency))
	}
	return dst
}
