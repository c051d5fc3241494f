package binary

import "encoding/binary"

// Byte orders re-exported so callers need not import encoding/binary
// alongside this package.
var (
	BigEndian    binary.ByteOrder = binary.BigEndian
	LittleEndian binary.ByteOrder = binary.LittleEndian
)

// Unsigned lists the fixed-width integer types the generic readers support.
type Unsigned interface {
	uint8 | uint16 | uint32 | uint64
}

// Read reads a big-endian value of type T at off.
//
// Big-endian is the default because ID3v2, FLAC block headers and MP4 atoms
// all use it.
//
//	size, err := binary.Read[uint32](sr, offset, "atom size")
func Read[T Unsigned](sr *SafeReader, off int64, what string) (T, error) {
	return readOrder[T](sr, off, what, binary.BigEndian)
}

// ReadLE reads a little-endian value of type T at off.
// Vorbis comments and Ogg page headers are little-endian.
func ReadLE[T Unsigned](sr *SafeReader, off int64, what string) (T, error) {
	return readOrder[T](sr, off, what, binary.LittleEndian)
}

func readOrder[T Unsigned](sr *SafeReader, off int64, what string, order binary.ByteOrder) (T, error) {
	var zero T

	buf := make([]byte, sizeOf[T]())
	if err := sr.ReadAt(buf, off, what); err != nil {
		return zero, err
	}

	return Decode[T](buf, order), nil
}

// Decode converts the first sizeof(T) bytes of b into T. b must be long enough.
func Decode[T Unsigned](b []byte, order binary.ByteOrder) T {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return T(b[0])
	case uint16:
		return T(order.Uint16(b))
	case uint32:
		return T(order.Uint32(b))
	default:
		return T(order.Uint64(b))
	}
}

func sizeOf[T Unsigned]() int {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return 1
	case uint16:
		return 2
	case uint32:
		return 4
	default:
		return 8
	}
}
