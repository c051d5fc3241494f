// Package ogg reads Vorbis and Opus streams from Ogg containers.
package ogg

import (
	"bytes"
	"fmt"

	"github.com/simonhull/loopbar/internal/binary"
)

const (
	pageHeaderSize = 27
	flagContinued  = 0x01

	// Trailing window searched for the final page.
	tailWindow = 65536
)

// page is one Ogg page. Lacing holds the segment table, which is needed to
// find packet boundaries inside Data.
type page struct {
	HeaderType      byte
	GranulePosition int64
	SerialNumber    uint32
	SequenceNumber  uint32
	Lacing          []byte
	Data            []byte
}

// readPage reads the page at offset and returns it with the offset of the
// following page.
func readPage(sr *binary.SafeReader, offset int64) (*page, int64, error) {
	header, err := sr.Bytes(offset, pageHeaderSize, "Ogg page header")
	if err != nil {
		return nil, 0, err
	}
	if string(header[:4]) != "OggS" {
		return nil, 0, fmt.Errorf("invalid Ogg capture pattern at offset %d", offset)
	}
	if header[4] != 0 {
		return nil, 0, fmt.Errorf("unsupported Ogg version %d at offset %d", header[4], offset)
	}

	p := &page{
		HeaderType:      header[5],
		GranulePosition: int64(binary.Decode[uint64](header[6:14], binary.LittleEndian)),
		SerialNumber:    binary.Decode[uint32](header[14:18], binary.LittleEndian),
		SequenceNumber:  binary.Decode[uint32](header[18:22], binary.LittleEndian),
	}

	segmentCount := int(header[26])
	p.Lacing, err = sr.Bytes(offset+pageHeaderSize, segmentCount, "Ogg segment table")
	if err != nil {
		return nil, 0, err
	}

	dataSize := 0
	for _, s := range p.Lacing {
		dataSize += int(s)
	}
	dataOffset := offset + pageHeaderSize + int64(segmentCount)
	p.Data, err = sr.Bytes(dataOffset, dataSize, "Ogg page data")
	if err != nil {
		return nil, 0, err
	}

	return p, dataOffset + int64(dataSize), nil
}

// packetReader assembles packets from consecutive pages using the lacing
// values: a segment shorter than 255 bytes ends a packet, and a packet left
// open at the end of a page continues on the next one.
type packetReader struct {
	sr      *binary.SafeReader
	offset  int64
	pending [][]byte
	partial []byte
}

func newPacketReader(sr *binary.SafeReader) *packetReader {
	return &packetReader{sr: sr}
}

// next returns the next complete packet.
func (pr *packetReader) next() ([]byte, error) {
	for len(pr.pending) == 0 {
		if pr.offset >= pr.sr.Size() {
			return nil, fmt.Errorf("end of stream after %d bytes", pr.offset)
		}
		p, nextOffset, err := readPage(pr.sr, pr.offset)
		if err != nil {
			return nil, err
		}
		pr.offset = nextOffset
		pr.split(p)
	}

	packet := pr.pending[0]
	pr.pending = pr.pending[1:]
	return packet, nil
}

func (pr *packetReader) split(p *page) {
	if p.HeaderType&flagContinued == 0 {
		pr.partial = nil
	}

	pos := 0
	for _, seg := range p.Lacing {
		pr.partial = append(pr.partial, p.Data[pos:pos+int(seg)]...)
		pos += int(seg)
		if seg < 255 {
			pr.pending = append(pr.pending, pr.partial)
			pr.partial = nil
		}
	}
}

// lastGranulePosition scans the tail of the file for the final page and
// returns its granule position.
func lastGranulePosition(sr *binary.SafeReader) (int64, error) {
	start := max(sr.Size()-tailWindow, 0)
	tail, err := sr.Bytes(start, int(sr.Size()-start), "Ogg tail")
	if err != nil {
		return 0, err
	}

	idx := bytes.LastIndex(tail, []byte("OggS"))
	if idx < 0 || idx+14 > len(tail) {
		return 0, fmt.Errorf("could not find last Ogg page")
	}

	return int64(binary.Decode[uint64](tail[idx+6:idx+14], binary.LittleEndian)), nil
}
