package m4a

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/simonhull/loopbar/internal/binary"
	"github.com/simonhull/loopbar/internal/types"
)

// Well-known data atom type indicators.
const (
	dataTypeImplicit = 0
	dataTypeUTF8     = 1
	dataTypeUTF16    = 2
	dataTypeInteger  = 21
)

// freeformType is the iTunes atom that carries arbitrary named fields.
const freeformType = "----"

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// parseIlst adds every item of the ilst atom to track.Metadata in file order.
//
// Standard items are keyed by their four-character code with 0xA9 rendered
// as "©" (e.g. "©nam"). Freeform items are keyed by their name child
// (e.g. "LOOPSTART").
func parseIlst(sr *binary.SafeReader, ilst *atom, track *types.Track) {
	for item, err := range children(sr, ilst.DataOffset(), ilst.End()) {
		if err != nil {
			track.Warn("metadata", ilst.Offset, "malformed ilst item: %v", err)
			return
		}

		if item.Type == freeformType {
			if err := parseFreeform(sr, item, track); err != nil {
				track.Warn("metadata", item.Offset, "freeform item: %v", err)
			}
			continue
		}

		values, err := dataValues(sr, item)
		if err != nil {
			track.Warn("metadata", item.Offset, "item %s: %v", itemName(item.Type), err)
			continue
		}
		if len(values) > 0 {
			track.Metadata.Add(itemName(item.Type), values...)
		}
	}
}

// parseFreeform reads a "----" item: mean, name and zero or more data atoms.
// The field is recorded even when it has no data atom.
func parseFreeform(sr *binary.SafeReader, item *atom, track *types.Track) error {
	var name string
	for child, err := range children(sr, item.DataOffset(), item.End()) {
		if err != nil {
			return err
		}
		if child.Type != "name" {
			continue
		}
		n := int(child.End() - child.DataOffset() - 4)
		if n < 0 {
			return fmt.Errorf("name atom too short")
		}
		b, err := sr.Bytes(child.DataOffset()+4, n, "freeform name")
		if err != nil {
			return err
		}
		name = string(b)
		break
	}
	if name == "" {
		return fmt.Errorf("missing name atom")
	}

	values, err := dataValues(sr, item)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	track.Metadata.Add(name, values...)
	return nil
}

// dataValues decodes the textual data children of an item. Binary payloads
// such as cover art are skipped.
func dataValues(sr *binary.SafeReader, item *atom) ([]string, error) {
	var values []string
	for child, err := range children(sr, item.DataOffset(), item.End()) {
		if err != nil {
			return values, err
		}
		if child.Type != "data" {
			continue
		}

		n := int(child.End() - child.DataOffset())
		if n < 8 {
			return values, fmt.Errorf("data atom too short")
		}
		payload, err := sr.Bytes(child.DataOffset(), n, "data atom")
		if err != nil {
			return values, err
		}

		kind := binary.Decode[uint32](payload[0:4], binary.BigEndian) & 0x00FFFFFF
		if v, ok := decodeValue(item.Type, kind, payload[8:]); ok {
			values = append(values, v)
		}
	}
	return values, nil
}

func decodeValue(itemType string, kind uint32, b []byte) (string, bool) {
	switch kind {
	case dataTypeUTF8:
		return strings.TrimRight(string(b), "\x00"), true
	case dataTypeUTF16:
		s, err := utf16BE.NewDecoder().Bytes(b)
		if err != nil {
			return "", false
		}
		return strings.TrimRight(string(s), "\x00"), true
	case dataTypeInteger:
		return decodeInteger(b)
	case dataTypeImplicit:
		if itemType == "trkn" || itemType == "disk" {
			return decodeIndex(b)
		}
	}
	return "", false
}

// decodeInteger reads a big-endian signed integer of 1, 2, 4 or 8 bytes.
func decodeInteger(b []byte) (string, bool) {
	var v int64
	switch len(b) {
	case 1:
		v = int64(int8(b[0]))
	case 2:
		v = int64(int16(binary.Decode[uint16](b, binary.BigEndian)))
	case 4:
		v = int64(int32(binary.Decode[uint32](b, binary.BigEndian)))
	case 8:
		v = int64(binary.Decode[uint64](b, binary.BigEndian))
	default:
		return "", false
	}
	return strconv.FormatInt(v, 10), true
}

// decodeIndex reads the trkn/disk layout: 2 reserved bytes, number, total.
func decodeIndex(b []byte) (string, bool) {
	if len(b) < 6 {
		return "", false
	}
	number := binary.Decode[uint16](b[2:4], binary.BigEndian)
	total := binary.Decode[uint16](b[4:6], binary.BigEndian)
	if total == 0 {
		return strconv.Itoa(int(number)), true
	}
	return fmt.Sprintf("%d/%d", number, total), true
}

// itemName renders a four-character code, mapping the 0xA9 prefix byte to "©".
func itemName(code string) string {
	if len(code) == 4 && code[0] == 0xA9 {
		return "©" + code[1:]
	}
	return code
}
