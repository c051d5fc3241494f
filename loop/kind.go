// Package loop derives a track's loop section from its metadata.
//
// Loop points are stored as free-form tags: LOOPSTART, LOOPLENGTH and
// LOOPEND, or Loop_Start, Loop_Length and Loop_End, in any letter case. A
// value with a decimal point is in seconds; any other value is a sample
// count. Load reads the tags and the stream sample rate from a Source and
// returns the resolved Info.
//
//	info := loop.Load(track)
//	if info.Valid {
//	    fmt.Printf("loop %.3fs to %.3fs\n", info.Start, info.EndOr(length))
//	}
package loop

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind identifies which loop boundary a metadata name refers to.
type Kind int

const (
	KindNone Kind = iota
	KindStart
	KindLength
	KindEnd
)

var kindNames = [...]string{
	KindNone:   "none",
	KindStart:  "start",
	KindLength: "length",
	KindEnd:    "end",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindNone]
	}
	return kindNames[k]
}

const tagPrefix = "LOOP"

// Classify maps a metadata name to the loop boundary it names.
//
// The name is upper-cased with full Unicode case mapping and must start with
// "LOOP". One underscore after the prefix is allowed, so "LOOPSTART",
// "Loop_Start" and "loop_start" all classify as KindStart.
func Classify(name string) Kind {
	upper := cases.Upper(language.Und).String(name)

	rest, ok := strings.CutPrefix(upper, tagPrefix)
	if !ok {
		return KindNone
	}
	rest = strings.TrimPrefix(rest, "_")

	switch rest {
	case "START":
		return KindStart
	case "LENGTH":
		return KindLength
	case "END":
		return KindEnd
	}
	return KindNone
}
