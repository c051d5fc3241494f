package loop

import "iter"

// RawTags holds the loop tag values exactly as stored. An empty field means
// the tag was absent or carried no value. Length and End are never both set.
type RawTags struct {
	Start  string
	Length string
	End    string
}

// ExtractTags scans metadata fields in order and collects the raw loop tags.
//
// The first start field wins. The first length or end field wins and locks
// out the other kind. Only the first value of a field is used; a field with
// no values leaves the string empty but still counts as found. The scan stops
// once both a start and a length-or-end field have been seen.
func ExtractTags(meta iter.Seq2[string, []string]) RawTags {
	var raw RawTags
	var haveStart, haveSpan bool

	for name, values := range meta {
		switch kind := Classify(name); {
		case kind == KindStart && !haveStart:
			haveStart = true
			raw.Start = first(values)
		case kind == KindLength && !haveSpan:
			haveSpan = true
			raw.Length = first(values)
		case kind == KindEnd && !haveSpan:
			haveSpan = true
			raw.End = first(values)
		}

		if haveStart && haveSpan {
			break
		}
	}

	return raw
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
