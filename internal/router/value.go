package router

// Default metadata key Capture writes to when none is configured, matching
// the well-known quilkin constant named in spec §6.
const DefaultCaptureMetadataKey = "quilkin.dev/captured_bytes"

type valueKind int

const (
	kindBytes valueKind = iota
	kindString
	kindBool
)

// Value is the tagged union carried in a datagram's metadata map: either a
// captured byte slice, a string, or a boolean flag.
type Value struct {
	kind valueKind
	b    []byte
	s    string
	bo   bool
}

func BytesValue(b []byte) Value { return Value{kind: kindBytes, b: b} }
func StringValue(s string) Value { return Value{kind: kindString, s: s} }
func BoolValue(b bool) Value    { return Value{kind: kindBool, bo: b} }

func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != kindBytes {
		return nil, false
	}
	return v.b, true
}

func (v Value) AsString() (string, bool) {
	if v.kind != kindString {
		return "", false
	}
	return v.s, true
}

func (v Value) AsBool() (bool, bool) {
	if v.kind != kindBool {
		return false, false
	}
	return v.bo, true
}

func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case kindBytes:
		if len(v.b) != len(other.b) {
			return false
		}
		for i := range v.b {
			if v.b[i] != other.b[i] {
				return false
			}
		}
		return true
	case kindString:
		return v.s == other.s
	case kindBool:
		return v.bo == other.bo
	}
	return false
}
