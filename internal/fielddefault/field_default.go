package fielddefault

import (
	"fmt"
	"math"
	"strconv"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/protobsv/protobsv/internal"
)

const (
	// PositiveInfinity is a numeric literal too large for a double, which
	// consumers parse as +Inf. Not every consumer understands "inf".
	PositiveInfinity = "1e10000"
	// NegativeInfinity is the negation of PositiveInfinity.
	NegativeInfinity = "-" + PositiveInfinity
	// NaN evaluates to NaN since infinity times zero is not a number.
	NaN = "(" + PositiveInfinity + " * 0)"

	// EmptyList is the default of every repeated field.
	EmptyList = "[]"

	textDecode = ".decode('utf-8')"
)

// DefaultValue returns the literal for the default value of the given field,
// as understood by the runtime that consumes generated descriptors. If the
// field has no explicit default, the literal for the zero value of its type
// is returned: zero for numbers, the empty string for strings and bytes, the
// first value for enums, an empty list for repeated fields, and None for
// message fields.
//
// It panics if the field's kind is not one it knows how to encode.
func DefaultValue(fld protoreflect.FieldDescriptor) string {
	if fld.Cardinality() == protoreflect.Repeated {
		return EmptyList
	}

	switch fld.Kind() {
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return strconv.FormatInt(fld.Default().Int(), 10)
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind,
		protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return strconv.FormatUint(fld.Default().Uint(), 10)
	case protoreflect.DoubleKind:
		v := fld.Default().Float()
		if lit, ok := nonFinite(v); ok {
			return lit
		}
		return formatDouble(v)
	case protoreflect.FloatKind:
		v := fld.Default().Float()
		if lit, ok := nonFinite(v); ok {
			return lit
		}
		return formatFloat(float32(v))
	case protoreflect.BoolKind:
		if fld.Default().Bool() {
			return "True"
		}
		return "False"
	case protoreflect.EnumKind:
		return strconv.FormatInt(int64(fld.Default().Enum()), 10)
	case protoreflect.StringKind:
		return internal.BytesLiteral([]byte(fld.Default().String()), '"') + textDecode
	case protoreflect.BytesKind:
		return internal.BytesLiteral(fld.Default().Bytes(), '"')
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return internal.None
	}
	panic(fmt.Sprintf("fielddefault: field %s has unsupported kind %v", fld.FullName(), fld.Kind()))
}

func nonFinite(v float64) (string, bool) {
	switch {
	case math.IsInf(v, 1):
		return PositiveInfinity, true
	case math.IsInf(v, -1):
		return NegativeInfinity, true
	case math.IsNaN(v):
		return NaN, true
	}
	return "", false
}

// formatDouble uses 15 significant digits unless that does not survive a
// round trip, in which case it uses 17.
func formatDouble(v float64) string {
	s := strconv.FormatFloat(v, 'g', 15, 64)
	if r, err := strconv.ParseFloat(s, 64); err != nil || r != v {
		s = strconv.FormatFloat(v, 'g', 17, 64)
	}
	return s
}

// formatFloat is like formatDouble but at single precision, using 6 and then
// 9 significant digits.
func formatFloat(v float32) string {
	s := strconv.FormatFloat(float64(v), 'g', 6, 32)
	if r, err := strconv.ParseFloat(s, 32); err != nil || float32(r) != v {
		s = strconv.FormatFloat(float64(v), 'g', 9, 32)
	}
	return s
}
