package fielddefault

import (
	"context"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/protobsv/protobsv/internal/protoset"
)

const proto2Source = `
syntax = "proto2";
package test;

enum Num {
  FIVE = 5;
  TWO = 2;
}

message Defaults {
  optional int32 i32 = 1 [default = -42];
  optional sint32 si32 = 2;
  optional sfixed64 sf64 = 3 [default = -9223372036854775808];
  optional uint32 u32 = 4 [default = 4294967295];
  optional fixed64 f64 = 5 [default = 18446744073709551615];
  optional double d = 6;
  optional double d_inf = 7 [default = inf];
  optional double d_neg_inf = 8 [default = -inf];
  optional double d_nan = 9 [default = nan];
  optional double d_big = 10 [default = 1e6];
  optional double d_small = 11 [default = 0.1];
  optional double d_precise = 12 [default = 0.30000000000000004];
  optional double d_exp = 13 [default = 1e20];
  optional float f = 14 [default = 1.1];
  optional float f_inf = 15 [default = inf];
  optional float f_neg_inf = 16 [default = -inf];
  optional float f_nan = 17 [default = nan];
  optional bool b = 18;
  optional bool b_true = 19 [default = true];
  optional Num e = 20;
  optional Num e_two = 21 [default = TWO];
  optional string s = 22;
  optional string s_esc = 23 [default = "a\"b\n'c"];
  optional bytes by = 24 [default = "\001\377"];
  optional Defaults msg = 25;
  optional group Grp = 26 {
    optional int32 a = 1;
  }
  repeated int32 rep = 27;
  repeated Defaults rep_msg = 28;
}
`

const proto3Source = `
syntax = "proto3";
package test3;

message Zeroes {
  double d = 1;
  float f = 2;
  int64 i = 3;
  string s = 4;
  bytes b = 5;
  map<string, int32> m = 6;
  optional double opt = 7;
}
`

func compile(t *testing.T, src string) protoreflect.MessageDescriptor {
	fds, err := protoset.CompileSources(context.Background(), map[string]string{"test.proto": src}, "test.proto")
	require.NoError(t, err)
	return fds[0].Messages().Get(0)
}

func TestDefaultValue(t *testing.T) {
	md := compile(t, proto2Source)
	expected := map[protoreflect.Name]string{
		"i32":       "-42",
		"si32":      "0",
		"sf64":      "-9223372036854775808",
		"u32":       "4294967295",
		"f64":       "18446744073709551615",
		"d":         "0",
		"d_inf":     PositiveInfinity,
		"d_neg_inf": NegativeInfinity,
		"d_nan":     NaN,
		"d_big":     "1000000",
		"d_small":   "0.1",
		"d_precise": "0.30000000000000004",
		"d_exp":     "1e+20",
		"f":         "1.1",
		"f_inf":     PositiveInfinity,
		"f_neg_inf": NegativeInfinity,
		"f_nan":     NaN,
		"b":         "False",
		"b_true":    "True",
		"e":         "5",
		"e_two":     "2",
		"s":         `_b("").decode('utf-8')`,
		"s_esc":     `_b("a\"b\n\'c").decode('utf-8')`,
		"by":        `_b("\001\377")`,
		"msg":       "None",
		"grp":       "None",
		"rep":       "[]",
		"rep_msg":   "[]",
	}
	fields := md.Fields()
	require.Equal(t, len(expected), fields.Len())
	for i := 0; i < fields.Len(); i++ {
		fld := fields.Get(i)
		exp, ok := expected[fld.Name()]
		require.True(t, ok, "unexpected field %s", fld.Name())
		require.Equal(t, exp, DefaultValue(fld), "field %s", fld.Name())
	}
}

func TestDefaultValue_Proto3(t *testing.T) {
	md := compile(t, proto3Source)
	expected := map[protoreflect.Name]string{
		"d":   "0",
		"f":   "0",
		"i":   "0",
		"s":   `_b("").decode('utf-8')`,
		"b":   `_b("")`,
		"m":   "[]",
		"opt": "0",
	}
	fields := md.Fields()
	for i := 0; i < fields.Len(); i++ {
		fld := fields.Get(i)
		require.Equal(t, expected[fld.Name()], DefaultValue(fld), "field %s", fld.Name())
	}
}

// evalNumber evaluates the numeric expressions produced for floating point
// defaults: plain literals and a product of two literals in parentheses.
func evalNumber(t *testing.T, expr string) float64 {
	expr = strings.TrimSpace(expr)
	if strings.HasPrefix(expr, "(") && strings.HasSuffix(expr, ")") {
		parts := strings.Split(expr[1:len(expr)-1], "*")
		require.Len(t, parts, 2)
		return evalNumber(t, parts[0]) * evalNumber(t, parts[1])
	}
	v, err := strconv.ParseFloat(expr, 64)
	if err != nil {
		// literals too large for a double report a range error but still
		// evaluate to infinity
		require.ErrorIs(t, err, strconv.ErrRange)
	}
	return v
}

func TestDefaultValue_NonFiniteRoundTrip(t *testing.T) {
	md := compile(t, proto2Source)
	zero := DefaultValue(md.Fields().ByName("d"))
	inf := DefaultValue(md.Fields().ByName("d_inf"))
	negInf := DefaultValue(md.Fields().ByName("d_neg_inf"))
	nan := DefaultValue(md.Fields().ByName("d_nan"))

	require.Equal(t, 0.0, evalNumber(t, zero))
	require.True(t, math.IsInf(evalNumber(t, inf), 1))
	require.True(t, math.IsInf(evalNumber(t, negInf), -1))
	require.True(t, math.IsNaN(evalNumber(t, nan)))

	distinct := map[string]struct{}{zero: {}, inf: {}, negInf: {}, nan: {}}
	require.Len(t, distinct, 4)
}

type badKindField struct {
	protoreflect.FieldDescriptor
}

func (badKindField) Cardinality() protoreflect.Cardinality { return protoreflect.Optional }
func (badKindField) Kind() protoreflect.Kind               { return protoreflect.Kind(0) }
func (badKindField) FullName() protoreflect.FullName       { return "test.Bad.field" }

func TestDefaultValue_UnknownKindPanics(t *testing.T) {
	require.Panics(t, func() {
		DefaultValue(badKindField{})
	})
}
