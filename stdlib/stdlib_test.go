package stdlib

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edilson258/bug/types"
	"github.com/edilson258/bug/value"
)

func TestWritePrintsWithNewline(t *testing.T) {
	var out strings.Builder
	natives := New(&out, strings.NewReader(""))
	_, ok := natives["write"].Impl([]value.Value{value.Str("hi")})
	require.True(t, ok, "write reported failure")
	require.Equal(t, "hi\n", out.String())
}

func TestReadLineStripsNewline(t *testing.T) {
	natives := New(&strings.Builder{}, strings.NewReader("hello\nworld\n"))
	v, ok := natives["read_line"].Impl(nil)
	require.True(t, ok)
	require.Equal(t, value.Str("hello"), v)
}

func TestReadLineEOFWithNoData(t *testing.T) {
	natives := New(&strings.Builder{}, strings.NewReader(""))
	_, ok := natives["read_line"].Impl(nil)
	require.False(t, ok, "expected read_line on an empty reader to fail")
}

func TestIntToStr(t *testing.T) {
	natives := New(&strings.Builder{}, strings.NewReader(""))
	v, ok := natives["int_to_str"].Impl([]value.Value{value.Int32(-42)})
	require.True(t, ok)
	require.Equal(t, value.Str("-42"), v)
}

func TestStrLen(t *testing.T) {
	natives := New(&strings.Builder{}, strings.NewReader(""))
	v, ok := natives["str_len"].Impl([]value.Value{value.Str("hello")})
	require.True(t, ok)
	require.Equal(t, value.Int32(5), v)
}

func TestPrototypesMirrorsArityAndTypes(t *testing.T) {
	protos := Prototypes(New(&strings.Builder{}, strings.NewReader("")))

	write, ok := protos["write"]
	require.True(t, ok)
	require.Equal(t, 1, write.Arity)
	require.Empty(t, write.ParamTypes)
	require.Equal(t, types.Void, write.ReturnType)

	readLine, ok := protos["read_line"]
	require.True(t, ok)
	require.Equal(t, 0, readLine.Arity)
	require.Equal(t, types.String, readLine.ReturnType)
}
