package pio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnsignedRoundTrip(t *testing.T) {
	t.Parallel()

	b := make([]byte, 8)

	PutU16BE(b, 0xbeef)
	require.Equal(t, uint16(0xbeef), U16BE(b))
	require.Equal(t, []byte{0xbe, 0xef}, b[:2])

	PutU24BE(b, 0xabcdef)
	require.Equal(t, uint32(0xabcdef), U24BE(b))
	require.Equal(t, []byte{0xab, 0xcd, 0xef}, b[:3])

	PutU32BE(b, 0xdeadbeef)
	require.Equal(t, uint32(0xdeadbeef), U32BE(b))

	PutU64BE(b, 0x1122334455667788)
	require.Equal(t, uint64(0x1122334455667788), U64BE(b))
}

func TestSignedSignExtension(t *testing.T) {
	t.Parallel()

	b := make([]byte, 8)

	PutI16BE(b, -2)
	require.Equal(t, int16(-2), I16BE(b))

	PutI24BE(b, -1000)
	require.Equal(t, int32(-1000), I24BE(b))

	PutI32BE(b, -123456789)
	require.Equal(t, int32(-123456789), I32BE(b))

	PutI64BE(b, -1)
	require.Equal(t, int64(-1), I64BE(b))
}
