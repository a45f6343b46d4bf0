package mp4io

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompactSampleSizeWidths(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name      string
		fieldSize uint8
		entries   []uint32
	}{
		{"nibble", 4, []uint32{3, 5, 7}},
		{"nibble_even", 4, []uint32{1, 2, 3, 4}},
		{"byte", 8, []uint32{0, 200, 255}},
		{"short", 16, []uint32{65535, 1, 700}},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			in := &CompactSampleSize{FieldSize: tc.fieldSize, Entries: tc.entries}
			b := make([]byte, in.Len())
			n := in.Marshal(b)
			require.Equal(t, in.Len(), n)

			var out CompactSampleSize
			_, err := out.Unmarshal(b[:n], 0)
			require.NoError(t, err)
			require.Equal(t, tc.fieldSize, out.FieldSize)
			require.Equal(t, tc.entries, out.Entries)
		})
	}

	t.Run("bad_width", func(t *testing.T) {
		t.Parallel()
		b := box("stz2", 0, 0, 0, 0, 0, 0, 0, 12, 0, 0, 0, 1)
		var out CompactSampleSize
		_, err := out.Unmarshal(b, 0)
		require.ErrorIs(t, err, ErrInvalid)
	})
}

func TestMediaHeaderLanguage(t *testing.T) {
	t.Parallel()

	var mdhd MediaHeader
	require.Equal(t, "und", mdhd.LanguageString())

	mdhd.SetLanguageString("eng")
	require.Equal(t, "eng", mdhd.LanguageString())

	mdhd.SetLanguageString("fra")
	require.Equal(t, "fra", mdhd.LanguageString())
}
