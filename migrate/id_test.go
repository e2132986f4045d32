package migrate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raw    string
		expErr string
	}{
		{
			name: "ok/timestamp",
			raw:  "20250101120000",
		},
		{
			name: "ok/zero_padded_sequence",
			raw:  "00000000000001",
		},
		{
			name: "ok/all_zeros",
			raw:  "00000000000000",
		},
		{
			name:   "err/empty",
			raw:    "",
			expErr: `invalid migration ID "": wrong length (must be 14 digits)`,
		},
		{
			name:   "err/too_short",
			raw:    "0000001",
			expErr: `invalid migration ID "0000001": wrong length (must be 14 digits)`,
		},
		{
			name:   "err/too_long",
			raw:    "000000000000015",
			expErr: `invalid migration ID "000000000000015": wrong length (must be 14 digits)`,
		},
		{
			name:   "err/non_digit",
			raw:    "2025010112000a",
			expErr: `invalid migration ID "2025010112000a": contains non-digit characters (must be 14 digits)`,
		},
		{
			name:   "err/negative",
			raw:    "-2025010112000",
			expErr: `invalid migration ID "-2025010112000": contains non-digit characters (must be 14 digits)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, err := ParseID(tt.raw)
			if tt.expErr != "" {
				require.EqualError(t, err, tt.expErr)
				var invalidErr *InvalidIDError
				assert.True(t, errors.As(err, &invalidErr))
				return
			}

			require.NoError(t, err)
			// Round-trip: the raw value is preserved exactly.
			assert.Equal(t, tt.raw, id.String())
		})
	}
}

func TestIDOrdering(t *testing.T) {
	t.Parallel()

	a, err := ParseID("00000000000001")
	require.NoError(t, err)
	b, err := ParseID("00000000000002")
	require.NoError(t, err)
	c, err := ParseID("20250101120000")
	require.NoError(t, err)

	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.True(t, b.Less(c))
	assert.False(t, a.Less(a))
}
