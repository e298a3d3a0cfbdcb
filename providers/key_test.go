package providers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// P8: parseKey(recordKey(c,p)) = (cidText(c), peerText(p)).
func TestKeyRoundTrip(t *testing.T) {
	c := testCid(t, 1)
	p := testPeer(t)

	key, err := recordKey(c, p)
	require.NoError(t, err)

	wantCidTxt, err := cidText(c)
	require.NoError(t, err)

	cidTxt, peerTxt, err := parseKey(key.String())
	require.NoError(t, err)
	require.Equal(t, wantCidTxt, cidTxt)
	require.Equal(t, peerText(p), peerTxt)
}

func TestParseKeyShape(t *testing.T) {
	cases := []struct {
		name string
		key  string
		ok   bool
	}{
		{"well formed", "/providers/bafkcid/12D3peer", true},
		{"missing namespace", "/other/bafkcid/12D3peer", false},
		{"too few segments", "/providers/bafkcid", false},
		{"too many segments", "/providers/bafkcid/12D3peer/extra", false},
		{"empty cid segment", "/providers//12D3peer", false},
		{"empty peer segment", "/providers/bafkcid/", false},
		{"no leading slash", "providers/bafkcid/12D3peer", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := parseKey(tc.key)
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrMalformedKey)
			}
		})
	}
}

func TestCidPrefixIsParentOfRecordKey(t *testing.T) {
	c := testCid(t, 2)
	p := testPeer(t)

	prefix, err := cidPrefix(c)
	require.NoError(t, err)
	key, err := recordKey(c, p)
	require.NoError(t, err)

	require.True(t, prefix.IsAncestorOf(key))
}
