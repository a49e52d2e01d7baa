package blade

import (
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifest_RoundTrip(t *testing.T) {
	views := map[string]CompiledView{
		"pages.home": {
			Name:         "pages.home",
			Path:         "/views/pages/home.blade.php",
			CompiledPath: "/cache/1.php",
			CompiledAt:   time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC),
		},
		"layouts.app": {
			Name:         "layouts.app",
			Path:         "/views/layouts/app.blade.php",
			CompiledPath: "/cache/2.php",
			CompiledAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	}
	data, err := encodeManifest(views)
	require.NoError(t, err)

	again, err := encodeManifest(views)
	require.NoError(t, err)
	assert.Equal(t, data, again, "encoding is deterministic")

	got, err := decodeManifest(data)
	require.NoError(t, err)
	if diff := cmp.Diff(views, got); diff != "" {
		t.Errorf("decodeManifest() mismatch (-want +got):\n%s", diff)
	}
}

func TestManifest_Version(t *testing.T) {
	data, err := cbor.Marshal(manifest{Version: manifestVersion + 1})
	require.NoError(t, err)
	_, err = decodeManifest(data)
	require.ErrorContains(t, err, "unsupported manifest version")

	data, err = cbor.Marshal(manifest{Version: manifestVersion})
	require.NoError(t, err)
	views, err := decodeManifest(data)
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestManifest_Garbage(t *testing.T) {
	_, err := decodeManifest([]byte{0xff, 0x00})
	require.ErrorContains(t, err, "decode manifest")
}
