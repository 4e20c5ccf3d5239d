package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hicat/internal/catalog"
	"hicat/pkg/api"
)

func TestWriteDocument_NoHTMLEscape(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WriteDocument(&b, map[string]string{"cube": "a&b<c>.fits"}))
	assert.Equal(t, "{\n  \"cube\": \"a&b<c>.fits\"\n}\n", b.String())
}

func TestWriteManifest_OmitsEmpty(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WriteManifest(&b, api.ManifestV1{RunID: "r1", Version: "dev", Sources: 3}))
	var got map[string]any
	require.NoError(t, json.Unmarshal(b.Bytes(), &got))
	assert.Equal(t, "r1", got["run_id"])
	assert.EqualValues(t, 3, got["sources"])
	assert.NotContains(t, got, "tiles")
	assert.NotContains(t, got, "catalog")
	assert.Contains(t, got, "duplicate_pairs")
}

func TestWriteJSON_Entries(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WriteJSON(&b, []catalog.FinalCatalogEntry{{ID: 4, RA: 1.5, CentralFreq: 1.2e9}}))
	var got []api.CatalogEntryV1
	require.NoError(t, json.Unmarshal(b.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].ID)
	assert.Equal(t, 1.2e9, got[0].CentralFreq)
	assert.True(t, strings.HasPrefix(b.String(), "[\n  {"))
}
