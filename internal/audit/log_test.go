package audit

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typeloader/typeloader/internal/types"
)

func TestLogScanAndHistory(t *testing.T) {
	log := NewAuditLog(filepath.Join(t.TempDir(), DefaultFile))

	history, err := log.LoadHistory()
	require.NoError(t, err)
	assert.Empty(t, history)

	failures := []*types.LoadFailure{{
		Kind:    types.PartialTypeLoad,
		Path:    "/plugins/a.typelib",
		Library: types.Identity{Name: "a", Version: "1.0.0"},
		Causes:  []types.Cause{{Type: "Ghost", Message: "missing", Trace: "long trace"}},
	}}
	first := CreateScanRecord("/plugins", "sdk.Plugin", 3, 2, 4, failures, time.Second)
	require.NoError(t, log.LogScan(first))
	second := CreateScanRecord("/plugins", "sdk.Plugin", 3, 2, 5, nil, time.Second)
	require.NoError(t, log.LogScan(second))

	history, err = log.LoadHistory()
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 5, history[0].Matches)
	assert.NotEmpty(t, history[0].ScanID)

	older := history[1]
	assert.Equal(t, 1, older.KindCounts[types.PartialTypeLoad])
	require.Len(t, older.Failures, 1)
	assert.Equal(t, "a@1.0.0", older.Failures[0].Library)
	assert.Equal(t, []string{"Ghost"}, older.Failures[0].Unresolved)
}
