package ops

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/nbtidy/internal/db"
)

func TestHistory(t *testing.T) {
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, db.RecordRun(database, &db.Run{
		ID:        NewRunID(),
		Root:      ".",
		Mode:      "sanitize",
		Checked:   4,
		Modified:  1,
		CreatedAt: time.Now().Unix(),
		Paths:     []string{"a.ipynb"},
	}))

	out, err := History(database, HistoryInput{Limit: 10})
	require.NoError(t, err)

	require.Len(t, out.Runs, 1)
	assert.Equal(t, "sanitize", out.Runs[0].Mode)
	assert.Equal(t, []string{"a.ipynb"}, out.Runs[0].Paths)
}

func TestHistoryEmpty(t *testing.T) {
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	defer database.Close()

	out, err := History(database, HistoryInput{Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, out.Runs)
}
