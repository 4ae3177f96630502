package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFiles_ArePairedUpAndDown(t *testing.T) {
	files, err := Files()
	require.NoError(t, err)
	require.NotEmpty(t, files)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, name := range files {
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected migration file %s", name)
		}
	}
	assert.Equal(t, ups, downs)
}

func TestFiles_CreateEveryTable(t *testing.T) {
	var all strings.Builder
	files, err := Files()
	require.NoError(t, err)
	for _, name := range files {
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		content, err := sqlFiles.ReadFile("sql/" + name)
		require.NoError(t, err)
		all.Write(content)
	}

	for _, table := range []string{"recipes", "realizations", "planned_meals", "shopping_list_items", "ingredients"} {
		assert.Contains(t, all.String(), "CREATE TABLE IF NOT EXISTS "+table+" ")
	}
}

func TestMigrateLogger_VerboseFollowsLevel(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := migrateLogger{log: zap.New(core)}

	require.True(t, l.Verbose())
	l.Printf("Start buffering %d/u %s\n", 1, "init")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Start buffering 1/u init", logs.All()[0].Message)

	assert.False(t, migrateLogger{log: zap.NewNop()}.Verbose())
}
