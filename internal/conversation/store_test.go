package conversation

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/omriShneor/project_casa/internal/assistant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStores(t *testing.T, sessions SessionStore, history HistoryStore) {
	t.Helper()
	ctx := context.Background()
	id := "sender-" + uuid.NewString()

	s, err := sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StepInitial, s.Step)

	want := Session{Step: StepAwaitingName, Results: []string{"A-100"}, Selected: "A-100"}
	require.NoError(t, sessions.Save(ctx, id, want))
	got, err := sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, want.Step, got.Step)
	assert.Equal(t, want.Results, got.Results)
	assert.Equal(t, want.Selected, got.Selected)

	require.NoError(t, sessions.Delete(ctx, id))
	got, err = sessions.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StepInitial, got.Step)

	for i := range 7 {
		require.NoError(t, history.Append(ctx, id,
			Turn{Role: assistant.RoleClient, Text: fmt.Sprintf("q%d", i)},
			Turn{Role: assistant.RoleAssistant, Text: fmt.Sprintf("a%d", i)},
		))
	}
	turns, err := history.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, turns, maxHistoryEntries)
	assert.Equal(t, "q2", turns[0].Text)
	assert.Equal(t, "a6", turns[len(turns)-1].Text)

	require.NoError(t, history.Clear(ctx, id))
	turns, err = history.Get(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	exerciseStores(t, store.Sessions(), store.History())
}

func TestMemoryStore_ResultsAreCopied(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	results := []string{"A-100"}
	require.NoError(t, store.Sessions().Save(ctx, "x", Session{Step: StepMenu, Results: results}))

	results[0] = "mutated"
	got, err := store.Sessions().Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "A-100", got.Results[0])
	assert.Equal(t, 1, store.Count())
}

// Runs against a real server when REDIS_TEST_URL is set, e.g. redis://localhost:6379/15.
func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	client, err := NewRedisClient(context.Background(), url)
	require.NoError(t, err)
	defer client.Close()

	store := NewRedisStore(client, time.Minute)
	exerciseStores(t, store.Sessions(), store.History())
}

func TestSessionHelpers(t *testing.T) {
	s := Session{Step: StepMenu, Selected: "OLD"}
	s = s.WithResults([]string{"A", "B"})
	assert.Empty(t, s.Selected)
	assert.True(t, s.PendingSelection())

	s = s.WithSelection("B")
	assert.False(t, s.PendingSelection())
	assert.False(t, s.IsBlank())
	assert.True(t, NewSession().IsBlank())
}
