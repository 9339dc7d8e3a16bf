package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esporykhin/ai-product-framework/framework"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisStoreFromClient(client, "")
}

func setupFile(t *testing.T) *FileStore {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "data", "state.json"))
	require.NoError(t, err)
	return fs
}

func sampleState() framework.State {
	s := framework.DefaultState()
	s.ProjectContext = "ctx"
	s.Problems[0].UserProblem = "problem"
	s.Problems[0].Step2.Set(framework.Scalability, 4)
	s.ValidationQuestions = []framework.ValidationItem{{ID: "q1", Question: "Why?", Answer: "Because"}}
	return s
}

func stores(t *testing.T) map[string]Store {
	_, rs := setupRedis(t)
	return map[string]Store{"file": setupFile(t), "redis": rs}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			empty, err := st.Load(ctx)
			require.NoError(t, err)
			assert.True(t, empty.IsPristine())

			want := sampleState()
			require.NoError(t, st.Save(ctx, want))
			got, err := st.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			require.NoError(t, st.Reset(ctx))
			got, err = st.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, framework.DefaultState(), got)

			require.NoError(t, st.Reset(ctx))
		})
	}
}

func TestRedisStoreUsesBrowserKey(t *testing.T) {
	mr, rs := setupRedis(t)
	require.NoError(t, rs.Save(context.Background(), sampleState()))
	assert.True(t, mr.Exists("ai_framework_data_v7_clean"))
}

func TestRedisStoreMigratesLegacyPayload(t *testing.T) {
	mr, rs := setupRedis(t)
	require.NoError(t, mr.Set(Key, `{"problems":[{"id":"p1","title":"Old","step2":{"scalability":3}}],"validationQuestions":["Who pays?"],"activeProblemId":"gone"}`))

	s, err := rs.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, s.Problems, 1)
	assert.Equal(t, 3, s.Problems[0].Step2.Scalability)
	assert.Equal(t, 1, s.Problems[0].Step2.PatternRecognition)
	assert.Equal(t, framework.DefaultBusinessImpact, s.Problems[0].BusinessImpact)
	require.Len(t, s.ValidationQuestions, 1)
	assert.Equal(t, "Who pays?", s.ValidationQuestions[0].Question)
	assert.Equal(t, "p1", s.ActiveProblemID)
}

func TestFileStoreCorruptFile(t *testing.T) {
	fs := setupFile(t)
	require.NoError(t, os.WriteFile(fs.Path(), []byte("{not json"), 0o644))
	_, err := fs.Load(context.Background())
	assert.Error(t, err)
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	fs := setupFile(t)
	require.NoError(t, fs.Save(context.Background(), sampleState()))

	entries, err := os.ReadDir(filepath.Dir(fs.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}
