package source

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/tagcloud/cloud"
)

func newTestSQLite(t *testing.T, opt SQLiteOptions) *SQLite {
	t.Helper()
	if opt.Path == "" {
		opt.Path = MemoryDSN
	}
	s, err := OpenSQLite(opt)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStatic(t *testing.T) {
	t.Parallel()

	in := []cloud.Tag{cloud.NewTag("go", 3)}
	s := NewStatic(map[string][]cloud.Tag{"v1": in})
	in[0].Name = "mutated"

	tags, err := s.Tags(context.Background(), "v1")
	require.NoError(t, err)
	require.Equal(t, "go", tags[0].Name)

	_, err = s.Tags(context.Background(), "v2")
	require.ErrorIs(t, err, ErrUnknownCloud)

	s.Put("v2")
	tags, err = s.Tags(context.Background(), "v2")
	require.NoError(t, err)
	require.Empty(t, tags)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Tags(ctx, "v1")
	require.ErrorIs(t, err, context.Canceled)
}

func TestFunc(t *testing.T) {
	t.Parallel()

	var f Source = Func(func(_ context.Context, id string) ([]cloud.Tag, error) {
		return []cloud.Tag{cloud.NewTag(id, 1)}, nil
	})
	tags, err := f.Tags(context.Background(), "x")
	require.NoError(t, err)
	require.Equal(t, "x", tags[0].Name)
}

func TestSQLite_PutAndTags(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestSQLite(t, SQLiteOptions{})

	require.NoError(t, s.Put(ctx, "3",
		cloud.Tag{ID: "10", Name: "golang", Count: 40, Link: "/taxonomy/term/10"},
		cloud.Tag{Name: "rust", Count: 12},
		cloud.Tag{Name: "ada", Count: 12},
		cloud.Tag{Name: "cobol", Count: 0},
	))

	tags, err := s.Tags(ctx, "3")
	require.NoError(t, err)
	require.Len(t, tags, 4)
	require.Equal(t, []string{"golang", "ada", "rust", "cobol"},
		[]string{tags[0].Name, tags[1].Name, tags[2].Name, tags[3].Name})
	require.Equal(t, "10", tags[0].ID)
	require.Equal(t, "/taxonomy/term/10", tags[0].Link)
	require.Equal(t, "rust", tags[2].ID, "name doubles as id")
	require.InDelta(t, math.Log(40), tags[0].Distributed, 1e-12)
	require.Equal(t, 0.0, tags[3].Distributed)

	// upsert by id
	require.NoError(t, s.Put(ctx, "3", cloud.Tag{ID: "10", Name: "go", Count: 41}))
	tags, err = s.Tags(ctx, "3")
	require.NoError(t, err)
	require.Len(t, tags, 4)
	require.Equal(t, "go", tags[0].Name)
	require.Equal(t, 41, tags[0].Count)
}

func TestSQLite_UnknownAndEmptyVocabulary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestSQLite(t, SQLiteOptions{})

	_, err := s.Tags(ctx, "nope")
	require.ErrorIs(t, err, ErrUnknownCloud)

	require.NoError(t, s.Put(ctx, "empty"))
	tags, err := s.Tags(ctx, "empty")
	require.NoError(t, err)
	require.Empty(t, tags)

	ids, err := s.Vocabularies(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"empty"}, ids)
}

func TestSQLite_LimitAndFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "tags.db")
	s := newTestSQLite(t, SQLiteOptions{Path: path, Limit: 2})

	require.NoError(t, s.Put(ctx, "v", cloud.NewTag("a", 1), cloud.NewTag("b", 5), cloud.NewTag("c", 3)))
	tags, err := s.Tags(ctx, "v")
	require.NoError(t, err)
	require.Len(t, tags, 2)
	require.Equal(t, "b", tags[0].Name)
	require.Equal(t, "c", tags[1].Name)

	_, err = OpenSQLite(SQLiteOptions{})
	require.Error(t, err)
}

func TestDecodeYAML(t *testing.T) {
	t.Parallel()

	tags, err := DecodeYAML(strings.NewReader(`
- name: go
  count: 40
  link: /t/go
- id: "7"
  name: zig
  count: 3
  distributed: 0.5
`))
	require.NoError(t, err)
	require.Len(t, tags, 2)
	require.InDelta(t, math.Log(40), tags[0].Distributed, 1e-12)
	require.Equal(t, "/t/go", tags[0].Link)
	require.Equal(t, "7", tags[1].ID)
	require.Equal(t, 0.5, tags[1].Distributed)

	tags, err = DecodeYAML(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, tags)

	_, err = DecodeYAML(strings.NewReader("- count: 3\n"))
	require.Error(t, err)

	_, err = DecodeYAML(strings.NewReader("name: [unterminated"))
	require.Error(t, err)
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestSQLite(t, SQLiteOptions{})
	require.NoError(t, s.Put(ctx, "v", cloud.NewTag("a", 1)))
	require.NoError(t, s.Migrate(ctx))

	tags, err := s.Tags(ctx, "v")
	require.NoError(t, err)
	require.Len(t, tags, 1)
}
