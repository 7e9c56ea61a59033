package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "learn.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := time.Unix(1700000000, 0)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestOpenCreatesDirectory(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "subdir", "nested", "learn.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, validateSchema(s.db))
	v, err := schemaVersion(s.db)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learn.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.RecordSelection("かんじ", "漢字"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Ranked("かんじ")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "漢字", got[0].Word)
}

func TestRanked(t *testing.T) {
	s := openTest(t)

	require.NoError(t, s.RecordSelection("かんじ", "感じ"))
	require.NoError(t, s.RecordSelection("かんじ", "漢字"))
	require.NoError(t, s.RecordSelection("かんじ", "漢字"))
	require.NoError(t, s.RecordSelection("かんじ", "幹事"))
	require.NoError(t, s.RecordSelection("ほか", "他"))

	got, err := s.Ranked("かんじ")
	require.NoError(t, err)
	words := make([]string, len(got))
	for i, sel := range got {
		words[i] = sel.Word
	}
	assert.Equal(t, []string{"漢字", "幹事", "感じ"}, words)
	assert.Equal(t, 2, got[0].Count)

	none, err := s.Ranked("なし")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPredict(t *testing.T) {
	s := openTest(t)

	require.NoError(t, s.RecordPhrase("ありがとう", "ありがとう"))
	require.NoError(t, s.RecordPhrase("ありがとうございます", "有難うございます"))
	require.NoError(t, s.RecordPhrase("ありがとうございます", "有難うございます"))
	require.NoError(t, s.RecordPhrase("あめ", "雨"))

	got, err := s.Predict("ありが", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "有難うございます", got[0].Text)
	assert.Equal(t, "ありがとう", got[1].Text)

	got, err = s.Predict("あ", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.Predict("い", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestForget(t *testing.T) {
	s := openTest(t)

	require.NoError(t, s.RecordSelection("あめ", "雨"))
	require.NoError(t, s.RecordPhrase("あめ", "雨"))
	require.NoError(t, s.Forget("あめ"))

	sel, err := s.Ranked("あめ")
	require.NoError(t, err)
	assert.Empty(t, sel)
	ph, err := s.Predict("あめ", 0)
	require.NoError(t, err)
	assert.Empty(t, ph)
}

func TestClosed(t *testing.T) {
	s := openTest(t)
	require.NoError(t, s.Ping(context.Background()))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Ping(context.Background()), ErrClosed)

	assert.ErrorIs(t, s.RecordSelection("a", "b"), ErrClosed)
	assert.ErrorIs(t, s.RecordPhrase("a", "b"), ErrClosed)
	_, err := s.Ranked("a")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Predict("a", 0)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Forget("a"), ErrClosed)
}

func TestRollbackMigration(t *testing.T) {
	s := openTest(t)

	require.NoError(t, rollbackMigration(s.db))
	v, err := schemaVersion(s.db)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Error(t, validateSchema(s.db))

	require.NoError(t, migrateDB(s.db))
	assert.NoError(t, validateSchema(s.db))
}

func TestVersionAndReset(t *testing.T) {
	s := openTest(t)
	v, err := s.Version()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)

	require.NoError(t, s.RecordSelection("かんじ", "漢字"))
	require.NoError(t, s.RecordPhrase("かんじ", "漢字"))
	require.NoError(t, s.Reset())

	sels, err := s.Ranked("かんじ")
	require.NoError(t, err)
	assert.Empty(t, sels)
	phrases, err := s.Predict("か", 0)
	require.NoError(t, err)
	assert.Empty(t, phrases)
	v, err = s.Version()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)

	require.NoError(t, s.Close())
	_, err = s.Version()
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Reset(), ErrClosed)
}

func TestOpenRejectsForeignSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learn.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec("DROP TABLE phrases")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(path)
	assert.ErrorContains(t, err, "missing required table: phrases")
}
