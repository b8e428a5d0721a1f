package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	t.Parallel()

	t.Run("nil becomes NULL token", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "NULL", Value(nil))
	})

	t.Run("time renders ISO-8601", func(t *testing.T) {
		t.Parallel()
		ts := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
		require.Equal(t, "2024-03-15T09:30:00Z", Value(ts))
	})

	t.Run("bytes render as text", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "hello", Value([]byte("hello")))
	})

	t.Run("scalars keep their string form", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "42", Value(int64(42)))
		require.Equal(t, "3.5", Value(3.5))
		require.Equal(t, "true", Value(true))
		require.Equal(t, "plain", Value("plain"))
	})
}

func TestTable(t *testing.T) {
	t.Parallel()

	t.Run("empty result set", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "no results", Table([]string{"id", "name"}, nil))
		require.Equal(t, "no results", Table([]string{"id", "name"}, [][]string{}))
	})

	t.Run("header rule and rows", func(t *testing.T) {
		t.Parallel()
		got := Table([]string{"id", "name"}, [][]string{
			{"1", "ada"},
			{"2", "grace"},
		})
		want := "id | name\n---------\n1 | ada\n2 | grace"
		require.Equal(t, want, got)
	})

	t.Run("rule matches header length", func(t *testing.T) {
		t.Parallel()
		got := Table([]string{"a", "bb", "ccc"}, [][]string{{"1", "2", "3"}})
		require.Contains(t, got, "a | bb | ccc\n------------\n")
	})
}
