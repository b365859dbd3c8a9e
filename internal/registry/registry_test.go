package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/0xnairb/mcp-aws-yolo/internal/errors"
)

func writeRegistry(t *testing.T, doc any) string {
	t.Helper()

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "mcp_registry.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func testDescriptor(id string) ServerDescriptor {
	return ServerDescriptor{
		ServerID:    id,
		Name:        id,
		Description: "test server " + id,
		Command:     "uvx",
		Args:        []string{"some-package"},
		Tools:       []ToolRef{{Name: "do_thing", Description: "does the thing"}},
	}
}

func TestRegistry_Load(t *testing.T) {
	t.Parallel()

	t.Run("loads servers", func(t *testing.T) {
		t.Parallel()

		path := writeRegistry(t, map[string]any{
			"servers": []ServerDescriptor{testDescriptor("aws-deploy"), testDescriptor("weather-lookup")},
		})

		r := New(hclog.NewNullLogger(), path)
		require.NoError(t, r.Load())
		require.Equal(t, 2, r.Len())

		s, ok := r.Lookup("aws-deploy")
		require.True(t, ok)
		require.Equal(t, "uvx", s.Command)

		_, ok = r.Lookup("missing")
		require.False(t, ok)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		r := New(hclog.NewNullLogger(), filepath.Join(t.TempDir(), "nope.json"))
		require.ErrorIs(t, r.Load(), errors.ErrConfigLoad)
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "mcp_registry.json")
		require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))

		r := New(hclog.NewNullLogger(), path)
		require.ErrorIs(t, r.Load(), errors.ErrRegistryMalformed)
	})

	t.Run("duplicate server ids rejected", func(t *testing.T) {
		t.Parallel()

		path := writeRegistry(t, map[string]any{
			"servers": []ServerDescriptor{testDescriptor("aws-deploy"), testDescriptor("aws-deploy")},
		})

		r := New(hclog.NewNullLogger(), path)
		err := r.Load()
		require.ErrorIs(t, err, errors.ErrRegistryMalformed)
		require.Contains(t, err.Error(), "aws-deploy")
	})

	t.Run("empty command rejected", func(t *testing.T) {
		t.Parallel()

		bad := testDescriptor("aws-deploy")
		bad.Command = " "
		path := writeRegistry(t, map[string]any{"servers": []ServerDescriptor{bad}})

		r := New(hclog.NewNullLogger(), path)
		require.ErrorIs(t, r.Load(), errors.ErrRegistryMalformed)
	})
}

func TestRegistry_List_Sorted(t *testing.T) {
	t.Parallel()

	path := writeRegistry(t, map[string]any{
		"servers": []ServerDescriptor{testDescriptor("zeta"), testDescriptor("alpha"), testDescriptor("mid")},
	})

	r := New(hclog.NewNullLogger(), path)
	require.NoError(t, r.Load())

	var ids []string
	for _, s := range r.List() {
		ids = append(ids, s.ServerID)
	}
	require.Equal(t, []string{"alpha", "mid", "zeta"}, ids)
}

func TestRegistry_UpsertRemoveSave(t *testing.T) {
	t.Parallel()

	path := writeRegistry(t, map[string]any{"servers": []ServerDescriptor{testDescriptor("aws-deploy")}})
	r := New(hclog.NewNullLogger(), path)
	require.NoError(t, r.Load())

	require.ErrorIs(t, r.Upsert(ServerDescriptor{}), errors.ErrBadRequest)

	require.NoError(t, r.Upsert(testDescriptor("weather-lookup")))
	require.Equal(t, 2, r.Len())

	require.True(t, r.Remove("aws-deploy"))
	require.False(t, r.Remove("aws-deploy"))

	require.NoError(t, r.Save())

	// Reloading from disk reflects the mutations.
	r2 := New(hclog.NewNullLogger(), path)
	require.NoError(t, r2.Load())
	require.Equal(t, 1, r2.Len())
	_, ok := r2.Lookup("weather-lookup")
	require.True(t, ok)
}
