package meta

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

type document struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func TestService_SaveLoad(t *testing.T) {
	ctx := context.Background()
	srv := New(afs.New())
	URL := filepath.Join(t.TempDir(), "doc.yaml")

	require.NoError(t, srv.Save(ctx, URL, &document{Name: "init", Count: 2}))
	var loaded document
	require.NoError(t, srv.Load(ctx, URL, &loaded))
	assert.Equal(t, document{Name: "init", Count: 2}, loaded)
}

func TestService_LoadExpandsEnv(t *testing.T) {
	ctx := context.Background()
	t.Setenv("KCORE_DOC_NAME", "shell")
	URL := filepath.Join(t.TempDir(), "doc.yaml")
	require.NoError(t, os.WriteFile(URL, []byte("name: ${env.KCORE_DOC_NAME}\ncount: 3\n"), 0644))

	var loaded document
	require.NoError(t, New(nil).Load(ctx, URL, &loaded))
	assert.Equal(t, document{Name: "shell", Count: 3}, loaded)
}

func TestService_LoadMissing(t *testing.T) {
	var loaded document
	err := New(nil).Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), &loaded)
	assert.Error(t, err)
}
