package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/julianstephens/soulsync/internal/assistant"
	"github.com/julianstephens/soulsync/internal/storage"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "users.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	ctx := NewContext(store, assistant.New(assistant.Config{}))
	ctx.Out = &bytes.Buffer{}
	return ctx
}
