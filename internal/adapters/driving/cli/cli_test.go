package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	configfile "github.com/docsage-ai/docsage-cli/internal/adapters/driven/config/file"
	"github.com/docsage-ai/docsage-cli/internal/adapters/driven/storage/memory"
	"github.com/docsage-ai/docsage-cli/internal/adapters/driven/storage/sqlite"
	"github.com/docsage-ai/docsage-cli/internal/core/domain"
)

func TestCommandTree(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"crawl", "knowledge", "ask", "watch", "version"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestKnowledgeSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range knowledgeCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"add", "search", "delete"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestCrawlCmd_RequiresURL(t *testing.T) {
	err := crawlCmd.Args(crawlCmd, nil)
	require.Error(t, err)
}

func TestBuildEmbeddingService_UnavailableBackend(t *testing.T) {
	// An openai provider without a key cannot be constructed; the error
	// carries the domain sentinel so callers can detect the condition.
	_, err := buildEmbeddingService(&configfile.Config{Provider: configfile.ProviderOpenAI})
	require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	_, err = buildEmbeddingService(&configfile.Config{Provider: "petstore"})
	require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestOpenKnowledgeStore(t *testing.T) {
	ephemeral, err := openKnowledgeStore(memoryDataDir)
	require.NoError(t, err)
	defer ephemeral.Close()
	assert.IsType(t, &memory.Store{}, ephemeral)

	dir := t.TempDir()
	persistent, err := openKnowledgeStore(dir)
	require.NoError(t, err)
	defer persistent.Close()
	sq, ok := persistent.(*sqlite.Store)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "knowledge.db"), sq.Path())
}

func TestResolveEventPath(t *testing.T) {
	// A relative event name, as produced when the watched directory was
	// given relative, must come back rooted so ingestion reads the file
	// instead of storing the name as literal text.
	rel := filepath.Join("docs", "note.md")
	got := resolveEventPath(rel)
	assert.True(t, filepath.IsAbs(got))
	assert.True(t, strings.HasSuffix(got, rel))

	abs := filepath.Join(t.TempDir(), "note.md")
	assert.Equal(t, abs, resolveEventPath(abs))
}

func TestWatchable(t *testing.T) {
	assert.True(t, watchable("/docs/readme.md"))
	assert.True(t, watchable("notes.TXT"))
	assert.False(t, watchable("binary.pdf"))
	assert.False(t, watchable("script.go"))
}
