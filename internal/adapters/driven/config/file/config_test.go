package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OLLAMA_HOST", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, ProviderOllama, cfg.Provider)
	assert.Equal(t, 3, cfg.Crawler.MaxDepth)
	assert.Equal(t, 512, cfg.Ingestion.ChunkSize)
	assert.Equal(t, 20, cfg.Ingestion.Overlap)
}

func TestLoad_KeySelectsRemoteProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "sk-from-env", cfg.OpenAI.APIKey)
}

func TestLoad_FileValuesWinOverEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider = "openai"

[openai]
api_key = "sk-from-file"

[crawler]
max_depth = 5
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-from-file", cfg.OpenAI.APIKey)
	assert.Equal(t, 5, cfg.Crawler.MaxDepth)
}

func TestLoad_ExplicitProviderValidated(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`provider = "openai"`), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestLoad_UnknownProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`provider = "bedrock"`), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestLoad_RejectsOverlapLargerThanChunk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[ingestion]
chunk_size = 100
overlap = 100
`), 0600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestSaveAndReload(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := &Config{Provider: ProviderOllama, DataDir: "/tmp/docsage"}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, loaded.Provider)
	assert.Equal(t, "/tmp/docsage", loaded.DataDir)
}
