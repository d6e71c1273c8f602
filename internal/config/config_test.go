package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "")
	t.Setenv("TOGETHER_API_KEY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 0.7, cfg.LLM.Temperature)
	assert.Equal(t, 2048, cfg.LLM.MaxTokens)
	assert.Equal(t, "deepseek", cfg.LLM.Primary.Provider)
	assert.Equal(t, "together", cfg.LLM.Fallback.Provider)
	assert.Equal(t, "meta-llama/Llama-3.3-70B-Instruct-Turbo", cfg.LLM.Fallback.Model)
	assert.Equal(t, "advanced", cfg.Search.SearchDepth)
	assert.Equal(t, 5, cfg.Search.MaxResults)
	assert.True(t, cfg.Search.IncludeAnswer)
	assert.Equal(t, 30*time.Millisecond, cfg.Chat.WordDelay)
	assert.Equal(t, 50, cfg.Chat.TitleMaxLen)
	assert.False(t, cfg.AnyProviderConfigured())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9090"
llm:
  primary:
    model: "deepseek-reasoner"
search:
  max_results: 3
`), 0o600))

	t.Setenv("DEEPSEEK_API_KEY", "  sk-test  ")
	t.Setenv("TOGETHER_API_KEY", "")
	t.Setenv("ADVISOR_CHAT_OFFLINE_FALLBACK", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "deepseek-reasoner", cfg.LLM.Primary.Model)
	assert.Equal(t, 3, cfg.Search.MaxResults)
	assert.Equal(t, "sk-test", cfg.LLM.Primary.APIKey)
	assert.True(t, cfg.LLM.Primary.Configured())
	assert.False(t, cfg.LLM.Fallback.Configured())
	assert.True(t, cfg.AnyProviderConfigured())
	assert.True(t, cfg.Chat.OfflineFallback)
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
