package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogFamilies(t *testing.T) {
	c := Default()

	for _, model := range []string{"gpt-4", "gpt-3.5-turbo", "gpt-4o", "gpt-4-0613"} {
		assert.True(t, c.IsOpenAIChat(model), "expected %q in OpenAI chat family", model)
		assert.False(t, c.IsBedrock(model), "expected %q outside Bedrock family", model)
	}
	for _, model := range []string{"anthropic.claude-v2", "amazon.titan-text-express-v1", "meta.llama2-13b-chat-v1"} {
		assert.True(t, c.IsBedrock(model), "expected %q in Bedrock family", model)
		assert.False(t, c.IsOpenAIChat(model), "expected %q outside OpenAI family", model)
	}
	for _, model := range []string{"", "  ", "huggingface/TheBloke/Mistral-7B-Instruct-v0.1-GGUF", "claude-2"} {
		assert.False(t, c.IsOpenAIChat(model))
		assert.False(t, c.IsBedrock(model))
	}
}

func TestDefaultFamiliesAreDisjoint(t *testing.T) {
	c := Default()
	for _, model := range c.BedrockModels() {
		require.False(t, c.IsOpenAIChat(model), "model %q in both families", model)
	}
}

func TestNewTrimsAndSorts(t *testing.T) {
	c := New([]string{" b ", "a", ""}, []string{"z"})

	assert.Equal(t, []string{"a", "b"}, c.OpenAIChatModels())
	assert.Equal(t, []string{"z"}, c.BedrockModels())
	assert.True(t, c.IsOpenAIChat(" b"))
}

func TestNilCatalogIsEmpty(t *testing.T) {
	var c *Catalog
	assert.False(t, c.IsOpenAIChat("gpt-4"))
	assert.False(t, c.IsBedrock("anthropic.claude-v2"))
	assert.Nil(t, c.OpenAIChatModels())
}
