package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ashivadi/open-interpreter/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type stubMarkdownRenderer struct {
	inputs []string
	err    error
}

func (s *stubMarkdownRenderer) Render(content string) (string, error) {
	s.inputs = append(s.inputs, content)
	if s.err != nil {
		return "", s.err
	}
	return "<md>" + content + "</md>", nil
}

func TestDedent(t *testing.T) {
	input := `
        > Switching to ` + "`Mistral-7B`" + `...

            **Tip:** run it again
        ---
    `
	assert.Equal(t, "> Switching to `Mistral-7B`...\n\n**Tip:** run it again\n---", Dedent(input))
}

func TestMarkdownDisplayRendersDedentedText(t *testing.T) {
	var out bytes.Buffer
	md := &stubMarkdownRenderer{}
	display := NewMarkdownDisplayWithRenderer(&out, md)

	display.Markdown("   **Open Interpreter** will use `Mistral 7B`.  ")

	require.Len(t, md.inputs, 1)
	assert.Equal(t, "**Open Interpreter** will use `Mistral 7B`.", md.inputs[0])
	assert.Equal(t, "<md>**Open Interpreter** will use `Mistral 7B`.</md>\n", out.String())
}

func TestMarkdownDisplayFallsBackToPlainText(t *testing.T) {
	var out bytes.Buffer
	display := NewMarkdownDisplayWithRenderer(&out, &stubMarkdownRenderer{err: errors.New("bad style")})

	display.Markdown("> Model set to `GPT-4`")
	assert.Equal(t, "> Model set to `GPT-4`\n", out.String())

	out.Reset()
	NewMarkdownDisplayWithRenderer(&out, nil).Markdown("plain")
	assert.Equal(t, "plain\n", out.String())
}

func TestNewMarkdownDisplayUsesGlamourOffTerminal(t *testing.T) {
	var out bytes.Buffer
	display := NewMarkdownDisplay(&out)

	display.Markdown("Welcome aboard")
	assert.Contains(t, out.String(), "Welcome")
	assert.True(t, strings.HasSuffix(out.String(), "\n"))
}

func TestClipLines(t *testing.T) {
	assert.Equal(t, "abc\n", clipLines("abc\n", 10))
	assert.Equal(t, "abcd…\nxy", clipLines("abcdefgh\nxy", 5))
	assert.Equal(t, "unchanged", clipLines("unchanged", 0))
	assert.Equal(t, "abcdefgh", FitSummary("abcdefgh", &bytes.Buffer{}))
}

func TestRenderSummary(t *testing.T) {
	quality := 0.35
	cfg := config.RuntimeConfig{Execution: config.ExecutionConfig{
		Local:       true,
		Model:       "huggingface/TheBloke/Mistral-7B-Instruct-v0.1-GGUF",
		GGUFQuality: &quality,
	}}

	rendered := RenderSummary(cfg, config.Metadata{})

	for _, want := range []string{"Open Interpreter settings", "local", "Mistral-7B-Instruct", "not set", "0.35", "(default)", "none"} {
		assert.Contains(t, rendered, want)
	}
}

func TestSummaryYAMLRedactsKey(t *testing.T) {
	cfg := config.RuntimeConfig{Execution: config.ExecutionConfig{Model: "gpt-4", APIKey: "sk-ABCDEFGHIJKL"}}

	data, err := SummaryYAML(cfg, config.Metadata{})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk-ABCDEFGHIJKL")

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "remote", decoded["mode"])
	assert.Equal(t, "gpt-4", decoded["model"])
	assert.Equal(t, "sk-A...IJKL", decoded["api_key"])
	_, hasQuality := decoded["gguf_quality"]
	assert.False(t, hasQuality)
	assert.True(t, strings.HasPrefix(string(data), "mode: remote"))
}
