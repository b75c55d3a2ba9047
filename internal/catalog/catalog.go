// Package catalog maintains the model identifier sets that decide which
// provider-specific checks a selected model goes through.
package catalog

import (
	"sort"
	"strings"

	"github.com/openai/openai-go"
)

// legacyOpenAIChatModels are dated or retired chat-completion ids the SDK no
// longer enumerates but operators still configure.
var legacyOpenAIChatModels = []string{
	"gpt-4-0314",
	"gpt-4-0613",
	"gpt-4-32k-0314",
	"gpt-4-32k-0613",
	"gpt-3.5-turbo-0301",
	"gpt-3.5-turbo-0613",
	"gpt-3.5-turbo-16k-0613",
}

var bedrockModels = []string{
	"anthropic.claude-v1",
	"anthropic.claude-v2",
	"anthropic.claude-v2:1",
	"anthropic.claude-instant-v1",
	"anthropic.claude-3-sonnet-20240229-v1:0",
	"anthropic.claude-3-haiku-20240307-v1:0",
	"amazon.titan-text-lite-v1",
	"amazon.titan-text-express-v1",
	"cohere.command-text-v14",
	"cohere.command-light-text-v14",
	"ai21.j2-mid-v1",
	"ai21.j2-ultra-v1",
	"meta.llama2-13b-chat-v1",
	"meta.llama2-70b-chat-v1",
}

// Catalog answers family membership for model identifiers.
type Catalog struct {
	openAIChat map[string]struct{}
	bedrock    map[string]struct{}
}

// New builds a catalog from explicit identifier lists.
func New(openAIChat, bedrock []string) *Catalog {
	return &Catalog{
		openAIChat: toSet(openAIChat),
		bedrock:    toSet(bedrock),
	}
}

// Default returns the built-in catalog: the chat models known to the OpenAI
// SDK plus legacy ids, and the Bedrock text models.
func Default() *Catalog {
	return New(defaultOpenAIChatModels(), bedrockModels)
}

func defaultOpenAIChatModels() []string {
	sdkModels := []openai.ChatModel{
		openai.ChatModelGPT4o,
		openai.ChatModelGPT4oMini,
		openai.ChatModelGPT4Turbo,
		openai.ChatModelGPT4,
		openai.ChatModelGPT4_32k,
		openai.ChatModelGPT3_5Turbo,
		openai.ChatModelGPT3_5Turbo16k,
		openai.ChatModelO1,
		openai.ChatModelO1Mini,
		openai.ChatModelO3Mini,
	}
	models := make([]string, 0, len(sdkModels)+len(legacyOpenAIChatModels))
	for _, model := range sdkModels {
		models = append(models, string(model))
	}
	return append(models, legacyOpenAIChatModels...)
}

// IsOpenAIChat reports whether model belongs to the OpenAI chat-completion family.
func (c *Catalog) IsOpenAIChat(model string) bool {
	if c == nil {
		return false
	}
	return contains(c.openAIChat, model)
}

// IsBedrock reports whether model belongs to the Bedrock family.
func (c *Catalog) IsBedrock(model string) bool {
	if c == nil {
		return false
	}
	return contains(c.bedrock, model)
}

// OpenAIChatModels lists the OpenAI chat-completion ids in sorted order.
func (c *Catalog) OpenAIChatModels() []string {
	if c == nil {
		return nil
	}
	return sortedKeys(c.openAIChat)
}

// BedrockModels lists the Bedrock ids in sorted order.
func (c *Catalog) BedrockModels() []string {
	if c == nil {
		return nil
	}
	return sortedKeys(c.bedrock)
}

func contains(set map[string]struct{}, model string) bool {
	key := strings.TrimSpace(model)
	if key == "" {
		return false
	}
	_, ok := set[key]
	return ok
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		set[trimmed] = struct{}{}
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
