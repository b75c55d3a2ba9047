package preflight

import (
	"errors"
	"testing"

	"github.com/ashivadi/open-interpreter/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestCredentialResolver(t *testing.T) {
	lookup := func(name string) (string, bool) {
		switch name {
		case OpenAIKeyEnv:
			return " sk-env ", true
		case "BLANK_KEY":
			return "   ", true
		default:
			return "", false
		}
	}
	resolver := NewCredentialResolver(lookup)

	value, ok := resolver.Resolve(OpenAIKeyEnv)
	assert.True(t, ok)
	assert.Equal(t, "sk-env", value)

	_, ok = resolver.Resolve("BLANK_KEY")
	assert.False(t, ok)

	_, ok = resolver.Resolve("MISSING_KEY")
	assert.False(t, ok)
}

func TestCredentialResolverResolvable(t *testing.T) {
	resolver := NewCredentialResolver(config.MapEnvLookup(nil))

	assert.False(t, resolver.Resolvable(OpenAIKeyEnv, ""))
	assert.False(t, resolver.Resolvable(OpenAIKeyEnv, "  "))
	assert.True(t, resolver.Resolvable(OpenAIKeyEnv, "sk-preset"))

	withEnv := NewCredentialResolver(config.MapEnvLookup(map[string]string{OpenAIKeyEnv: "sk-env"}))
	assert.True(t, withEnv.Resolvable(OpenAIKeyEnv, ""))
}

func TestFatalErrorExitCode(t *testing.T) {
	cause := errors.New("boom")
	err := &FatalError{Message: "cannot continue", Err: cause}

	assert.Equal(t, 1, err.ExitCode())
	assert.Equal(t, "cannot continue", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 3, (&FatalError{Code: 3}).ExitCode())
}
