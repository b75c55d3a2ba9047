package preflight

import (
	"strings"

	"github.com/ashivadi/open-interpreter/internal/config"
)

// OpenAIKeyEnv holds the OpenAI credential in the environment.
const OpenAIKeyEnv = "OPENAI_API_KEY"

// CredentialResolver answers whether a provider secret is already available.
// It never prompts.
type CredentialResolver struct {
	lookup config.EnvLookup
}

// NewCredentialResolver reads secrets through lookup, defaulting to the
// process environment.
func NewCredentialResolver(lookup config.EnvLookup) *CredentialResolver {
	if lookup == nil {
		lookup = config.DefaultEnvLookup
	}
	return &CredentialResolver{lookup: lookup}
}

// Resolve returns the named secret when it is set to a non-blank value.
func (r *CredentialResolver) Resolve(name string) (string, bool) {
	value, ok := r.lookup(name)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// Resolvable reports whether either the pre-supplied value or the named
// secret satisfies the credential requirement.
func (r *CredentialResolver) Resolvable(name, preset string) bool {
	if strings.TrimSpace(preset) != "" {
		return true
	}
	_, ok := r.Resolve(name)
	return ok
}
