// Package preflight settles the execution mode, model and provider
// requirements before an agent session makes its first model call.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ashivadi/open-interpreter/internal/catalog"
	"github.com/ashivadi/open-interpreter/internal/config"
	"github.com/ashivadi/open-interpreter/internal/logging"
)

const (
	// DefaultLocalModel is selected when local execution has no model yet.
	DefaultLocalModel = "huggingface/TheBloke/Mistral-7B-Instruct-v0.1-GGUF"
	// DefaultGGUFQuality is the quantization preference for the local default.
	DefaultGGUFQuality = 0.35

	// localModelMarker identifies the local default in a model id; the model
	// confirmation is skipped for it because the local notice already named it.
	localModelMarker = "mistral"

	BedrockPackage    = "boto3"
	BedrockMinVersion = "1.28.57"

	openAIKeyLabel = "OpenAI API key"

	maxTransitions = 16

	switchPause  = 1500 * time.Millisecond
	keySavePause = 2 * time.Second
)

// State names a decision point of the negotiation.
type State int

const (
	StateDispatch State = iota
	StateLocal
	StateOpenAI
	StateBedrock
	StateUnknown
	StateDone
)

func (s State) String() string {
	switch s {
	case StateDispatch:
		return "dispatch"
	case StateLocal:
		return "local"
	case StateOpenAI:
		return "openai"
	case StateBedrock:
		return "bedrock"
	case StateUnknown:
		return "unknown"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// FamilyCatalog answers model family membership.
type FamilyCatalog interface {
	IsOpenAIChat(model string) bool
	IsBedrock(model string) bool
}

// DependencyChecker verifies and installs versioned packages.
type DependencyChecker interface {
	CheckVersion(ctx context.Context, pkg, minVersion string) bool
	Install(ctx context.Context, pkg, minVersion string) InstallResult
}

// Config wires a Negotiator. Zero fields fall back to process defaults.
type Config struct {
	Catalog      FamilyCatalog
	Credentials  *CredentialResolver
	Dependencies DependencyChecker
	Welcome      *WelcomeGate
	Prompter     Prompter
	Display      Display
	Pause        PauseFunc
	Logger       logging.Logger
}

type stepFunc func(ctx context.Context, cfg *config.ExecutionConfig) (State, error)

// Negotiator runs the pre-flight state machine over an ExecutionConfig.
// It is meant to be called once, before the session starts, by one caller.
type Negotiator struct {
	catalog      FamilyCatalog
	credentials  *CredentialResolver
	dependencies DependencyChecker
	welcome      *WelcomeGate
	prompter     Prompter
	display      Display
	pause        PauseFunc
	logger       logging.Logger
	steps        map[State]stepFunc
}

// NewNegotiator fills unset collaborators with defaults.
func NewNegotiator(cfg Config) *Negotiator {
	n := &Negotiator{
		catalog:      cfg.Catalog,
		credentials:  cfg.Credentials,
		dependencies: cfg.Dependencies,
		welcome:      cfg.Welcome,
		prompter:     cfg.Prompter,
		display:      cfg.Display,
		pause:        cfg.Pause,
		logger:       logging.OrNop(cfg.Logger),
	}
	if n.catalog == nil {
		n.catalog = catalog.Default()
	}
	if n.credentials == nil {
		n.credentials = NewCredentialResolver(config.DefaultEnvLookup)
	}
	if n.display == nil {
		n.display = DisplayFunc(func(string) {})
	}
	if n.pause == nil {
		n.pause = SleepPause
	}
	if n.dependencies == nil {
		n.dependencies = NewDependencyResolver(NewPipManager(config.DefaultPipCommand), n.logger)
	}
	if n.welcome == nil {
		n.welcome = NewWelcomeGate(n.display, n.pause)
	}
	if n.prompter == nil {
		n.prompter = NewTerminalPrompter(nil, nil)
	}
	n.steps = map[State]stepFunc{
		StateDispatch: n.dispatch,
		StateLocal:    n.local,
		StateOpenAI:   n.openAI,
		StateBedrock:  n.bedrock,
		StateUnknown:  n.unknown,
	}
	return n
}

// Negotiate mutates cfg until it is ready to run. It returns ErrInterrupted
// when the operator aborts a prompt and a *FatalError when a required
// dependency cannot be installed; the caller must exit the process then.
func (n *Negotiator) Negotiate(ctx context.Context, cfg *config.ExecutionConfig) (err error) {
	if cfg == nil {
		return errors.New("preflight: nil execution config")
	}
	ctx, span := startNegotiationSpan(ctx, cfg)
	defer func() {
		markSpanResult(span, cfg, err)
		span.End()
	}()

	state := StateDispatch
	for transitions := 0; state != StateDone; transitions++ {
		if transitions >= maxTransitions {
			return ErrTransitionLimit
		}
		next, err := n.Step(ctx, state, cfg)
		if err != nil {
			return err
		}
		n.logger.Debug("preflight %s -> %s (local=%t model=%q)", state, next, cfg.Local, cfg.Model)
		recordTransition(span, state, next)
		state = next
	}

	if !cfg.AutoRun && !strings.Contains(strings.ToLower(cfg.Model), localModelMarker) {
		n.display.Markdown(modelConfirmation(cfg.Model))
	}
	return nil
}

// Step evaluates a single state and returns the next one.
func (n *Negotiator) Step(ctx context.Context, state State, cfg *config.ExecutionConfig) (State, error) {
	step, ok := n.steps[state]
	if !ok {
		return StateDone, fmt.Errorf("preflight: no transition from %s", state)
	}
	return step(ctx, cfg)
}

func (n *Negotiator) dispatch(_ context.Context, cfg *config.ExecutionConfig) (State, error) {
	if cfg.Local {
		return StateLocal, nil
	}
	return StateOpenAI, nil
}

// local picks the default on-device model. An already selected model is
// left alone; fetching its weights happens elsewhere.
func (n *Negotiator) local(_ context.Context, cfg *config.ExecutionConfig) (State, error) {
	if cfg.Model != "" {
		return StateDone, nil
	}
	n.display.Markdown(localModelNotice)
	if cfg.GGUFQuality == nil {
		quality := DefaultGGUFQuality
		cfg.GGUFQuality = &quality
	}
	cfg.Model = DefaultLocalModel
	return StateDone, nil
}

func (n *Negotiator) openAI(ctx context.Context, cfg *config.ExecutionConfig) (State, error) {
	if !n.catalog.IsOpenAIChat(cfg.Model) {
		return StateBedrock, nil
	}
	if n.credentials.Resolvable(OpenAIKeyEnv, cfg.APIKey) {
		return StateDone, nil
	}

	n.welcome.ShowOnce(ctx)
	n.display.Markdown(openAIKeyMissingNotice)

	key, err := n.prompter.ReadSecret(ctx, openAIKeyLabel)
	if err != nil {
		return StateDone, err
	}
	if key == "" {
		n.display.Markdown(switchToLocalNotice)
		n.pause(ctx, switchPause)
		n.logger.Info("no OpenAI API key provided; falling back to local execution")
		cfg.Local = true
		cfg.Model = ""
		return StateDispatch, nil
	}

	n.display.Markdown(saveKeyTip)
	cfg.APIKey = key
	n.pause(ctx, keySavePause)
	return StateDone, nil
}

func (n *Negotiator) bedrock(ctx context.Context, cfg *config.ExecutionConfig) (State, error) {
	if !n.catalog.IsBedrock(cfg.Model) {
		return StateUnknown, nil
	}

	n.welcome.ShowOnce(ctx)
	if n.dependencies.CheckVersion(ctx, BedrockPackage, BedrockMinVersion) {
		return StateDone, nil
	}

	n.display.Markdown(installingNotice(BedrockPackage, BedrockMinVersion))
	result := n.dependencies.Install(ctx, BedrockPackage, BedrockMinVersion)
	if result.OK {
		return StateDone, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return StateDone, fmt.Errorf("%w: %v", ErrInterrupted, ctxErr)
	}

	n.logger.Error("install %s>=%s failed: %v", BedrockPackage, BedrockMinVersion, result.Err)
	return StateDone, &FatalError{
		Code:    1,
		Message: installFailedMessage(BedrockPackage, BedrockMinVersion),
		Err:     result.Err,
	}
}

// unknown covers models without provider checks.
func (n *Negotiator) unknown(context.Context, *config.ExecutionConfig) (State, error) {
	return StateDone, nil
}
