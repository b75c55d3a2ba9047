package preflight

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// PipManager drives a pip executable. Command may carry leading arguments,
// e.g. "python3 -m pip".
type PipManager struct {
	command []string
	run     commandRunner
}

// NewPipManager returns a manager invoking command, defaulting to "pip".
func NewPipManager(command string) *PipManager {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		fields = []string{"pip"}
	}
	return &PipManager{command: fields, run: execRunner}
}

// InstalledVersion reads the "Version:" field from `pip show`.
func (m *PipManager) InstalledVersion(ctx context.Context, pkg string) (string, error) {
	output, err := m.invoke(ctx, "show", pkg)
	if err != nil {
		return "", fmt.Errorf("pip show %s: %w", pkg, err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "version") {
			continue
		}
		if version := strings.TrimSpace(value); version != "" {
			return version, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read pip show output: %w", err)
	}
	return "", errors.New("pip show reported no version for " + pkg)
}

// Install runs `pip install "<pkg>>=<minVersion>"`.
func (m *PipManager) Install(ctx context.Context, pkg, minVersion string) ([]byte, error) {
	requirement := pkg
	if strings.TrimSpace(minVersion) != "" {
		requirement = pkg + ">=" + minVersion
	}
	output, err := m.invoke(ctx, "install", requirement)
	if err != nil {
		return output, fmt.Errorf("pip install %s: %w", requirement, err)
	}
	return output, nil
}

func (m *PipManager) invoke(ctx context.Context, args ...string) ([]byte, error) {
	run := m.run
	if run == nil {
		run = execRunner
	}
	command := m.command
	if len(command) == 0 {
		command = []string{"pip"}
	}
	full := append(append([]string{}, command[1:]...), args...)
	return run(ctx, command[0], full...)
}
