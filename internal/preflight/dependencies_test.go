package preflight

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPackageManager struct {
	InstalledFunc func(pkg string) (string, error)
	InstallFunc   func(pkg, minVersion string) ([]byte, error)
}

func (m stubPackageManager) InstalledVersion(_ context.Context, pkg string) (string, error) {
	return m.InstalledFunc(pkg)
}

func (m stubPackageManager) Install(_ context.Context, pkg, minVersion string) ([]byte, error) {
	return m.InstallFunc(pkg, minVersion)
}

type recordingLogger struct {
	errors []string
}

func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Info(string, ...any)  {}
func (l *recordingLogger) Warn(string, ...any)  {}
func (l *recordingLogger) Error(format string, args ...any) {
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}

func TestCompareVersionsIsNumeric(t *testing.T) {
	cmp, err := CompareVersions("1.9.0", "1.10.0")
	require.NoError(t, err)
	assert.Less(t, cmp, 0, "1.9.0 must sort before 1.10.0")

	cmp, err = CompareVersions("1.28.57", "1.28.9")
	require.NoError(t, err)
	assert.Greater(t, cmp, 0)
}

func TestCompareVersionsNormalizes(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.28", "1.28.0", 0},
		{"v2.0.0", "2", 0},
		{"1.28.57.post1", "1.28.57", 0},
		{"1.29.0rc2", "1.28.57", 1},
		{"1.2.3.4", "1.2.3", 0},
		{" 0.9 ", "1.0.0", -1},
	}
	for _, tt := range tests {
		got, err := CompareVersions(tt.a, tt.b)
		require.NoError(t, err, "%s vs %s", tt.a, tt.b)
		assert.Equal(t, tt.want, got, "%s vs %s", tt.a, tt.b)
	}
}

func TestCompareVersionsRejectsGarbage(t *testing.T) {
	_, err := CompareVersions("unknown", "1.0.0")
	assert.ErrorIs(t, err, ErrInvalidVersion)
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		name      string
		installed string
		err       error
		want      bool
	}{
		{name: "newer", installed: "1.34.2", want: true},
		{name: "equal", installed: "1.28.57", want: true},
		{name: "older minor", installed: "1.9.99", want: false},
		{name: "missing", err: errors.New("not found"), want: false},
		{name: "unparseable", installed: "dev", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewDependencyResolver(stubPackageManager{
				InstalledFunc: func(string) (string, error) { return tt.installed, tt.err },
			}, nil)
			assert.Equal(t, tt.want, resolver.CheckVersion(context.Background(), "boto3", "1.28.57"))
		})
	}
}

func TestInstallReportsOutcome(t *testing.T) {
	resolver := NewDependencyResolver(stubPackageManager{
		InstallFunc: func(pkg, minVersion string) ([]byte, error) {
			return []byte("Successfully installed boto3-1.34.2\n"), nil
		},
	}, nil)

	result := resolver.Install(context.Background(), "boto3", "1.28.57")
	assert.True(t, result.OK)
	assert.NoError(t, result.Err)
	assert.Equal(t, "Successfully installed boto3-1.34.2", result.Output)
}

func TestInstallNeverFailsLoudly(t *testing.T) {
	t.Run("error", func(t *testing.T) {
		logger := &recordingLogger{}
		resolver := NewDependencyResolver(stubPackageManager{
			InstallFunc: func(string, string) ([]byte, error) { return nil, errors.New("exit status 1") },
		}, logger)

		result := resolver.Install(context.Background(), "boto3", "1.28.57")
		assert.False(t, result.OK)
		assert.EqualError(t, result.Err, "exit status 1")
		require.Len(t, logger.errors, 1)
		assert.Contains(t, logger.errors[0], "Error installing boto3")
	})

	t.Run("panic", func(t *testing.T) {
		resolver := NewDependencyResolver(stubPackageManager{
			InstallFunc: func(string, string) ([]byte, error) { panic("pip exploded") },
		}, nil)

		var result InstallResult
		assert.NotPanics(t, func() {
			result = resolver.Install(context.Background(), "boto3", "1.28.57")
		})
		assert.False(t, result.OK)
		assert.ErrorContains(t, result.Err, "pip exploded")
	})

	t.Run("no manager", func(t *testing.T) {
		resolver := NewDependencyResolver(nil, nil)
		assert.False(t, resolver.Install(context.Background(), "boto3", "1.28.57").OK)
		assert.False(t, resolver.CheckVersion(context.Background(), "boto3", "1.28.57"))
	})
}
