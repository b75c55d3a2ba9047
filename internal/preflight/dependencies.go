package preflight

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ashivadi/open-interpreter/internal/logging"

	"golang.org/x/mod/semver"
)

// ErrInvalidVersion indicates a version string without a numeric release part.
var ErrInvalidVersion = errors.New("invalid version")

// PackageManager is the external capability that reports and changes the
// installed package set.
type PackageManager interface {
	InstalledVersion(ctx context.Context, pkg string) (string, error)
	Install(ctx context.Context, pkg, minVersion string) ([]byte, error)
}

// InstallResult describes one install attempt. Err is kept for diagnostics;
// callers branch on OK only.
type InstallResult struct {
	Package    string
	MinVersion string
	OK         bool
	Output     string
	Err        error
}

// DependencyResolver checks and installs versioned packages.
type DependencyResolver struct {
	manager PackageManager
	logger  logging.Logger
}

// NewDependencyResolver wraps manager; a nil logger discards output.
func NewDependencyResolver(manager PackageManager, logger logging.Logger) *DependencyResolver {
	return &DependencyResolver{
		manager: manager,
		logger:  logging.OrNop(logger),
	}
}

// CheckVersion reports whether pkg is installed at minVersion or later. Any
// lookup or parse failure counts as unsatisfied.
func (r *DependencyResolver) CheckVersion(ctx context.Context, pkg, minVersion string) bool {
	if r == nil || r.manager == nil {
		return false
	}
	installed, err := r.manager.InstalledVersion(ctx, pkg)
	if err != nil {
		r.logger.Debug("package %s unavailable: %v", pkg, err)
		return false
	}
	cmp, err := CompareVersions(installed, minVersion)
	if err != nil {
		r.logger.Warn("cannot compare %s version %q with %q: %v", pkg, installed, minVersion, err)
		return false
	}
	r.logger.Debug("package %s installed at %s (need >= %s)", pkg, installed, minVersion)
	return cmp >= 0
}

// Install asks the package manager for pkg>=minVersion exactly once. It never
// returns an error or panics; failures are reported through the result.
func (r *DependencyResolver) Install(ctx context.Context, pkg, minVersion string) (result InstallResult) {
	result = InstallResult{Package: pkg, MinVersion: minVersion}
	if r == nil || r.manager == nil {
		result.Err = errors.New("no package manager configured")
		return result
	}
	defer func() {
		if rec := recover(); rec != nil {
			result.OK = false
			result.Err = fmt.Errorf("install %s panicked: %v", pkg, rec)
			r.logger.Error("Error installing %s: %v", pkg, result.Err)
		}
	}()

	output, err := r.manager.Install(ctx, pkg, minVersion)
	result.Output = strings.TrimSpace(string(output))
	if err != nil {
		result.Err = err
		r.logger.Error("Error installing %s: %v", pkg, err)
		return result
	}
	result.OK = true
	r.logger.Info("installed %s>=%s", pkg, minVersion)
	return result
}

var releasePattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*`)

// CompareVersions compares two release versions segment by segment and
// numerically: -1 if a < b, 0 if equal, +1 if a > b. Missing segments count
// as zero and trailing qualifiers (".post1", "rc2", "+local") are ignored.
// Only major.minor.patch participate.
func CompareVersions(a, b string) (int, error) {
	normA, err := normalizeVersion(a)
	if err != nil {
		return 0, err
	}
	normB, err := normalizeVersion(b)
	if err != nil {
		return 0, err
	}
	return semver.Compare(normA, normB), nil
}

// normalizeVersion maps a loose release string onto canonical "vX.Y.Z" as
// required by the semver package.
func normalizeVersion(v string) (string, error) {
	trimmed := strings.TrimSpace(v)
	trimmed = strings.TrimPrefix(strings.TrimPrefix(trimmed, "v"), "V")
	release := releasePattern.FindString(trimmed)
	if release == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, v)
	}

	segments := strings.Split(release, ".")
	parts := [3]int{}
	for i := 0; i < len(segments) && i < len(parts); i++ {
		n, err := strconv.Atoi(segments[i])
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidVersion, v)
		}
		parts[i] = n
	}

	norm := fmt.Sprintf("v%d.%d.%d", parts[0], parts[1], parts[2])
	if !semver.IsValid(norm) {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, v)
	}
	return norm, nil
}
