package main

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/ashivadi/open-interpreter/internal/config"

	"golang.org/x/mod/semver"
)

const versionEnvVar = "INTERPRETER_VERSION"

var (
	versionOnce   sync.Once
	cachedVersion string
)

// appVersion returns the best-effort version of the interpreter binary.
// The lookup order is:
//  1. Explicit INTERPRETER_VERSION environment variable (custom builds)
//  2. Go build information when available (e.g. go install ...@vX)
//  3. A development fallback string
func appVersion() string {
	versionOnce.Do(func() {
		cachedVersion = detectVersion(config.DefaultEnvLookup, debug.ReadBuildInfo)
	})
	return cachedVersion
}

func detectVersion(lookup config.EnvLookup, buildInfo func() (*debug.BuildInfo, bool)) string {
	if v, ok := lookup(versionEnvVar); ok {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return canonicalVersion(trimmed)
		}
	}

	if info, ok := buildInfo(); ok && info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return canonicalVersion(info.Main.Version)
		}

		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				return fmt.Sprintf("dev-%s", setting.Value)
			}
		}
	}

	return "development"
}

// canonicalVersion adds the "v" prefix to bare semantic versions.
func canonicalVersion(v string) string {
	if !strings.HasPrefix(v, "v") && semver.IsValid("v"+v) {
		return "v" + v
	}
	return v
}
