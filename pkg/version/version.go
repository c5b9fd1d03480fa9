package version

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

// Defaults, overridden by ldflags or build info.
var Version = "0.0.0-dev"
var Commit = ""
var BuildTime = ""

// populateFromBuildInfo fills Version/Commit/BuildTime from the VCS stamps of
// the build. Values set by ldflags win.
func populateFromBuildInfo() {
	if Version != "" && Version != "0.0.0-dev" {
		return
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok || bi == nil {
		return
	}

	get := func(key string) (string, bool) {
		for _, s := range bi.Settings {
			if s.Key == key {
				return s.Value, true
			}
		}
		return "", false
	}

	// short commit SHA
	if Commit == "" {
		if rev, ok := get("vcs.revision"); ok && len(rev) >= 7 {
			Commit = rev[:7]
		}
	}

	if BuildTime == "" {
		if t, ok := get("vcs.time"); ok && t != "" {
			if ts, err := time.Parse(time.RFC3339, t); err == nil {
				BuildTime = ts.UTC().Format("2006-01-02T15:04:05Z")
			}
		}
	}

	// uncommitted changes get a "-dirty" suffix
	modified := false
	if m, ok := get("vcs.modified"); ok && (m == "true" || m == "TRUE") {
		modified = true
	}

	if tag, ok := get("vcs.tag"); ok && tag != "" {
		tag = strings.TrimPrefix(tag, "v")
		Version = tag
		if modified {
			Version = Version + "-dirty"
		}
	}
}

func init() {
	populateFromBuildInfo()
}

// CheckLatestVersion warns when a newer release is published.
func CheckLatestVersion(currentVersion string) {
	if strings.HasSuffix(currentVersion, "-dev") {
		return
	}

	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get("https://api.github.com/repos/diillson/pe-budget-dashboard-go/releases/latest")
	if err != nil {
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return
	}

	var release struct {
		TagName string `json:"tag_name"`
	}

	if err := json.Unmarshal(body, &release); err != nil {
		return
	}

	latestVersion := strings.TrimPrefix(release.TagName, "v")
	if latestVersion > currentVersion {
		pterm.Warning.Println(fmt.Sprintf("A new version of PE Budget Dashboard is available: %s", latestVersion))
		pterm.Info.Println("Please update using: go install github.com/diillson/pe-budget-dashboard-go/cmd/pe-budget@latest")
	}
}

// FormatVersion returns the version with commit and build time, e.g.
// "1.2.3 (commit: abc1234, built at: 2025-10-23T10:20:30Z)".
func FormatVersion() string {
	ver := Version
	if ver == "" {
		ver = "0.0.0-dev"
	}

	commit := Commit
	if commit == "" {
		commit = "development"
	}

	if commit == "development" && BuildTime == "" {
		return fmt.Sprintf("%s (development)", ver)
	}

	if BuildTime != "" {
		return fmt.Sprintf("%s (commit: %s, built at: %s)", ver, commit, BuildTime)
	}

	return fmt.Sprintf("%s (commit: %s)", ver, commit)
}
