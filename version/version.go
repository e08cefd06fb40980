package version

import (
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// Overridden with -ldflags "-X".
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info describes the running binary.
type Info struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit"`
	BuildTime string    `json:"build_time"`
	GoVersion string    `json:"go_version"`
	BuildDate time.Time `json:"build_date"`
	IsRelease bool      `json:"is_release"`
	IsDirty   bool      `json:"is_dirty"`
}

const shortCommit = 7

// GetVersionInfo combines the -ldflags values with the VCS stamp of the
// build. Values from -ldflags take precedence.
func GetVersionInfo() *Info {
	info := &Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		IsRelease: Version != "dev" && !strings.Contains(Version, "dirty"),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		stamp := map[string]string{}
		for _, s := range bi.Settings {
			stamp[s.Key] = s.Value
		}
		info.IsDirty = stamp["vcs.modified"] == "true"
		if info.GitCommit == "" {
			info.GitCommit = stamp["vcs.revision"]
		}
		if info.BuildTime == "" {
			info.BuildTime = stamp["vcs.time"]
		}
	}
	if t, err := time.Parse(time.RFC3339, info.BuildTime); err == nil {
		info.BuildDate = t
	}
	if len(info.GitCommit) > shortCommit {
		info.GitCommit = info.GitCommit[:shortCommit]
	}
	return info
}

// GetShortVersion is "version-commit[-dirty]", or the bare version when
// the commit is unknown.
func GetShortVersion() string {
	info := GetVersionInfo()
	if info.GitCommit == "" {
		return info.Version
	}
	var b strings.Builder
	b.WriteString(info.Version)
	b.WriteByte('-')
	b.WriteString(info.GitCommit)
	if info.IsDirty {
		b.WriteString("-dirty")
	}
	return b.String()
}
