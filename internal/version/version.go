package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

const (
	// App is the binary and User-Agent product name
	App = "ezcaretech-auth"
	// Description is the one-line summary shown by -version and the usage text
	Description = "Ezcaretech (BizBox) external authentication server"
)

// Set with -ldflags "-X github.com/devfury/ezcaretech-auth/internal/version.Version=..."
var (
	Version   string
	GitCommit string
	BuildTime string
)

// readBuildInfo is swapped in tests
var readBuildInfo = debug.ReadBuildInfo

// Info describes the running build
type Info struct {
	Version   string
	Commit    string
	BuildTime string
	GoVersion string
	Platform  string
}

// Get resolves the build info. Values not injected by the linker fall back
// to what the Go toolchain stamped into the binary.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi, ok := readBuildInfo(); ok {
		if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = s.Value
				}
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			}
		}
	}

	if info.Version == "" {
		info.Version = "dev"
	}
	return info
}

// ShortCommit is the first seven characters of the commit hash
func (i Info) ShortCommit() string {
	if len(i.Commit) > 7 {
		return i.Commit[:7]
	}
	return i.Commit
}

// UserAgent identifies this server to BizBox, e.g. "ezcaretech-auth/1.2.0 (abc1234)"
func (i Info) UserAgent() string {
	if c := i.ShortCommit(); c != "" {
		return fmt.Sprintf("%s/%s (%s)", App, i.Version, c)
	}
	return App + "/" + i.Version
}

// Fields returns the build info as structured log fields
func (i Info) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"version":  i.Version,
		"go":       i.GoVersion,
		"platform": i.Platform,
	}
	if c := i.ShortCommit(); c != "" {
		fields["commit"] = c
	}
	return fields
}

// Print writes the -version output
func Print(w io.Writer) {
	info := Get()
	fmt.Fprintf(w, "%s version %s\n", App, info.Version)
	fmt.Fprintln(w, Description)
	if info.Commit != "" {
		fmt.Fprintf(w, "Git commit: %s\n", info.ShortCommit())
	}
	if info.BuildTime != "" {
		fmt.Fprintf(w, "Build time: %s\n", info.BuildTime)
	}
	fmt.Fprintf(w, "Go version: %s\n", info.GoVersion)
	fmt.Fprintf(w, "Built for: %s\n", info.Platform)
}

// UserAgent is Get().UserAgent()
func UserAgent() string {
	return Get().UserAgent()
}
