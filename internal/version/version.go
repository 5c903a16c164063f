// Package version reports the CLI build and the searchd release it talks to.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

var (
	// Version is the CLI release, set with -ldflags at build time.
	Version = "0.1.0"
	// Commit is the git commit the CLI was built from.
	Commit = "unknown"
)

// Report is the output of the version command.
type Report struct {
	Version string
	Commit  string
	Go      string

	// Server is nil unless a searchd was asked.
	Server *Server
}

// Current describes the running binary.
func Current() Report {
	return Report{
		Version: Version,
		Commit:  Commit,
		Go:      runtime.Version(),
	}
}

// WithServer returns a copy of r that also describes s.
func (r Report) WithServer(s *Server) Report {
	r.Server = s
	return r
}

func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "sphinxql %s (%s, %s)", r.Version, r.Commit, r.Go)
	if r.Server != nil {
		fmt.Fprintf(&b, "\nsearchd  %s (%s)", r.Server, r.Server.Raw)
		if !r.Server.SupportsFacets() {
			b.WriteString(", no FACET support")
		}
	}
	return b.String()
}
