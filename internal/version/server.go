package version

import (
	"fmt"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// facetConstraint is the first searchd release that accepts FACET.
var facetConstraint = goversion.MustConstraints(goversion.NewConstraint(">= 2.2.1"))

// Server is a parsed searchd version.
type Server struct {
	// Raw is the string reported by SHOW STATUS, build suffixes included.
	Raw string

	// Version is the numeric release.
	Version *goversion.Version
}

// ParseServerVersion parses the value of the "version" status counter, for
// example "6.2.12 dc5144d35@230822" or "2.2.11-id64-release (95ae9a6)". Only
// the leading dotted number is compared; build suffixes are not prereleases.
func ParseServerVersion(raw string) (*Server, error) {
	trimmed := strings.TrimSpace(raw)
	end := strings.IndexFunc(trimmed, func(r rune) bool {
		return r != '.' && (r < '0' || r > '9')
	})
	numeric := trimmed
	if end >= 0 {
		numeric = trimmed[:end]
	}
	numeric = strings.TrimRight(numeric, ".")

	v, err := goversion.NewVersion(numeric)
	if err != nil {
		return nil, fmt.Errorf("invalid server version %q: %w", raw, err)
	}

	return &Server{Raw: trimmed, Version: v}, nil
}

// SupportsFacets reports whether the server understands FACET.
func (s *Server) SupportsFacets() bool {
	return facetConstraint.Check(s.Version)
}

// AtLeast reports whether the server is at least the given release.
func (s *Server) AtLeast(release string) (bool, error) {
	want, err := goversion.NewVersion(release)
	if err != nil {
		return false, err
	}
	return s.Version.GreaterThanOrEqual(want), nil
}

// String returns the numeric release.
func (s *Server) String() string {
	return s.Version.String()
}
