//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the module, read from the VERSION file
// at build time.
var Version = strings.TrimSpace(version)

const (
	// Name identifies the command. It names the per-user configuration
	// directory and prefixes the environment variables the command reads.
	Name = "blockcfg"
	// Description is the one-line summary shown in help output.
	Description = "Hierarchical block configuration parser"
)

// AuthorInfo is a name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the maintainers.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
