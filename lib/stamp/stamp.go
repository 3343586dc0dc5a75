// Build information, injected at link time with flags like:
//
//	go build -ldflags "-X github.com/enfabrica/kunzip/lib/stamp.GitSha=$(git rev-parse HEAD)"
package stamp

import (
	"fmt"
	"strings"
)

var (
	Version   = "dev"
	BuildUser = "<unknown>"
	GitBranch = "<unknown>"
	GitSha    = "<unknown>"

	changedFiles = "<unknown>"
)

func IsClean() bool {
	return strings.TrimSpace(changedFiles) == ""
}

// String describes the build, for --version.
func String() string {
	state := "clean"
	if !IsClean() {
		state = "modified"
	}
	return fmt.Sprintf("%s (%s@%s, %s, built by %s)", Version, GitBranch, GitSha, state, BuildUser)
}
