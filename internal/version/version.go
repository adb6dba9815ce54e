package version

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/clintrovert/cutrelease/pkg/types"
)

// ErrInvalidVersion is returned when the current version is not valid semver
var ErrInvalidVersion = errors.New("invalid semantic version")

// Next computes the version following current for the given bump.
// An undetermined bump is treated as patch.
func Next(current string, bump types.BumpType) (string, error) {
	v, err := semver.StrictNewVersion(current)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidVersion, current, err)
	}

	var next semver.Version
	switch bump.OrDefault() {
	case types.BumpMajor:
		next = v.IncMajor()
	case types.BumpMinor:
		next = v.IncMinor()
	case types.BumpPatch:
		next = v.IncPatch()
	default:
		return "", fmt.Errorf("unknown bump type %q", bump)
	}

	return next.String(), nil
}

// BranchName returns the release branch for a version
func BranchName(v string) string {
	return "v" + v
}
