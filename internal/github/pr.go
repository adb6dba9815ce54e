package github

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/clintrovert/cutrelease/pkg/types"
)

// ChangelogMarker separates the hand-written preamble of a release PR from the generated changelog
const ChangelogMarker = "## 👉 Changelog"

var versionHeading = regexp.MustCompile(`\A## v[^\n]*\n`)

// GenerateReleaseNotes builds the release PR body.
// The preamble of an existing PR is kept; everything from the changelog marker on is regenerated.
func GenerateReleaseNotes(current *types.PRInfo, changelog, version string, bump types.BumpType, baseBranch string) string {
	return strings.Join([]string{
		GeneratePreamble(current, version, bump),
		ChangelogMarker,
		GenerateChangelogSection(changelog, version, baseBranch),
	}, "\n")
}

// GeneratePreamble returns the existing PR body up to the changelog marker,
// or a placeholder when there is no PR or nothing precedes the marker
func GeneratePreamble(current *types.PRInfo, version string, bump types.BumpType) string {
	if current != nil {
		preamble := current.Body
		if i := strings.Index(preamble, ChangelogMarker); i >= 0 {
			preamble = preamble[:i]
		}
		if preamble != "" {
			return preamble
		}
	}

	return fmt.Sprintf("> %s is the next %s release.\n>\n> **Timetable**: to be announced.", version, bump)
}

// GenerateChangelogSection drops the version heading and points the first compare link at the release branch
func GenerateChangelogSection(changelog, version, baseBranch string) string {
	section := versionHeading.ReplaceAllString(changelog, "")
	return strings.Replace(section, "..."+baseBranch, "...v"+version, 1)
}
