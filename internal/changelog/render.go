package changelog

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clintrovert/cutrelease/pkg/types"
)

const githubBaseURL = "https://github.com"

// RenderOptions controls markdown generation
type RenderOptions struct {
	Types *types.TypeTable
	From  string
	To    string
	// Repo is owner/name; references are left as plain text when it is empty.
	Repo string
}

// Render produces the markdown changelog for a set of filtered commits
func Render(commits []types.Commit, opts RenderOptions) string {
	groups := make(map[string][]types.Commit)
	for _, c := range commits {
		groups[c.Type] = append(groups[c.Type], c)
	}

	lines := []string{"", "## " + opts.From + "..." + opts.To, ""}
	if opts.Repo != "" && opts.From != "" {
		lines = append(lines, fmt.Sprintf("[compare changes](%s/%s/compare/%s...%s)", githubBaseURL, opts.Repo, opts.From, opts.To))
	}

	var breaking []string
	for _, name := range opts.Types.Names() {
		group := groups[name]
		if len(group) == 0 {
			continue
		}
		rule, _ := opts.Types.Lookup(name)
		lines = append(lines, "", "### "+rule.Title, "")

		// history is newest first, groups list oldest first
		for i := len(group) - 1; i >= 0; i-- {
			line := formatCommit(group[i], opts.Repo)
			lines = append(lines, line)
			if group[i].IsBreaking {
				breaking = append(breaking, line)
			}
		}
	}

	if len(breaking) > 0 {
		lines = append(lines, "", "#### ⚠️ Breaking Changes", "")
		lines = append(lines, breaking...)
	}

	if contributors := formatContributors(commits); len(contributors) > 0 {
		lines = append(lines, "", "### ❤️ Contributors", "")
		lines = append(lines, contributors...)
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func formatCommit(c types.Commit, repo string) string {
	var sb strings.Builder
	sb.WriteString("- ")
	if c.Scope != "" {
		sb.WriteString("**" + c.Scope + ":** ")
	}
	if c.IsBreaking {
		sb.WriteString("⚠️  ")
	}
	sb.WriteString(upperFirst(c.Description))
	sb.WriteString(formatReferences(c.References, repo))
	return sb.String()
}

func formatReferences(refs []types.Reference, repo string) string {
	var linked []string
	for _, kind := range []types.ReferenceKind{types.ReferencePullRequest, types.ReferenceIssue} {
		for _, ref := range refs {
			if ref.Kind == kind {
				linked = append(linked, formatReference(ref, repo))
			}
		}
	}
	if len(linked) > 0 {
		return " (" + strings.Join(linked, ", ") + ")"
	}
	if len(refs) > 0 {
		return " (" + formatReference(refs[0], repo) + ")"
	}
	return ""
}

func formatReference(ref types.Reference, repo string) string {
	if repo == "" {
		return ref.Value
	}
	base := githubBaseURL + "/" + repo
	switch ref.Kind {
	case types.ReferencePullRequest:
		return fmt.Sprintf("[%s](%s/pull/%s)", ref.Value, base, strings.TrimPrefix(ref.Value, "#"))
	case types.ReferenceIssue:
		return fmt.Sprintf("[%s](%s/issues/%s)", ref.Value, base, strings.TrimPrefix(ref.Value, "#"))
	default:
		return fmt.Sprintf("[%s](%s/commit/%s)", ref.Value, base, ref.Value)
	}
}

type contributor struct {
	name   string
	emails []string
}

func formatContributors(commits []types.Commit) []string {
	var ordered []*contributor
	byName := make(map[string]*contributor)

	for _, c := range commits {
		for _, author := range c.Authors {
			name := formatName(author.Name)
			if name == "" || strings.Contains(name, "[bot]") {
				continue
			}
			entry, ok := byName[name]
			if !ok {
				entry = &contributor{name: name}
				byName[name] = entry
				ordered = append(ordered, entry)
			}
			entry.emails = append(entry.emails, author.Email)
		}
	}

	lines := make([]string, 0, len(ordered))
	for _, entry := range ordered {
		email := ""
		for _, e := range entry.emails {
			if e != "" && !strings.Contains(e, "noreply.github.com") {
				email = "<" + e + ">"
				break
			}
		}
		lines = append(lines, strings.TrimSpace("- "+entry.name+" "+email))
	}
	return lines
}

func formatName(name string) string {
	parts := strings.Split(strings.TrimSpace(name), " ")
	for i, p := range parts {
		parts[i] = upperFirst(strings.TrimSpace(p))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
