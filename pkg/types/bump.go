package types

// BumpType is the semver component a release increments
type BumpType string

const (
	BumpMajor BumpType = "major"
	BumpMinor BumpType = "minor"
	BumpPatch BumpType = "patch"
	BumpNone  BumpType = ""
)

// OrDefault returns patch when no bump was decided
func (b BumpType) OrDefault() BumpType {
	if b == BumpNone {
		return BumpPatch
	}
	return b
}

// rank orders bumps so the highest one wins
func (b BumpType) rank() int {
	switch b {
	case BumpMajor:
		return 3
	case BumpMinor:
		return 2
	case BumpPatch:
		return 1
	default:
		return 0
	}
}

// Max returns the larger of two bumps
func (b BumpType) Max(other BumpType) BumpType {
	if other.rank() > b.rank() {
		return other
	}
	return b
}

// TypeRule describes how a recognized commit type is rendered and bumped
type TypeRule struct {
	Title  string   `koanf:"title"`
	Semver BumpType `koanf:"semver"`
}

// TypeTable is the ordered set of recognized commit types
type TypeTable struct {
	order []string
	rules map[string]TypeRule
}

// NewTypeTable creates an empty type table
func NewTypeTable() *TypeTable {
	return &TypeTable{rules: make(map[string]TypeRule)}
}

// Set adds or replaces a type, keeping its original position when replaced
func (t *TypeTable) Set(name string, rule TypeRule) {
	if _, ok := t.rules[name]; !ok {
		t.order = append(t.order, name)
	}
	t.rules[name] = rule
}

// Remove disables a type
func (t *TypeTable) Remove(name string) {
	if _, ok := t.rules[name]; !ok {
		return
	}
	delete(t.rules, name)
	for i, n := range t.order {
		if n == name {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Lookup returns the rule for a type
func (t *TypeTable) Lookup(name string) (TypeRule, bool) {
	rule, ok := t.rules[name]
	return rule, ok
}

// Names returns recognized types in declaration order
func (t *TypeTable) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of recognized types
func (t *TypeTable) Len() int {
	return len(t.order)
}
