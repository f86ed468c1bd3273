package route

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Verbs with special meaning in a rule's target map.
const (
	// VerbAny matches every HTTP verb that has no explicit target.
	VerbAny = "*"

	// VerbCLI marks a target reachable only from the command line.
	VerbCLI = "cli"
)

// Default names used by the fallback rule.
const (
	DefaultController = "Index"
	DefaultAction     = "index"
)

// Rule maps a URL pattern to one or more targets keyed by verb.
// A target is a "Controller/action/arg..." string where $N refers to
// capture group N of the pattern.
type Rule struct {
	Targets map[string]string
	Pattern string
}

// Target is the result of matching a request against the table.
type Target struct {
	Controller string
	Action     string
	Pattern    string // empty when resolved by the default rule
	Verb       string
	Args       []string
}

// String returns the target in "Controller/action/arg..." form.
func (t Target) String() string {
	parts := append([]string{t.Controller, t.Action}, t.Args...)
	return strings.Join(parts, "/")
}

type compiledRule struct {
	re      *regexp.Regexp
	targets map[string]string
	pattern string
}

// Table is an ordered, immutable list of compiled rules.
// It is safe for concurrent use.
type Table struct {
	defaultController string
	defaultAction     string
	rules             []compiledRule
	noDefault         bool
}

// Option configures a Table.
type Option func(*Table)

// WithDefaultController sets the controller used when the path has no
// controller segment. Defaults to "Index".
func WithDefaultController(name string) Option {
	return func(t *Table) {
		if name != "" {
			t.defaultController = name
		}
	}
}

// WithDefaultAction sets the action used when the path has no action
// segment. Defaults to "index".
func WithDefaultAction(name string) Option {
	return func(t *Table) {
		if name != "" {
			t.defaultAction = name
		}
	}
}

// WithoutDefaultRule disables the "controller/action/args" fallback.
// Unmatched paths then return ErrNotFound.
func WithoutDefaultRule() Option {
	return func(t *Table) {
		t.noDefault = true
	}
}

// New compiles the rules into a Table.
// Each pattern is anchored and matched against the request path with
// leading and trailing slashes removed, so "/" matches the root only.
// A repeated pattern replaces the targets of the earlier rule in place.
//
// Example:
//
//	table, err := route.New([]route.Rule{
//	    {Pattern: "/", Targets: map[string]string{"*": "Hello/index"}},
//	    {Pattern: "news/([0-9])", Targets: map[string]string{"*": "Hello/showNews/$1"}},
//	    {Pattern: "add", Targets: map[string]string{"get": "Hello/addNews", "post": "Hello/insertNews"}},
//	})
func New(rules []Rule, opts ...Option) (*Table, error) {
	t := &Table{
		defaultController: DefaultController,
		defaultAction:     DefaultAction,
	}
	for _, opt := range opts {
		opt(t)
	}

	index := make(map[string]int, len(rules))
	for _, r := range rules {
		pattern := normalize(r.Pattern)
		targets, err := normalizeTargets(r.Targets)
		if err != nil {
			return nil, fmt.Errorf("%w: pattern %q", err, r.Pattern)
		}

		re, err := regexp.Compile("^" + pattern + "$")
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, r.Pattern, err)
		}

		cr := compiledRule{re: re, targets: targets, pattern: pattern}
		if i, ok := index[pattern]; ok {
			t.rules[i] = cr
			continue
		}
		index[pattern] = len(t.rules)
		t.rules = append(t.rules, cr)
	}

	return t, nil
}

// MustNew is like New but panics on error.
func MustNew(rules []Rule, opts ...Option) *Table {
	t, err := New(rules, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Match resolves the verb and path to a target.
// Rules are tried in order; the first rule whose pattern matches and that
// has a target for the verb wins. The "cli" verb only sees "cli" targets
// and HTTP verbs never see them. When a pattern matched but no rule serves
// the verb, ErrMethodNotAllowed is returned. When nothing matched, the
// default rule splits the path into controller, action and arguments.
func (t *Table) Match(verb, path string) (Target, error) {
	verb = strings.ToLower(verb)
	path = normalize(path)

	patternMatched := false
	for _, r := range t.rules {
		groups := r.re.FindStringSubmatch(path)
		if groups == nil {
			continue
		}

		target, ok := r.lookup(verb)
		if !ok {
			patternMatched = true
			continue
		}

		res := t.withDefaults(ParseTarget(expand(target, groups)))
		res.Pattern = r.displayPattern()
		res.Verb = verb
		return res, nil
	}

	if patternMatched {
		return Target{}, ErrMethodNotAllowed
	}
	if t.noDefault {
		return Target{}, ErrNotFound
	}

	res := t.withDefaults(ParseTarget(path))
	res.Verb = verb
	return res, nil
}

// Rules returns a copy of the compiled rules in match order.
func (t *Table) Rules() []Rule {
	out := make([]Rule, 0, len(t.rules))
	for _, r := range t.rules {
		targets := make(map[string]string, len(r.targets))
		for k, v := range r.targets {
			targets[k] = v
		}
		out = append(out, Rule{Pattern: r.displayPattern(), Targets: targets})
	}
	return out
}

// Len returns the number of rules in the table.
func (t *Table) Len() int {
	return len(t.rules)
}

// DefaultController returns the controller used by the default rule.
func (t *Table) DefaultController() string {
	return t.defaultController
}

// DefaultAction returns the action used by the default rule.
func (t *Table) DefaultAction() string {
	return t.defaultAction
}

// ParseTarget splits "Controller/action/arg1/arg2" into its parts.
// Missing segments are left empty.
func ParseTarget(s string) Target {
	s = normalize(s)
	if s == "" {
		return Target{}
	}

	parts := strings.Split(s, "/")
	t := Target{Controller: parts[0]}
	if len(parts) > 1 {
		t.Action = parts[1]
	}
	if len(parts) > 2 {
		t.Args = parts[2:]
	}
	return t
}

func (t *Table) withDefaults(target Target) Target {
	if target.Controller == "" {
		target.Controller = t.defaultController
	}
	if target.Action == "" {
		target.Action = t.defaultAction
	}
	return target
}

func (r compiledRule) lookup(verb string) (string, bool) {
	if verb == VerbCLI {
		target, ok := r.targets[VerbCLI]
		return target, ok
	}
	if target, ok := r.targets[verb]; ok {
		return target, true
	}
	target, ok := r.targets[VerbAny]
	return target, ok
}

func (r compiledRule) displayPattern() string {
	if r.pattern == "" {
		return "/"
	}
	return r.pattern
}

func normalize(s string) string {
	return strings.Trim(strings.TrimSpace(s), "/")
}

func normalizeTargets(in map[string]string) (map[string]string, error) {
	if len(in) == 0 {
		return nil, ErrInvalidTarget
	}
	out := make(map[string]string, len(in))
	for verb, target := range in {
		verb = strings.ToLower(strings.TrimSpace(verb))
		if verb == "" || strings.TrimSpace(target) == "" {
			return nil, ErrInvalidTarget
		}
		out[verb] = target
	}
	return out, nil
}

var groupRef = regexp.MustCompile(`\$([0-9]+)`)

// expand replaces $N in the target with capture group N.
// References to missing groups become empty strings.
func expand(target string, groups []string) string {
	if !strings.Contains(target, "$") {
		return target
	}
	return groupRef.ReplaceAllStringFunc(target, func(ref string) string {
		n, err := strconv.Atoi(ref[1:])
		if err != nil || n >= len(groups) {
			return ""
		}
		return groups[n]
	})
}
