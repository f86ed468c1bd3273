package route

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Parse builds a Table from a configuration map.
// Values are either a target string (served for every HTTP verb) or a map
// of verb to target string. Go maps have no order, so rules are matched in
// sorted key order; use LoadYAML when declaration order matters.
func Parse(m map[string]any, opts ...Option) (*Table, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rules := make([]Rule, 0, len(keys))
	for _, k := range keys {
		targets, err := toTargets(m[k])
		if err != nil {
			return nil, fmt.Errorf("%w: pattern %q", err, k)
		}
		rules = append(rules, Rule{Pattern: k, Targets: targets})
	}

	return New(rules, opts...)
}

func toTargets(v any) (map[string]string, error) {
	switch val := v.(type) {
	case string:
		return map[string]string{VerbAny: val}, nil
	case map[string]string:
		return val, nil
	case map[string]any:
		out := make(map[string]string, len(val))
		for verb, t := range val {
			s, ok := t.(string)
			if !ok {
				return nil, ErrInvalidTarget
			}
			out[verb] = s
		}
		return out, nil
	default:
		return nil, ErrInvalidTarget
	}
}

// fileConfig is the YAML layout of a route file.
//
//	default_controller: Index
//	default_action: index
//	routes:
//	  /: Hello/index
//	  news/([0-9]): Hello/showNews/$1
//	  add:
//	    get: Hello/addNews
//	    post: Hello/insertNews
//
// The routes key also accepts a list of {pattern, target} or
// {pattern, targets} items.
type fileConfig struct {
	DefaultController string    `yaml:"default_controller"`
	DefaultAction     string    `yaml:"default_action"`
	Routes            yaml.Node `yaml:"routes"`
}

type listItem struct {
	Targets map[string]string `yaml:"targets"`
	Pattern string            `yaml:"pattern"`
	Target  string            `yaml:"target"`
}

// LoadYAML reads a route table from YAML. Rules keep their declaration order.
// Options are applied after the file's defaults, so they take precedence.
func LoadYAML(r io.Reader, opts ...Option) (*Table, error) {
	var cfg fileConfig
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %w", ErrReadFile, err)
	}

	rules, err := decodeRules(&cfg.Routes)
	if err != nil {
		return nil, err
	}

	all := append([]Option{
		WithDefaultController(cfg.DefaultController),
		WithDefaultAction(cfg.DefaultAction),
	}, opts...)

	return New(rules, all...)
}

// LoadFile reads a route table from a YAML file.
func LoadFile(path string, opts ...Option) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFile, err)
	}
	defer f.Close()

	return LoadYAML(f, opts...)
}

func decodeRules(node *yaml.Node) ([]Rule, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.MappingNode:
		rules := make([]Rule, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			targets, err := decodeTargets(val)
			if err != nil {
				return nil, fmt.Errorf("%w: pattern %q", err, key.Value)
			}
			rules = append(rules, Rule{Pattern: key.Value, Targets: targets})
		}
		return rules, nil
	case yaml.SequenceNode:
		var items []listItem
		if err := node.Decode(&items); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadFile, err)
		}
		rules := make([]Rule, 0, len(items))
		for _, it := range items {
			targets := it.Targets
			if it.Target != "" {
				if targets == nil {
					targets = make(map[string]string, 1)
				}
				targets[VerbAny] = it.Target
			}
			rules = append(rules, Rule{Pattern: it.Pattern, Targets: targets})
		}
		return rules, nil
	default:
		return nil, fmt.Errorf("%w: routes must be a mapping or a list", ErrReadFile)
	}
}

func decodeTargets(node *yaml.Node) (map[string]string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return map[string]string{VerbAny: node.Value}, nil
	case yaml.MappingNode:
		var targets map[string]string
		if err := node.Decode(&targets); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
		}
		return targets, nil
	default:
		return nil, ErrInvalidTarget
	}
}
