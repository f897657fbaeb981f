// Package capabilities holds the declarative operation policy: which
// access level each operation needs, and which caller capability grants
// that level for a kind.
package capabilities

import (
	"embed"
	"fmt"
	"slices"

	"binder/internal/domain"
	"binder/internal/domain/models"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry answers "which capability does this operation need for this kind"
type Registry struct {
	rules map[string]Level
	order []Rule
	kinds map[models.Kind]map[Level]string
}

// NewRegistry loads the embedded policy file
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/policy.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read policy: %w", err)
	}
	return Load(data)
}

// Load parses a policy document. Every operation must use a known level and
// every kind must grant every level used.
func Load(data []byte) (*Registry, error) {
	var policy Policy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("failed to unmarshal policy: %w", err)
	}

	r := &Registry{
		rules: make(map[string]Level, len(policy.Rules)),
		order: policy.Rules,
		kinds: policy.Kinds,
	}

	for _, rule := range policy.Rules {
		if rule.Level != LevelRead && rule.Level != LevelManage {
			return nil, fmt.Errorf("operation %s: unknown level %q", rule.Operation, rule.Level)
		}
		if _, dup := r.rules[rule.Operation]; dup {
			return nil, fmt.Errorf("operation %s listed twice", rule.Operation)
		}
		r.rules[rule.Operation] = rule.Level
	}

	for _, kind := range models.Kinds {
		levels, ok := policy.Kinds[kind]
		if !ok {
			return nil, fmt.Errorf("kind %s has no capabilities", kind)
		}
		for _, rule := range policy.Rules {
			if levels[rule.Level] == "" {
				return nil, fmt.Errorf("kind %s grants no capability for level %s", kind, rule.Level)
			}
		}
	}

	return r, nil
}

// Required returns the capability an operation needs for a kind
func (r *Registry) Required(operation string, kind models.Kind) (string, error) {
	level, ok := r.rules[operation]
	if !ok {
		return "", fmt.Errorf("operation %q: %w", operation, domain.ErrValidation)
	}
	capability := r.kinds[kind][level]
	if capability == "" {
		return "", fmt.Errorf("kind %q: %w", kind, domain.ErrValidation)
	}
	return capability, nil
}

// Authorize checks that the caller holds the capability the operation needs
func (r *Registry) Authorize(caller *models.Caller, operation string, kind models.Kind) error {
	capability, err := r.Required(operation, kind)
	if err != nil {
		return err
	}
	if !caller.Can(capability) {
		return &domain.ForbiddenError{
			Message: fmt.Sprintf("%s on %s requires %s", operation, kind.Plural(), capability),
		}
	}
	return nil
}

// Level returns the access level of an operation
func (r *Registry) Level(operation string) (Level, bool) {
	level, ok := r.rules[operation]
	return level, ok
}

// Rules returns every operation in policy file order
func (r *Registry) Rules() []Rule {
	return r.order
}

// Mutating reports whether an operation needs the manage level
func (r *Registry) Mutating(operation string) bool {
	return r.rules[operation] == LevelManage
}

// Capabilities returns every capability the policy grants, sorted
func (r *Registry) Capabilities() []string {
	var out []string
	for _, levels := range r.kinds {
		for _, capability := range levels {
			if !slices.Contains(out, capability) {
				out = append(out, capability)
			}
		}
	}
	slices.Sort(out)
	return out
}
