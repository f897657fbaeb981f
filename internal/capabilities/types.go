package capabilities

import (
	"fmt"

	"binder/internal/domain/models"

	"gopkg.in/yaml.v3"
)

// Level groups operations by how much they can change
type Level string

const (
	LevelRead   Level = "read"
	LevelManage Level = "manage"
)

// Rule binds one operation to the access level it needs
type Rule struct {
	Operation string `json:"operation"`
	Level     Level  `json:"level"`
}

// Policy is the decoded policy file
type Policy struct {
	Rules []Rule                           `yaml:"-" json:"rules"` // Ordered slice, populated by custom unmarshaler
	Kinds map[models.Kind]map[Level]string `yaml:"kinds" json:"kinds"`
}

// UnmarshalYAML keeps operations in file order so listings are stable
func (p *Policy) UnmarshalYAML(node *yaml.Node) error {
	type kindsOnly struct {
		Kinds map[models.Kind]map[Level]string `yaml:"kinds"`
	}
	var k kindsOnly
	if err := node.Decode(&k); err != nil {
		return err
	}
	p.Kinds = k.Kinds

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "operations" {
			continue
		}
		ops := node.Content[i+1]
		if ops.Kind != yaml.MappingNode {
			return fmt.Errorf("operations: expected a mapping")
		}
		// ops.Content alternates: key, value, key, value...
		for j := 0; j+1 < len(ops.Content); j += 2 {
			p.Rules = append(p.Rules, Rule{
				Operation: ops.Content[j].Value,
				Level:     Level(ops.Content[j+1].Value),
			})
		}
		break
	}

	return nil
}
