// Package network models static network descriptions and validates
// them against the element types the accelerated power-flow backend
// supports.
package network

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Description is a static view of a network: for each element table,
// how many rows it carries. Tables absent from the map are treated as
// absent from the network.
type Description struct {
	Name   string
	Tables map[string]int
}

// RowCount returns the number of rows in the named table, or zero when
// the table is absent.
func (d *Description) RowCount(table string) int {
	if d == nil || d.Tables == nil {
		return 0
	}
	return d.Tables[table]
}

// descriptionFile is the on-disk YAML shape. Table values may be either
// a plain row count or a list of rows; only the count matters here.
type descriptionFile struct {
	Name   string              `yaml:"name"`
	Tables map[string]rowCount `yaml:"tables"`
}

type rowCount int

func (rc *rowCount) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var n int
		if err := value.Decode(&n); err != nil {
			return fmt.Errorf("table row count: %w", err)
		}
		*rc = rowCount(n)
		return nil
	case yaml.SequenceNode:
		*rc = rowCount(len(value.Content))
		return nil
	default:
		return fmt.Errorf("table value must be a row count or a row list")
	}
}

// LoadFile reads a network description from a YAML file.
func LoadFile(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read network description: %w", err)
	}
	return Parse(data)
}

// Parse decodes a network description from YAML bytes.
func Parse(data []byte) (*Description, error) {
	var f descriptionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse network description: %w", err)
	}
	d := &Description{Name: f.Name, Tables: make(map[string]int, len(f.Tables))}
	for table, rows := range f.Tables {
		d.Tables[table] = int(rows)
	}
	return d, nil
}
