// Package catalog defines the category/topic catalog a scrape run walks.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Category is a named, ordered grouping of topics.
type Category struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Topics      []string `json:"topics" yaml:"topics"`
}

// Catalog is an ordered list of categories. Order is significant: jobs visit
// categories and topics exactly in catalog order.
type Catalog []Category

// TotalTopics counts every topic across all categories.
func (c Catalog) TotalTopics() int {
	total := 0
	for _, cat := range c {
		total += len(cat.Topics)
	}
	return total
}

// Validate rejects catalogs that cannot drive a run.
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("catalog has no categories")
	}
	for _, cat := range c {
		if cat.Name == "" {
			return fmt.Errorf("catalog contains a category without a name")
		}
		if len(cat.Topics) == 0 {
			return fmt.Errorf("category %q has no topics", cat.Name)
		}
	}
	return nil
}

// LoadFile reads a catalog override from a YAML file. The file holds a list
// of categories in the same shape as the Category struct.
func LoadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
