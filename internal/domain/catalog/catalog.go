// Package catalog holds the voucher type definitions and the branch
// directory. The catalog is fixture data: it is loaded once at startup and
// never mutated.
package catalog

import (
	"github.com/garyjia/voucher-flow/internal/domain/entity"
	"github.com/garyjia/voucher-flow/internal/domain/form"
)

// Kind distinguishes plain voucher types from groups of sub-types
type Kind string

const (
	KindSingle Kind = "single"
	KindMulti  Kind = "multi"
)

// DefaultAmountField is the data key holding a voucher's amount
const DefaultAmountField = "amount"

// Definition describes one voucher type
type Definition struct {
	ID               string       `mapstructure:"id" json:"id"`
	Heading          string       `mapstructure:"heading" json:"heading"`
	ShortDescription string       `mapstructure:"short_description" json:"short_description"`
	Kind             Kind         `mapstructure:"kind" json:"kind"`
	SubTypes         []Definition `mapstructure:"sub_types" json:"sub_types,omitempty"`
	FormFields       []form.Field `mapstructure:"form_fields" json:"form_fields,omitempty"`
	AmountField      string       `mapstructure:"amount_field" json:"amount_field,omitempty"`
}

// IsMulti reports whether the definition only groups sub-types
func (d Definition) IsMulti() bool {
	return d.Kind == KindMulti
}

// AmountKey returns the data key holding the voucher amount
func (d Definition) AmountKey() string {
	if d.AmountField == "" {
		return DefaultAmountField
	}
	return d.AmountField
}

// Branch is one entry of the branch directory
type Branch struct {
	ID   string `mapstructure:"id" json:"id"`
	Name string `mapstructure:"name" json:"name"`
}

// Catalog is the read-only voucher type catalog
type Catalog struct {
	definitions []Definition
	flat        []Definition
	index       map[string]Definition
	branches    []Branch
	branchNames map[string]string
}

// New builds a catalog from top level definitions and the branch directory
func New(definitions []Definition, branches []Branch) *Catalog {
	c := &Catalog{
		definitions: definitions,
		index:       make(map[string]Definition),
		branches:    branches,
		branchNames: make(map[string]string, len(branches)),
	}

	// flatten once: multi entries expand to themselves plus their sub-types
	for _, d := range definitions {
		if d.Kind == "" {
			d.Kind = KindSingle
		}
		c.flat = append(c.flat, d)
		for _, sub := range d.SubTypes {
			if sub.Kind == "" {
				sub.Kind = KindSingle
			}
			c.flat = append(c.flat, sub)
		}
	}
	for _, d := range c.flat {
		if _, exists := c.index[d.ID]; !exists {
			c.index[d.ID] = d
		}
	}

	for _, b := range branches {
		c.branchNames[b.ID] = b.Name
	}
	return c
}

// All returns the top level definitions in catalog order
func (c *Catalog) All() []Definition {
	return c.definitions
}

// Flatten returns top level definitions followed in place by their sub-types
func (c *Catalog) Flatten() []Definition {
	return c.flat
}

// FindByID searches top level definitions and one level of sub-types
func (c *Catalog) FindByID(id string) (Definition, bool) {
	d, ok := c.index[id]
	return d, ok
}

// HeadingOf returns the heading of a voucher type or "N/A"
func (c *Catalog) HeadingOf(id string) string {
	if d, ok := c.index[id]; ok {
		return d.Heading
	}
	return entity.NotAvailable
}

// Branches returns the branch directory
func (c *Catalog) Branches() []Branch {
	return c.branches
}

// BranchName resolves a branch id, falling back to the id itself
func (c *Catalog) BranchName(id string) string {
	if name, ok := c.branchNames[id]; ok {
		return name
	}
	return id
}
