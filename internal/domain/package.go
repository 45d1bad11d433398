package domain

import (
	"errors"
	"fmt"
	"strings"
)

type PricingMode string

const (
	PricingPerPerson PricingMode = "per-person"
	PricingPerUnit   PricingMode = "per-unit"
)

// ParsePricingMode also accepts the legacy per_orang / per_jeep spellings.
func ParsePricingMode(s string) (PricingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "per-person", "per_person", "per_orang":
		return PricingPerPerson, nil
	case "per-unit", "per_unit", "per_jeep":
		return PricingPerUnit, nil
	default:
		return "", fmt.Errorf("unknown pricing mode %q", s)
	}
}

type Package struct {
	Name         string      `json:"name"`
	Mode         PricingMode `json:"mode"`
	Price        int64       `json:"price"`
	MaxPartySize int         `json:"max,omitempty"`
}

// Allows reports whether partySize fits the package capacity. Only per-unit
// packages with a maximum are capped.
func (p Package) Allows(partySize int) bool {
	if p.Mode != PricingPerUnit || p.MaxPartySize <= 0 {
		return true
	}
	return partySize <= p.MaxPartySize
}

// Catalog is the read-only set of bookable packages, kept in declaration order.
type Catalog struct {
	items  []Package
	byName map[string]Package
}

func NewCatalog(pkgs []Package) (*Catalog, error) {
	if len(pkgs) == 0 {
		return nil, errors.New("catalog is empty")
	}

	c := &Catalog{
		items:  make([]Package, 0, len(pkgs)),
		byName: make(map[string]Package, len(pkgs)),
	}
	for _, p := range pkgs {
		if p.Name == "" {
			return nil, errors.New("package name is required")
		}
		if _, dup := c.byName[p.Name]; dup {
			return nil, fmt.Errorf("duplicate package %q", p.Name)
		}
		if p.Price <= 0 {
			return nil, fmt.Errorf("package %q: price must be positive", p.Name)
		}
		switch p.Mode {
		case PricingPerPerson:
			if p.MaxPartySize != 0 {
				return nil, fmt.Errorf("package %q: max party size only applies to per-unit pricing", p.Name)
			}
		case PricingPerUnit:
			if p.MaxPartySize < 0 {
				return nil, fmt.Errorf("package %q: max party size must not be negative", p.Name)
			}
		default:
			return nil, fmt.Errorf("package %q: unknown pricing mode %q", p.Name, p.Mode)
		}
		c.items = append(c.items, p)
		c.byName[p.Name] = p
	}
	return c, nil
}

func (c *Catalog) Lookup(name string) (Package, bool) {
	p, ok := c.byName[name]
	return p, ok
}

func (c *Catalog) Packages() []Package {
	out := make([]Package, len(c.items))
	copy(out, c.items)
	return out
}

func DefaultPackages() []Package {
	return []Package{
		{Name: "Open Trip 300.000/Orang", Mode: PricingPerPerson, Price: 300000},
		{Name: "Open Trip Dokumentasi 350.000/Orang", Mode: PricingPerPerson, Price: 350000},
		{Name: "Private Trip 1.750.000/Jeep Maximal 6 Orang", Mode: PricingPerUnit, Price: 1750000, MaxPartySize: 6},
		{Name: "Private Trip Dokumentasi 1.950.000/Jeep Maximal 5 Orang", Mode: PricingPerUnit, Price: 1950000, MaxPartySize: 5},
	}
}
