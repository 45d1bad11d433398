package pricing

import (
	"math"

	"github.com/bromosky/aventra/internal/domain"
)

// Total prices a package for a party. Per-unit packages are a flat price,
// capacity is checked elsewhere.
func Total(pkg domain.Package, partySize int) int64 {
	switch pkg.Mode {
	case domain.PricingPerPerson:
		return pkg.Price * int64(partySize)
	case domain.PricingPerUnit:
		return pkg.Price
	default:
		return 0
	}
}

// SplitDeposit returns the down payment (total*fraction, rounded half to even)
// and the remainder. Fractions outside [0,1] are clamped.
func SplitDeposit(total int64, fraction float64) (deposit, remainder int64) {
	fraction = clamp(fraction)
	deposit = int64(math.RoundToEven(float64(total) * fraction))
	remainder = total - deposit
	if remainder < 0 {
		remainder = 0
	}
	return deposit, remainder
}

func DepositPercent(fraction float64) int {
	return int(math.Round(clamp(fraction) * 100))
}

func clamp(f float64) float64 {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

// Calculator binds the catalog and the configured deposit fraction.
type Calculator struct {
	catalog  *domain.Catalog
	fraction float64
}

func NewCalculator(catalog *domain.Catalog, depositFraction float64) *Calculator {
	return &Calculator{catalog: catalog, fraction: clamp(depositFraction)}
}

// Total looks the package up by name; unknown packages cost 0.
func (c *Calculator) Total(packageName string, partySize int) int64 {
	pkg, ok := c.catalog.Lookup(packageName)
	if !ok {
		return 0
	}
	return Total(pkg, partySize)
}

func (c *Calculator) Split(total int64) (deposit, remainder int64) {
	return SplitDeposit(total, c.fraction)
}

func (c *Calculator) DepositFraction() float64 { return c.fraction }

func (c *Calculator) DepositPercent() int { return DepositPercent(c.fraction) }

func (c *Calculator) Catalog() *domain.Catalog { return c.catalog }
