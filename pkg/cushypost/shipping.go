package cushypost

import (
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// SetShipping builds the shipping node from packages. Every package gets a
// fresh hash on every call, so hashes read before a rebuild no longer match.
func (c *Client) SetShipping(packages []Package, goodsDesc, specialInstructions string) error {
	if len(packages) == 0 {
		return fail(ErrMissingData)
	}

	if goodsDesc == "" {
		goodsDesc = defaultContent
	}

	c.shipping = &Shipment{
		TotalWeight:         lo.SumBy(packages, func(p Package) int { return int(p.Weight) }),
		GoodsDesc:           goodsDesc,
		Product:             defaultProduct,
		SpecialInstructions: c.specialInstructions(specialInstructions),
		Packages: lo.Map(packages, func(p Package, _ int) Package {
			return Package{
				Type:    lo.Ternary(p.Type != "", p.Type, defaultPackageType),
				Height:  p.Height,
				Width:   p.Width,
				Length:  p.Length,
				Weight:  p.Weight,
				Content: lo.Ternary(p.Content != "", p.Content, defaultContent),
				Hash:    newPackageHash(),
			}
		}),
	}

	c.logger.Info("Shipping set",
		zap.Int("package_count", len(packages)),
		zap.Int("total_weight", c.shipping.TotalWeight),
	)
	return nil
}

// specialInstructions marks every test-environment shipment as disposable.
func (c *Client) specialInstructions(requested string) string {
	switch {
	case c.environment == EnvironmentTest:
		return testSpecialInstructions
	case requested != "":
		return requested
	default:
		return defaultSpecialInstructions
	}
}

func newPackageHash() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
