// Package mix provides dry/wet blending for effect outputs.
package mix

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// ClampAmount limits a wet amount to [0, 1]. NaN maps to 0 (fully dry).
func ClampAmount(amount float64) float64 {
	switch {
	case math.IsNaN(amount), amount <= 0:
		return 0
	case amount >= 1:
		return 1
	default:
		return amount
	}
}

// DryWet blends two samples: dry*(1-amount) + wet*amount.
// amount 0 returns dry unchanged and amount 1 returns wet unchanged.
func DryWet(dry, wet, amount float64) float64 {
	switch amount {
	case 0:
		return dry
	case 1:
		return wet
	}
	return dry*(1-amount) + wet*amount
}

// DryWetBlock blends dry and wet into dst over the shortest of the three
// slices. dst may alias dry. wet is used as scratch: for amounts strictly
// between 0 and 1 it holds wet*amount on return.
func DryWetBlock(dst, dry, wet []float64, amount float64) {
	n := min(len(dst), len(dry), len(wet))
	dst, dry, wet = dst[:n], dry[:n], wet[:n]

	switch amount {
	case 0:
		copy(dst, dry)
		return
	case 1:
		copy(dst, wet)
		return
	}

	vecmath.ScaleBlock(dst, dry, 1-amount)
	vecmath.ScaleBlock(wet, wet, amount)
	vecmath.AddBlockInPlace(dst, wet)
}
