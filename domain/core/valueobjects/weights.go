package valueobjects

import "fmt"

// WeightPreset names a predefined optimization weight vector
type WeightPreset string

const (
	PresetPriceFirst       WeightPreset = "PRICE_FIRST"
	PresetInventoryFirst   WeightPreset = "INVENTORY_FIRST"
	PresetLengthFirst      WeightPreset = "LENGTH_FIRST"
	PresetReliabilityFirst WeightPreset = "RELIABILITY_FIRST"
	PresetBalanced         WeightPreset = "BALANCED"
	PresetCustom           WeightPreset = "CUSTOM"
)

// OptimizationWeights is the per-dimension weight vector used to combine
// component scores into an overall score. Each weight lives in [0,1];
// weights are combined as a weighted sum and need not sum to 1.
type OptimizationWeights struct {
	Price       float64 `json:"price"`
	Inventory   float64 `json:"inventory"`
	Length      float64 `json:"length"`
	Reliability float64 `json:"reliability"`
	Speed       float64 `json:"speed"`
}

// presetWeights holds the named weight vectors
var presetWeights = map[WeightPreset]OptimizationWeights{
	PresetPriceFirst:       {Price: 0.6, Inventory: 0.15, Length: 0.1, Reliability: 0.1, Speed: 0.05},
	PresetInventoryFirst:   {Price: 0.15, Inventory: 0.6, Length: 0.1, Reliability: 0.1, Speed: 0.05},
	PresetLengthFirst:      {Price: 0.15, Inventory: 0.1, Length: 0.6, Reliability: 0.1, Speed: 0.05},
	PresetReliabilityFirst: {Price: 0.15, Inventory: 0.1, Length: 0.1, Reliability: 0.6, Speed: 0.05},
	PresetBalanced:         {Price: 0.3, Inventory: 0.25, Length: 0.2, Reliability: 0.15, Speed: 0.1},
}

// WeightsForPreset resolves a named preset to its weight vector.
// PresetCustom is not resolvable here; callers supply their own vector.
func WeightsForPreset(preset WeightPreset) (OptimizationWeights, error) {
	if w, ok := presetWeights[preset]; ok {
		return w, nil
	}
	return OptimizationWeights{}, fmt.Errorf("unknown weight preset %q", preset)
}

// DefaultWeights returns the balanced preset
func DefaultWeights() OptimizationWeights {
	return presetWeights[PresetBalanced]
}

// Validate checks that every weight is inside [0,1]
func (w OptimizationWeights) Validate() error {
	for name, v := range map[string]float64{
		"price":       w.Price,
		"inventory":   w.Inventory,
		"length":      w.Length,
		"reliability": w.Reliability,
		"speed":       w.Speed,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("weight %q must be in [0,1], got %v", name, v)
		}
	}
	return nil
}

// IsZero reports whether the vector carries no weight at all
func (w OptimizationWeights) IsZero() bool {
	return w.Price == 0 && w.Inventory == 0 && w.Length == 0 && w.Reliability == 0 && w.Speed == 0
}
