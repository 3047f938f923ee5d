package strategy

import (
	"fmt"
)

func NewPolicy(policyType string, config map[string]interface{}) (Policy, error) {
	switch policyType {
	case "constant":
		delta, ok := config["delta"].(float64)
		if !ok {
			return nil, fmt.Errorf("invalid config for constant: need delta")
		}
		return NewConstantSpread(delta), nil
	case "vol_adaptive":
		k0, ok1 := config["k0"].(float64)
		k1, ok2 := config["k1"].(float64)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("invalid config for vol_adaptive: need k0 and k1")
		}
		minSpread, _ := config["min_spread"].(float64)
		return NewVolAdaptiveSpread(k0, k1, minSpread), nil
	default:
		return nil, fmt.Errorf("unknown policy type: %s", policyType)
	}
}
