package model

import (
	"errors"
	"fmt"
	"math"
)

// Scorer produces a single scalar in [0, 1] from a normalized feature
// vector. The interval pipeline treats it as an opaque function so the
// business rules can be tested against deterministic stubs.
type Scorer interface {
	Infer(features []float64) (float64, error)
}

// Scaler normalizes a raw feature vector with statistics fitted at
// training time.
type Scaler interface {
	Transform(features []float64) ([]float64, error)
}

// StandardScaler applies the classic (x - mean) / scale transform.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Transform normalizes x element-wise. A zero scale is treated as 1 so a
// constant training column cannot divide by zero.
func (s *StandardScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) || len(s.Mean) != len(s.Scale) {
		return nil, fmt.Errorf("scaler fitted on %d features, got %d", len(s.Mean), len(x))
	}
	out := make([]float64, len(x))
	for i := range x {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (x[i] - s.Mean[i]) / scale
	}
	return out, nil
}

// Layer is one dense layer of the exported network. Weights is indexed
// [input][output].
type Layer struct {
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
	Activation string      `json:"activation"`
}

// Network is a dense feed-forward model exported from training. The last
// layer is expected to have a single sigmoid unit.
type Network struct {
	Layers []Layer `json:"layers"`
}

// InputWidth reports the feature width the network expects.
func (n *Network) InputWidth() int {
	if len(n.Layers) == 0 {
		return 0
	}
	return len(n.Layers[0].Weights)
}

// Infer runs the forward pass and returns the single output unit.
func (n *Network) Infer(x []float64) (float64, error) {
	if len(n.Layers) == 0 {
		return 0, errors.New("network has no layers")
	}
	cur := x
	for li, layer := range n.Layers {
		if len(layer.Weights) != len(cur) {
			return 0, fmt.Errorf("layer %d expects %d inputs, got %d", li, len(layer.Weights), len(cur))
		}
		out := make([]float64, len(layer.Bias))
		for j := range out {
			sum := layer.Bias[j]
			for i, row := range layer.Weights {
				sum += cur[i] * row[j]
			}
			out[j] = activate(layer.Activation, sum)
		}
		cur = out
	}
	if len(cur) != 1 {
		return 0, fmt.Errorf("network output width is %d, expected 1", len(cur))
	}
	return cur[0], nil
}

func activate(name string, v float64) float64 {
	switch name {
	case "relu":
		return math.Max(0, v)
	case "sigmoid":
		return 1 / (1 + math.Exp(-v))
	default:
		return v
	}
}
