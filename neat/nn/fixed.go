package nn

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

var (
	// ErrArchitectureMismatch is returned when two networks of different shape are combined.
	ErrArchitectureMismatch = errors.New("network architecture mismatch")
	// ErrWeightCount is returned when a flat weight vector is too short for the network.
	ErrWeightCount = errors.New("weight vector too short")
)

// FixedNetwork is a dense input -> hidden -> output network with tanh activations and an
// optional Elman context (hidden -> hidden recurrence).
//
// All weight matrices are stored row-major: weightsIH[h*in+i], weightsHO[o*hid+h] and
// weightsHH[h*hid+p]. The flat parameter order used by Weights and SetWeights is
// weightsIH, biasH, weightsHO, biasO and, when memory is enabled, weightsHH.
//
// A FixedNetwork with memory enabled carries state between Forward calls and must not be
// shared between goroutines.
type FixedNetwork struct {
	inputSize  int
	hiddenSize int
	outputSize int
	useMemory  bool

	weightsIH []float32
	biasH     []float32
	weightsHO []float32
	biasO     []float32
	weightsHH []float32 // Only allocated once memory is enabled

	prevHidden []float32

	// Reused by Forward
	hidden []float32
	output []float32
}

// NewZeroFixedNetwork creates a network with every parameter set to zero.
func NewZeroFixedNetwork(inputSize, hiddenSize, outputSize int) *FixedNetwork {
	return &FixedNetwork{
		inputSize:  inputSize,
		hiddenSize: hiddenSize,
		outputSize: outputSize,
		weightsIH:  make([]float32, inputSize*hiddenSize),
		biasH:      make([]float32, hiddenSize),
		weightsHO:  make([]float32, hiddenSize*outputSize),
		biasO:      make([]float32, outputSize),
		hidden:     make([]float32, hiddenSize),
		output:     make([]float32, outputSize),
	}
}

// NewFixedNetwork creates a network with Xavier-like uniform initialisation:
// input weights in ±sqrt(8/in), output weights in ±sqrt(8/hid) and biases in ±0.5.
func NewFixedNetwork(rng *rand.Rand, inputSize, hiddenSize, outputSize int) *FixedNetwork {
	n := NewZeroFixedNetwork(inputSize, hiddenSize, outputSize)
	n.Randomize(rng)
	return n
}

// Randomize redraws the feedforward parameters. Context weights are left untouched.
func (n *FixedNetwork) Randomize(rng *rand.Rand) {
	fillUniform(rng, n.weightsIH, scale(8, n.inputSize))
	fillUniform(rng, n.biasH, 0.5)
	fillUniform(rng, n.weightsHO, scale(8, n.hiddenSize))
	fillUniform(rng, n.biasO, 0.5)
}

func scale(numerator float64, fanIn int) float32 {
	if fanIn <= 0 {
		return 0
	}
	return float32(math.Sqrt(numerator / float64(fanIn)))
}

func fillUniform(rng *rand.Rand, dst []float32, limit float32) {
	for i := range dst {
		dst[i] = (rng.Float32()*2 - 1) * limit
	}
}

// EnableMemory turns on the Elman context. Context weights are drawn uniformly from
// ±sqrt(2/hid) and the previous hidden state starts at zero. Enabling twice is a no-op.
func (n *FixedNetwork) EnableMemory(rng *rand.Rand) {
	if n.useMemory {
		return
	}
	n.useMemory = true
	n.prevHidden = make([]float32, n.hiddenSize)
	n.weightsHH = make([]float32, n.hiddenSize*n.hiddenSize)
	fillUniform(rng, n.weightsHH, scale(2, n.hiddenSize))
}

// ResetMemory zeroes the recurrent state. Call it between independent episodes.
func (n *FixedNetwork) ResetMemory() {
	for i := range n.prevHidden {
		n.prevHidden[i] = 0
	}
}

// InputSize returns the number of inputs.
func (n *FixedNetwork) InputSize() int { return n.inputSize }

// HiddenSize returns the number of hidden units.
func (n *FixedNetwork) HiddenSize() int { return n.hiddenSize }

// OutputSize returns the number of outputs.
func (n *FixedNetwork) OutputSize() int { return n.outputSize }

// HasMemory reports whether the Elman context is enabled.
func (n *FixedNetwork) HasMemory() bool { return n.useMemory }

// Forward computes the outputs for one time step. Missing inputs are treated as zero and
// extra inputs are ignored. With memory enabled the hidden vector becomes the context of
// the next call. The returned slice is owned by the network and overwritten by the next call.
func (n *FixedNetwork) Forward(inputs []float32) []float32 {
	for h := 0; h < n.hiddenSize; h++ {
		sum := n.biasH[h]
		row := n.weightsIH[h*n.inputSize : (h+1)*n.inputSize]
		for i, w := range row {
			if i < len(inputs) {
				sum += w * inputs[i]
			}
		}
		if n.useMemory {
			ctx := n.weightsHH[h*n.hiddenSize : (h+1)*n.hiddenSize]
			for p, w := range ctx {
				sum += w * n.prevHidden[p]
			}
		}
		n.hidden[h] = tanh32(sum)
	}
	if n.useMemory {
		copy(n.prevHidden, n.hidden)
	}
	n.forwardOutput(n.hidden, n.output)
	return n.output
}

func (n *FixedNetwork) forwardOutput(hidden, output []float32) {
	for o := 0; o < n.outputSize; o++ {
		sum := n.biasO[o]
		row := n.weightsHO[o*n.hiddenSize : (o+1)*n.hiddenSize]
		for h, w := range row {
			sum += w * hidden[h]
		}
		output[o] = tanh32(sum)
	}
}

// BatchForward evaluates many input vectors through the feedforward path only. The context
// weights and recurrent state are not used or modified. Each result is a fresh slice.
func (n *FixedNetwork) BatchForward(inputs [][]float32) [][]float32 {
	outputs := make([][]float32, len(inputs))
	hidden := make([]float32, n.hiddenSize)
	for b, in := range inputs {
		for h := 0; h < n.hiddenSize; h++ {
			sum := n.biasH[h]
			row := n.weightsIH[h*n.inputSize : (h+1)*n.inputSize]
			for i, w := range row {
				if i < len(in) {
					sum += w * in[i]
				}
			}
			hidden[h] = tanh32(sum)
		}
		outputs[b] = make([]float32, n.outputSize)
		n.forwardOutput(hidden, outputs[b])
	}
	return outputs
}

func (n *FixedNetwork) baseCount() int {
	return len(n.weightsIH) + len(n.biasH) + len(n.weightsHO) + len(n.biasO)
}

// WeightCount returns the length of the flat parameter vector.
func (n *FixedNetwork) WeightCount() int {
	if n.useMemory {
		return n.baseCount() + len(n.weightsHH)
	}
	return n.baseCount()
}

// Weights returns a copy of the flat parameter vector.
func (n *FixedNetwork) Weights() []float32 {
	all := make([]float32, 0, n.WeightCount())
	all = append(all, n.weightsIH...)
	all = append(all, n.biasH...)
	all = append(all, n.weightsHO...)
	all = append(all, n.biasO...)
	if n.useMemory {
		all = append(all, n.weightsHH...)
	}
	return all
}

// SetWeights loads a flat parameter vector. A vector shorter than the feedforward
// parameters is rejected with ErrWeightCount and the network is left unchanged. On a
// network with memory, the context weights are only replaced when the vector also covers
// them. Extra values are ignored.
func (n *FixedNetwork) SetWeights(w []float32) error {
	base := n.baseCount()
	if len(w) < base {
		return fmt.Errorf("%w: got %d, need at least %d", ErrWeightCount, len(w), base)
	}
	idx := copy(n.weightsIH, w)
	idx += copy(n.biasH, w[idx:])
	idx += copy(n.weightsHO, w[idx:])
	idx += copy(n.biasO, w[idx:])
	if n.useMemory && len(w)-idx >= len(n.weightsHH) {
		copy(n.weightsHH, w[idx:])
	}
	return nil
}

// Clone returns a deep copy of the parameters with fresh (zeroed) recurrent state.
func (n *FixedNetwork) Clone() *FixedNetwork {
	c := NewZeroFixedNetwork(n.inputSize, n.hiddenSize, n.outputSize)
	copy(c.weightsIH, n.weightsIH)
	copy(c.biasH, n.biasH)
	copy(c.weightsHO, n.weightsHO)
	copy(c.biasO, n.biasO)
	if n.useMemory {
		c.useMemory = true
		c.weightsHH = append([]float32(nil), n.weightsHH...)
		c.prevHidden = make([]float32, n.hiddenSize)
	}
	return c
}

// Mutate adds N(0, strength) noise to each parameter with probability rate.
func (n *FixedNetwork) Mutate(rng *rand.Rand, rate, strength float64) {
	for _, arr := range [][]float32{n.weightsIH, n.biasH, n.weightsHO, n.biasO, n.weightsHH} {
		for i := range arr {
			if rng.Float64() < rate {
				arr[i] += float32(rng.NormFloat64() * strength)
			}
		}
	}
}

// SameArchitecture reports whether both networks have identical sizes and memory setting.
func (n *FixedNetwork) SameArchitecture(other *FixedNetwork) bool {
	return n.inputSize == other.inputSize && n.hiddenSize == other.hiddenSize &&
		n.outputSize == other.outputSize && n.useMemory == other.useMemory
}

// Crossover performs two-point crossover over the flat parameter vectors: the child holds
// n's values outside [p1, p2) and other's values inside it, with both cut points drawn
// uniformly. Neither parent is modified.
func (n *FixedNetwork) Crossover(rng *rand.Rand, other *FixedNetwork) (*FixedNetwork, error) {
	if !n.SameArchitecture(other) {
		return nil, fmt.Errorf("%w: %dx%dx%d (memory %t) vs %dx%dx%d (memory %t)", ErrArchitectureMismatch,
			n.inputSize, n.hiddenSize, n.outputSize, n.useMemory,
			other.inputSize, other.hiddenSize, other.outputSize, other.useMemory)
	}
	child := n.Clone()
	a := n.Weights()
	if len(a) == 0 {
		return child, nil
	}
	b := other.Weights()
	p1, p2 := rng.Intn(len(a)), rng.Intn(len(a))
	if p1 > p2 {
		p1, p2 = p2, p1
	}
	copy(a[p1:p2], b[p1:p2])
	if err := child.SetWeights(a); err != nil {
		return nil, err
	}
	return child, nil
}

func tanh32(x float32) float32 {
	return float32(math.Tanh(float64(x)))
}
