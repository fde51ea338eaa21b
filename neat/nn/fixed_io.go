package nn

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrLoadFailed is returned when a network file cannot be decoded.
var ErrLoadFailed = errors.New("failed to load network")

const (
	maxLayerSize   = 10000
	maxWeightCount = 1000000
)

// WriteTo writes the network in the little-endian binary layout
// [in u32][hid u32][out u32][memory u32][count u32][count x f32].
// It implements io.WriterTo.
func (n *FixedNetwork) WriteTo(w io.Writer) (int64, error) {
	weights := n.Weights()
	var memory uint32
	if n.useMemory {
		memory = 1
	}
	header := []uint32{
		uint32(n.inputSize),
		uint32(n.hiddenSize),
		uint32(n.outputSize),
		memory,
		uint32(len(weights)),
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return 0, fmt.Errorf("failed to write network header: %w", err)
	}
	written := int64(4 * len(header))
	if err := binary.Write(w, binary.LittleEndian, weights); err != nil {
		return written, fmt.Errorf("failed to write network weights: %w", err)
	}
	return written + int64(4*len(weights)), nil
}

// Save writes the network to filePath, replacing any existing file.
func (n *FixedNetwork) Save(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create network file '%s': %w", filePath, err)
	}
	bw := bufio.NewWriter(file)
	if _, err := n.WriteTo(bw); err != nil {
		file.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("failed to write network file '%s': %w", filePath, err)
	}
	return file.Close()
}

// ReadFixedNetwork decodes a network written by WriteTo. It also accepts the legacy layout
// without the memory word, [in][hid][out][count][weights...], recognised by a fourth word
// greater than 1. Every failure wraps ErrLoadFailed.
func ReadFixedNetwork(r io.Reader) (*FixedNetwork, error) {
	br := bufio.NewReader(r)
	first, err := br.Peek(1)
	if err != nil {
		return nil, fmt.Errorf("%w: empty input: %v", ErrLoadFailed, err)
	}
	if first[0] == '{' {
		return nil, fmt.Errorf("%w: JSON network format is not supported", ErrLoadFailed)
	}

	var sizes [3]uint32
	if err := binary.Read(br, binary.LittleEndian, &sizes); err != nil {
		return nil, fmt.Errorf("%w: truncated header: %v", ErrLoadFailed, err)
	}
	in, hid, out := sizes[0], sizes[1], sizes[2]
	if in > maxLayerSize || hid > maxLayerSize || out > maxLayerSize {
		return nil, fmt.Errorf("%w: unreasonable sizes in=%d hid=%d out=%d", ErrLoadFailed, in, hid, out)
	}

	var fourth uint32
	if err := binary.Read(br, binary.LittleEndian, &fourth); err != nil {
		return nil, fmt.Errorf("%w: truncated header: %v", ErrLoadFailed, err)
	}
	hasMemory := false
	count := fourth
	if fourth <= 1 {
		hasMemory = fourth == 1
		if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
			return nil, fmt.Errorf("%w: truncated header: %v", ErrLoadFailed, err)
		}
	}

	full := uint64(in)*uint64(hid) + uint64(hid) + uint64(hid)*uint64(out) + uint64(out) + uint64(hid)*uint64(hid)
	if uint64(count) > 2*full || count > maxWeightCount {
		return nil, fmt.Errorf("%w: weight count %d exceeds %d", ErrLoadFailed, count, 2*full)
	}

	weights := make([]float32, count)
	if err := binary.Read(br, binary.LittleEndian, weights); err != nil {
		return nil, fmt.Errorf("%w: truncated weights: %v", ErrLoadFailed, err)
	}

	n := NewZeroFixedNetwork(int(in), int(hid), int(out))
	if hasMemory {
		n.useMemory = true
		n.weightsHH = make([]float32, int(hid)*int(hid))
		n.prevHidden = make([]float32, int(hid))
	}
	if err := n.SetWeights(weights); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return n, nil
}

// LoadFixedNetwork reads a network from filePath.
func LoadFixedNetwork(filePath string) (*FixedNetwork, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	defer file.Close()
	n, err := ReadFixedNetwork(file)
	if err != nil {
		return nil, fmt.Errorf("network file '%s': %w", filePath, err)
	}
	return n, nil
}
