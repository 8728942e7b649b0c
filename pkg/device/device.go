// Package device resolves the compute device for a run from explicit
// configuration instead of process-wide environment variables.
package device

import (
	"fmt"

	"go.uber.org/zap"
)

// Kind is the device class.
type Kind int

const (
	CPU Kind = iota
	GPU
)

func (k Kind) String() string {
	if k == GPU {
		return "GPU"
	}
	return "CPU"
}

// Device identifies where tensors live.
type Device struct {
	Kind  Kind
	Index int
}

func (d Device) String() string {
	if d.Kind == CPU {
		return "CPU"
	}
	return fmt.Sprintf("GPU:%d", d.Index)
}

// Available reports the accelerators this build can drive. There is no
// accelerator backend, so it is always empty.
func Available() []Device {
	return nil
}

// Select returns the device for index: negative selects the CPU, otherwise
// the accelerator with that index when available, falling back to the CPU
// with a warning.
func Select(index int, logger *zap.Logger) Device {
	if logger == nil {
		logger = zap.NewNop()
	}
	if index < 0 {
		logger.Info("using device", zap.Stringer("device", Device{Kind: CPU}))
		return Device{Kind: CPU}
	}

	for _, d := range Available() {
		if d.Kind == GPU && d.Index == index {
			logger.Info("using device", zap.Stringer("device", d))
			return d
		}
	}

	logger.Warn("accelerator not available, falling back to CPU", zap.Int("gpu", index))
	return Device{Kind: CPU}
}
