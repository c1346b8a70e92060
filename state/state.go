// Package state is the boundary between the argument materialization core
// and the quantum state backends. The core never talks to a simulator
// directly; it reads amplitudes through SimulationState and receives them
// as a relocatable StateData block.
package state

import (
	"fmt"
	"unsafe"
)

// Precision of the simulation amplitudes.
type Precision int

const (
	FP32 Precision = iota
	FP64
)

func (p Precision) String() string {
	if p == FP32 {
		return "fp32"
	}
	return "fp64"
}

// Sizes of one complex amplitude at each precision.
const (
	Complex64Size  = int64(unsafe.Sizeof(complex64(0)))
	Complex128Size = int64(unsafe.Sizeof(complex128(0)))
)

// Tensor describes the backend's amplitude storage.
type Tensor struct {
	Data        unsafe.Pointer
	NumElements int64
	ElementSize int64 // bytes per element
}

// SimulationState is implemented by the simulator backends.
type SimulationState interface {
	IsOnGPU() bool
	Precision() Precision
	Tensor() Tensor
	// ToHost copies numElements amplitudes into the host buffer at dst.
	ToHost(dst unsafe.Pointer, numElements int64)
}

// State is the opaque handle a kernel argument of state type points to.
type State struct {
	sim SimulationState
}

func NewState(sim SimulationState) *State {
	return &State{sim: sim}
}

func (s *State) Simulation() SimulationState {
	return s.sim
}

// StateData is a host-resident view of a state's amplitudes. The Data
// pointer stays valid until Release is called; callers must fully consume
// the buffer before releasing.
type StateData struct {
	Data        unsafe.Pointer
	Size        int64 // element count
	ElementSize int64 // bytes per element
	release     func()
}

// Release returns ownership of the backing buffer. Safe to call more than
// once; only the first call has an effect.
func (d *StateData) Release() {
	if d.release != nil {
		d.release()
		d.release = nil
	}
}

// ReadStateData extracts a state's amplitudes into a host-resident block.
// GPU-resident states are copied into a fresh host buffer owned by the
// returned StateData; host-resident states alias the backend's own tensor
// data and Release is a no-op.
func ReadStateData(s *State) StateData {
	sim := s.Simulation()
	precision := sim.Precision()
	tensor := sim.Tensor()
	numElements := tensor.NumElements
	elementSize := tensor.ElementSize

	if sim.IsOnGPU() {
		if numElements == 0 {
			return StateData{Size: 0, ElementSize: elementSize}
		}
		if precision == FP32 {
			if elementSize != Complex64Size {
				panic(fmt.Sprintf("incorrect complex64 element size: %d", elementSize))
			}
			hostData := make([]complex64, numElements)
			sim.ToHost(unsafe.Pointer(&hostData[0]), numElements)
			return StateData{
				Data:        unsafe.Pointer(&hostData[0]),
				Size:        numElements,
				ElementSize: elementSize,
				// The closure keeps hostData reachable until released.
				release: func() { hostData = nil },
			}
		}
		if elementSize != Complex128Size {
			panic(fmt.Sprintf("incorrect complex128 element size: %d", elementSize))
		}
		hostData := make([]complex128, numElements)
		sim.ToHost(unsafe.Pointer(&hostData[0]), numElements)
		return StateData{
			Data:        unsafe.Pointer(&hostData[0]),
			Size:        numElements,
			ElementSize: elementSize,
			release:     func() { hostData = nil },
		}
	}
	return StateData{
		Data:        tensor.Data,
		Size:        numElements,
		ElementSize: elementSize,
	}
}
