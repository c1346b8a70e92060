// Package trace models the ordered gate-application log the execution
// manager produces during kernel tracing. A Trace can be serialized to
// msgpack so one process can capture it and another render it.
package trace

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// QuditInfo identifies a quantum digit with a declared level count.
type QuditInfo struct {
	Levels int `msgpack:"levels"`
	ID     int `msgpack:"id"`
}

// Qubit returns the QuditInfo for a two-level qudit.
func Qubit(id int) QuditInfo {
	return QuditInfo{Levels: 2, ID: id}
}

// Instruction is one gate application: operation name, ordered targets,
// ordered controls, and zero or more real parameters.
type Instruction struct {
	Name     string      `msgpack:"name"`
	Targets  []QuditInfo `msgpack:"targets"`
	Controls []QuditInfo `msgpack:"controls"`
	Params   []float64   `msgpack:"params"`
}

// Trace is an ordered, finite sequence of instructions. The qudit count is
// deduced from the highest qudit id seen.
type Trace struct {
	instructions []Instruction
	numQudits    int
}

// AppendInstruction records one gate application and widens the qudit
// count to cover every qudit the instruction touches.
func (t *Trace) AppendInstruction(inst Instruction) {
	for _, q := range inst.Targets {
		if q.ID+1 > t.numQudits {
			t.numQudits = q.ID + 1
		}
	}
	for _, q := range inst.Controls {
		if q.ID+1 > t.numQudits {
			t.numQudits = q.ID + 1
		}
	}
	t.instructions = append(t.instructions, inst)
}

func (t *Trace) NumQudits() int {
	return t.numQudits
}

func (t *Trace) Instructions() []Instruction {
	return t.instructions
}

// wire form; the qudit count is re-derived on decode rather than trusted.
type traceWire struct {
	Instructions []Instruction `msgpack:"instructions"`
}

// Encode writes the trace to w in msgpack form.
func Encode(w io.Writer, t *Trace) error {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(traceWire{Instructions: t.instructions}); err != nil {
		return fmt.Errorf("encode trace: %w", err)
	}
	return nil
}

// Decode reads a msgpack trace from r.
func Decode(r io.Reader) (*Trace, error) {
	var wire traceWire
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	t := &Trace{}
	for _, inst := range wire.Instructions {
		t.AppendInstruction(inst)
	}
	return t, nil
}
