package draw

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wahorvat/cuda-quantum/trace"
)

func TestDrawEmptyTrace(t *testing.T) {
	require.Equal(t, "<empty trace>", Draw(&trace.Trace{}))
}

func TestDrawBellWithSwap(t *testing.T) {
	tr := &trace.Trace{}
	tr.AppendInstruction(trace.Instruction{Name: "h", Targets: []trace.QuditInfo{trace.Qubit(0)}})
	tr.AppendInstruction(trace.Instruction{
		Name:     "x",
		Targets:  []trace.QuditInfo{trace.Qubit(1)},
		Controls: []trace.QuditInfo{trace.Qubit(0)},
	})
	tr.AppendInstruction(trace.Instruction{
		Name:    "swap",
		Targets: []trace.QuditInfo{trace.Qubit(0), trace.Qubit(1)},
	})

	expected := strings.Join([]string{
		"     ╭───╮        ",
		"q0 : ┤ h ├──●──╳─",
		"     ╰───╯╭─┴─╮ │ ",
		"q1 : ─────┤ x ├─╳─",
		"          ╰───╯   ",
		"",
	}, "\n")
	require.Equal(t, expected, Draw(tr))
}

func TestDrawLineCount(t *testing.T) {
	tr := &trace.Trace{}
	tr.AppendInstruction(trace.Instruction{Name: "h", Targets: []trace.QuditInfo{trace.Qubit(2)}})

	out := Draw(tr)
	// 2*Q + 1 rows plus the trailing newline.
	require.Len(t, strings.Split(out, "\n"), 2*3+1+1)
}

func TestDisjointSpansShareALayer(t *testing.T) {
	tr := &trace.Trace{}
	tr.AppendInstruction(trace.Instruction{Name: "h", Targets: []trace.QuditInfo{trace.Qubit(0)}})
	tr.AppendInstruction(trace.Instruction{Name: "h", Targets: []trace.QuditInfo{trace.Qubit(1)}})

	lines := strings.Split(Draw(tr), "\n")
	require.Equal(t, strings.Index(lines[1], "┤"), strings.Index(lines[3], "┤"))
}

func TestOverlappingSpansStack(t *testing.T) {
	tr := &trace.Trace{}
	tr.AppendInstruction(trace.Instruction{
		Name:     "x",
		Targets:  []trace.QuditInfo{trace.Qubit(2)},
		Controls: []trace.QuditInfo{trace.Qubit(0)},
	})
	tr.AppendInstruction(trace.Instruction{Name: "z", Targets: []trace.QuditInfo{trace.Qubit(1)}})

	lines := strings.Split(Draw(tr), "\n")
	xCol := strings.Index(lines[5], "┤")
	zCol := strings.Index(lines[3], "┤")
	require.Greater(t, zCol, xCol)
}

func TestControlInsideTargetSpanDrawsPlainBox(t *testing.T) {
	tr := &trace.Trace{}
	tr.AppendInstruction(trace.Instruction{
		Name:     "xx",
		Targets:  []trace.QuditInfo{trace.Qubit(0), trace.Qubit(2)},
		Controls: []trace.QuditInfo{trace.Qubit(1)},
	})

	out := Draw(tr)
	// Targets carry the prefix marker; the control sits inside the box.
	require.Contains(t, out, ">")
	require.Contains(t, out, "●")
}

func TestParameterizedLabel(t *testing.T) {
	tr := &trace.Trace{}
	tr.AppendInstruction(trace.Instruction{
		Name:    "rx",
		Targets: []trace.QuditInfo{trace.Qubit(0)},
		Params:  []float64{3.141592653589793},
	})

	require.Contains(t, Draw(tr), " rx(3.142) ")
}

func TestWrapLongCircuit(t *testing.T) {
	tr := &trace.Trace{}
	for i := 0; i < 20; i++ {
		tr.AppendInstruction(trace.Instruction{Name: "h", Targets: []trace.QuditInfo{trace.Qubit(0)}})
	}

	out := Draw(tr)
	require.Contains(t, out, strings.Repeat("#", 80))
	// Every row of the pre-wrap segment ends with the continuation marker.
	require.Equal(t, 3, strings.Count(out, "»"))
	// The wire-label prefix appears only in the first segment.
	require.Equal(t, 1, strings.Count(out, "q0 : "))
}

func TestMergeIdempotent(t *testing.T) {
	glyphs := []rune{
		wireLine, controlLine, wireControlCross, control,
		boxLeftWire, boxRightWire, boxTopControl, boxBottomControl,
		boxTopLeftCorner, boxTopRightCorner, boxBottomLeftCorner,
		boxBottomRightCorner, swapX,
	}
	for _, g := range glyphs {
		cell := g
		mergeCells(&cell, g)
		require.Equal(t, g, cell)
	}
}

func TestMergeBlankTakesIncoming(t *testing.T) {
	cell := ' '
	mergeCells(&cell, swapX)
	require.Equal(t, swapX, cell)
}

func TestMergeControlLine(t *testing.T) {
	cell := wireLine
	mergeCells(&cell, controlLine)
	require.Equal(t, wireControlCross, cell)

	cell = control
	mergeCells(&cell, controlLine)
	require.Equal(t, control, cell)

	cell = wireControlCross
	mergeCells(&cell, controlLine)
	require.Equal(t, wireControlCross, cell)

	cell = boxLeftWire
	mergeCells(&cell, controlLine)
	require.Equal(t, controlLine, cell)
}

func TestMergeWireCollapsesCorners(t *testing.T) {
	for _, g := range []rune{boxTopLeftCorner, boxTopRightCorner} {
		cell := wireLine
		mergeCells(&cell, g)
		require.Equal(t, boxBottomControl, cell)

		// Same result with the corner already in place.
		cell = g
		mergeCells(&cell, wireLine)
		require.Equal(t, boxBottomControl, cell)
	}
	for _, g := range []rune{boxBottomLeftCorner, boxBottomRightCorner} {
		cell := wireLine
		mergeCells(&cell, g)
		require.Equal(t, boxTopControl, cell)
	}
}

func TestMergeCornerPairsBecomeTees(t *testing.T) {
	cell := boxTopLeftCorner
	mergeCells(&cell, boxBottomLeftCorner)
	require.Equal(t, boxRightWire, cell)

	cell = boxBottomRightCorner
	mergeCells(&cell, boxTopRightCorner)
	require.Equal(t, boxLeftWire, cell)
}
