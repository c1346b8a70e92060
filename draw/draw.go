// Package draw renders an instruction trace as a UTF-8 circuit diagram.
// The layout algorithm is the layered schedule from tweedledum's
// string_utf8 visualization: instructions are packed into the leftmost
// layer whose wire span is still free, then drawn onto a glyph grid whose
// cells combine through a deterministic merge lattice.
package draw

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/wahorvat/cuda-quantum/trace"
)

const maxColumns = 80

type diagram struct {
	numQubits int
	height    int
	width     int
	rows      [][]rune
}

func newDiagram(numQubits int) *diagram {
	return &diagram{
		numQubits: numQubits,
		height:    2*numQubits + 1,
	}
}

// setWidth allocates the grid: even rows blank, odd rows pre-filled with
// the wire glyph.
func (d *diagram) setWidth(width int) {
	d.width = width
	d.rows = make([][]rune, d.height)
	for r := range d.rows {
		d.rows[r] = make([]rune, width)
		for c := range d.rows[r] {
			d.rows[r][c] = ' '
		}
	}
	for i := 0; i < d.numQubits; i++ {
		row := d.rows[2*i+1]
		for c := range row {
			row[c] = wireLine
		}
	}
}

// toRow maps a wire to its grid row; wire indices beyond the qubit count
// land on the last-but-one row.
func (d *diagram) toRow(wire int) int {
	if wire < d.numQubits {
		return 2*wire + 1
	}
	return d.height - 2
}

func (d *diagram) at(row, col int) *rune {
	return &d.rows[row][col]
}

// shape is one drawable trace entry.
type shape interface {
	width() int
	setCols(leftCol int)
	draw(d *diagram)
}

// boxBase carries the placement state shared by the box shapes.
type boxBase struct {
	wires       []int
	numTargets  int
	numControls int
	label       string
	leftCol     int
	rightCol    int
	boxTop      int
	boxMid      int
	boxBot      int
}

func (b *boxBase) place(leftCol, width int) {
	b.leftCol = leftCol
	b.rightCol = leftCol + width - 1
}

func (b *boxBase) setVerticalPositions(d *diagram, top, bot int) {
	b.boxTop = d.toRow(top) - 1
	b.boxBot = d.toRow(bot) + 1
	b.boxMid = (b.boxTop + b.boxBot) / 2
}

func (b *boxBase) drawFrame(d *diagram) {
	// Top and bottom edges.
	for i := b.leftCol + 1; i < b.rightCol; i++ {
		mergeCells(d.at(b.boxTop, i), wireLine)
		mergeCells(d.at(b.boxBot, i), wireLine)
	}
	// Sides; the interior is cleared so wires do not show through.
	for i := b.boxTop + 1; i < b.boxBot; i++ {
		*d.at(i, b.leftCol) = controlLine
		*d.at(i, b.rightCol) = controlLine
		for j := b.leftCol + 1; j < b.rightCol; j++ {
			*d.at(i, j) = ' '
		}
	}
	// Corners.
	mergeCells(d.at(b.boxTop, b.leftCol), boxTopLeftCorner)
	mergeCells(d.at(b.boxBot, b.leftCol), boxBottomLeftCorner)
	mergeCells(d.at(b.boxTop, b.rightCol), boxTopRightCorner)
	mergeCells(d.at(b.boxBot, b.rightCol), boxBottomRightCorner)
}

func (b *boxBase) drawTargets(d *diagram) {
	for _, wire := range b.wires[:b.numTargets] {
		row := d.toRow(wire)
		*d.at(row, b.leftCol) = boxLeftWire
		*d.at(row, b.rightCol) = boxRightWire
		if b.numControls > 0 {
			*d.at(row, b.leftCol+1) = '>'
		}
	}
}

func (b *boxBase) drawLabelAt(d *diagram, start int) {
	col := start
	for _, r := range b.label {
		*d.at(b.boxMid, col) = r
		col++
	}
}

// box is the plain shape used when a control wire lies strictly inside the
// target span; controls are drawn inside the box with a '>' marker in
// front of the targets.
type box struct {
	boxBase
}

func (b *box) width() int {
	w := runewidth.StringWidth(b.label) + 2
	if b.numControls > 0 {
		w++
	}
	return w
}

func (b *box) setCols(leftCol int) {
	b.place(leftCol, b.width())
}

func (b *box) draw(d *diagram) {
	min, max := minMaxWires(b.wires)
	b.setVerticalPositions(d, min, max)
	b.drawFrame(d)
	b.drawTargets(d)
	for _, wire := range b.wires[b.numTargets : b.numTargets+b.numControls] {
		row := d.toRow(wire)
		*d.at(row, b.leftCol) = boxLeftWire
		*d.at(row, b.leftCol+1) = control
		*d.at(row, b.rightCol) = boxRightWire
	}
	start := b.leftCol + 1
	if b.numControls > 0 {
		start++
	}
	b.drawLabelAt(d, start)
}

// controlledBox sits on the target wires only; controls project vertically
// to the nearest box edge.
type controlledBox struct {
	boxBase
}

func (b *controlledBox) width() int {
	return runewidth.StringWidth(b.label) + 2
}

func (b *controlledBox) setCols(leftCol int) {
	b.place(leftCol, b.width())
}

func (b *controlledBox) draw(d *diagram) {
	min, max := minMaxWires(b.wires[:b.numTargets])
	b.setVerticalPositions(d, min, max)
	b.drawFrame(d)
	b.drawTargets(d)
	midCol := (b.leftCol + b.rightCol) / 2
	for _, wire := range b.wires[b.numTargets : b.numTargets+b.numControls] {
		row := d.toRow(wire)
		*d.at(row, midCol) = control
		if row < b.boxTop {
			for i := row + 1; i < b.boxTop; i++ {
				mergeCells(d.at(i, midCol), controlLine)
			}
			*d.at(b.boxTop, midCol) = boxTopControl
		} else {
			for i := b.boxBot + 1; i < row; i++ {
				mergeCells(d.at(i, midCol), controlLine)
			}
			*d.at(b.boxBot, midCol) = boxBottomControl
		}
	}
	b.drawLabelAt(d, b.leftCol+1)
}

// diagramSwap draws two crossing glyphs joined by a control-line segment.
type diagramSwap struct {
	wires       []int
	numControls int
	leftCol     int
}

func (s *diagramSwap) width() int {
	return 3
}

func (s *diagramSwap) setCols(leftCol int) {
	s.leftCol = leftCol
}

func (s *diagramSwap) draw(d *diagram) {
	midCol := s.leftCol + 1
	targetRow0 := d.toRow(s.wires[0])
	targetRow1 := d.toRow(s.wires[1])
	*d.at(targetRow0, midCol) = swapX
	for i := targetRow0 + 1; i < targetRow1; i++ {
		mergeCells(d.at(i, midCol), controlLine)
	}
	*d.at(targetRow1, midCol) = swapX
	for _, wire := range s.wires[2 : 2+s.numControls] {
		row := d.toRow(wire)
		*d.at(row, midCol) = control
		if row < targetRow0 {
			for i := row + 1; i < targetRow0; i++ {
				mergeCells(d.at(i, midCol), controlLine)
			}
		} else {
			for i := targetRow1 + 1; i < row; i++ {
				mergeCells(d.at(i, midCol), controlLine)
			}
		}
	}
}

func minMaxWires(wires []int) (int, int) {
	min, max := wires[0], wires[0]
	for _, w := range wires[1:] {
		if w < min {
			min = w
		}
		if w > max {
			max = w
		}
	}
	return min, max
}

func quditIDs(qudits []trace.QuditInfo) []int {
	ids := make([]int, 0, len(qudits))
	for _, q := range qudits {
		ids = append(ids, q.ID)
	}
	return ids
}

// instructionLabel formats the operation name, with parameters at 4
// significant digits joined by commas, padded by one space on each side.
func instructionLabel(inst trace.Instruction) (name, label string) {
	name = inst.Name
	if len(inst.Params) > 0 {
		parts := make([]string, len(inst.Params))
		for i, p := range inst.Params {
			parts[i] = strconv.FormatFloat(p, 'g', 4, 64)
		}
		name = fmt.Sprintf("%s(%s)", inst.Name, strings.Join(parts, ","))
	}
	return name, " " + name + " "
}

// Draw renders the trace as a multiline diagram, wrapping once the
// accumulated width reaches the column limit.
func Draw(t *trace.Trace) string {
	insts := t.Instructions()
	if len(insts) == 0 {
		return "<empty trace>"
	}

	d := newDiagram(t.NumQudits())

	// Separate the instructions into layers. Each layer holds entries whose
	// wire spans are pairwise disjoint, so they share one diagram column.
	var shapes []shape
	var layers [][]int
	var layerWidth []int
	wireLayer := make([]int, d.numQubits)
	for i := range wireLayer {
		wireLayer[i] = -1
	}

	for ref, inst := range insts {
		wires := quditIDs(inst.Targets)
		sort.Ints(wires)

		minTarget := wires[0]
		maxTarget := wires[len(wires)-1]
		minWire := minTarget
		maxWire := maxTarget

		overlap := false
		for _, ctrl := range quditIDs(inst.Controls) {
			wires = append(wires, ctrl)
			if ctrl > minTarget && ctrl < maxTarget {
				overlap = true
			}
			if ctrl < minWire {
				minWire = ctrl
			}
			if ctrl > maxWire {
				maxWire = ctrl
			}
		}

		name, label := instructionLabel(inst)

		var sh shape
		switch {
		case overlap:
			sh = &box{boxBase{
				wires:       wires,
				numTargets:  len(inst.Targets),
				numControls: len(inst.Controls),
				label:       label,
			}}
		case name == "swap":
			sh = &diagramSwap{wires: wires, numControls: len(inst.Controls)}
		default:
			sh = &controlledBox{boxBase{
				wires:       wires,
				numTargets:  len(inst.Targets),
				numControls: len(inst.Controls),
				label:       label,
			}}
		}

		layer := -1
		for i := minWire; i <= maxWire; i++ {
			if wireLayer[i] > layer {
				layer = wireLayer[i]
			}
		}
		layer++

		if layer == len(layers) {
			layers = append(layers, nil)
			layerWidth = append(layerWidth, 0)
		}
		layers[layer] = append(layers[layer], ref)
		for i := minWire; i <= maxWire; i++ {
			wireLayer[i] = layer
		}
		if sh.width() > layerWidth[layer] {
			layerWidth[layer] = sh.width()
		}
		shapes = append(shapes, sh)
	}

	// Wire labels, emitted only on the first segment.
	prefixSize := 0
	prefix := make([]string, d.height)
	for i := 0; i < d.numQubits; i++ {
		row := d.toRow(i)
		prefix[row] = fmt.Sprintf("q%d : ", i)
		if w := runewidth.StringWidth(prefix[row]); w > prefixSize {
			prefixSize = w
		}
	}

	// Place shapes within their layer column and pick the wrap points.
	currWidth := 0
	accWidth := prefixSize
	var cuts []int
	for layer := range layers {
		for _, ref := range layers[layer] {
			shapes[ref].setCols(currWidth + (layerWidth[layer]-shapes[ref].width())/2)
		}
		if accWidth+layerWidth[layer] >= maxColumns-1 {
			cuts = append(cuts, currWidth)
			accWidth = 0
		}
		currWidth += layerWidth[layer]
		accWidth += layerWidth[layer]
	}
	cuts = append(cuts, currWidth)
	d.setWidth(currWidth)

	for _, sh := range shapes {
		sh.draw(d)
	}

	var sb strings.Builder
	sb.Grow(currWidth * d.height * 4)
	start := 0
	for i, cut := range cuts {
		if i > 0 {
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat("#", maxColumns))
			sb.WriteString("\n\n")
		}
		for row := 0; row < d.height; row++ {
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%*s", prefixSize, prefix[row]))
			}
			for col := start; col < cut; col++ {
				sb.WriteString(renderCell(d.rows[row][col]))
			}
			if i+1 < len(cuts) {
				sb.WriteString("»")
			}
			sb.WriteByte('\n')
		}
		start = cut
	}
	return sb.String()
}
