package entity

import (
	"sort"

	"github.com/pkg/errors"
)

// Prediction сырой результат модели: индексы меток построчно и форма (H, W).
type Prediction struct {
	Indices []int32
	Height  int
	Width   int
}

// LabelGrid сетка индексов меток размером Height x Width.
// После создания не изменяется, на каждый инференс создаётся новая.
type LabelGrid struct {
	table   *LabelTable
	indices []int32
	height  int
	width   int
}

// NewLabelGrid проверяет форму и индексы и создаёт сетку.
// Каждый индекс обязан быть валидным для table.
func NewLabelGrid(table *LabelTable, indices []int32, height, width int) (*LabelGrid, error) {
	if height <= 0 || width <= 0 {
		return nil, errors.Wrapf(ErrInference, "invalid grid shape %dx%d", height, width)
	}
	if len(indices) != height*width {
		return nil, errors.Wrapf(ErrInference, "grid shape %dx%d does not match %d values", height, width, len(indices))
	}
	n := table.Len()
	for i, v := range indices {
		if v < 0 || int(v) >= n {
			return nil, errors.Wrapf(ErrIndexOutOfRange, "label index %d at offset %d, table has %d labels", v, i, n)
		}
	}

	data := make([]int32, len(indices))
	copy(data, indices)
	return &LabelGrid{table: table, indices: data, height: height, width: width}, nil
}

// NewLabelGridFromPrediction создаёт сетку из ответа модели.
func NewLabelGridFromPrediction(table *LabelTable, p *Prediction) (*LabelGrid, error) {
	if p == nil {
		return nil, errors.Wrap(ErrInference, "empty prediction")
	}
	return NewLabelGrid(table, p.Indices, p.Height, p.Width)
}

// Height количество строк.
func (g *LabelGrid) Height() int { return g.height }

// Width количество столбцов.
func (g *LabelGrid) Width() int { return g.width }

// Table таблица меток, действовавшая при создании сетки.
func (g *LabelGrid) Table() *LabelTable { return g.table }

// IndexAt возвращает индекс метки в ячейке (row, col).
func (g *LabelGrid) IndexAt(row, col int) (int, error) {
	if row < 0 || row >= g.height || col < 0 || col >= g.width {
		return 0, errors.Wrapf(ErrIndexOutOfRange, "cell (%d, %d) outside %dx%d grid", row, col, g.height, g.width)
	}
	return int(g.indices[row*g.width+col]), nil
}

// LabelAt возвращает имя метки в ячейке (row, col).
func (g *LabelGrid) LabelAt(row, col int) (string, error) {
	idx, err := g.IndexAt(row, col)
	if err != nil {
		return "", err
	}
	name, _ := g.table.Name(idx)
	return name, nil
}

// UniqueIndices возвращает различные индексы сетки по возрастанию.
func (g *LabelGrid) UniqueIndices() []int {
	seen := make(map[int32]struct{})
	out := make([]int, 0)
	for _, v := range g.indices {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, int(v))
	}
	sort.Ints(out)
	return out
}

// UniqueLabels возвращает имена меток, присутствующих в сетке.
// Порядок определяется индексом, а не именем.
func (g *LabelGrid) UniqueLabels() []string {
	indices := g.UniqueIndices()
	out := make([]string, 0, len(indices))
	for _, idx := range indices {
		name, _ := g.table.Name(idx)
		out = append(out, name)
	}
	return out
}

// Each обходит ячейки построчно.
func (g *LabelGrid) Each(fn func(row, col, index int)) {
	for i, v := range g.indices {
		fn(i/g.width, i%g.width, int(v))
	}
}
