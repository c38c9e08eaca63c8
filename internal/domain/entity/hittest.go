package entity

import "math"

// HitTest переводит нормализованную точку касания в ячейку сетки.
//
// X соответствует столбцу (ширине), Y строке (высоте). Точки вне [0, 1]
// отклоняются: ok == false, ошибки нет.
func (g *LabelGrid) HitTest(nx, ny float64) (row, col int, ok bool) {
	if g == nil || !inUnit(nx) || !inUnit(ny) {
		return 0, 0, false
	}
	col = int(math.Round(nx * float64(g.width-1)))
	row = int(math.Round(ny * float64(g.height-1)))
	return row, col, true
}

// LabelNameAt возвращает метку под точкой касания.
func (g *LabelGrid) LabelNameAt(nx, ny float64) (string, bool) {
	row, col, ok := g.HitTest(nx, ny)
	if !ok {
		return "", false
	}
	name, err := g.LabelAt(row, col)
	if err != nil {
		return "", false
	}
	return name, true
}

// inUnit ложно и для NaN.
func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
