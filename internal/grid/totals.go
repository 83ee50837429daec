package grid

import (
	"github.com/hourdeck/hourdeck/internal/domain"
)

// Totals is the derived sum view of the grid. It is recomputed in full after
// every bulk load and every committed reconciliation, including deletes;
// there is no incremental decrement path that could drift.
type Totals struct {
	ByCol map[int]float64
	ByRow map[int]float64
	Grand float64
}

// ColTotal returns the total for a column, 0 if the column has no cells.
func (t Totals) ColTotal(col int) float64 { return t.ByCol[col] }

// RowTotal returns the total for a row, 0 if the row has no cells.
func (t Totals) RowTotal(row int) float64 { return t.ByRow[row] }

// ComputeTotals sums every cell's hours per column, per row, and overall.
// Pure function of the cell store; blank intersections contribute nothing.
func ComputeTotals(cells map[CellKey]*domain.TimeCell) Totals {
	t := Totals{
		ByCol: make(map[int]float64),
		ByRow: make(map[int]float64),
	}
	for key, cell := range cells {
		t.ByCol[key.Col] += cell.Hours
		t.ByRow[key.Row] += cell.Hours
		t.Grand += cell.Hours
	}
	return t
}
