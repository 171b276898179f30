package models

// Table is an ordered sequence of rows sharing a fixed column set.
// Columns keep their key discovery order; metadata columns are
// appended last by the transformer. A table is built once per run,
// written once, then discarded.
type Table struct {
	columns []string
	rows    [][]string
}

// NewTable creates an empty table with the given column order.
func NewTable(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{
		columns: cols,
		rows:    make([][]string, 0),
	}
}

// Columns returns the column names in stable order.
func (t *Table) Columns() []string {
	return t.columns
}

// Rows returns all rows. Each row has exactly len(Columns()) cells.
func (t *Table) Rows() [][]string {
	return t.rows
}

// Row returns the i-th row.
func (t *Table) Row(i int) []string {
	return t.rows[i]
}

// AppendRow appends a row. The caller must supply one cell per column.
func (t *Table) AppendRow(row []string) {
	t.rows = append(t.rows, row)
}

// RowCount returns the number of data rows (the header is not a row).
func (t *Table) RowCount() int {
	return len(t.rows)
}

// ColumnCount returns the number of columns including metadata columns.
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// Cell returns the value at row i, column name col. The second return
// is false when the column does not exist.
func (t *Table) Cell(i int, col string) (string, bool) {
	for j, c := range t.columns {
		if c == col {
			return t.rows[i][j], true
		}
	}
	return "", false
}
