package writer

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/multierr"

	"github.com/angelmondragon/olist-etl/internal/analytics/types"
	pkgerrors "github.com/angelmondragon/olist-etl/pkg/errors"
	pkgtypes "github.com/angelmondragon/olist-etl/pkg/types"
)

// maxSheetName is the longest sheet name a workbook accepts.
const maxSheetName = 31

const defaultSheet = "Sheet1"

// SheetName returns the workbook sheet name of a table.
func SheetName(table types.Table) string {
	name := string(table.Name())
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}

// WriteWorkbook writes every table to one xlsx workbook, one sheet per table
// with the column names on the first row.
func (w *Writer) WriteWorkbook(ctx context.Context, path string, src Source) (err error) {
	if src == nil {
		return errors.New("source is required")
	}
	f := excelize.NewFile()
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	tables := src.Tables()
	seen := make(map[string]struct{}, len(tables))
	for _, table := range tables {
		sheet := SheetName(table)
		if _, dup := seen[sheet]; dup {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("sheet name %q used twice", sheet))
		}
		seen[sheet] = struct{}{}
		if err := writeSheet(f, sheet, table); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write sheet "+sheet)
		}
	}
	if len(tables) > 0 {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "drop default sheet")
		}
		f.SetActiveSheet(0)
	}
	if err := f.SaveAs(path); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save workbook "+path)
	}
	w.logg.Info(w.logg.WithFields(ctx, map[string]any{"path": path, "sheets": len(tables)}), "workbook exported")
	return nil
}

func writeSheet(f *excelize.File, sheet string, table types.Table) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	header := make([]any, 0, len(table.Columns()))
	for _, column := range table.Columns() {
		header = append(header, column)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, values := range table.Values() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := make([]any, len(values))
		for j, value := range values {
			row[j] = cellValue(value)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// cellValue converts typed cells to values excelize stores natively.
func cellValue(value any) any {
	switch v := value.(type) {
	case pkgtypes.Money:
		return v.InexactFloat64()
	case *float64:
		if v == nil {
			return nil
		}
		return *v
	default:
		return value
	}
}
