package writer

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/angelmondragon/olist-etl/internal/analytics/types"
	pkgerrors "github.com/angelmondragon/olist-etl/pkg/errors"
	"github.com/angelmondragon/olist-etl/pkg/logger"
)

// Source is the set of finished tables to export.
type Source interface {
	Tables() []types.Table
}

// Writer exports result tables to files.
type Writer struct {
	logg *logger.Logger
}

// New creates a writer. A nil logger disables logging.
func New(logg *logger.Logger) *Writer {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Writer{logg: logg}
}

// WriteJSON writes {dir}/{name}.json for every table and returns the paths.
func (w *Writer) WriteJSON(ctx context.Context, dir string, src Source) ([]string, error) {
	return w.writeEach(ctx, dir, "json", src, func(f *os.File, table types.Table) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(table)
	})
}

// WriteCSV writes {dir}/{name}.csv with a header row for every table.
func (w *Writer) WriteCSV(ctx context.Context, dir string, src Source) ([]string, error) {
	return w.writeEach(ctx, dir, "csv", src, func(f *os.File, table types.Table) error {
		cw := csv.NewWriter(f)
		if err := cw.Write(table.Columns()); err != nil {
			return err
		}
		if err := cw.WriteAll(table.Records()); err != nil {
			return err
		}
		return cw.Error()
	})
}

func (w *Writer) writeEach(ctx context.Context, dir, ext string, src Source, encode func(*os.File, types.Table) error) ([]string, error) {
	if src == nil {
		return nil, errors.New("source is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create output directory")
	}
	tables := src.Tables()
	paths := make([]string, 0, len(tables))
	for _, table := range tables {
		path := filepath.Join(dir, fmt.Sprintf("%s.%s", table.Name(), ext))
		if err := writeFile(path, table, encode); err != nil {
			return paths, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write "+path)
		}
		paths = append(paths, path)
	}
	w.logg.Info(w.logg.WithFields(ctx, map[string]any{"dir": dir, "format": ext, "files": len(paths)}), "results exported")
	return paths, nil
}

func writeFile(path string, table types.Table, encode func(*os.File, types.Table) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	return encode(f, table)
}
