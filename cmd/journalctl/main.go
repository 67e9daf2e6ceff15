// Command journalctl drives a transaction journal against the
// in-memory collaborators from the command line: it runs a fixed
// demo workload against a scratch table and can dump the table's
// current rows to an .xlsx workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/kasuganosora/sqlexec/internal/backingstore"
	"github.com/kasuganosora/sqlexec/internal/backingstore/badgerstore"
	"github.com/kasuganosora/sqlexec/internal/domain"
	"github.com/kasuganosora/sqlexec/internal/indexstore"
	"github.com/kasuganosora/sqlexec/internal/journal"
	"github.com/kasuganosora/sqlexec/internal/rowcache"
)

func main() {
	var (
		backend  = flag.String("backend", "badger", "backing store to commit into: badger")
		dataDir  = flag.String("data-dir", "", "badger data directory (empty = in-memory)")
		dumpPath = flag.String("dump", "", "path to write an .xlsx dump of the demo table after commit (optional)")
	)
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "journalctl: logger init:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(*backend, *dataDir, *dumpPath, log); err != nil {
		log.Error("journalctl failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(backend, dataDir, dumpPath string, log *zap.Logger) error {
	if backend != "badger" {
		return fmt.Errorf("unsupported backend %q", backend)
	}

	pk := domain.IndexSchema{Name: "id", Columns: []string{"id"}, Unique: true}
	schema := domain.NewTableSchema("people", &pk)

	cache := rowcache.New()
	indices := indexstore.New()
	indices.Register("people", pk, indexstore.KindHash)

	j := journal.New([]domain.TableSchema{schema}, cache, indices)

	rows := []domain.Row{
		&demoRow{id: 1, name: "ada"},
		&demoRow{id: 2, name: "grace"},
	}
	if err := j.Insert("people", rows); err != nil {
		return fmt.Errorf("insert: %w", err)
	}

	if err := j.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	store, err := badgerstore.Open(dataDir, log)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	if err := backingstore.ApplyAll(ctx, store, j.GetDiff()); err != nil {
		return fmt.Errorf("apply to backing store: %w", err)
	}
	log.Info("committed demo workload", zap.String("journal_id", j.ID().String()))

	if dumpPath != "" {
		return dumpTable(dumpPath, j.GetTableRows("people", nil))
	}
	return nil
}

// demoRow is a minimal domain.Row used only by this command's fixed
// demo workload.
type demoRow struct {
	id   int64
	name string
}

func (r *demoRow) ID() domain.RowID         { return domain.RowID(r.id) }
func (r *demoRow) SetRowID(id domain.RowID) { r.id = int64(id) }
func (r *demoRow) KeyOfIndex(name string) domain.IndexKey {
	if name == "id" {
		return domain.Int64Key(r.id)
	}
	return domain.NullKey
}

func (r *demoRow) Encode() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"id":%d,"name":%q}`, r.id, r.name)), nil
}

func dumpTable(path string, rows []domain.Row) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	f.SetCellValue(sheet, "A1", "row_id")
	for i, row := range rows {
		if row == nil {
			continue
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetCellValue(sheet, cell, int64(row.ID())); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
