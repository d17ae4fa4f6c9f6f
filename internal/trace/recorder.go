// Package trace records every executed decode command into a SQLite file.
package trace

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fatih/structs"
	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/tamzrod/vdec-manager/internal/vdec"
)

// TableName is the table every trace row lands in.
const TableName = "commands"

// DefaultBatchSize is used when Config.BatchSize is zero.
const DefaultBatchSize = 1000

// Row is the stored form of a vdec.Trace. Field names become column names.
// Times are Unix nanoseconds.
type Row struct {
	ID          string
	Instance    int
	Op          string
	Result      string
	ResultCode  int32
	Enqueued    int64
	Started     int64
	Finished    int64
	Resubmitted bool
	TimedOut    bool
	Sweep       bool
}

// RowOf converts a trace into its stored form.
func RowOf(t vdec.Trace) Row {
	return Row{
		ID:          t.ID,
		Instance:    t.Instance,
		Op:          t.Op.String(),
		Result:      t.Result.String(),
		ResultCode:  int32(t.Result),
		Enqueued:    t.Enqueued.UnixNano(),
		Started:     t.Started.UnixNano(),
		Finished:    t.Finished.UnixNano(),
		Resubmitted: t.Resubmitted,
		TimedOut:    t.TimedOut,
		Sweep:       t.Sweep,
	}
}

type Config struct {
	Dir       string
	BatchSize int
	Logger    *slog.Logger
}

// Recorder buffers rows and writes them in one transaction per batch.
// It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	db      *sql.DB
	path    string
	batch   int
	pending []Row
	closed  bool
	log     *slog.Logger
}

// New creates <dir>/vdec_trace_<xid>.sqlite3 and the commands table.
// Buffered rows are flushed on atexit.
func New(cfg Config) (*Recorder, error) {
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	path := filepath.Join(cfg.Dir, "vdec_trace_"+xid.New().String()+".sqlite3")
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("trace: file %s already exists", path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("trace: open: %w", err)
	}
	// one connection keeps BEGIN/COMMIT on the same session
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableSQL()); err != nil {
		db.Close()
		return nil, fmt.Errorf("trace: create table: %w", err)
	}

	r := &Recorder{
		db:    db,
		path:  path,
		batch: cfg.BatchSize,
		log:   cfg.Logger,
	}
	r.log.Info("trace database created", "path", path)

	atexit.Register(func() {
		if err := r.Flush(); err != nil {
			r.log.Error("trace flush at exit failed", "err", err)
		}
	})

	return r, nil
}

// Path returns the database file.
func (r *Recorder) Path() string { return r.path }

// Record implements vdec.Recorder. Write errors are logged, never returned,
// so a full disk cannot stall the dispatcher.
func (r *Recorder) Record(t vdec.Trace) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.pending = append(r.pending, RowOf(t))
	if len(r.pending) >= r.batch {
		if err := r.flushLocked(); err != nil {
			r.log.Error("trace flush failed", "err", err, "dropped", len(r.pending))
			r.pending = nil
		}
	}
}

// Flush writes all buffered rows.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	return r.flushLocked()
}

func (r *Recorder) flushLocked() error {
	if len(r.pending) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("trace: begin: %w", err)
	}

	stmt, err := tx.Prepare(insertSQL())
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("trace: prepare: %w", err)
	}
	defer stmt.Close()

	for _, row := range r.pending {
		if _, err := stmt.Exec(structs.Values(row)...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("trace: insert %s: %w", row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("trace: commit: %w", err)
	}
	r.pending = nil
	return nil
}

// Close flushes and closes the database. Later Records are ignored.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return errors.Join(r.flushLocked(), r.db.Close())
}

func createTableSQL() string {
	fields := strings.Join(structs.Names(Row{}), ", \n\t")
	return `CREATE TABLE ` + TableName + ` (` + "\n\t" + fields + "\n" + `);`
}

func insertSQL() string {
	n := structs.Names(Row{})
	for i := range n {
		n[i] = "?"
	}
	return "INSERT INTO " + TableName + " VALUES (" + strings.Join(n, ", ") + ")"
}
