// Package monitor serves a read-only JSON view of a running manager.
package monitor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/tamzrod/vdec-manager/internal/power"
	"github.com/tamzrod/vdec-manager/internal/vdec"
)

// Source is what the monitor reads from.
type Source interface {
	Stats() vdec.Stats
	Slots() []vdec.SlotState
}

// PowerSource is optional.
type PowerSource interface {
	Snapshot() power.Snapshot
}

const (
	defaultProfile = time.Second
	maxProfile     = 30 * time.Second
)

type Monitor struct {
	src   Source
	power PowerSource
	log   *slog.Logger

	srv *http.Server
	ln  net.Listener
}

func New(src Source, pw PowerSource, log *slog.Logger) *Monitor {
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{src: src, power: pw, log: log}
}

// Handler returns the API router.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/stats", m.stats).Methods(http.MethodGet)
	r.HandleFunc("/api/slots", m.slots).Methods(http.MethodGet)
	r.HandleFunc("/api/slot/{inst}", m.slotDetails).Methods(http.MethodGet)
	r.HandleFunc("/api/power", m.powerState).Methods(http.MethodGet)
	r.HandleFunc("/api/resource", m.resource).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", m.collectProfile).Methods(http.MethodGet)
	return r
}

// Start listens on addr and serves until ctx is cancelled.
func (m *Monitor) Start(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("monitor: listen %s: %w", addr, err)
	}
	m.ln = ln
	m.srv = &http.Server{Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}

	m.log.Info("monitor listening", "addr", ln.Addr().String())

	go func() {
		if err := m.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.log.Error("monitor stopped", "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = m.srv.Shutdown(shutdownCtx)
	}()
	return nil
}

// Addr is the bound address once started.
func (m *Monitor) Addr() string {
	if m.ln == nil {
		return ""
	}
	return m.ln.Addr().String()
}

func (m *Monitor) stats(w http.ResponseWriter, _ *http.Request) {
	m.writeJSON(w, m.src.Stats())
}

func (m *Monitor) slots(w http.ResponseWriter, _ *http.Request) {
	m.writeJSON(w, m.src.Slots())
}

func (m *Monitor) slotDetails(w http.ResponseWriter, r *http.Request) {
	inst, err := strconv.Atoi(mux.Vars(r)["inst"])
	if err != nil {
		http.Error(w, "bad instance", http.StatusBadRequest)
		return
	}

	for _, s := range m.src.Slots() {
		if s.Instance != inst {
			continue
		}
		serializer := goseth.NewSerializer()
		serializer.SetRoot(&s)
		serializer.SetMaxDepth(2)
		if err := serializer.Serialize(w); err != nil {
			m.log.Warn("monitor: serialize slot", "inst", inst, "err", err)
		}
		return
	}
	http.Error(w, "no such instance", http.StatusNotFound)
}

func (m *Monitor) powerState(w http.ResponseWriter, _ *http.Request) {
	if m.power == nil {
		http.Error(w, "power state unavailable", http.StatusNotFound)
		return
	}
	m.writeJSON(w, m.power.Snapshot())
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) resource(w http.ResponseWriter, _ *http.Request) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		m.fail(w, err)
		return
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		m.fail(w, err)
		return
	}

	mem, err := p.MemoryInfo()
	if err != nil {
		m.fail(w, err)
		return
	}

	m.writeJSON(w, resourceRsp{CPUPercent: cpuPercent, MemorySize: mem.RSS})
}

// collectProfile samples the CPU for ?ms= milliseconds (default 1s).
func (m *Monitor) collectProfile(w http.ResponseWriter, r *http.Request) {
	d := defaultProfile
	if v := r.URL.Query().Get("ms"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			http.Error(w, "bad ms", http.StatusBadRequest)
			return
		}
		d = min(time.Duration(ms)*time.Millisecond, maxProfile)
	}

	buf := bytes.NewBuffer(nil)
	if err := pprof.StartCPUProfile(buf); err != nil {
		// another profile is running
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	select {
	case <-time.After(d):
	case <-r.Context().Done():
	}
	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		m.fail(w, err)
		return
	}
	m.writeJSON(w, prof)
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		m.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(b); err != nil {
		m.log.Debug("monitor: write response", "err", err)
	}
}

func (m *Monitor) fail(w http.ResponseWriter, err error) {
	m.log.Warn("monitor request failed", "err", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
