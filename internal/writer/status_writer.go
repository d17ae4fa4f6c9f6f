// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/vdec-manager/internal/status"
)

// StatusWriter is the delivery-only contract for manager status.
// It receives a snapshot and writes it verbatim.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}

// deviceStatusWriter writes the full block once (and after any failure),
// then only the slots that changed.
type deviceStatusWriter struct {
	plan *StatusPlan
	cli  EndpointClient

	needFull bool
	last     status.Snapshot
	nameRegs []uint16
}

// NewDeviceStatusWriter builds a status writer if status is enabled.
// If plan is nil, status is disabled.
func NewDeviceStatusWriter(plan *StatusPlan, cli EndpointClient) (StatusWriter, bool) {
	if plan == nil {
		return nil, false
	}

	return &deviceStatusWriter{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
		last:     status.Snapshot{Health: status.HealthUnknown},
		nameRegs: status.EncodeName(plan.DeviceName),
	}, true
}

// WriteStatus delivers a snapshot into status memory.
// On any write failure, the next call re-asserts the full block.
func (sw *deviceStatusWriter) WriteStatus(s status.Snapshot) error {
	if sw == nil || sw.plan == nil {
		return errors.New("status writer: disabled")
	}
	if sw.cli == nil {
		return fmt.Errorf("status writer: missing client for endpoint %s", sw.plan.Endpoint)
	}

	base := sw.baseAddr()
	unitID := sw.plan.UnitID

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		regs := status.Encode(s)
		copy(regs[status.SlotDeviceNameStart:], sw.nameRegs)

		if err := sw.cli.WriteRegisters(AreaHoldingRegisters, unitID, base, regs); err != nil {
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}
		if err := sw.writeOpenFlags(s.OpenBitmap); err != nil {
			return err
		}

		sw.needFull = false
		sw.last = s
		return nil
	}

	var errs []string

	for _, run := range status.Diff(sw.last, s) {
		addr := base + uint16(run.Slot)
		if err := sw.cli.WriteRegisters(AreaHoldingRegisters, unitID, addr, run.Regs); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d write failed: %v", run.Slot, err))
		}
	}

	if s.OpenBitmap != sw.last.OpenBitmap {
		if err := sw.writeOpenFlags(s.OpenBitmap); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt: re-assert on next call.
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	sw.last = s
	return nil
}

func (sw *deviceStatusWriter) writeOpenFlags(bitmap uint32) error {
	if sw.plan.CoilBase == nil || sw.plan.Instances <= 0 {
		return nil
	}

	n := min(sw.plan.Instances, status.MaxInstances)
	bits := make([]bool, n)
	for i := range bits {
		bits[i] = bitmap&(1<<uint(i)) != 0
	}

	if err := sw.cli.WriteBits(AreaCoils, sw.plan.UnitID, *sw.plan.CoilBase, bits); err != nil {
		sw.needFull = true
		return fmt.Errorf("status writer: open flags write failed: %w", err)
	}
	return nil
}

func (sw *deviceStatusWriter) baseAddr() uint16 {
	// Each manager owns a fixed SlotsPerBlock block.
	return sw.plan.BaseSlot * status.SlotsPerBlock
}
