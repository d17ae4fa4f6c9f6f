// internal/writer/types.go
package writer

// Register areas, numbered like the Modbus read function codes.
const (
	AreaCoils            byte = 1
	AreaHoldingRegisters byte = 3
)

// EndpointClient is the exact contract the status writer uses.
// writer/modbus and writer/ingest both implement it.
type EndpointClient interface {
	WriteBits(area byte, unitID uint8, addr uint16, bits []bool) error
	WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error
}

// StatusPlan is where one manager's status block lives.
type StatusPlan struct {
	Endpoint string
	UnitID   uint8

	// Block address is BaseSlot * status.SlotsPerBlock.
	BaseSlot uint16

	// CoilBase, when set, receives one open flag per instance.
	CoilBase  *uint16
	Instances int

	DeviceName string
}
