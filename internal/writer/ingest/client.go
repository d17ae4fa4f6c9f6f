// Package ingest delivers status writes over the raw ingest v1 protocol:
// one packet per TCP connection, answered by a single status byte.
//
// Packet layout (10-byte header, big-endian):
//
//	0-1  magic "RI"
//	2    version (0x01)
//	3    area (1 coils, 3 holding registers)
//	4-5  unit id
//	6-7  address
//	8-9  count
//	10+  payload (coils LSB-first, registers big-endian)
package ingest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

const (
	magic     = "RI"
	versionV1 = 0x01
	headerLen = 10

	respOK       byte = 0x00
	respRejected byte = 0x01
)

// ErrRejected is returned when the endpoint refuses a packet.
var ErrRejected = errors.New("writer ingest: rejected")

// EndpointClient is stateless; each write dials once.
type EndpointClient struct {
	endpoint string
	timeout  time.Duration
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("writer ingest: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &EndpointClient{endpoint: cfg.Endpoint, timeout: cfg.Timeout}, nil
}

func (c *EndpointClient) Close() error { return nil }

func (c *EndpointClient) WriteBits(area byte, unitID uint8, addr uint16, bits []bool) error {
	payload := make([]byte, (len(bits)+7)/8)
	for i, v := range bits {
		if v {
			payload[i/8] |= 1 << uint(i%8)
		}
	}
	return c.send(buildPacket(area, unitID, addr, uint16(len(bits)), payload))
}

func (c *EndpointClient) WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error {
	payload := make([]byte, 0, 2*len(regs))
	for _, r := range regs {
		payload = binary.BigEndian.AppendUint16(payload, r)
	}
	return c.send(buildPacket(area, unitID, addr, uint16(len(regs)), payload))
}

func (c *EndpointClient) send(pkt []byte) error {
	conn, err := net.DialTimeout("tcp", c.endpoint, c.timeout)
	if err != nil {
		return fmt.Errorf("writer ingest: dial: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return fmt.Errorf("writer ingest: deadline: %w", err)
	}

	// net.Conn.Write either writes everything or errors
	if _, err := conn.Write(pkt); err != nil {
		return fmt.Errorf("writer ingest: write: %w", err)
	}

	var resp [1]byte
	if _, err := io.ReadFull(conn, resp[:]); err != nil {
		return fmt.Errorf("writer ingest: read status: %w", err)
	}

	switch resp[0] {
	case respOK:
		return nil
	case respRejected:
		return ErrRejected
	}
	return fmt.Errorf("writer ingest: unknown status 0x%02x", resp[0])
}

func buildPacket(area byte, unitID uint8, addr, count uint16, payload []byte) []byte {
	pkt := make([]byte, 0, headerLen+len(payload))
	pkt = append(pkt, magic[0], magic[1], versionV1, area)
	pkt = binary.BigEndian.AppendUint16(pkt, uint16(unitID))
	pkt = binary.BigEndian.AppendUint16(pkt, addr)
	pkt = binary.BigEndian.AppendUint16(pkt, count)
	return append(pkt, payload...)
}
