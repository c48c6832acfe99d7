package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/aviralksingh/xbox-control/internal/pkg/logger"
	"github.com/aviralksingh/xbox-control/internal/pkg/proto"
)

// VibrationEndpoint receives rumble command datagrams. Malformed packets
// (wrong size, foreign magic) are dropped without feedback, UDP offers no
// error channel anyway.
type VibrationEndpoint struct {
	conn *net.UDPConn
}

func NewVibrationEndpoint(port int) (*VibrationEndpoint, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, fmt.Errorf("binding vibration socket :%d failed: %w", port, err)
	}
	return &VibrationEndpoint{conn: conn}, nil
}

// Receive reads datagrams until ctx is cancelled, feeding valid packets to
// out. The socket is closed on cancellation to unblock the read.
func (e *VibrationEndpoint) Receive(ctx context.Context, out chan<- proto.VibrationPacket) {
	go func() {
		<-ctx.Done()
		_ = e.conn.Close()
	}()

	// oversized reads yield the true datagram length for validation
	buf := make([]byte, proto.VibrationPacketSize+1)
	for {
		n, _, err := e.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
				log.Info(fmt.Sprintf("vibration socket read failed: %v", err), logger.Warning)
			}
			return
		}

		pkt, err := proto.UnmarshalVibration(buf[:n])
		if err != nil {
			log.Info(fmt.Sprintf("dropping datagram: %v", err), logger.Debug)
			continue
		}

		select {
		case out <- pkt:
		case <-ctx.Done():
			return
		}
	}
}
