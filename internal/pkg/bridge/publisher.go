// Package bridge connects the device registry to the network: it publishes
// input event packets to a single destination and dispatches inbound
// vibration commands, all from one loop.
package bridge

import (
	"fmt"
	"net"

	"github.com/aviralksingh/xbox-control/internal/pkg/logger"
	"github.com/aviralksingh/xbox-control/internal/pkg/proto"
)

var log = logger.GetLogger()

// Publisher sends event packets over a connected UDP socket.
type Publisher struct {
	conn *net.UDPConn
}

func NewPublisher(host string, port int) (*Publisher, error) {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return nil, fmt.Errorf("resolving %s:%d failed: %w", host, port, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("connecting udp socket failed: %w", err)
	}
	return &Publisher{conn: conn}, nil
}

func (p *Publisher) Send(pkt *proto.InputEventPacket) error {
	_, err := p.conn.Write(pkt.Marshal())
	return err
}

func (p *Publisher) Close() error {
	return p.conn.Close()
}
