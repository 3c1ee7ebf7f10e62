package network

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"github.com/Vincent4486/CommuniDirect/pkg/crypto"
	"github.com/Vincent4486/CommuniDirect/pkg/protocol"
)

// DialTimeout bounds how long Send waits for the peer to accept.
const DialTimeout = 5 * time.Second

// Send connects to addr, delivers one frame sealed to recipientRaw and
// closes the connection. There are no retries; the caller decides whether
// a failed send stays staged.
func Send(addr string, payload []byte, id *crypto.Identity, recipientRaw []byte) error {
	conn, err := net.DialTimeout("tcp", addr, DialTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(DialTimeout)); err != nil {
		return err
	}

	w := bufio.NewWriter(conn)
	if err := protocol.Encode(payload, id, recipientRaw, w); err != nil {
		return fmt.Errorf("failed to send frame to %s: %w", addr, err)
	}

	return nil
}
