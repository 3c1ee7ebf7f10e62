package storage

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Vincent4486/CommuniDirect/pkg/protocol"
)

const msgTimestampLayout = "20060102_150405"

// WriteMessageFile writes a received message as a plain-text .msg file
// under dir, named <timestamp>_<remote-ip>.msg, the layout the interactive
// client scans. Returns the written path.
func WriteMessageFile(dir string, msg *protocol.Message, remoteAddr string, receivedAt time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}

	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	name := receivedAt.Format(msgTimestampLayout) + "_" + strings.ReplaceAll(host, ":", "_") + ".msg"
	path := filepath.Join(dir, name)

	content := fmt.Sprintf("From:     %s\nAddress:  %s\nReceived: %s\n\n%s\n",
		msg.SenderKeyHash,
		remoteAddr,
		receivedAt.Format(time.RFC3339),
		msg.Payload,
	)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", err
	}
	return path, nil
}
