package network

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// AccessLog appends one line per inbound connection to a log file.
type AccessLog struct {
	mu   sync.Mutex
	file *os.File
}

// OpenAccessLog opens (or creates) the access log at path for appending.
func OpenAccessLog(path string) (*AccessLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open access log: %w", err)
	}
	return &AccessLog{file: f}, nil
}

// Record writes one connection record. result is nil for an accepted frame.
func (al *AccessLog) Record(remoteAddr string, at time.Time, payloadLen int, result error) error {
	status := "OK"
	if result != nil {
		status = "REJECTED " + result.Error()
	}
	line := fmt.Sprintf("%s %s %d %s\n", at.Format(time.RFC3339), remoteAddr, payloadLen, status)

	al.mu.Lock()
	defer al.mu.Unlock()
	_, err := al.file.WriteString(line)
	return err
}

// Close closes the underlying file.
func (al *AccessLog) Close() error {
	al.mu.Lock()
	defer al.mu.Unlock()
	return al.file.Close()
}
