package network

import (
	"errors"
	"log"
	"net"
	"sync"
	"time"

	"github.com/Vincent4486/CommuniDirect/pkg/crypto"
	"github.com/Vincent4486/CommuniDirect/pkg/protocol"
)

// ReadTimeout bounds how long a peer may take to deliver a full frame.
const ReadTimeout = 5 * time.Second

// Server accepts inbound frames, verifies them against the local identity
// and hands decoded messages to the receive callback.
type Server struct {
	Addr     string
	Identity *crypto.Identity

	listener  net.Listener
	accessLog *AccessLog
	closing   bool
	mu        sync.Mutex
	wg        sync.WaitGroup

	// Statistics
	messagesReceived uint64
	startTime        time.Time

	// Callbacks
	OnMessageReceived func(msg *protocol.Message, remoteAddr string)
}

// NewServer creates a server bound to addr using the given identity.
func NewServer(addr string, id *crypto.Identity) *Server {
	return &Server{
		Addr:      addr,
		Identity:  id,
		startTime: time.Now(),
	}
}

// AttachAccessLog attaches an access log for per-connection records.
func (s *Server) AttachAccessLog(al *AccessLog) {
	s.accessLog = al
}

// Start begins listening and accepting connections.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}

	s.listener = listener
	log.Printf("Listening on %s", listener.Addr())

	go s.acceptLoop()

	return nil
}

// ListenAddr returns the bound address, or empty before Start.
func (s *Server) ListenAddr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop closes the listener and waits for in-flight connections.
func (s *Server) Stop() error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	s.wg.Wait()
	return err
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			closing := s.closing
			s.mu.Unlock()
			if closing || errors.Is(err, net.ErrClosed) {
				return
			}
			log.Printf("⚠️ Accept error: %v", err)
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection reads exactly one frame from the peer. A frame that
// fails to decode or verify is logged and dropped; the server keeps
// accepting.
func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	remoteAddr := conn.RemoteAddr().String()
	receivedAt := time.Now()

	if err := conn.SetReadDeadline(time.Now().Add(ReadTimeout)); err != nil {
		log.Printf("⚠️ Failed to set read deadline for %s: %v", remoteAddr, err)
	}

	msg, err := protocol.Decode(conn, s.Identity)
	if err != nil {
		log.Printf("⚠️ Dropping frame from %s: %v", remoteAddr, err)
		s.logAccess(remoteAddr, receivedAt, 0, err)
		return
	}

	s.mu.Lock()
	s.messagesReceived++
	s.mu.Unlock()

	log.Printf("📨 Message from %s (sender %s, %d bytes)", remoteAddr, msg.SenderKeyHash, len(msg.Payload))
	s.logAccess(remoteAddr, receivedAt, len(msg.Payload), nil)

	if s.OnMessageReceived != nil {
		s.OnMessageReceived(msg, remoteAddr)
	}
}

func (s *Server) logAccess(remoteAddr string, at time.Time, payloadLen int, result error) {
	if s.accessLog == nil {
		return
	}
	if err := s.accessLog.Record(remoteAddr, at, payloadLen, result); err != nil {
		log.Printf("⚠️ Access log write failed: %v", err)
	}
}

// Stats returns server statistics.
func (s *Server) Stats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]interface{}{
		"messages_received": s.messagesReceived,
		"uptime_seconds":    int64(time.Since(s.startTime).Seconds()),
	}
}
