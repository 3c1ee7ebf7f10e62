package api

import (
	"encoding/hex"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Vincent4486/CommuniDirect/pkg/crypto"
	"github.com/Vincent4486/CommuniDirect/pkg/storage"
)

// StatusResponse describes the running node.
type StatusResponse struct {
	Success       bool      `json:"success"`
	IdentityHash  string    `json:"identityHash"`
	PeerCount     int       `json:"peerCount"`
	MessageCount  int       `json:"messageCount"`
	UptimeSeconds int64     `json:"uptimeSeconds"`
	CheckedAt     time.Time `json:"checkedAt"`
}

// PeerInfo is one trusted peer entry.
type PeerInfo struct {
	Alias     string `json:"alias"`
	PublicKey string `json:"publicKey"`
	KeyHash   string `json:"keyHash"`
	Avatar    string `json:"avatar"`
}

// MessageInfo is one archived message entry.
type MessageInfo struct {
	ContentHash   string    `json:"contentHash"`
	SenderKeyHash string    `json:"senderKeyHash"`
	Payload       string    `json:"payload"`
	RemoteAddr    string    `json:"remoteAddr"`
	ReceivedAt    time.Time `json:"receivedAt"`
}

// SendRequest stages and dispatches one outbound message.
type SendRequest struct {
	Target  string `json:"target" binding:"required"`
	Port    int    `json:"port"`
	KeyName string `json:"key_name" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

// handleStatus handles GET /api/v1/status
func (s *Server) handleStatus(c *gin.Context) {
	count, err := s.archive.MessageCount()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Archive unavailable",
			Message: err.Error(),
		})
		return
	}

	identityHash := ""
	if own := s.store.OwnPublicKeyRaw(); own != nil {
		identityHash = crypto.SHA256Hex(own)
	}

	c.JSON(http.StatusOK, StatusResponse{
		Success:       true,
		IdentityHash:  identityHash,
		PeerCount:     len(s.store.AllPeerKeys()),
		MessageCount:  count,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		CheckedAt:     time.Now(),
	})
}

// handlePeers handles GET /api/v1/peers
func (s *Server) handlePeers(c *gin.Context) {
	peers := s.store.AllPeerKeys()

	list := make([]PeerInfo, 0, len(peers))
	for alias, key := range peers {
		avatar, err := crypto.SymmetricAvatar(key)
		if err != nil {
			avatar = ""
		}
		list = append(list, PeerInfo{
			Alias:     alias,
			PublicKey: hex.EncodeToString(key),
			KeyHash:   crypto.SHA256Hex(key),
			Avatar:    avatar,
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Alias < list[j].Alias })

	c.JSON(http.StatusOK, gin.H{"success": true, "peers": list})
}

// handleMessages handles GET /api/v1/messages?limit=N
func (s *Server) handleMessages(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid limit",
				Message: "limit must be a non-negative number",
			})
			return
		}
		limit = parsed
	}

	msgs, err := s.archive.ListMessages(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Archive unavailable",
			Message: err.Error(),
		})
		return
	}

	list := make([]MessageInfo, len(msgs))
	for i, m := range msgs {
		list[i] = messageInfo(m)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "messages": list})
}

// handleMessage handles GET /api/v1/messages/:hash
func (s *Server) handleMessage(c *gin.Context) {
	hash := c.Param("hash")

	msg, err := s.archive.GetMessage(hash)
	if err == storage.ErrNotFound {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Message not found",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Archive unavailable",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": messageInfo(msg)})
}

// handleSend handles POST /api/v1/send
func (s *Server) handleSend(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}

	if _, ok := s.store.PeerKey(req.KeyName); !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Unknown peer",
			Message: "no trusted key named " + req.KeyName,
		})
		return
	}

	if s.Dispatch == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "Send not available",
		})
		return
	}

	if err := s.Dispatch(req.Target, req.Port, req.KeyName, req.Body); err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "Delivery failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func messageInfo(m *storage.ArchivedMessage) MessageInfo {
	return MessageInfo{
		ContentHash:   m.ContentHash,
		SenderKeyHash: m.SenderKeyHash,
		Payload:       string(m.Payload),
		RemoteAddr:    m.RemoteAddr,
		ReceivedAt:    time.Unix(m.ReceivedAt, 0),
	}
}
