package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vincent4486/CommuniDirect/pkg/crypto"
	"github.com/Vincent4486/CommuniDirect/pkg/keystore"
	"github.com/Vincent4486/CommuniDirect/pkg/protocol"
	"github.com/Vincent4486/CommuniDirect/pkg/storage"
)

// newTestServer builds an API server over a fresh trust store with one
// trusted peer (alice) and an empty archive.
func newTestServer(t *testing.T) (*Server, *storage.ArchiveDB) {
	t.Helper()

	root := t.TempDir()
	_, err := keystore.Generate(root)
	require.NoError(t, err)

	alice, err := crypto.GenerateIdentity()
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(root, "keys", "alice.pub"), alice.PublicKeyRaw, 0644)
	require.NoError(t, err)

	store, err := keystore.Load(filepath.Join(root, "keys.toml"))
	require.NoError(t, err)

	archive, err := storage.NewArchiveDB(filepath.Join(root, "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { archive.Close() })

	return NewServer(store, archive, DefaultConfig()), archive
}

func doRequest(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, req)
	return w
}

func archiveTestMessage(t *testing.T, archive *storage.ArchiveDB, payload string) *storage.ArchivedMessage {
	t.Helper()

	sender, err := crypto.GenerateIdentity()
	require.NoError(t, err)
	msg := &protocol.Message{
		SenderPubKeyRaw: sender.PublicKeyRaw,
		Payload:         []byte(payload),
		SenderKeyHash:   crypto.SHA256Hex(sender.PublicKeyRaw),
	}
	saved, _, err := archive.SaveMessage(msg, "127.0.0.1:50000", time.Now())
	require.NoError(t, err)
	return saved
}

func TestStatusEndpoint(t *testing.T) {
	server, archive := newTestServer(t)
	archiveTestMessage(t, archive, "one")

	w := doRequest(t, server, "GET", "/api/v1/status", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Len(t, response.IdentityHash, 64)
	assert.Equal(t, 1, response.PeerCount)
	assert.Equal(t, 1, response.MessageCount)
}

func TestPeersEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	w := doRequest(t, server, "GET", "/api/v1/peers", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Success bool       `json:"success"`
		Peers   []PeerInfo `json:"peers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Peers, 1)
	assert.Equal(t, "alice", response.Peers[0].Alias)
	assert.Len(t, response.Peers[0].PublicKey, 64)
	assert.NotEmpty(t, response.Peers[0].Avatar)
}

func TestMessagesEndpoints(t *testing.T) {
	server, archive := newTestServer(t)
	saved := archiveTestMessage(t, archive, "hello api")

	t.Run("List", func(t *testing.T) {
		w := doRequest(t, server, "GET", "/api/v1/messages", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Success  bool          `json:"success"`
			Messages []MessageInfo `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Messages, 1)
		assert.Equal(t, "hello api", response.Messages[0].Payload)
	})

	t.Run("Get", func(t *testing.T) {
		w := doRequest(t, server, "GET", "/api/v1/messages/"+saved.ContentHash, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("GetMissing", func(t *testing.T) {
		w := doRequest(t, server, "GET", "/api/v1/messages/deadbeef", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("BadLimit", func(t *testing.T) {
		w := doRequest(t, server, "GET", "/api/v1/messages?limit=nope", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSendEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	var gotTarget, gotKey, gotBody string
	server.Dispatch = func(target string, port int, keyName string, body string) error {
		gotTarget, gotKey, gotBody = target, keyName, body
		return nil
	}

	w := doRequest(t, server, "POST", "/api/v1/send", SendRequest{
		Target:  "192.168.1.20",
		Port:    9833,
		KeyName: "alice",
		Body:    "hi alice",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "192.168.1.20", gotTarget)
	assert.Equal(t, "alice", gotKey)
	assert.Equal(t, "hi alice", gotBody)

	t.Run("UnknownPeer", func(t *testing.T) {
		w := doRequest(t, server, "POST", "/api/v1/send", SendRequest{
			Target:  "192.168.1.20",
			KeyName: "mallory",
			Body:    "x",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("DeliveryFailure", func(t *testing.T) {
		server.Dispatch = func(string, int, string, string) error {
			return errors.New("connection refused")
		}
		w := doRequest(t, server, "POST", "/api/v1/send", SendRequest{
			Target:  "192.168.1.20",
			KeyName: "alice",
			Body:    "x",
		})
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}
