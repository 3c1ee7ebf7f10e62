package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Vincent4486/CommuniDirect/pkg/api"
	"github.com/Vincent4486/CommuniDirect/pkg/config"
	"github.com/Vincent4486/CommuniDirect/pkg/keystore"
	"github.com/Vincent4486/CommuniDirect/pkg/network"
	"github.com/Vincent4486/CommuniDirect/pkg/protocol"
	"github.com/Vincent4486/CommuniDirect/pkg/storage"
)

var (
	rootDir  = flag.String("root", "", "Data directory (default ~/.communidirect)")
	port     = flag.Int("port", 0, "Listen port (overrides config)")
	apiAddr  = flag.String("api", "", "Local HTTP API address, e.g. 127.0.0.1:9834 (disabled when empty)")
	logConns = flag.Bool("accesslog", true, "Write per-connection access log")
)

func main() {
	flag.Parse()

	printBanner()

	root := *rootDir
	if root == "" {
		root = config.DefaultRoot()
	}

	settings, err := config.Load(root)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		settings.Port = *port
	}

	// Mirror log output into the configured error log.
	if errLog, err := os.OpenFile(settings.ErrLogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
		log.SetOutput(io.MultiWriter(os.Stderr, errLog))
		defer errLog.Close()
	} else {
		log.Printf("⚠️ Error log disabled: %v", err)
	}

	store, err := keystore.Load(filepath.Join(root, keystore.ManifestFile))
	if err != nil {
		log.Fatalf("Failed to load trust store: %v", err)
	}
	log.Printf("✓ Identity loaded (%d trusted peers)", len(store.AllPeerKeys()))

	archive, err := storage.NewArchiveDB(filepath.Join(root, "archive.db"))
	if err != nil {
		log.Fatalf("Failed to open archive: %v", err)
	}

	msgDir := filepath.Join(root, "msg")

	server := network.NewServer(settings.Addr(), store.Identity())
	server.OnMessageReceived = func(msg *protocol.Message, remoteAddr string) {
		receivedAt := time.Now()
		if _, _, err := archive.SaveMessage(msg, remoteAddr, receivedAt); err != nil {
			log.Printf("⚠️ Failed to archive message: %v", err)
		}
		if _, err := storage.WriteMessageFile(msgDir, msg, remoteAddr, receivedAt); err != nil {
			log.Printf("⚠️ Failed to write message file: %v", err)
		}
	}

	var accessLog *network.AccessLog
	if *logConns {
		accessLog, err = network.OpenAccessLog(settings.AccessLogPath())
		if err != nil {
			log.Printf("⚠️ Access log disabled: %v", err)
		} else {
			server.AttachAccessLog(accessLog)
		}
	}

	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Printf("✓ Listening on %s", server.ListenAddr())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var apiServer *api.Server
	if *apiAddr != "" {
		apiServer = api.NewServer(store, archive, &api.Config{Addr: *apiAddr, EnableCORS: true})
		apiServer.Dispatch = func(target string, p int, keyName string, body string) error {
			recipient, ok := store.PeerKey(keyName)
			if !ok {
				return fmt.Errorf("%w: %q", keystore.ErrUnknownPeer, keyName)
			}
			if p == 0 {
				p = config.DefaultPort
			}
			addr := fmt.Sprintf("%s:%d", target, p)
			return network.Send(addr, []byte(body), store.Identity(), recipient)
		}
		go apiServer.Start(ctx)
	}

	waitForShutdown(cancel, server, archive, accessLog)
}

func printBanner() {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║        CommuniDirect Server           ║")
	fmt.Println("║   point-to-point message delivery     ║")
	fmt.Println("╚═══════════════════════════════════════╝")
	fmt.Println()
}

func waitForShutdown(cancel context.CancelFunc, server *network.Server, archive *storage.ArchiveDB, accessLog *network.AccessLog) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan

	fmt.Println()
	log.Println("Shutting down gracefully...")

	cancel()

	if err := server.Stop(); err != nil {
		log.Printf("Error stopping server: %v", err)
	}

	if accessLog != nil {
		if err := accessLog.Close(); err != nil {
			log.Printf("Error closing access log: %v", err)
		}
	}

	if err := archive.Close(); err != nil {
		log.Printf("Error closing archive: %v", err)
	} else {
		log.Println("✓ Archive closed")
	}

	log.Println("✓ Server stopped")
}
