// Package staging manages composed-but-unsent messages: the editor
// temp-file format, the staged TOML files on disk, and the move to sent/
// after dispatch.
package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Delimiter separates the header section from the body in the editor
// temp-file format
const Delimiter = "--- MESSAGE ---"

const bodyPlaceholder = "Type your message here..."

const timestampLayout = "20060102_150405"

// StagedMessage is a message that has been composed but not yet sent
type StagedMessage struct {
	TargetIP string `toml:"target_ip"`
	Port     int    `toml:"port"`
	KeyName  string `toml:"key_name"`
	Body     string `toml:"body"`
}

// Valid reports whether all required fields are filled in
func (m *StagedMessage) Valid() bool {
	return m.TargetIP != "" && m.KeyName != "" && strings.TrimSpace(m.Body) != ""
}

// Addr returns the ip:port dial address for the message
func (m *StagedMessage) Addr() string {
	return fmt.Sprintf("%s:%d", m.TargetIP, m.Port)
}

// TemplateContent produces the initial temp-file content shown to the user
// in the external editor
func TemplateContent(defaultIP string, defaultPort int) string {
	return "TARGET_IP: " + defaultIP + "\n" +
		"PORT: " + strconv.Itoa(defaultPort) + "\n" +
		"KEY_NAME: \n" +
		Delimiter + "\n" +
		bodyPlaceholder + "\n"
}

// ParseTemplate parses edited temp-file content back into a StagedMessage.
// Fields may be empty when the user removed them; Valid decides usability.
func ParseTemplate(content string, defaultPort int) *StagedMessage {
	msg := &StagedMessage{Port: defaultPort}

	headerSection := content
	bodySection := ""
	if idx := strings.Index(content, Delimiter); idx >= 0 {
		headerSection = content[:idx]
		bodySection = strings.TrimLeft(content[idx+len(Delimiter):], "\r\n")
	}

	for _, line := range strings.Split(headerSection, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, "TARGET_IP:"):
			msg.TargetIP = strings.TrimSpace(strings.TrimPrefix(line, "TARGET_IP:"))
		case strings.HasPrefix(line, "PORT:"):
			if port, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "PORT:"))); err == nil {
				msg.Port = port
			}
		case strings.HasPrefix(line, "KEY_NAME:"):
			msg.KeyName = strings.TrimSpace(strings.TrimPrefix(line, "KEY_NAME:"))
		}
	}

	// Strip the placeholder hint if the user didn't change it
	if strings.TrimSpace(bodySection) == bodyPlaceholder {
		msg.Body = ""
	} else {
		msg.Body = strings.TrimRight(bodySection, "\r\n")
	}

	return msg
}

// Filename builds the timestamped staged filename for a target address,
// e.g. 20260221_190501_127.0.0.1.toml
func Filename(targetIP string, at time.Time) string {
	return at.Format(timestampLayout) + "_" + strings.ReplaceAll(targetIP, ":", "_") + ".toml"
}

// Write persists a staged message as TOML under dir
func Write(msg *StagedMessage, dir, filename string) (string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}

	data, err := toml.Marshal(msg)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Read loads a staged TOML file from disk
func Read(path string) (*StagedMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	msg := &StagedMessage{}
	if err := toml.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("malformed staged file %s: %w", filepath.Base(path), err)
	}
	return msg, nil
}

// Scan lists all staged TOML files under dir, sorted by name (the
// timestamped names make that chronological)
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// MoveToSent relocates a dispatched staged file into sentDir
func MoveToSent(path, sentDir string) error {
	if err := os.MkdirAll(sentDir, 0700); err != nil {
		return err
	}
	return os.Rename(path, filepath.Join(sentDir, filepath.Base(path)))
}
