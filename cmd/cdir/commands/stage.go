package commands

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/Vincent4486/CommuniDirect/pkg/staging"
)

// stage composes an outbound message and parks it in the staged directory until
// send dispatches it.
func stageCmd() *cobra.Command {
	var (
		target  string
		port    int
		keyName string
		body    string
	)

	cmd := &cobra.Command{
		Use:   "stage",
		Short: "Compose a message into the staged directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			var msg *staging.StagedMessage

			if body != "" {
				if port == 0 {
					port = settings.Port
				}
				msg = &staging.StagedMessage{
					TargetIP: target,
					Port:     port,
					KeyName:  keyName,
					Body:     body,
				}
			} else {
				var err error
				msg, err = composeInEditor()
				if err != nil {
					return err
				}
			}

			if !msg.Valid() {
				return fmt.Errorf("incomplete message: target, key name and body are required")
			}
			if _, ok := store.PeerKey(msg.KeyName); !ok {
				return fmt.Errorf("no trusted key named %q", msg.KeyName)
			}

			path, err := staging.Write(msg, stagedDir(), staging.Filename(msg.TargetIP, time.Now()))
			if err != nil {
				return err
			}

			fmt.Printf("Staged %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "to", "", "target IP address")
	cmd.Flags().IntVar(&port, "port", 0, "target port (default from config)")
	cmd.Flags().StringVar(&keyName, "key", "", "trusted key alias")
	cmd.Flags().StringVar(&body, "body", "", "message body (skips the editor)")
	return cmd
}

// composeInEditor opens $EDITOR on a template file and parses the result.
func composeInEditor() (*staging.StagedMessage, error) {
	tmp, err := os.CreateTemp("", "cdir-compose-*.txt")
	if err != nil {
		return nil, err
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.WriteString(staging.TemplateContent(settings.IP, settings.Port)); err != nil {
		tmp.Close()
		return nil, err
	}
	tmp.Close()

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	edit := exec.Command(editor, path)
	edit.Stdin = os.Stdin
	edit.Stdout = os.Stdout
	edit.Stderr = os.Stderr
	if err := edit.Run(); err != nil {
		return nil, fmt.Errorf("editor failed: %w", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return staging.ParseTemplate(string(content), settings.Port), nil
}
