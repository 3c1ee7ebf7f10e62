package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Vincent4486/CommuniDirect/pkg/keystore"
	"github.com/Vincent4486/CommuniDirect/pkg/network"
	"github.com/Vincent4486/CommuniDirect/pkg/staging"
)

// send dispatches staged messages. With no arguments it sends everything
// in the staged directory; with arguments only the named files. Delivered messages
// move to the sent directory, failed ones stay staged.
func sendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send [file...]",
		Short: "Dispatch staged messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := make([]string, 0, len(args))
			if len(args) > 0 {
				for _, arg := range args {
					if filepath.Dir(arg) == "." {
						arg = filepath.Join(stagedDir(), arg)
					}
					paths = append(paths, arg)
				}
			} else {
				var err error
				paths, err = staging.Scan(stagedDir())
				if err != nil {
					return err
				}
			}

			if len(paths) == 0 {
				fmt.Println("Nothing staged.")
				return nil
			}

			var failed int
			for _, path := range paths {
				if err := dispatch(path); err != nil {
					fmt.Printf("✗ %s: %v\n", filepath.Base(path), err)
					failed++
					continue
				}
				fmt.Printf("✓ %s\n", filepath.Base(path))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d messages failed", failed, len(paths))
			}
			return nil
		},
	}
	return cmd
}

func dispatch(path string) error {
	msg, err := staging.Read(path)
	if err != nil {
		return err
	}

	recipient, ok := store.PeerKey(msg.KeyName)
	if !ok {
		return fmt.Errorf("%w: %q", keystore.ErrUnknownPeer, msg.KeyName)
	}

	if err := network.Send(msg.Addr(), []byte(msg.Body), store.Identity(), recipient); err != nil {
		return err
	}

	return staging.MoveToSent(path, sentDir())
}
