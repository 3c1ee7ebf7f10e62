package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Vincent4486/CommuniDirect/pkg/crypto"
)

func idCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "id",
		Short: "Print the local identity key and avatar",
		RunE: func(cmd *cobra.Command, args []string) error {
			own := store.OwnPublicKeyRaw()
			if own == nil {
				return fmt.Errorf("no local public key loaded")
			}

			avatar, err := crypto.SymmetricAvatar(own)
			if err != nil {
				return err
			}

			fmt.Printf("Public key: %s\n", hex.EncodeToString(own))
			fmt.Printf("Key hash:   %s\n", crypto.SHA256Hex(own))
			fmt.Println()
			fmt.Println(avatar)
			return nil
		},
	}
	return cmd
}
