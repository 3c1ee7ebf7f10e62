package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Vincent4486/CommuniDirect/pkg/crypto"
)

func peersCmd() *cobra.Command {
	var showAvatar bool

	cmd := &cobra.Command{
		Use:   "peers",
		Short: "List trusted peer keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			peers := store.AllPeerKeys()
			if len(peers) == 0 {
				fmt.Println("No trusted peers. Drop .pub files into the keys directory.")
				return nil
			}

			aliases := make([]string, 0, len(peers))
			for alias := range peers {
				aliases = append(aliases, alias)
			}
			sort.Strings(aliases)

			for _, alias := range aliases {
				key := peers[alias]
				fmt.Printf("%-20s %s\n", alias, crypto.SHA256Hex(key))
				if showAvatar {
					avatar, err := crypto.SymmetricAvatar(key)
					if err == nil {
						fmt.Println(avatar)
						fmt.Println()
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showAvatar, "avatar", false, "show each peer's key avatar")
	return cmd
}
