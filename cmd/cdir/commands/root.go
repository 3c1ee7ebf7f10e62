package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Vincent4486/CommuniDirect/pkg/config"
	"github.com/Vincent4486/CommuniDirect/pkg/keystore"
)

var (
	home     string
	settings *config.Settings
	store    *keystore.Store
)

func stagedDir() string { return filepath.Join(home, "staged") }
func sentDir() string   { return filepath.Join(home, "sent") }
func msgDir() string    { return filepath.Join(home, "msg") }

func Execute() error {
	root := &cobra.Command{
		Use:   "cdir",
		Short: "Point-to-point encrypted message delivery",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				home = config.DefaultRoot()
			}

			var err error
			settings, err = config.Load(home)
			if err != nil {
				return err
			}

			store, err = keystore.Load(filepath.Join(home, keystore.ManifestFile))
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "data dir (default ~/.communidirect)")

	root.AddCommand(idCmd(), peersCmd(), stageCmd(), sendCmd(), inboxCmd())
	return root.Execute()
}
