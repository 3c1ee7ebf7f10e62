package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// inbox lists received messages written by the server daemon.
func inboxCmd() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "inbox [file]",
		Short: "List received messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				path := args[0]
				if filepath.Dir(path) == "." {
					path = filepath.Join(msgDir(), path)
				}
				content, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				fmt.Print(string(content))
				return nil
			}

			entries, err := os.ReadDir(msgDir())
			if os.IsNotExist(err) {
				fmt.Println("Inbox is empty.")
				return nil
			}
			if err != nil {
				return err
			}

			names := make([]string, 0, len(entries))
			for _, e := range entries {
				if !e.IsDir() && strings.HasSuffix(e.Name(), ".msg") {
					names = append(names, e.Name())
				}
			}
			sort.Strings(names)

			if len(names) == 0 {
				fmt.Println("Inbox is empty.")
				return nil
			}

			for _, name := range names {
				fmt.Println(name)
				if full {
					content, err := os.ReadFile(filepath.Join(msgDir(), name))
					if err != nil {
						fmt.Printf("  (unreadable: %v)\n", err)
						continue
					}
					for _, line := range strings.Split(strings.TrimRight(string(content), "\n"), "\n") {
						fmt.Printf("  %s\n", line)
					}
					fmt.Println()
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "print message contents")
	return cmd
}
