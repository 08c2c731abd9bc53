package main

import (
	"fmt"
	"os"

	"github.com/cuemby/burrow/pkg/replica"
	"github.com/cuemby/burrow/pkg/sync"
	"github.com/cuemby/burrow/pkg/synchttp"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync [TARGET_URL]",
	Short: "Sync this replica with a remote peer over HTTP",
	Long: `Sync runs one bidirectional sync exchange against the burrow
serve instance at TARGET_URL (e.g. http://peer.example:7777).

With no TARGET_URL, sync runs against every address in the configured
peers list (--config's peers, or BURROW_PEERS) in turn.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openReplica()
		if err != nil {
			return err
		}
		defer r.Close()

		targets := args
		if len(targets) == 0 {
			targets = cfg.Peers
		}
		if len(targets) == 0 {
			return fmt.Errorf("no TARGET_URL given and no peers configured")
		}

		failed := false
		for _, addr := range targets {
			if err := syncOne(r, addr); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", addr, err)
				failed = true
				continue
			}
		}
		if failed {
			return fmt.Errorf("one or more peers failed to sync")
		}
		return nil
	},
}

func syncOne(r *replica.Replica, addr string) error {
	target := synchttp.NewClient(addr, nil)

	res, err := sync.Sync(r, target, nil)
	if err != nil {
		return fmt.Errorf("sync with %s: %w", addr, err)
	}

	if res.NoOp {
		fmt.Printf("%s: already in sync\n", addr)
		return nil
	}
	fmt.Printf("%s: sent %d document(s), received %d document(s)\n", addr, res.DocsSent, res.DocsReceived)
	return nil
}
