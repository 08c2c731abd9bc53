package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the transaction log since a generation",
	RunE: func(cmd *cobra.Command, args []string) error {
		since, _ := cmd.Flags().GetInt("since")

		r, err := openReplica()
		if err != nil {
			return err
		}
		defer r.Close()

		changes, gen, transID, err := r.ChangesSince(since)
		if err != nil {
			return err
		}

		for _, c := range changes {
			fmt.Printf("gen=%-6d doc_id=%-24s trans_id=%s\n", c.Generation, c.DocID, c.TransactionID)
		}
		fmt.Printf("\ncurrent generation=%d transaction_id=%s\n", gen, transID)
		return nil
	},
}

func init() {
	logCmd.Flags().Int("since", 0, "Only show changes after this generation")
}
