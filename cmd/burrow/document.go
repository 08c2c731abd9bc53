package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cuemby/burrow/pkg/types"
	"github.com/cuemby/burrow/pkg/vclock"
	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:   "put DOC_ID",
	Short: "Create or update a document",
	Long: `Put writes a JSON document under DOC_ID.

The body is read from --body, or from a file with --file, or from
stdin if neither is given. Updating an existing document requires
--rev to carry the revision last read for that document; omit it only
when creating a brand new document.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docID := types.DocID(args[0])

		body, err := readBody(cmd)
		if err != nil {
			return err
		}

		rev, _ := cmd.Flags().GetString("rev")

		r, err := openReplica()
		if err != nil {
			return err
		}
		defer r.Close()

		base := vclock.Empty()
		if rev != "" {
			base, err = vclock.Parse(rev)
			if err != nil {
				return fmt.Errorf("invalid --rev: %w", err)
			}
		}
		newRev := base.Increment(r.ReplicaUID())

		res, err := r.Put(types.Document{DocID: docID, Revision: newRev, Body: body}, false, nil)
		if err != nil {
			return fmt.Errorf("put %s: %w", docID, err)
		}

		fmt.Printf("%s  rev=%s  outcome=%s  gen=%d\n", docID, res.Document.Revision, res.Outcome, res.Generation)
		return nil
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a document under a freshly allocated doc_id",
	Long: `Create writes body under a doc_id minted by the replica,
for callers that have no natural document identifier of their own
(the auto-id counterpart to "put DOC_ID", which requires one).

The body is read from --body, or from a file with --file, or from
stdin if neither is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := readBody(cmd)
		if err != nil {
			return err
		}

		r, err := openReplica()
		if err != nil {
			return err
		}
		defer r.Close()

		doc, err := r.Create(body)
		if err != nil {
			return fmt.Errorf("create: %w", err)
		}

		fmt.Printf("%s  rev=%s\n", doc.DocID, doc.Revision)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get DOC_ID",
	Short: "Fetch a document's current revision and body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		includeDeleted, _ := cmd.Flags().GetBool("include-deleted")

		r, err := openReplica()
		if err != nil {
			return err
		}
		defer r.Close()

		doc, ok, err := r.Get(types.DocID(args[0]), includeDeleted)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("document not found: %s", args[0])
		}

		return printDocument(cmd, doc)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete DOC_ID",
	Short: "Tombstone a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rev, _ := cmd.Flags().GetString("rev")
		if rev == "" {
			return fmt.Errorf("--rev is required (the revision last read for this document)")
		}
		revision, err := vclock.Parse(rev)
		if err != nil {
			return fmt.Errorf("invalid --rev: %w", err)
		}

		r, err := openReplica()
		if err != nil {
			return err
		}
		defer r.Close()

		res, err := r.Delete(types.DocID(args[0]), revision)
		if err != nil {
			return fmt.Errorf("delete %s: %w", args[0], err)
		}

		fmt.Printf("%s  rev=%s  outcome=%s  gen=%d\n", args[0], res.Document.Revision, res.Outcome, res.Generation)
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve DOC_ID",
	Short: "Resolve a conflicted document",
	Long: `Resolve replaces one or more conflicting revisions (each given
with a repeated --supersede flag) with a single merged body.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := readBody(cmd)
		if err != nil {
			return err
		}

		superseded, _ := cmd.Flags().GetStringSlice("supersede")
		if len(superseded) == 0 {
			return fmt.Errorf("at least one --supersede is required")
		}
		revs := make([]vclock.Clock, 0, len(superseded))
		for _, s := range superseded {
			c, err := vclock.Parse(s)
			if err != nil {
				return fmt.Errorf("invalid --supersede %q: %w", s, err)
			}
			revs = append(revs, c)
		}

		r, err := openReplica()
		if err != nil {
			return err
		}
		defer r.Close()

		res, err := r.Resolve(types.DocID(args[0]), body, revs)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", args[0], err)
		}

		fmt.Printf("%s  rev=%s  outcome=%s  gen=%d\n", args[0], res.Document.Revision, res.Outcome, res.Generation)
		return nil
	},
}

var conflictsCmd = &cobra.Command{
	Use:   "conflicts DOC_ID",
	Short: "List a document's conflicting revisions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openReplica()
		if err != nil {
			return err
		}
		defer r.Close()

		docs, err := r.ConflictsOf(types.DocID(args[0]))
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			fmt.Println("No conflicts")
			return nil
		}
		for i, doc := range docs {
			label := "conflict"
			if i == 0 {
				label = "current"
			}
			fmt.Printf("[%s] rev=%s\n%s\n\n", label, doc.Revision, doc.Body)
		}
		return nil
	},
}

func init() {
	createCmd.Flags().String("body", "", "JSON document body")
	createCmd.Flags().String("file", "", "Read the document body from a file")

	putCmd.Flags().String("body", "", "JSON document body")
	putCmd.Flags().String("file", "", "Read the document body from a file")
	putCmd.Flags().String("rev", "", "Revision last read for this document (omit to create)")

	getCmd.Flags().Bool("include-deleted", false, "Include tombstoned documents")
	getCmd.Flags().Bool("json", false, "Print the full document as JSON")

	deleteCmd.Flags().String("rev", "", "Revision last read for this document (required)")

	resolveCmd.Flags().String("body", "", "Merged JSON document body")
	resolveCmd.Flags().String("file", "", "Read the merged body from a file")
	resolveCmd.Flags().StringSlice("supersede", nil, "Revision to resolve away (repeatable)")
}

func readBody(cmd *cobra.Command) ([]byte, error) {
	if body, _ := cmd.Flags().GetString("body"); body != "" {
		return []byte(body), nil
	}
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		return os.ReadFile(file)
	}
	return os.ReadFile("/dev/stdin")
}

func printDocument(cmd *cobra.Command, doc types.Document) error {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			DocID        types.DocID `json:"doc_id"`
			Revision     string      `json:"rev"`
			Body         json.RawMessage `json:"body"`
			HasConflicts bool        `json:"has_conflicts"`
		}{doc.DocID, doc.Revision.String(), doc.Body, doc.HasConflicts})
	}
	fmt.Printf("%s  rev=%s  has_conflicts=%t\n%s\n", doc.DocID, doc.Revision, doc.HasConflicts, doc.Body)
	return nil
}
