package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var knowledgeSearchLimit int

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage the knowledge store",
}

var knowledgeAddCmd = &cobra.Command{
	Use:   "add [text-or-path...]",
	Short: "Add text or files to the knowledge store",
	Long: `Ingests the given inputs into the knowledge database. Inputs starting
with "/", "./" or "../" are read as files; everything else is treated as
literal text. Long inputs are stored in full and additionally split into
overlapping chunks for retrieval.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runKnowledgeAdd,
}

var knowledgeSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored knowledge by text",
	Args:  cobra.ExactArgs(1),
	RunE:  runKnowledgeSearch,
}

var knowledgeDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runKnowledgeDelete,
}

func init() {
	knowledgeSearchCmd.Flags().IntVarP(&knowledgeSearchLimit, "limit", "n", 10, "maximum number of results")

	knowledgeCmd.AddCommand(knowledgeAddCmd)
	knowledgeCmd.AddCommand(knowledgeSearchCmd)
	knowledgeCmd.AddCommand(knowledgeDeleteCmd)
	rootCmd.AddCommand(knowledgeCmd)
}

func runKnowledgeAdd(cmd *cobra.Command, args []string) error {
	report, err := runtime.AddKnowledge(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("adding knowledge: %w", err)
	}

	printIngestReport(cmd, report)
	return nil
}

func runKnowledgeSearch(cmd *cobra.Command, args []string) error {
	docs, err := runtime.SearchByText(cmd.Context(), args[0], knowledgeSearchLimit)
	if err != nil {
		return fmt.Errorf("searching knowledge: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No matches found.")
		return nil
	}

	for i, doc := range docs {
		kind := "chunk"
		if doc.IsFullText {
			kind = "full text"
		}

		snippet := doc.Content
		if len(snippet) > 120 {
			snippet = snippet[:120] + "..."
		}

		cmd.Printf("  [%d] %s (%s)\n", i+1, doc.ID, kind)
		cmd.Printf("      %s\n", snippet)
	}
	return nil
}

func runKnowledgeDelete(cmd *cobra.Command, args []string) error {
	if err := store.DeleteDocument(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	cmd.Printf("Deleted %s.\n", args[0])
	return nil
}
