package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// interactiveContextTurns bounds how much recent conversation is carried
// into each prompt.
const interactiveContextTurns = 6

var askInteractive bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the stored documentation",
	Long: `Answers a question using retrieval-augmented generation: the question
is embedded, the most similar stored documents are retrieved and
condensed, and an answer is generated from them.

With --interactive, docsage keeps a session open and carries recent
turns into each prompt.`,
	Args: cobra.ArbitraryArgs,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVarP(&askInteractive, "interactive", "i", false, "start an interactive session")
	rootCmd.AddCommand(askCmd)
}

var (
	answerColor   = color.New(color.FgCyan)
	questionColor = color.New(color.FgGreen, color.Bold)
)

func runAsk(cmd *cobra.Command, args []string) error {
	if askInteractive {
		return runAskInteractive(cmd)
	}

	if len(args) == 0 {
		return fmt.Errorf("provide a question or use --interactive")
	}

	question := strings.Join(args, " ")
	answer := runtime.GenerateResponse(cmd.Context(), question, nil)
	answerColor.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}

// runAskInteractive reads questions from stdin until EOF or "exit".
func runAskInteractive(cmd *cobra.Command) error {
	scanner := bufio.NewScanner(os.Stdin)
	var recent []string

	cmd.Println(`Interactive session. Type "exit" to quit.`)
	for {
		questionColor.Fprint(cmd.OutOrStdout(), "> ")
		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		answer := runtime.GenerateResponse(cmd.Context(), question, recent)
		answerColor.Fprintln(cmd.OutOrStdout(), answer)

		recent = append(recent, "Q: "+question, "A: "+answer)
		if len(recent) > interactiveContextTurns {
			recent = recent[len(recent)-interactiveContextTurns:]
		}
	}

	return scanner.Err()
}
