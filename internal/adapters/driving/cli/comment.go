package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/imgscout/internal/core/domain"
	"github.com/custodia-labs/imgscout/internal/core/services"
)

// stdinIsTerminal reports whether stdin is interactive. Replaced in tests.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Manage image comments",
	Long:  `Attach a private comment to an image or read it back. Each image has at most one comment.`,
}

var commentAddCmd = &cobra.Command{
	Use:   "add <image-id> [text]",
	Short: "Set the comment for an image",
	Long: `Stores text as the comment for the image, replacing any previous one.
When text is omitted it is read from stdin, which must not be a terminal.

Examples:
  imgscout comment add abc123 "great shot"
  echo "great shot" | imgscout comment add abc123`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCommentAdd,
}

var commentGetCmd = &cobra.Command{
	Use:   "get <image-id>",
	Short: "Show the comment for an image",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommentGet,
}

func init() {
	commentCmd.AddCommand(commentAddCmd)
	commentCmd.AddCommand(commentGetCmd)
	rootCmd.AddCommand(commentCmd)
}

func runCommentAdd(cmd *cobra.Command, args []string) error {
	imageID := args[0]

	text, err := commentText(cmd, args)
	if err != nil {
		return err
	}

	svc, err := requireServices()
	if err != nil {
		return err
	}

	rows, err := services.AwaitUpsert(cmd.Context(), svc.Repository, imageID, text)
	if err != nil {
		return fmt.Errorf("saving comment: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved comment for %s (%d row)\n", imageID, rows)
	return nil
}

// commentText returns the text argument, or stdin when it is piped.
func commentText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 2 {
		return args[1], nil
	}
	if stdinIsTerminal() {
		return "", errors.New("comment text required: pass it as an argument or pipe it on stdin")
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	text := strings.TrimRight(string(data), "\r\n")
	if text == "" {
		return "", fmt.Errorf("comment text is empty: %w", domain.ErrInvalidInput)
	}
	return text, nil
}

func runCommentGet(cmd *cobra.Command, args []string) error {
	imageID := args[0]

	svc, err := requireServices()
	if err != nil {
		return err
	}

	text, err := services.AwaitComment(cmd.Context(), svc.Repository, imageID)
	if errors.Is(err, domain.ErrNotFound) {
		fmt.Fprintf(cmd.OutOrStdout(), "No comment for %s.\n", imageID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading comment: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
