package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/exam-engine/internal/models"
	"github.com/SAP-F-2025/exam-engine/internal/scanner"
)

func newScanCmd() *cobra.Command {
	var (
		questionType string
		file         string
		options      []string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Print the answer template derived from a question text",
		Example: `  exam-engine scan --type gap --file question.txt
  echo "1. X 2. Y A. P B. Q" | exam-engine scan --type matching`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readQuestion(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			tpl := scanner.Scan(models.Question{
				RawType: questionType,
				Text:    text,
				Options: options,
			})

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(tpl)
		},
	}

	cmd.Flags().StringVarP(&questionType, "type", "t", "", "Question type (mcq, tfng, gap, matching, table, ...)")
	cmd.Flags().StringVarP(&file, "file", "f", "-", "File holding the question text, - for stdin")
	cmd.Flags().StringSliceVar(&options, "option", nil, "Explicit option text, repeatable")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func readQuestion(stdin io.Reader, file string) (string, error) {
	var (
		raw []byte
		err error
	)
	if file == "" || file == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read question: %w", err)
	}
	return string(raw), nil
}
