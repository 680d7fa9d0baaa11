package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"geekqa/internal/bootstrap"
	"geekqa/internal/config"
	"geekqa/internal/rag"
)

var askJSON bool

// newAnswerer builds the QA pipeline; replaced in tests.
var newAnswerer = func(ctx context.Context, cfg *config.Config) (rag.Answerer, func() error, error) {
	awsCfg, err := bootstrap.LoadAWS(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return bootstrap.NewAnswerer(cfg, awsCfg)
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question through the retrieval and generation pipeline",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

type askOutput struct {
	Text   string `json:"text,omitempty"`
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	question := strings.Join(args, " ")

	qa, closeFn, err := newAnswerer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer func() { _ = closeFn() }()

	answer, err := qa.AnswerQuestion(ctx, question)
	if askJSON {
		out := askOutput{Text: answer.Text}
		if err != nil {
			out = askOutput{Reason: string(rag.ReasonOf(err)), Error: err.Error()}
		}
		data, mErr := json.MarshalIndent(out, "", "  ")
		if mErr != nil {
			return fmt.Errorf("failed to marshal answer: %w", mErr)
		}
		cmd.Println(string(data))
		return err
	}

	if err != nil {
		return fmt.Errorf("question failed (%s): %w", rag.ReasonOf(err), err)
	}
	cmd.Println(answer.Text)
	return nil
}
