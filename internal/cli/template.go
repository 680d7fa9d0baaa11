package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"geekqa/internal/prompt"
	"geekqa/internal/retrieval"
)

var (
	templateFile     string
	templateQuestion string
)

var templateCmd = &cobra.Command{
	Use:         "template",
	Short:       "Inspect and validate prompt templates",
	Annotations: map[string]string{skipConfigAnnotation: "true"},
}

var templateCheckCmd = &cobra.Command{
	Use:         "check",
	Short:       "Validate a prompt template",
	Long:        `Checks that the template contains {context} and {question} exactly once each and no other placeholders.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfigAnnotation: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := resolveTemplatePath()
		if _, err := prompt.LoadComposer(path); err != nil {
			return err
		}
		if path == "" {
			path = "built-in template"
		}
		cmd.Printf("OK: %s\n", path)
		return nil
	},
}

var templateRenderCmd = &cobra.Command{
	Use:         "render",
	Short:       "Print the prompt for a question with an empty context",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfigAnnotation: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		composer, err := prompt.LoadComposer(resolveTemplatePath())
		if err != nil {
			return err
		}
		rendered, err := composer.Compose([]retrieval.DocumentChunk{}, templateQuestion)
		if err != nil {
			return fmt.Errorf("failed to render template: %w", err)
		}
		cmd.Println(rendered)
		return nil
	},
}

// resolveTemplatePath prefers --file, then PROMPT_TEMPLATE_PATH, then the built-in template.
func resolveTemplatePath() string {
	if templateFile != "" {
		return templateFile
	}
	return os.Getenv("PROMPT_TEMPLATE_PATH")
}

func init() {
	templateCmd.PersistentFlags().StringVarP(&templateFile, "file", "f", "", "template file (default: PROMPT_TEMPLATE_PATH or built-in)")
	templateRenderCmd.Flags().StringVarP(&templateQuestion, "question", "q", "秋葉原とは？", "question to render")
	templateCmd.AddCommand(templateCheckCmd, templateRenderCmd)
	rootCmd.AddCommand(templateCmd)
}
