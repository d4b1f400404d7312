package main

import (
	"fmt"

	"github.com/jonathan/hireflow/internal/config"
	"github.com/jonathan/hireflow/internal/llm"
	"github.com/jonathan/hireflow/internal/types"
	"github.com/spf13/cobra"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Write a plain-text cover letter or resume summary with an LLM",
	RunE:  runDraft,
}

var (
	draftType       string
	draftName       string
	draftJobFile    string
	draftResumeFile string
)

func init() {
	draftCmd.Flags().StringVarP(&draftType, "type", "t", string(types.CategoryCoverLetter), "Document type: cover_letter or resume_summary")
	draftCmd.Flags().StringVar(&draftName, "name", "", "Candidate full name (required)")
	draftCmd.Flags().StringVarP(&draftJobFile, "job", "j", "", "Path to job description text file (required)")
	draftCmd.Flags().StringVarP(&draftResumeFile, "resume", "r", "", "Path to resume text file (required)")

	for _, name := range []string{"name", "job", "resume"} {
		if err := draftCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}

	rootCmd.AddCommand(draftCmd)
}

func runDraft(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	jobDescription, err := readOptionalFile(draftJobFile, "job description")
	if err != nil {
		return err
	}
	resumeText, err := readOptionalFile(draftResumeFile, "resume")
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	llmCfg, apiKey := cfg.LLMConfig()
	if apiKey == "" {
		return fmt.Errorf("no API key configured for provider %s", llmCfg.Provider)
	}

	client, err := llm.NewClient(ctx, llmCfg, apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	drafter := llm.NewDrafter(client)
	defer drafter.Close()

	text, err := drafter.Draft(ctx, llm.DraftRequest{
		Type:           types.Category(draftType),
		JobDescription: jobDescription,
		ResumeText:     resumeText,
		FullName:       draftName,
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
