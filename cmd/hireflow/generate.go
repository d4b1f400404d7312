package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/hireflow/internal/observability"
	"github.com/jonathan/hireflow/internal/payload"
	"github.com/jonathan/hireflow/internal/rehydrate"
	"github.com/jonathan/hireflow/internal/types"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a cover letter or resume summary PDF",
	Long:  "Submits a synthesis request to the configured webhook, verifies the returned PDF, records it in history and writes it to the output directory.",
	RunE:  runGenerate,
}

var (
	generateType       string
	generateJobTitle   string
	generateCompany    string
	generateName       string
	generateEmail      string
	generatePhone      string
	generateCity       string
	generateCountry    string
	generateAddress    string
	generateJobFile    string
	generateResumeFile string
	generateAttachment string
	generateOutput     string
)

func init() {
	generateCmd.Flags().StringVarP(&generateType, "type", "t", string(types.CategoryCoverLetter), "Document type: cover_letter or resume_summary")
	generateCmd.Flags().StringVar(&generateJobTitle, "job-title", "", "Job title")
	generateCmd.Flags().StringVar(&generateCompany, "company", "", "Company name")
	generateCmd.Flags().StringVar(&generateName, "name", "", "Candidate full name")
	generateCmd.Flags().StringVar(&generateEmail, "email", "", "Candidate email")
	generateCmd.Flags().StringVar(&generatePhone, "phone", "", "Candidate phone")
	generateCmd.Flags().StringVar(&generateCity, "city", "", "Candidate city")
	generateCmd.Flags().StringVar(&generateCountry, "country", "", "Candidate country")
	generateCmd.Flags().StringVar(&generateAddress, "address", "", "Candidate address")
	generateCmd.Flags().StringVarP(&generateJobFile, "job", "j", "", "Path to job posting text file")
	generateCmd.Flags().StringVarP(&generateResumeFile, "resume", "r", "", "Path to resume text file")
	generateCmd.Flags().StringVar(&generateAttachment, "attachment", "", "Path to a resume file sent as an inline attachment")
	generateCmd.Flags().StringVarP(&generateOutput, "out", "o", ".", "Output directory for the PDF")

	rootCmd.AddCommand(generateCmd)
}

// readOptionalFile returns the file content, or "" when path is empty.
func readOptionalFile(path, what string) (string, error) {
	if path == "" {
		return "", nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s file: %w", what, err)
	}
	return string(content), nil
}

func buildSynthesisRequest() (types.SynthesisRequest, error) {
	req := types.SynthesisRequest{
		Action:      types.DefaultAction,
		Type:        types.Category(generateType),
		FullName:    generateName,
		Email:       generateEmail,
		Phone:       generatePhone,
		City:        generateCity,
		Country:     generateCountry,
		Address:     generateAddress,
		CompanyName: generateCompany,
		JobTitle:    generateJobTitle,
	}

	var err error
	if req.JobPosting, err = readOptionalFile(generateJobFile, "job posting"); err != nil {
		return req, err
	}
	if req.ResumeText, err = readOptionalFile(generateResumeFile, "resume"); err != nil {
		return req, err
	}

	if generateAttachment != "" {
		content, err := os.ReadFile(generateAttachment)
		if err != nil {
			return req, fmt.Errorf("failed to read attachment: %w", err)
		}
		req.ResumeAttachment = base64.StdEncoding.EncodeToString(content)
		req.ResumeFileName = filepath.Base(generateAttachment)
	}

	return req, nil
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	req, err := buildSynthesisRequest()
	if err != nil {
		return err
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	generator, err := a.generator()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)
	if verbose {
		printer.PrintRequest(&req)
	}

	result, err := generator.Generate(ctx, req)
	if err != nil {
		return describeFailure(err)
	}

	path, err := rehydrate.WriteDocument(generateOutput, result.Filename, result.Document.Data)
	if err != nil {
		return err
	}

	if verbose {
		printer.PrintDocument(result.Filename, result.Document)
	}
	_, _ = fmt.Fprintf(out, "Saved %s (%d bytes)\n", path, result.Document.Size())
	if !result.Document.Verified {
		_, _ = fmt.Fprintln(out, "Warning: document does not start with a PDF signature")
	}
	if result.Recorded {
		_, _ = fmt.Fprintf(out, "Recorded in history as %s\n", result.Entry.ID)
	} else {
		_, _ = fmt.Fprintln(out, "Warning: document was not recorded in history")
	}
	return nil
}

// describeFailure turns a payload failure into its user-facing message.
func describeFailure(err error) error {
	var f *payload.Failure
	if errors.As(err, &f) {
		return fmt.Errorf("%s (%s)", f.UserMessage(), f.Reason)
	}
	return err
}
