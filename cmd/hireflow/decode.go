package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/hireflow/internal/config"
	"github.com/jonathan/hireflow/internal/observability"
	"github.com/jonathan/hireflow/internal/payload"
	"github.com/jonathan/hireflow/internal/rehydrate"
	"github.com/jonathan/hireflow/internal/synthesis"
	"github.com/jonathan/hireflow/internal/types"
	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <response-file>",
	Short: "Extract and verify a PDF from a saved synthesis response",
	Long: `Runs the payload locator and decoder over a saved response body.
JSON and text bodies are searched for an encoded document; use --content-type application/pdf
to treat the file as a binary response.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

var (
	decodeContentType string
	decodeType        string
	decodeJobTitle    string
	decodeCompany     string
	decodeRecord      bool
	decodeOutput      string
)

func init() {
	decodeCmd.Flags().StringVar(&decodeContentType, "content-type", "application/json", "Content type the response was delivered with")
	decodeCmd.Flags().StringVarP(&decodeType, "type", "t", string(types.CategoryCoverLetter), "Document type: cover_letter or resume_summary")
	decodeCmd.Flags().StringVar(&decodeJobTitle, "job-title", "", "Job title recorded with the entry")
	decodeCmd.Flags().StringVar(&decodeCompany, "company", "", "Company name recorded with the entry")
	decodeCmd.Flags().BoolVar(&decodeRecord, "record", false, "Record the decoded document in history")
	decodeCmd.Flags().StringVarP(&decodeOutput, "out", "o", "", "Output directory for the PDF (optional)")

	rootCmd.AddCommand(decodeCmd)
}

// envelopeFromFile wraps a saved response body the way the transport would.
func envelopeFromFile(path, contentType string) (types.Envelope, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read response file: %w", err)
	}
	if strings.Contains(strings.ToLower(contentType), payload.MediaType) {
		return types.BinaryPayload{Data: content, ContentType: contentType}, nil
	}
	return types.TextPayload{Text: string(content)}, nil
}

func runDecode(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, err := envelopeFromFile(args[0], decodeContentType)
	if err != nil {
		return err
	}

	req := types.SynthesisRequest{
		Type:        types.Category(decodeType),
		JobTitle:    decodeJobTitle,
		CompanyName: decodeCompany,
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid --type %q: %w", decodeType, err)
	}

	var generator *synthesis.Generator
	if decodeRecord {
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		generator = synthesis.NewGenerator(nil, a.store, a.cfg.Policy())
	} else {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		generator = synthesis.NewGenerator(nil, nil, cfg.Policy())
	}

	result, err := generator.Process(ctx, req, env)
	if err != nil {
		return describeFailure(err)
	}

	out := cmd.OutOrStdout()
	status := "verified"
	if !result.Document.Verified {
		status = "unverified"
	}
	_, _ = fmt.Fprintf(out, "Found %s document (%d bytes)\n", status, result.Document.Size())
	if verbose {
		observability.NewPrinter(out).PrintDocument(result.Filename, result.Document)
	}

	if decodeOutput != "" {
		path, err := rehydrate.WriteDocument(decodeOutput, result.Filename, result.Document.Data)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Saved %s\n", path)
	}
	if result.Recorded {
		_, _ = fmt.Fprintf(out, "Recorded in history as %s\n", result.Entry.ID)
	}
	return nil
}
