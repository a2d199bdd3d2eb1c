package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/hunchagency/dotfile/internal/classify"
)

// Flags for the classify command.
var (
	flagSenderName  string
	flagSenderEmail string
	flagRecipients  []string
	flagSubject     string
	flagBody        string
	flagAttachments []string
)

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify an email without filing anything",
		Long:  "Runs the classifier over the given email fields and prints the verdict as JSON. Useful for checking how a request would route before it arrives.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClassify(cmd)
		},
	}

	cmd.Flags().StringVar(&flagSenderName, "sender-name", "", "sender display name")
	cmd.Flags().StringVar(&flagSenderEmail, "sender", "", "sender email address")
	cmd.Flags().StringSliceVar(&flagRecipients, "to", nil, "recipient email addresses")
	cmd.Flags().StringVar(&flagSubject, "subject", "", "subject line")
	cmd.Flags().StringVar(&flagBody, "body", "", "email body")
	cmd.Flags().StringSliceVar(&flagAttachments, "attachments", nil, "attachment filenames")

	return cmd
}

func runClassify(cmd *cobra.Command) error {
	cfg := resolvedCfg
	logger := buildLogger(cfg)

	// A one-shot diagnostic should work without credentials: missing
	// oracle config degrades to the rule engine instead of failing.
	provider := cfg.Classifier.Provider
	if provider != "none" && cfg.Classifier.APIKey == "" {
		logger.Warn("classifier API key not set, using rules only")

		provider = "none"
	}

	oracle, err := classify.NewOracle(provider, cfg.Classifier.APIKey, cfg.Classifier.Model, cfg.Service.InternalDomain, logger)
	if err != nil {
		return err
	}

	classifier := classify.New(
		oracle,
		cfg.Service.InternalDomain,
		time.Duration(cfg.Classifier.TimeoutSeconds)*time.Second,
		logger,
	)

	verdict, source := classifier.Classify(cmd.Context(), classify.Email{
		SenderName:      flagSenderName,
		SenderEmail:     flagSenderEmail,
		Recipients:      flagRecipients,
		Subject:         flagSubject,
		Body:            flagBody,
		AttachmentNames: flagAttachments,
	})

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	return enc.Encode(struct {
		*classify.Verdict
		Source classify.Source `json:"source"`
	}{verdict, source})
}
