package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/isometry/zadarma-go/internal/config"
	"github.com/isometry/zadarma-go/internal/webhook"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func cmdWebhook() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Sign and verify webhook deliveries",
	}
	cmd.PersistentFlags().String("content-type", "", "The payload content type (default detected from the payload)")
	cmd.AddCommand(cmdWebhookSign(), cmdWebhookVerify())
	return cmd
}

func cmdWebhookSign() *cobra.Command {
	return &cobra.Command{
		Use:   "sign [FILE]",
		Short: "Print the signature of a delivery payload read from FILE or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPayload(cmd, args)
			if err != nil {
				return err
			}
			event, err := webhook.Decode(p)
			if err != nil {
				return err
			}
			secret, err := webhookSecret(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), webhook.Sign(event, secret))
			return err
		},
	}
}

func cmdWebhookVerify() *cobra.Command {
	var signature string
	cmd := &cobra.Command{
		Use:   "verify [FILE]",
		Short: "Verify a delivery payload read from FILE or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPayload(cmd, args)
			if err != nil {
				return err
			}
			secret, err := webhookSecret(cmd.Context())
			if err != nil {
				return err
			}

			result := webhook.Verify(p, secret, signature, parseEvents(config.Webhook.Events)...)
			report := struct {
				Outcome string       `json:"outcome"`
				Event   webhook.Kind `json:"event,omitempty"`
				CallID  string       `json:"pbxCallId,omitempty"`
				Error   string       `json:"error,omitempty"`
			}{Outcome: result.Outcome.String(), Event: result.Kind}
			if result.Event != nil {
				report.CallID = result.Event.CallID()
			}
			if result.Err != nil {
				report.Error = result.Err.Error()
			}
			if err = printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}

			switch {
			case result.Outcome == webhook.Verified:
				return nil
			case result.Outcome == webhook.Unverified && !config.Webhook.RequireSignature:
				return nil
			default:
				return errors.Errorf("delivery %s", result.Outcome)
			}
		},
	}
	cmd.Flags().StringVarP(&signature, "signature", "s", "", "The signature received with the delivery")
	return cmd
}

func webhookSecret(ctx context.Context) (string, error) {
	aws, err := newAWSController(ctx)
	if err != nil {
		return "", errors.Wrap(err, "failed to create AWS controller")
	}
	zc, err := newZadarmaController(aws)
	if err != nil {
		return "", errors.Wrap(err, "failed to create zadarma controller")
	}
	secret, err := zc.WebhookSecret(ctx)
	if err != nil {
		return "", err
	}
	if secret == "" {
		return "", errors.New("missing [WEBHOOK_SECRET] or [ZADARMA_SECRET]")
	}
	return secret, nil
}

func readPayload(cmd *cobra.Command, args []string) (webhook.Payload, error) {
	var (
		body []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		body, err = io.ReadAll(cmd.InOrStdin())
	} else {
		body, err = os.ReadFile(filepath.Clean(args[0]))
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read payload")
	}

	contentType, _ := cmd.Flags().GetString("content-type")
	if contentType == "" {
		contentType = "application/x-www-form-urlencoded"
		if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '{' {
			contentType = "application/json"
		}
	}
	return webhook.ParseBody(contentType, bytes.TrimSpace(body))
}
