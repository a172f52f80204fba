package cmd

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/isometry/zadarma-go/internal/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func cmdLambda() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lambda",
		Short: "Run the webhook receiver as an AWS Lambda function",
	}
	bindEnvMap(cmd, lambdaEnvMapString)

	cmd.AddCommand(
		&cobra.Command{
			Use:   "http",
			Short: "Handle API Gateway or function URL invocations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				logger = logger.With("mode", config.ModeLambdaHTTP)
				return runLambdaHTTP(cmd)
			},
		},
		&cobra.Command{
			Use:   "event",
			Short: "Handle EventBridge invocations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				logger = logger.With("mode", config.ModeLambdaEvent)
				return runLambdaEvent(cmd)
			},
		},
	)
	return cmd
}

func runLambdaHTTP(cmd *cobra.Command) error {
	rt, err := setup(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "failed to setup lambda")
	}
	logger.Info("lambda starting...", "payloadType", config.Lambda.PayloadType)
	lambda.StartWithOptions(rt.HandleEvent, lambda.WithContext(cmd.Context()))
	return nil
}

func runLambdaEvent(cmd *cobra.Command) error {
	rt, err := setup(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "failed to setup lambda")
	}
	logger.Info("lambda starting...")
	lambda.StartWithOptions(rt.HandleEventBridge, lambda.WithContext(cmd.Context()))
	return nil
}
