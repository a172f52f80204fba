package cmd

import (
	"time"

	"github.com/isometry/zadarma-go/internal/config"
	"github.com/isometry/zadarma-go/internal/helpers"
)

var envMapString = map[*string]boundEnvVar[string]{
	&config.Global.Mode: {
		Name:        "mode",
		Description: "The application runtime mode. Possible values are 'service', 'lambda-http' and 'lambda-event'",
		Short:       helpers.Ptr("m"),
	},
	&config.Zadarma.Key: {
		Name:        "zadarma-key",
		Description: "The API user key",
	},
	&config.Zadarma.Secret: {
		Name:        "zadarma-secret",
		Description: "The API secret. Also verifies webhook deliveries unless a webhook secret is set",
		Sensitive:   true,
	},
	&config.Zadarma.AuthMode: {
		Name:        "zadarma-auth-mode",
		Description: "Credentials provider. Supported values are 'static' and 'ssm'",
		Short:       helpers.Ptr("A"),
	},
	&config.Zadarma.SSMKey: {
		Name:        "zadarma-ssm-key",
		Description: "The SSM parameter holding the credentials as JSON ({\"key\", \"secret\", \"webhook_secret\"})",
	},
	&config.Zadarma.BaseURL: {
		Name:        "zadarma-base-url",
		Description: "Override the API base URL",
		Hidden:      true,
	},
	&config.Webhook.Secret: {
		Name:        "webhook-secret",
		Description: "The secret used to verify webhook deliveries",
		Sensitive:   true,
	},
	&config.Webhook.SignatureHeader: {
		Name:        "webhook-signature-header",
		Description: "The request header carrying the delivery signature",
	},
	&config.Dedup.Backend: {
		Name:        "dedup-backend",
		Description: "Delivery de-duplication backend. Supported values are 'none', 'memory' and 'redis'",
	},
	&config.Dedup.Redis.Address: {
		Name:        "dedup-redis-address",
		Description: "The Redis address used by the 'redis' de-duplication backend",
		Env:         helpers.Ptr("REDIS_ADDRESS"),
	},
	&config.Dedup.Redis.Password: {
		Name:        "dedup-redis-password",
		Description: "The Redis password used by the 'redis' de-duplication backend",
		Env:         helpers.Ptr("REDIS_PASSWORD"),
		Sensitive:   true,
	},
	&config.Archive.Bucket: {
		Name:        "archive-s3-bucket",
		Description: "The S3 bucket accepted deliveries are archived to",
	},
	&config.Archive.Prefix: {
		Name:        "archive-s3-prefix",
		Description: "The key prefix of archived deliveries",
	},
	&config.Forward.Topic: {
		Name:        "forward-sns-topic",
		Description: "The SNS topic ARN accepted deliveries are published to",
	},
}

var envMapBool = map[*bool]boundEnvVar[bool]{
	&config.Global.Logging.CallerTrace: {
		Name:        "verbosity-caller-trace",
		Description: "Enable caller trace in logs",
		Short:       helpers.Ptr("V"),
	},
	&config.Zadarma.Sandbox: {
		Name:        "zadarma-sandbox",
		Description: "Use the sandbox API",
	},
	&config.Webhook.RequireSignature: {
		Name:        "webhook-require-signature",
		Description: "Reject unsigned webhook deliveries",
	},
	&config.Archive.Enabled: {
		Name:        "archive-s3",
		Description: "Enable S3 archiving of accepted deliveries",
	},
	&config.Forward.Enabled: {
		Name:        "forward-sns",
		Description: "Enable SNS forwarding of accepted deliveries",
	},
}

var envMapCount = map[*int]boundEnvVar[int]{
	&config.Global.Logging.Verbosity: {
		Name:        "verbosity",
		Description: "Increase logger verbosity (default WarnLevel)",
		Short:       helpers.Ptr("v"),
	},
}

var envMapStringSlice = map[*[]string]boundEnvVar[[]string]{
	&config.Webhook.Events: {
		Name:        "webhook-events",
		Description: "The webhook events to process. Others are acknowledged and ignored (default all)",
	},
}

var envMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&config.Dedup.TTL: {
		Name:        "dedup-ttl",
		Description: "How long a delivery is remembered for de-duplication",
	},
}
