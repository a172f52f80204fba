// Package aws provides the Controller struct that wraps the AWS services used by the webhook receiver:
// SSM for credentials, S3 for delivery archives and SNS for event fan-out.
package aws

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/smithy-go/logging"
	"github.com/isometry/zadarma-go/internal/helpers"
	"github.com/pkg/errors"
)

type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, opts ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type snsAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, opts ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Controller wraps the SSM, S3 and SNS clients with logging support.
type Controller struct {
	ctx    context.Context
	logger *slog.Logger

	config    *aws.Config
	ssmClient ssmAPI
	s3Client  s3API
	snsClient snsAPI
}

// Option defines a function type used to configure an instance of the Controller struct.
type Option func(*Controller)

// NewController initializes a Controller. The default AWS configuration is loaded unless every
// client has been supplied through options.
func NewController(opts ...Option) (*Controller, error) {
	_inst := &Controller{}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	_inst.logger = _inst.logger.With("controller", "aws")
	if _inst.ctx == nil {
		_inst.ctx = context.Background()
	}

	if _inst.ssmClient != nil && _inst.s3Client != nil && _inst.snsClient != nil {
		return _inst, nil
	}
	if _inst.config == nil {
		_inst.logger.Debug("loading default AWS configuration...")
		cfg, err := config.LoadDefaultConfig(_inst.ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load AWS configuration")
		}
		cfg.Logger = newAWSLogger(_inst.logger)
		_inst.config = &cfg
	}

	if _inst.ssmClient == nil {
		_inst.ssmClient = ssm.NewFromConfig(*_inst.config)
	}
	if _inst.s3Client == nil {
		_inst.s3Client = s3.NewFromConfig(*_inst.config)
	}
	if _inst.snsClient == nil {
		_inst.snsClient = sns.NewFromConfig(*_inst.config)
	}
	return _inst, nil
}

// GetSecret retrieves a value from the SSM Parameter Store. If encrypted is true, the value is
// returned decrypted.
func (a *Controller) GetSecret(ctx context.Context, key string, encrypted bool) (string, error) {
	a.logger.With("key", key).Debug("fetching SSM parameter...")
	out, err := a.ssmClient.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(key),
		WithDecryption: aws.Bool(encrypted),
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to load SSM parameter %s", key)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", errors.Errorf("SSM parameter %s has no value", key)
	}
	return *out.Parameter.Value, nil
}

// PutObject uploads body to bucket under key.
func (a *Controller) PutObject(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	if bucket == "" {
		return errors.New("missing S3 bucket")
	}
	a.logger.With("bucket", bucket, "key", key).Debug("putting S3 object...")
	_, err := a.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return errors.Wrap(err, "failed to put object to S3")
	}
	return nil
}

// Publish sends message to the SNS topic. Attributes become string message attributes, which
// subscribers may use in filter policies. It returns the SNS message ID.
func (a *Controller) Publish(ctx context.Context, topic string, message []byte, attributes map[string]string) (string, error) {
	if topic == "" {
		return "", errors.New("missing SNS topic")
	}

	messageAttributes := make(map[string]snstypes.MessageAttributeValue, len(attributes))
	for k, v := range attributes {
		if v == "" {
			continue
		}
		messageAttributes[k] = snstypes.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(v),
		}
	}

	out, err := a.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn:          aws.String(topic),
		Message:           aws.String(string(message)),
		MessageAttributes: messageAttributes,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to publish message to SNS")
	}
	id := aws.ToString(out.MessageId)
	a.logger.With("topic", topic, "messageId", id).Debug("published SNS message")
	return id, nil
}

type awsLogger struct {
	logger *slog.Logger
}

func newAWSLogger(logger *slog.Logger) *awsLogger {
	return &awsLogger{logger}
}

func (a *awsLogger) Logf(classification logging.Classification, format string, args ...any) {
	msg := fmt.Sprintf("[%v] %s", classification, fmt.Sprintf(format, args...))
	if classification == logging.Warn {
		a.logger.Warn(msg)
		return
	}
	a.logger.Debug(msg)
}
