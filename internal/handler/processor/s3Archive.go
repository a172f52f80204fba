package processor

import (
	"context"
	"encoding/json"
	"log/slog"
	"path"
	"strings"

	"github.com/isometry/zadarma-go/internal/helpers"
	"github.com/pkg/errors"
)

// ObjectPutter stores an object. *aws.Controller satisfies it.
type ObjectPutter interface {
	PutObject(ctx context.Context, bucket, key string, body []byte, contentType string) error
}

type s3ArchiveProcessor struct {
	logger *slog.Logger
	putter ObjectPutter
	bucket string
	prefix string
}

// NewS3ArchiveProcessor returns a Processor that stores each delivery as a JSON document under
// {prefix}/{event}/{yyyy}/{mm}/{dd}/{id}.json.
func NewS3ArchiveProcessor(putter ObjectPutter, bucket, prefix string, opts ...Option) Processor {
	_inst := &s3ArchiveProcessor{putter: putter, bucket: bucket, prefix: strings.Trim(prefix, "/"), logger: helpers.NewNoopLogger()}
	applyOpts(_inst, opts...)
	return _inst
}

func (p *s3ArchiveProcessor) SetLogger(logger *slog.Logger) {
	p.logger = logger.With("processor", "s3-archive")
}

func (p *s3ArchiveProcessor) objectKey(d *Delivery) string {
	return path.Join(p.prefix, strings.ToLower(string(d.Kind())), d.ReceivedAt.Format("2006/01/02"), d.ID+".json")
}

func (p *s3ArchiveProcessor) Process(ctx context.Context, d *Delivery) error {
	logger := p.logger.With(slog.Any("delivery", d))
	if p.bucket == "" {
		return errors.Wrap(errMissingTarget, "s3 bucket")
	}
	body, err := json.Marshal(d)
	if err != nil {
		return errors.Wrap(err, "failed to marshal delivery")
	}
	key := p.objectKey(d)
	if err = p.putter.PutObject(ctx, p.bucket, key, body, "application/json"); err != nil {
		logger.Warn("failed to archive delivery in S3", slog.Any("error", err))
		return err
	}
	logger.Debug("delivery archived", slog.String("bucket", p.bucket), slog.String("key", key))
	return nil
}
