package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithy "github.com/aws/smithy-go"

	"github.com/gardenstate-security/website-api/internal/leads"
	"github.com/gardenstate-security/website-api/pkg/logging"
)

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store writes accepted submissions to S3 as one JSON object per lead.
type Store struct {
	bucket   string
	s3Client S3API
	logger   *logging.Logger
}

// NewStore creates an archive Store. If bucket is empty, all operations are no-ops.
func NewStore(s3Client S3API, bucket string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{bucket: bucket, s3Client: s3Client, logger: logger}
}

// Enabled returns true if archival is configured (bucket is set).
func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// Save writes rec under leads/v1/{kind}/{yyyy}/{mm}/{dd}/{reference}.json
// and appends it to the monthly manifest.
func (s *Store) Save(ctx context.Context, rec leads.Record) error {
	if !s.Enabled() {
		return nil
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("archive: marshal record: %w", err)
	}

	at := rec.CreatedAt.UTC()
	if at.IsZero() {
		at = time.Now().UTC()
	}
	key := ObjectKey(rec.Kind, rec.Reference, at)

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("archive: s3 put %s: %w", key, err)
	}

	s.logger.Info("archived submission to S3", "reference", rec.Reference, "kind", rec.Kind, "s3_key", key)

	entry := ManifestEntry{
		Reference:  rec.Reference,
		Kind:       string(rec.Kind),
		S3Key:      key,
		PhoneHash:  HashPhone(rec.Phone),
		ArchivedAt: at.Format(time.RFC3339),
	}
	if err := s.AppendManifest(ctx, entry, at); err != nil {
		// the object itself is already stored
		s.logger.Warn("failed to append manifest", "error", err, "reference", rec.Reference)
	}
	return nil
}

// ObjectKey is the S3 key a record is stored under.
func ObjectKey(kind leads.Kind, reference string, at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("leads/v1/%s/%d/%02d/%02d/%s.json", kind, at.Year(), at.Month(), at.Day(), reference)
}

// AppendManifest appends a JSONL line to the manifest for at's month.
// S3 has no append, so the manifest is read and rewritten with a
// conditional PUT (If-Match on the ETag read, If-None-Match when new). A
// concurrent writer makes the PUT fail its precondition; the append is then
// retried on the fresh manifest.
func (s *Store) AppendManifest(ctx context.Context, entry ManifestEntry, at time.Time) error {
	if !s.Enabled() {
		return nil
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("archive: marshal manifest entry: %w", err)
	}

	at = at.UTC()
	manifestKey := fmt.Sprintf("leads/v1/manifests/%d-%02d.jsonl", at.Year(), at.Month())

	for attempt := 1; ; attempt++ {
		err := s.appendOnce(ctx, manifestKey, line)
		if err == nil || !isConflict(err) {
			return err
		}
		if attempt == maxManifestAttempts {
			return fmt.Errorf("archive: manifest %s still contended after %d attempts: %w", manifestKey, attempt, err)
		}
		s.logger.Debug("manifest changed concurrently, retrying", "key", manifestKey, "attempt", attempt)
	}
}

const maxManifestAttempts = 5

func (s *Store) appendOnce(ctx context.Context, manifestKey string, line []byte) error {
	var existing []byte
	var etag *string
	getResp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(manifestKey),
	})
	switch {
	case err == nil:
		etag = getResp.ETag
		existing, err = io.ReadAll(getResp.Body)
		getResp.Body.Close()
		if err != nil {
			return fmt.Errorf("archive: read manifest: %w", err)
		}
	case isNotFound(err):
		s.logger.Debug("manifest not found, creating new", "key", manifestKey)
	default:
		return fmt.Errorf("archive: s3 get manifest: %w", err)
	}

	var buf bytes.Buffer
	if len(existing) > 0 {
		buf.Write(existing)
		if existing[len(existing)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	buf.Write(line)
	buf.WriteByte('\n')

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(manifestKey),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	}
	if etag != nil {
		input.IfMatch = etag
	} else {
		input.IfNoneMatch = aws.String("*")
	}
	if _, err := s.s3Client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("archive: s3 put manifest: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *s3types.NotFound
	return errors.As(err, &nf)
}

// isConflict reports a failed If-Match/If-None-Match precondition.
func isConflict(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	}
	return false
}

var _ leads.Archive = (*Store)(nil)
