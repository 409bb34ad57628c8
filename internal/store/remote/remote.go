// Package remote implements the store contract against an S3-compatible
// object store. Every record is one JSON document under a per-user prefix,
// keyed by the record's generated id, so locally created records keep their
// identity when written remotely.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hollis/grocer/internal/store"
)

// Client is the slice of the S3 API the adapter uses, kept as an interface
// for testability.
type Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// fetchConcurrency bounds the document fan-out when materializing a listing.
const fetchConcurrency = 8

// Provider bundles the object-store-backed stores for one authenticated
// user. A provider built with an empty user id fails every call with
// ErrUnauthenticated.
type Provider struct {
	client Client
	bucket string
	userID string
	logger *slog.Logger
}

func New(client Client, bucket, userID string, logger *slog.Logger) *Provider {
	return &Provider{
		client: client,
		bucket: bucket,
		userID: userID,
		logger: logger,
	}
}

func (p *Provider) Checklists() store.ChecklistStore         { return &ChecklistStore{p} }
func (p *Provider) Items() store.ItemStore                   { return &ItemStore{p} }
func (p *Provider) ChecklistItems() store.ChecklistItemStore { return &ChecklistItemStore{p} }
func (p *Provider) Histories() store.HistoryStore            { return &HistoryStore{p} }
func (p *Provider) Stats() store.StatsStore                  { return &StatsStore{p} }

func (p *Provider) key(entity string, id int64) string {
	return fmt.Sprintf("users/%s/%s/%d.json", p.userID, entity, id)
}

func (p *Provider) prefix(entity string) string {
	return fmt.Sprintf("users/%s/%s/", p.userID, entity)
}

func (p *Provider) checkScope() error {
	if p.userID == "" {
		return store.ErrUnauthenticated
	}
	return nil
}

// unavailable tags err as a store-unavailable failure while keeping the
// original error matchable.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(store.ErrUnavailable, err))
}

func isNoSuchKey(err error) bool {
	var nsk *types.NoSuchKey
	return errors.As(err, &nsk)
}

func (p *Provider) getDoc(ctx context.Context, key string, v any) error {
	if err := p.checkScope(); err != nil {
		return err
	}
	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if isNoSuchKey(err) {
		return store.ErrNotFound
	}
	if err != nil {
		return unavailable("get "+key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return unavailable("read "+key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (p *Provider) putDoc(ctx context.Context, key string, v any) error {
	if err := p.checkScope(); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return unavailable("put "+key, err)
	}
	return nil
}

// deleteDoc removes the document, failing with ErrNotFound when it does not
// exist so deletes behave the same as on the local backend, where S3 itself
// would silently succeed.
func (p *Provider) deleteDoc(ctx context.Context, key string) error {
	var ignored json.RawMessage
	if err := p.getDoc(ctx, key, &ignored); err != nil {
		return err
	}
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return unavailable("delete "+key, err)
	}
	return nil
}

// listKeys pages through every object key under prefix.
func (p *Provider) listKeys(ctx context.Context, prefix string) ([]string, error) {
	if err := p.checkScope(); err != nil {
		return nil, err
	}
	var keys []string
	var token *string
	for {
		out, err := p.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(p.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, unavailable("list "+prefix, err)
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			return keys, nil
		}
		token = out.NextContinuationToken
	}
}
