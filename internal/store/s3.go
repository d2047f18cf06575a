package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/horusauth/horus/internal/config"
)

// S3Store keeps account bundles in an S3 bucket:
//
//	users/<user>/<user>.jpg                      reference face
//	users/<user>/gestures/GestureConfig.json     combination config
//	users/<user>/gestures/<Role>Gesture<n>.jpg   enrolled gesture images
//
// The config object is written last and existence is keyed off it, so an
// account whose create failed partway is invisible and the username stays
// enrollable.
type S3Store struct {
	client *s3.Client
	bucket string
}

func NewS3Store(ctx context.Context, cfg *config.S3Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

func faceKey(user string) string {
	return fmt.Sprintf("users/%s/%s.jpg", user, user)
}

func configKey(user string) string {
	return fmt.Sprintf("users/%s/gestures/GestureConfig.json", user)
}

func gestureKey(user string, role Role, position int) string {
	name := "Unlock"
	if role == RoleLock {
		name = "Lock"
	}
	return fmt.Sprintf("users/%s/gestures/%sGesture%d.jpg", user, name, position)
}

// Exists checks the config object, not the face image: the config is the
// last object a create writes, so leftovers of an interrupted create do not
// count as an account.
func (s *S3Store) Exists(ctx context.Context, user string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(configKey(user)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("checking user %s: %w", user, err)
	}
	return true, nil
}

func (s *S3Store) HasLockCombination(ctx context.Context, user string) (bool, error) {
	bundle, err := s.LoadBundle(ctx, user)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return len(bundle.Lock) > 0, nil
}

func (s *S3Store) LoadFace(ctx context.Context, user string) ([]byte, error) {
	return s.get(ctx, faceKey(user))
}

func (s *S3Store) LoadBundle(ctx context.Context, user string) (*Bundle, error) {
	data, err := s.get(ctx, configKey(user))
	if err != nil {
		return nil, err
	}
	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("parsing gesture config for %s: %w", user, err)
	}
	return &bundle, nil
}

func (s *S3Store) CreateAccount(ctx context.Context, acct *Account) error {
	if err := s.put(ctx, faceKey(acct.User), acct.Face); err != nil {
		return err
	}
	bundle := Bundle{
		Lock:   toRefs(acct.User, RoleLock, acct.Lock),
		Unlock: toRefs(acct.User, RoleUnlock, acct.Unlock),
	}
	if err := s.putGestureImages(ctx, acct.User, RoleLock, acct.Lock); err != nil {
		return err
	}
	if err := s.putGestureImages(ctx, acct.User, RoleUnlock, acct.Unlock); err != nil {
		return err
	}
	return s.putBundle(ctx, acct.User, &bundle)
}

func (s *S3Store) ReplaceFace(ctx context.Context, user string, face []byte) error {
	if err := s.requireAccount(ctx, user); err != nil {
		return err
	}
	return s.put(ctx, faceKey(user), face)
}

func (s *S3Store) ReplaceCombination(ctx context.Context, user string, role Role, images []GestureImage) error {
	bundle, err := s.LoadBundle(ctx, user)
	if err != nil {
		return err
	}
	if err := s.putGestureImages(ctx, user, role, images); err != nil {
		return err
	}
	refs := toRefs(user, role, images)
	if role == RoleLock {
		bundle.Lock = refs
	} else {
		bundle.Unlock = refs
	}
	return s.putBundle(ctx, user, bundle)
}

func (s *S3Store) DeleteLockCombination(ctx context.Context, user string) error {
	bundle, err := s.LoadBundle(ctx, user)
	if err != nil {
		return err
	}
	for i := range bundle.Lock {
		if err := s.delete(ctx, gestureKey(user, RoleLock, i+1)); err != nil {
			return err
		}
	}
	bundle.Lock = nil
	return s.putBundle(ctx, user, bundle)
}

func (s *S3Store) DeleteAccount(ctx context.Context, user string) error {
	if err := s.requireAccount(ctx, user); err != nil {
		return err
	}

	prefix := fmt.Sprintf("users/%s/", user)
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("listing objects for %s: %w", user, err)
		}
		for _, obj := range page.Contents {
			if err := s.delete(ctx, aws.ToString(obj.Key)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *S3Store) requireAccount(ctx context.Context, user string) error {
	exists, err := s.Exists(ctx, user)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

func (s *S3Store) putGestureImages(ctx context.Context, user string, role Role, images []GestureImage) error {
	for i, img := range images {
		if err := s.put(ctx, gestureKey(user, role, i+1), img.Data); err != nil {
			return err
		}
	}
	return nil
}

func (s *S3Store) putBundle(ctx context.Context, user string, bundle *Bundle) error {
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding gesture config for %s: %w", user, err)
	}
	return s.put(ctx, configKey(user), data)
}

func (s *S3Store) get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

func (s *S3Store) put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("putting %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}
