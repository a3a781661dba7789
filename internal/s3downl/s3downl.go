// Package s3downl builds download functions for seed objects stored in
// S3, transparently decoding zstd-compressed objects.
package s3downl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/zstd"
)

// NewDownloadFunc returns a func compatible with seedstore.New. It
// accepts both s3://bucket/key urls and virtual-host style https urls
// (bucket.s3.region.amazonaws.com/key).
func NewDownloadFunc(region string) func(objUrl string, dest string) error {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
	if err != nil {
		panic(fmt.Sprintf("unable to load AWS SDK config, %v", err))
	}
	client := s3.NewFromConfig(cfg)

	return func(objUrl string, dest string) error {
		bucket, key, err := parseObjectUrl(objUrl)
		if err != nil {
			return err
		}

		slog.Debug("downloading seed object", "bucket", bucket, "key", key)
		obj, err := client.GetObject(context.TODO(), &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return fmt.Errorf("failed to fetch s3://%s/%s: %w", bucket, key, err)
		}
		defer obj.Body.Close()

		out, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", dest, err)
		}
		defer out.Close()

		var body io.Reader = obj.Body
		if isZstd(obj.ContentType, key) {
			dec, err := zstd.NewReader(obj.Body)
			if err != nil {
				return fmt.Errorf("failed to create zstd reader: %w", err)
			}
			defer dec.Close()
			body = dec
		}

		if _, err := io.Copy(out, body); err != nil {
			return fmt.Errorf("failed to write %s: %w", dest, err)
		}
		return nil
	}
}

func parseObjectUrl(objUrl string) (bucket string, key string, err error) {
	u, err := url.Parse(objUrl)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse seed url %s: %w", objUrl, err)
	}

	switch u.Scheme {
	case "s3":
		return u.Host, strings.TrimPrefix(u.Path, "/"), nil
	case "https":
		// bucket.s3.region.amazonaws.com/key
		hostParts := strings.Split(u.Host, ".")
		if len(hostParts) < 3 || hostParts[1] != "s3" {
			return "", "", fmt.Errorf("unrecognized s3 host format: %s", u.Host)
		}
		return hostParts[0], strings.TrimPrefix(u.Path, "/"), nil
	default:
		return "", "", fmt.Errorf("unsupported seed url scheme: %s", u.Scheme)
	}
}

func isZstd(contentType *string, key string) bool {
	if contentType != nil && *contentType == "application/zstd" {
		return true
	}
	return path.Ext(key) == ".zst"
}
