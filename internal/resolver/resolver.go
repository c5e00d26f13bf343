package resolver

import (
	"bytes"
	"context"
	"errors"
	"image/jpeg"
	"image/png"
	"log"
	"net/http"
	"strings"
	"sync"

	"rentacheck/internal/config"
	"rentacheck/internal/domain"
	"rentacheck/internal/port"
)

var errUnsupportedImage = errors.New("unsupported image format for conversion")

// Resolver implements port.FileResolver over object storage. Presigning
// of independent paths runs concurrently; only aggregate completion
// matters to the caller.
type Resolver struct {
	storage port.ObjectStorage
	cfg     *config.S3Config
}

// New creates a Resolver backed by the given object storage.
func New(storage port.ObjectStorage, cfg *config.S3Config) *Resolver {
	return &Resolver{storage: storage, cfg: cfg}
}

// ResolveReadable presigns every path concurrently. A path that fails
// to presign keeps its slot with an empty URL; the slice preserves
// input order.
func (r *Resolver) ResolveReadable(ctx context.Context, paths []string, ttlSeconds int64) ([]domain.ResolvedFile, error) {
	if ttlSeconds <= 0 {
		ttlSeconds = r.cfg.PresignExpiry
	}
	resolved := make([]domain.ResolvedFile, len(paths))

	var wg sync.WaitGroup
	for i, p := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			url, err := r.storage.GetPresignedURL(ctx, r.cfg.Bucket, path, ttlSeconds)
			if err != nil {
				log.Printf("resolver.ResolveReadable: presign failed for %s: %v", path, err)
				resolved[i] = domain.ResolvedFile{Path: path}
				return
			}
			resolved[i] = domain.ResolvedFile{Path: path, URL: url}
		}(i, p)
	}
	wg.Wait()

	return resolved, nil
}

// NormalizeImages re-encodes PNG objects as JPEG so every image reaches
// the model in one format. Anything that cannot be converted (HEIC,
// PDFs, download failures) keeps its original path.
func (r *Resolver) NormalizeImages(ctx context.Context, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p
		if strings.HasSuffix(strings.ToLower(p), ".jpg") || strings.HasSuffix(strings.ToLower(p), ".jpeg") {
			continue
		}
		converted, err := r.convertToJPEG(ctx, p)
		if err != nil {
			log.Printf("resolver.NormalizeImages: keeping original %s: %v", p, err)
			continue
		}
		out[i] = converted
	}
	return out
}

func (r *Resolver) convertToJPEG(ctx context.Context, path string) (string, error) {
	data, err := r.storage.Download(ctx, r.cfg.Bucket, path)
	if err != nil {
		return "", err
	}

	sniff := data
	if len(sniff) > 512 {
		sniff = sniff[:512]
	}
	if http.DetectContentType(sniff) != "image/png" {
		return "", errUnsupportedImage
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return "", err
	}

	key := path + ".jpg"
	_, err = r.storage.Upload(ctx, port.UploadInput{
		Bucket:      r.cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: "image/jpeg",
		Size:        int64(buf.Len()),
	})
	if err != nil {
		return "", err
	}
	return key, nil
}
