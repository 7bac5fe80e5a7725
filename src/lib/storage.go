package lib

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"roomrent/src/config"
	awslib "roomrent/src/lib/aws"
	"time"
)

// ImageStore keeps uploaded room images.
type ImageStore interface {
	Save(ctx context.Context, name string, r io.Reader, contentType string) error
	Delete(ctx context.Context, name string) error
	// Locate returns a local file path, or a URL when remote is true.
	Locate(ctx context.Context, name string) (location string, remote bool, err error)
}

var ErrInvalidImageName = errors.New("invalid image name")

type LocalImageStore struct {
	Dir string
}

func (s *LocalImageStore) path(name string) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", ErrInvalidImageName
	}
	return filepath.Join(s.Dir, name), nil
}

func (s *LocalImageStore) Save(ctx context.Context, name string, r io.Reader, contentType string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, r)
	return err
}

func (s *LocalImageStore) Delete(ctx context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalImageStore) Locate(ctx context.Context, name string) (string, bool, error) {
	p, err := s.path(name)
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(p); err != nil {
		return "", false, err
	}
	return p, false, nil
}

type S3ImageStore struct {
	Prefix string
}

func (s *S3ImageStore) key(name string) string {
	return s.Prefix + name
}

func (s *S3ImageStore) Save(ctx context.Context, name string, r io.Reader, contentType string) error {
	return awslib.S3UploadAsset(ctx, s.key(name), r, contentType)
}

func (s *S3ImageStore) Delete(ctx context.Context, name string) error {
	return awslib.S3DeleteAsset(ctx, s.key(name))
}

func (s *S3ImageStore) Locate(ctx context.Context, name string) (string, bool, error) {
	url, err := awslib.S3PresignAsset(ctx, s.key(name), time.Hour)
	return url, true, err
}

var imageStore ImageStore

func GetImageStore() ImageStore {
	if imageStore != nil {
		return imageStore
	}
	switch config.GetImageStore() {
	case "s3":
		imageStore = &S3ImageStore{Prefix: "rooms/"}
	default:
		imageStore = &LocalImageStore{Dir: config.GetUploadDir()}
	}
	log.Printf("Using image store: %T\n", imageStore)
	return imageStore
}

func NewImageStore(s ImageStore) {
	imageStore = s
}
