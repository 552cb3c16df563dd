package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/email-builder/internal/apperr"
	"github.com/email-builder/internal/logging"
	"github.com/email-builder/internal/upload"
)

const uploadExt = ".jpg"

type ImageService struct {
	optimizer *upload.Optimizer
	store     *upload.DiskStore
	urlPrefix string
	log       logging.Logger
}

// NewImageService builds URLs as baseURL + urlPrefix + "/" + filename.
// baseURL may be empty for host-relative URLs.
func NewImageService(optimizer *upload.Optimizer, store *upload.DiskStore, baseURL, urlPrefix string, log logging.Logger) *ImageService {
	return &ImageService{
		optimizer: optimizer,
		store:     store,
		urlPrefix: strings.TrimSuffix(baseURL, "/") + "/" + strings.Trim(urlPrefix, "/"),
		log:       log,
	}
}

// Upload optimizes the image read from file and returns its public URL.
func (s *ImageService) Upload(ctx context.Context, ownerID string, file io.Reader) (string, error) {
	if file == nil {
		return "", apperr.New(apperr.ErrBadRequest, "No image file provided")
	}

	name, err := s.store.Save(uploadExt, func(w io.Writer) error {
		return s.optimizer.Optimize(file, w)
	})
	if err != nil {
		s.log.Warn(ctx, "image upload failed", "user_id", ownerID, "error", err)
		if errors.Is(err, apperr.ErrProcessing) {
			return "", apperr.New(apperr.ErrProcessing, "Error processing image")
		}
		return "", err
	}

	s.log.Info(ctx, "image stored", "file", name, "user_id", ownerID)
	return s.urlPrefix + "/" + name, nil
}
