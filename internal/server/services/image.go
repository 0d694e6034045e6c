package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/logging"
	"github.com/dmitrijs2005/gophstore/internal/server/config"
	"github.com/dmitrijs2005/gophstore/internal/server/storage"
	"github.com/google/uuid"
)

// Form field names, also used as the stored-name prefix.
const (
	ProfileImageField = "profileImage"
	ItemImageField    = "itemImage"
)

var (
	errNoFile     = common.NewError(common.ErrNoFile, "No file uploaded")
	errTooLarge   = common.NewError(common.ErrTooLarge, "File too large")
	errNotAnImage = common.NewError(common.ErrNotAnImage, "Not an image! Please upload only images.")
)

// Upload is one received file part.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type profileImageSetter interface {
	SetProfileImage(ctx context.Context, userID, url string) error
}

type ImageService struct {
	store    storage.ImageStore
	users    profileImageSetter
	maxBytes int64
	logger   logging.Logger

	now   func() time.Time
	newID func() string
}

func NewImageService(store storage.ImageStore, users profileImageSetter, cfg *config.Config, logger logging.Logger) *ImageService {
	return &ImageService{
		store:    store,
		users:    users,
		maxBytes: cfg.UploadMaxBytes,
		logger:   logger.With("component", "images"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// MaxBytes is the per-file size limit.
func (s *ImageService) MaxBytes() int64 { return s.maxBytes }

// SaveProfileImage stores the file and points the user's profile at it.
// The stored object is removed again if the user no longer exists.
func (s *ImageService) SaveProfileImage(ctx context.Context, userID string, up *Upload) (string, error) {
	name, url, err := s.save(ctx, ProfileImageField, up)
	if err != nil {
		return "", err
	}

	if err := s.users.SetProfileImage(ctx, userID, url); err != nil {
		if delErr := s.store.Delete(ctx, name); delErr != nil {
			s.logger.Warn(ctx, "orphaned upload", "name", name, "error", delErr.Error())
		}
		return "", err
	}
	return url, nil
}

// SaveItemImage stores the file and returns its URL.
func (s *ImageService) SaveItemImage(ctx context.Context, up *Upload) (string, error) {
	_, url, err := s.save(ctx, ItemImageField, up)
	return url, err
}

func (s *ImageService) save(ctx context.Context, field string, up *Upload) (string, string, error) {
	if up == nil || up.Body == nil {
		return "", "", errNoFile
	}
	if up.Size > s.maxBytes {
		return "", "", errTooLarge
	}
	if !strings.HasPrefix(strings.ToLower(up.ContentType), "image/") {
		return "", "", errNotAnImage
	}

	name := s.objectName(field, up.Filename)
	url, err := s.store.Put(ctx, name, up.ContentType, up.Body, up.Size)
	if err != nil {
		return "", "", fmt.Errorf("store image: %w", err)
	}
	s.logger.Info(ctx, "image stored", "name", name, "size", up.Size)
	return name, url, nil
}

// objectName builds "<field>-<unix millis>-<uuid><ext>". Only the extension
// of the client filename survives.
func (s *ImageService) objectName(field, filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if !validExt(ext) {
		ext = ""
	}
	return fmt.Sprintf("%s-%d-%s%s", field, s.now().UnixMilli(), s.newID(), ext)
}

func validExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 10 || ext[0] != '.' {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
