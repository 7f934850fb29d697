package service

import (
	"Postline/internal/api/dto"
	"Postline/internal/pkg/consts"
	"Postline/internal/pkg/minio"
	"Postline/internal/pkg/util"
	"bytes"
	"context"
	"fmt"
	"io"
	log "log/slog"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const maxImportSize = 64 << 20

type MediaService interface {
	Upload(ctx context.Context, userID uint64, filename string, reader io.ReadSeeker, size int64) (*dto.MediaUploadResultDTO, error)
	// ImportFromURL 从存储集成的公开链接导入文件
	ImportFromURL(ctx context.Context, userID uint64, rawURL string) (*dto.MediaUploadResultDTO, error)
}

type mediaServiceImpl struct {
	importClient *resty.Client
}

func NewMediaService() MediaService {
	return &mediaServiceImpl{
		importClient: resty.New().SetTimeout(60 * time.Second),
	}
}

func (s *mediaServiceImpl) Upload(ctx context.Context, userID uint64, filename string, reader io.ReadSeeker, size int64) (*dto.MediaUploadResultDTO, error) {
	contentType, err := util.GetSafeContentType(reader)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(contentType, consts.MimePrefixImage) && !strings.HasPrefix(contentType, consts.MimePrefixVideo) {
		return nil, ErrFileNotSupported
	}

	objectName := fmt.Sprintf("media/%d/%s%s", userID, uuid.NewString(), path.Ext(filename))
	if _, err = minio.UploadFile(ctx, objectName, reader, size, contentType); err != nil {
		return nil, err
	}

	result := &dto.MediaUploadResultDTO{
		URL:      minio.GetPublicURL(objectName),
		MimeType: contentType,
	}

	if strings.HasPrefix(contentType, consts.MimePrefixImage) {
		if _, err = reader.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		s.attachThumbnail(ctx, userID, reader, result)
	}
	return result, nil
}

// attachThumbnail 缩略图生成失败不阻断上传
func (s *mediaServiceImpl) attachThumbnail(ctx context.Context, userID uint64, reader io.Reader, result *dto.MediaUploadResultDTO) {
	thumb, width, height, err := util.MakeThumbnail(reader)
	if err != nil {
		log.WarnContext(ctx, "thumbnail generation failed", "error", err)
		return
	}
	result.Width = width
	result.Height = height

	thumbName := fmt.Sprintf("media/%d/thumb/%s.jpg", userID, uuid.NewString())
	if _, err = minio.UploadFile(ctx, thumbName, thumb, int64(thumb.Len()), "image/jpeg"); err != nil {
		log.WarnContext(ctx, "thumbnail upload failed", "error", err)
		return
	}
	result.ThumbnailURL = minio.GetPublicURL(thumbName)
}

func (s *mediaServiceImpl) ImportFromURL(ctx context.Context, userID uint64, rawURL string) (*dto.MediaUploadResultDTO, error) {
	resp, err := s.importClient.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	if resp.IsError() {
		return nil, ErrFileNotExist
	}
	body := resp.Body()
	if len(body) == 0 || len(body) > maxImportSize {
		return nil, ErrFileNotSupported
	}
	return s.Upload(ctx, userID, path.Base(rawURL), bytes.NewReader(body), int64(len(body)))
}
