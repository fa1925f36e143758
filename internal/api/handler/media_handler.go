package handler

import (
	"Atheneum/internal/pkg/minio"
	"Atheneum/internal/pkg/response"
	"Atheneum/internal/service"
	"io"
	log "log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MediaHandler 课程封面等图片素材的上传
type MediaHandler struct{}

func NewMediaHandler() *MediaHandler {
	return &MediaHandler{}
}

func (s *MediaHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil || file == nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}

	reader, err := file.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer func() {
		_ = reader.Close()
	}()

	// 嗅探真实类型，不信任客户端给的 Content-Type
	head := make([]byte, 512)
	n, err := reader.Read(head)
	if err != nil && err != io.EOF {
		response.Error(c, service.UnExpectedError)
		return
	}
	contentType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(contentType, "image/") {
		response.Fail(c, response.BadRequest, "only image uploads are accepted")
		return
	}
	if _, err = reader.Seek(0, io.SeekStart); err != nil {
		response.Error(c, service.UnExpectedError)
		return
	}

	ext := path.Ext(file.Filename)
	objectName := "images/" + uuid.NewString() + ext
	fileKey, err := minio.UploadFile(c.Request.Context(), objectName, reader, file.Size, contentType)
	if err != nil {
		log.ErrorContext(c.Request.Context(), "MinIO upload failed", "err", err)
		response.Error(c, service.UnExpectedError)
		return
	}

	response.Success(c, gin.H{
		"key": fileKey,
		"url": minio.GetPublicURL(fileKey),
	})
}
