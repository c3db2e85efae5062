package services

import (
  "io"
  "mime/multipart"
  "os"
  "path/filepath"
  "strings"

  "github.com/skillvoice/skillvoice-backend/internal/apierr"
  "github.com/skillvoice/skillvoice-backend/internal/logger"
)

var allowedAudioExtensions = map[string]bool{
  ".webm": true,
  ".mp3":  true,
  ".wav":  true,
  ".m4a":  true,
  ".ogg":  true,
}

const DefaultMaxAudioFileSizeMB = 25

type AudioService interface {
  // Store validates the upload and writes it to a temp file. The returned
  // cleanup removes the file and is safe to call on every exit path.
  Store(file *multipart.FileHeader) (path string, cleanup func(), err error)
}

type audioService struct {
  log          *logger.Logger
  maxSizeBytes int64
}

func NewAudioService(log *logger.Logger, maxSizeMB int) AudioService {
  if maxSizeMB <= 0 {
    maxSizeMB = DefaultMaxAudioFileSizeMB
  }
  return &audioService{
    log:          log.With("service", "AudioService"),
    maxSizeBytes: int64(maxSizeMB) * 1024 * 1024,
  }
}

func (s *audioService) Store(file *multipart.FileHeader) (string, func(), error) {
  if file == nil {
    return "", nil, apierr.Validation("audio file is required")
  }

  ext := strings.ToLower(filepath.Ext(file.Filename))
  if !allowedAudioExtensions[ext] {
    return "", nil, apierr.Validation("unsupported audio format %q", ext)
  }
  if file.Size > s.maxSizeBytes {
    return "", nil, apierr.Validation("audio file exceeds the %d MB limit", s.maxSizeBytes/(1024*1024))
  }

  src, err := file.Open()
  if err != nil {
    return "", nil, apierr.Validation("audio file could not be read")
  }
  defer src.Close()

  tmp, err := os.CreateTemp("", "answer-*"+ext)
  if err != nil {
    return "", nil, err
  }
  cleanup := func() {
    if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
      s.log.Warn("Failed to remove temp audio file", "path", tmp.Name(), "error", err)
    }
  }

  if _, err := io.Copy(tmp, src); err != nil {
    tmp.Close()
    cleanup()
    return "", nil, err
  }
  if err := tmp.Close(); err != nil {
    cleanup()
    return "", nil, err
  }

  s.log.Debug("Stored audio upload", "path", tmp.Name(), "size", file.Size)
  return tmp.Name(), cleanup, nil
}
