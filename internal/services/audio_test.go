package services

import (
  "bytes"
  "mime/multipart"
  "net/http"
  "os"
  "testing"

  "github.com/skillvoice/skillvoice-backend/internal/apierr"
)

func uploadHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
  t.Helper()
  var buf bytes.Buffer
  writer := multipart.NewWriter(&buf)
  part, err := writer.CreateFormFile("audio", filename)
  if err != nil {
    t.Fatalf("create form file: %v", err)
  }
  if _, err := part.Write(content); err != nil {
    t.Fatalf("write form file: %v", err)
  }
  if err := writer.Close(); err != nil {
    t.Fatalf("close writer: %v", err)
  }

  form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(32 << 20)
  if err != nil {
    t.Fatalf("read form: %v", err)
  }
  t.Cleanup(func() { form.RemoveAll() })
  return form.File["audio"][0]
}

func TestStoreAcceptedExtensions(t *testing.T) {
  svc := NewAudioService(testLogger(t), 0)
  for _, name := range []string{"a.webm", "a.mp3", "a.wav", "a.m4a", "a.ogg", "LOUD.MP3"} {
    header := uploadHeader(t, name, []byte("audio-bytes"))
    path, cleanup, err := svc.Store(header)
    if err != nil {
      t.Fatalf("%s: unexpected err: %v", name, err)
    }
    data, err := os.ReadFile(path)
    if err != nil {
      t.Fatalf("%s: temp file unreadable: %v", name, err)
    }
    if !bytes.Equal(data, []byte("audio-bytes")) {
      t.Fatalf("%s: temp file content mismatch", name)
    }
    cleanup()
    if _, err := os.Stat(path); !os.IsNotExist(err) {
      t.Fatalf("%s: cleanup left the temp file behind", name)
    }
  }
}

func TestStoreRejectsUnknownExtension(t *testing.T) {
  svc := NewAudioService(testLogger(t), 0)
  for _, name := range []string{"a.txt", "a.pdf", "noext", "a.mp4"} {
    header := uploadHeader(t, name, []byte("x"))
    if _, _, err := svc.Store(header); !apierr.IsStatus(err, http.StatusBadRequest) {
      t.Fatalf("%s: expected 400, got %v", name, err)
    }
  }
}

func TestStoreRejectsOversizedFile(t *testing.T) {
  svc := NewAudioService(testLogger(t), 1)
  // Only the declared size matters for the limit check; no body needed.
  header := &multipart.FileHeader{Filename: "big.mp3", Size: 2 << 20}
  if _, _, err := svc.Store(header); !apierr.IsStatus(err, http.StatusBadRequest) {
    t.Fatalf("expected 400, got %v", err)
  }
}

func TestStoreNilFile(t *testing.T) {
  svc := NewAudioService(testLogger(t), 0)
  if _, _, err := svc.Store(nil); !apierr.IsStatus(err, http.StatusBadRequest) {
    t.Fatalf("expected 400, got %v", err)
  }
}
