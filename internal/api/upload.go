package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/dharsanguruparan/CreativeBrief/internal/s3storage"
)

// uploadField is the multipart form field carrying reference images.
const uploadField = "files"

type tempUpload struct {
	f        *os.File
	size     int64
	filename string
}

// uploadBatch holds the spooled parts of one request until the controller
// has validated and stored them.
type uploadBatch struct {
	parts []*tempUpload
}

// Files exposes the spooled parts as storage inputs, rewound to the start.
func (b *uploadBatch) Files() ([]s3storage.File, error) {
	files := make([]s3storage.File, 0, len(b.parts))
	for _, p := range b.parts {
		if _, err := p.f.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind %s: %w", p.filename, err)
		}
		files = append(files, s3storage.File{Name: p.filename, Size: p.size, Body: p.f})
	}
	return files, nil
}

// Close removes every temp file.
func (b *uploadBatch) Close() {
	for _, p := range b.parts {
		p.f.Close()
		os.Remove(p.f.Name())
	}
}

// readUploads spools every "files" part to disk. Empty parts are kept so the
// batch check can report them by name. Type checks are left to validation,
// which works from the filename. Hitting the body cap yields an error
// wrapping *http.MaxBytesError.
func readUploads(r *http.Request) (*uploadBatch, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, errors.New("expecting multipart form")
	}
	batch := &uploadBatch{}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			batch.Close()
			return nil, fmt.Errorf("read upload: %w", err)
		}
		if part.FormName() != uploadField || part.FileName() == "" {
			part.Close()
			continue
		}
		tmp, err := persistTemp(part)
		part.Close()
		if err != nil {
			batch.Close()
			return nil, err
		}
		batch.parts = append(batch.parts, tmp)
	}
	return batch, nil
}

func persistTemp(part *multipart.Part) (*tempUpload, error) {
	tmpFile, err := os.CreateTemp("", "creativebrief-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	written, err := io.CopyBuffer(tmpFile, part, make([]byte, 32*1024))
	if err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	return &tempUpload{
		f:        tmpFile,
		size:     written,
		filename: part.FileName(),
	}, nil
}
