package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	appErrors "github.com/noah-isme/sma-research-portal/pkg/errors"
)

// UploadKind selects an upload policy.
type UploadKind string

const (
	KindDocument UploadKind = "document"
	KindImage    UploadKind = "image"
	KindProfile  UploadKind = "profile"
)

// Web-relative upload directories.
const (
	DocumentDir = "uploads/research_documents"
	ImageDir    = "uploads/research_images"
	ProfileDir  = "images"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}

// UploadPolicy is the allow-list and size ceiling for one kind of upload.
// MaxBytes of 0 leaves the limit to the HTTP server.
type UploadPolicy struct {
	Dir        string
	Extensions []string
	MaxBytes   int64
	MaxPixels  int
}

// Policies maps each kind to its policy.
type Policies map[UploadKind]UploadPolicy

// DefaultPolicies builds the document, image and profile policies.
func DefaultPolicies(maxImage, maxDocument, maxProfile int64, profilePixels int) Policies {
	return Policies{
		KindDocument: {Dir: DocumentDir, Extensions: []string{".pdf"}, MaxBytes: maxDocument},
		KindImage:    {Dir: ImageDir, Extensions: imageExtensions, MaxBytes: maxImage},
		KindProfile:  {Dir: ProfileDir, Extensions: imageExtensions, MaxBytes: maxProfile, MaxPixels: profilePixels},
	}
}

// File is an uploaded file as seen by the uploader.
type File struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// FromMultipart adapts a multipart header.
func FromMultipart(fh *multipart.FileHeader) *File {
	if fh == nil {
		return nil
	}
	return &File{
		Name: fh.Filename,
		Size: fh.Size,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// FromBytes wraps in-memory content, used by tests and the CLI.
func FromBytes(name string, data []byte) *File {
	return &File{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// Uploader validates and stores uploads under the web root.
type Uploader struct {
	files    *LocalStorage
	policies Policies
}

// NewUploader constructs an uploader over the storage root.
func NewUploader(files *LocalStorage, policies Policies) *Uploader {
	return &Uploader{files: files, policies: policies}
}

func (u *Uploader) policy(kind UploadKind) (UploadPolicy, error) {
	p, ok := u.policies[kind]
	if !ok {
		return UploadPolicy{}, fmt.Errorf("unknown upload kind %q", kind)
	}
	return p, nil
}

// Validate checks extension and size without touching the disk.
func (u *Uploader) Validate(kind UploadKind, f *File) error {
	p, err := u.policy(kind)
	if err != nil {
		return err
	}
	if f == nil || f.Name == "" {
		return appErrors.Clone(appErrors.ErrUpload, "no file was uploaded")
	}
	ext := strings.ToLower(filepath.Ext(f.Name))
	if !allowed(ext, p.Extensions) {
		return appErrors.Clone(appErrors.ErrUpload,
			fmt.Sprintf("%s files are not allowed; accepted types: %s", displayExt(ext), strings.Join(p.Extensions, ", ")))
	}
	if f.Size <= 0 {
		return appErrors.Clone(appErrors.ErrUpload, "the uploaded file is empty")
	}
	if p.MaxBytes > 0 && f.Size > p.MaxBytes {
		return appErrors.Clone(appErrors.ErrUpload,
			fmt.Sprintf("the file is %s, larger than the %s limit", HumanBytes(f.Size), HumanBytes(p.MaxBytes)))
	}
	return nil
}

// Save validates and writes the file as <uuid><ext> in the kind's directory,
// returning the web-relative path. Profile pictures are normalised first.
func (u *Uploader) Save(kind UploadKind, f *File) (string, error) {
	if err := u.Validate(kind, f); err != nil {
		return "", err
	}
	p, _ := u.policy(kind)
	ext := strings.ToLower(filepath.Ext(f.Name))
	rel := path.Join(p.Dir, uuid.NewString()+ext)

	src, err := f.Open()
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUpload.Code, appErrors.ErrUpload.Status, "the uploaded file could not be read")
	}
	defer src.Close() //nolint:errcheck

	var body io.Reader = src
	if kind == KindProfile && p.MaxPixels > 0 {
		normalised, err := NormalizeImage(src, ext, p.MaxPixels)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrUpload.Code, appErrors.ErrUpload.Status, "the image could not be processed")
		}
		body = bytes.NewReader(normalised)
	}

	stored, err := u.files.SaveStream(rel, body)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store the uploaded file")
	}
	return stored, nil
}

// Remove deletes a previously saved file; used to undo a failed insert.
func (u *Uploader) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	return u.files.Delete(rel)
}

// Resolve maps a stored path of the given kind onto disk, refusing paths
// outside that kind's directory.
func (u *Uploader) Resolve(kind UploadKind, rel string) (string, error) {
	p, err := u.policy(kind)
	if err != nil {
		return "", err
	}
	clean := path.Clean(filepath.ToSlash(rel))
	if !strings.HasPrefix(clean, p.Dir+"/") {
		return "", ErrOutsideBase
	}
	return u.files.Resolve(clean)
}

// Limit reports the configured byte ceiling for a kind.
func (u *Uploader) Limit(kind UploadKind) int64 {
	return u.policies[kind].MaxBytes
}

// UploadError turns a multipart read failure into a user-facing upload
// error that names the limit in force.
func UploadError(err error, limit int64) error {
	if err == nil {
		return nil
	}
	return appErrors.Wrap(err, appErrors.ErrUpload.Code, appErrors.ErrUpload.Status, UploadErrorMessage(err, limit))
}

// UploadErrorMessage maps multipart/host errors to readable text.
func UploadErrorMessage(err error, limit int64) string {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return "no file was uploaded"
	case errors.As(err, &tooLarge):
		return fmt.Sprintf("the upload exceeds the server limit of %s", HumanBytes(tooLarge.Limit))
	case errors.Is(err, multipart.ErrMessageTooLarge):
		if limit > 0 {
			return fmt.Sprintf("the upload exceeds the form limit of %s", HumanBytes(limit))
		}
		return "the upload exceeds the form size limit"
	case errors.Is(err, http.ErrNotMultipart):
		return "the request is not a file upload form"
	case errors.Is(err, io.ErrUnexpectedEOF):
		return "the file was only partially uploaded"
	default:
		return "the uploaded file could not be read"
	}
}

// HumanBytes formats a byte count with a binary unit.
func HumanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

func allowed(ext string, list []string) bool {
	for _, candidate := range list {
		if ext == candidate {
			return true
		}
	}
	return false
}

func displayExt(ext string) string {
	if ext == "" {
		return "extensionless"
	}
	return strings.TrimPrefix(ext, ".")
}
