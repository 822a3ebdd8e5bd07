// Package storage keeps uploaded contact photos on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrForeignRef is returned by Delete for references that do not point into
// the store.
var ErrForeignRef = errors.New("storage: reference outside photo store")

// ErrUnsupportedType is returned by Save for content types that are not
// stored images.
var ErrUnsupportedType = errors.New("storage: unsupported photo type")

const contactsDir = "contacts"

var mimeExt = map[string]string{
	"image/jpg":  ".jpg",
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Disk stores files under Root/contacts and hands out references of the
// form URLPrefix/contacts/<file>.
type Disk struct {
	Root      string
	URLPrefix string

	now func() time.Time
}

// NewDisk returns a store rooted at root whose files are served at prefix.
func NewDisk(root, prefix string) *Disk {
	return &Disk{Root: root, URLPrefix: strings.TrimRight(prefix, "/"), now: time.Now}
}

// Save copies r into a freshly named file and returns its public reference.
// The extension always follows the image content type; the client's
// filename never decides how the static handler serves the file.
func (d *Disk) Save(_, contentType string, r io.Reader) (string, error) {
	ext, ok := mimeExt[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	dir := filepath.Join(d.Root, contactsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create photo dir: %w", err)
	}

	now := time.Now
	if d.now != nil {
		now = d.now
	}
	name := fmt.Sprintf("contact-%d-%09d%s", now().UnixMilli(), rand.IntN(1_000_000_000), ext)

	f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create photo: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write photo: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close photo: %w", err)
	}
	return path.Join(d.URLPrefix, contactsDir, name), nil
}

// Delete removes the file behind ref. A file that is already gone is not an
// error.
func (d *Disk) Delete(ref string) error {
	file, err := d.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove photo: %w", err)
	}
	return nil
}

func (d *Disk) resolve(ref string) (string, error) {
	want := path.Join(d.URLPrefix, contactsDir) + "/"
	if !strings.HasPrefix(ref, want) {
		return "", ErrForeignRef
	}
	name := strings.TrimPrefix(ref, want)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", ErrForeignRef
	}
	return filepath.Join(d.Root, contactsDir, name), nil
}
