// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package media stores uploaded avatars and question images under a media root.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

var (
	ErrBadExtension = errors.New("unsupported file extension")
	ErrBadImage     = errors.New("file is not a valid image")
)

// Kind describes one class of upload.
type Kind struct {
	Dir        string
	Extensions []string
	// MaxSide > 0 shrinks the image to fit a MaxSide square.
	MaxSide uint
}

var (
	Avatar        = Kind{Dir: "avatars", Extensions: []string{"jpg", "jpeg", "png"}, MaxSide: 256}
	QuestionImage = Kind{Dir: "question_images", Extensions: []string{"jpg", "jpeg", "png", "gif"}}
)

// ValidateExtension checks filename against the kind's allowed extensions.
func (k Kind) ValidateExtension(filename string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if !slices.Contains(k.Extensions, ext) {
		return fmt.Errorf("%w: allowed extensions are %s", ErrBadExtension, strings.Join(k.Extensions, ", "))
	}
	return nil
}

type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) Root() string {
	return s.root
}

// Save writes the upload under the kind's directory with a fresh name and
// returns its slash-separated path relative to the media root.
func (s *Store) Save(kind Kind, filename string, r io.Reader) (string, error) {
	if err := kind.ValidateExtension(filename); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))

	dir := filepath.Join(s.root, kind.Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media dir: %w", err)
	}

	name := uuid.New().String() + ext
	full := filepath.Join(dir, name)

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}

	if kind.MaxSide > 0 {
		err = writeThumbnail(f, r, kind.MaxSide)
	} else {
		err = copyImage(f, r)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(full)
		return "", err
	}

	return path.Join(kind.Dir, name), nil
}

// Remove deletes a previously saved file. Missing files are ignored.
func (s *Store) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove media file: %w", err)
	}
	return nil
}

// copyImage writes r unchanged once its header decodes as a known image format.
func copyImage(w io.Writer, r io.Reader) error {
	var head bytes.Buffer
	if _, _, err := image.DecodeConfig(io.TeeReader(r, &head)); err != nil {
		return fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	if _, err := io.Copy(w, io.MultiReader(&head, r)); err != nil {
		return fmt.Errorf("failed to write media file: %w", err)
	}
	return nil
}

func writeThumbnail(w io.Writer, r io.Reader, maxSide uint) error {
	img, format, err := image.Decode(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadImage, err)
	}

	thumb := resize.Thumbnail(maxSide, maxSide, img, resize.Lanczos3)

	switch format {
	case "png":
		err = png.Encode(w, thumb)
	case "gif":
		err = gif.Encode(w, thumb, nil)
	default:
		err = jpeg.Encode(w, thumb, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return nil
}
