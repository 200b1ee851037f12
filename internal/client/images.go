package client

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

const sniffLen = 512

// ImageFile is a local photograph ready for upload
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// CollectImages reads the given files, and the files directly inside given
// directories, keeping only images. It returns ErrNoImages when none remain.
func CollectImages(paths []string) ([]ImageFile, error) {
	var images []ImageFile

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}

		if !info.IsDir() {
			img, ok, err := readImage(p)
			if err != nil {
				return nil, err
			}
			if ok {
				images = append(images, img)
			}
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", p, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			img, ok, err := readImage(filepath.Join(p, entry.Name()))
			if err != nil {
				return nil, err
			}
			if ok {
				images = append(images, img)
			}
		}
	}

	if len(images) == 0 {
		return nil, ErrNoImages
	}
	return images, nil
}

func readImage(path string) (ImageFile, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImageFile{}, false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	contentType := imageContentType(filepath.Base(path), data)
	if contentType == "" {
		return ImageFile{}, false, nil
	}

	return ImageFile{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, true, nil
}

// imageContentType returns the image type of a file by extension, then by
// sniffing, or "" when it is not an image
func imageContentType(name string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		if mediaType, _, err := mime.ParseMediaType(ct); err == nil && strings.HasPrefix(mediaType, "image/") {
			return mediaType
		}
	}

	sniffed := http.DetectContentType(data[:min(len(data), sniffLen)])
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	return ""
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeUpload builds the multipart body for files
func encodeUpload(files []ImageFile) (io.Reader, string, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="files"; filename="%s"`, quoteEscaper.Replace(f.Name)))
		header.Set("Content-Type", f.ContentType)

		part, err := mw.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("failed to add %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("failed to add %s: %w", f.Name, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish upload body: %w", err)
	}
	return body, mw.FormDataContentType(), nil
}
