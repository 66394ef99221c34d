package utils

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"examly/config"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

var allowedImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// ErrNotAnImage rejects uploads outside the allowed image extensions.
var ErrNotAnImage = errors.New("Only image files are allowed (png, jpg, jpeg, gif, webp).")

// SaveImageFile stores an uploaded image under the upload directory and
// returns its relative path ("uploads/<name>"). A nil file returns "".
func SaveImageFile(file *multipart.FileHeader) (string, error) {
	if file == nil || file.Filename == "" {
		return "", nil
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExtensions[ext] {
		return "", ErrNotAnImage
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	destDir := config.AppConfig.UploadDir
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	newFilename := fmt.Sprintf("%s_%s%s", time.Now().Format("20060102150405"), uuid.NewString()[:8], ext)
	dst, err := os.Create(filepath.Join(destDir, newFilename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return "uploads/" + newFilename, nil
}

// FetchRemoteImage downloads an http(s) image referenced from a spreadsheet
// cell into the upload directory and returns its relative path. Non-URL
// values are returned unchanged so plain paths keep working.
func FetchRemoteImage(ref string) (string, error) {
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return ref, nil
	}
	ext := strings.ToLower(filepath.Ext(strings.Split(ref, "?")[0]))
	if !allowedImageExtensions[ext] {
		return "", ErrNotAnImage
	}

	client := resty.New().SetTimeout(15 * time.Second)
	resp, err := client.R().Get(ref)
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("failed to fetch image, code: %d", resp.StatusCode())
	}

	destDir := config.AppConfig.UploadDir
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}
	newFilename := fmt.Sprintf("%s_%s%s", time.Now().Format("20060102150405"), uuid.NewString()[:8], ext)
	if err := os.WriteFile(filepath.Join(destDir, newFilename), resp.Body(), 0644); err != nil {
		return "", err
	}

	return "uploads/" + newFilename, nil
}

// ImageURL builds a servable URL for a stored relative path.
func ImageURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + strings.TrimPrefix(path, "./")
}
