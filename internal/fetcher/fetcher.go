// Package fetcher acquires the raw dataset: it downloads the archive to
// the raw directory and extracts it. The core pipeline does not depend on
// this package; it only requires that the extracted text file exists at
// the configured path by the time it runs.
package fetcher

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"powercli/internal/config"
	apperrors "powercli/internal/errors"
)

// StageFetch names the acquisition step in logs and errors.
const StageFetch = "fetch"

// archiveName is the local filename of the downloaded archive.
const archiveName = "household_power_consumption.zip"

// Fetcher downloads and extracts the raw dataset archive.
type Fetcher struct {
	cfg    config.FetcherConfig
	client *http.Client
	logger *slog.Logger
}

// New creates a fetcher. A nil client falls back to http.DefaultClient.
func New(cfg config.FetcherConfig, client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{cfg: cfg, client: client, logger: logger}
}

// Fetch ensures the raw dataset is present: downloads the archive unless
// it already exists, then extracts it into the raw directory. Returns the
// archive path.
func (f *Fetcher) Fetch() (string, error) {
	if err := os.MkdirAll(f.cfg.RawDir, 0755); err != nil {
		return "", apperrors.NewIO(StageFetch, fmt.Sprintf("create directory %s", f.cfg.RawDir), err)
	}

	zipPath := filepath.Join(f.cfg.RawDir, archiveName)
	if _, err := os.Stat(zipPath); err == nil {
		f.logger.Info("dataset already downloaded", slog.String("path", zipPath))
	} else {
		f.logger.Info("downloading dataset", slog.String("url", f.cfg.DatasetURL))
		if err := f.downloadFile(f.cfg.DatasetURL, zipPath); err != nil {
			return "", err
		}
		f.logger.Info("dataset downloaded", slog.String("path", zipPath))
	}

	if err := f.extractZip(zipPath, f.cfg.RawDir); err != nil {
		return "", err
	}
	f.logger.Info("dataset extracted", slog.String("dir", f.cfg.RawDir))

	return zipPath, nil
}

// downloadFile downloads a file from url to the local path.
func (f *Fetcher) downloadFile(url, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return apperrors.NewIO(StageFetch, fmt.Sprintf("create %s", path), err)
	}
	defer out.Close()

	resp, err := f.client.Get(url)
	if err != nil {
		return apperrors.NewIO(StageFetch, fmt.Sprintf("download %s", url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewIO(StageFetch, fmt.Sprintf("download %s", url),
			fmt.Errorf("unexpected status: %s", resp.Status))
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		return apperrors.NewIO(StageFetch, fmt.Sprintf("write %s", path), err)
	}
	return nil
}

// extractZip extracts the archive into dest.
func (f *Fetcher) extractZip(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return apperrors.NewIO(StageFetch, fmt.Sprintf("open archive %s", src), err)
	}
	defer r.Close()

	for _, file := range r.File {
		if err := extractFile(file, dest); err != nil {
			return apperrors.NewIO(StageFetch, fmt.Sprintf("extract %s", file.Name), err)
		}
	}
	return nil
}

// extractFile writes a single archive entry under dest, rejecting paths
// that escape it.
func extractFile(file *zip.File, dest string) error {
	path := filepath.Join(dest, file.Name)
	if rel, err := filepath.Rel(dest, path); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("archive entry escapes destination: %s", file.Name)
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(path, file.FileInfo().Mode())
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.FileInfo().Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}
