/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/

// Package bundle lays a captured cluster snapshot out on disk as a
// timestamped support-material directory and optionally archives it.
//
// Layout:
//
//	ketchup-<timestamp>/
//	  <namespace>/<resource-type>/<name>.{json,yaml}
//	  _cluster/<resource-type>/<name>.{json,yaml}
//	  collection-summary.yaml
//	  suse-edge-analysis.yaml
package bundle

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Gagrio/suse-support-material/pkg/detect"
	"github.com/Gagrio/suse-support-material/pkg/resource"
	"github.com/Gagrio/suse-support-material/pkg/sanitize"
	"github.com/Gagrio/suse-support-material/pkg/serializer"
)

// Format selects which document renderings are written per resource.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatBoth Format = "both"
)

// Compression selects what remains on disk after writing.
type Compression string

const (
	// CompressionCompressed archives the directory and removes the
	// uncompressed tree.
	CompressionCompressed Compression = "compressed"
	// CompressionUncompressed leaves only the directory tree.
	CompressionUncompressed Compression = "uncompressed"
	// CompressionBoth archives the directory and keeps the tree.
	CompressionBoth Compression = "both"
)

// clusterDir holds cluster-scoped resources; the underscore keeps it from
// colliding with a namespace name.
const clusterDir = "_cluster"

const summaryFile = "collection-summary.yaml"
const analysisFile = "suse-edge-analysis.yaml"

// Writer writes one capture to a timestamped directory under BaseDir.
type Writer struct {
	BaseDir     string
	Format      Format
	Compression Compression

	// Version is recorded in the collection summary.
	Version string

	timestamp time.Time
}

// NewWriter validates the format and compression choices and returns a
// Writer stamped with the current time.
func NewWriter(baseDir string, format Format, compression Compression, version string) (*Writer, error) {
	switch format {
	case FormatJSON, FormatYAML, FormatBoth:
	default:
		return nil, fmt.Errorf("invalid format: %s (use json, yaml, or both)", format)
	}
	switch compression {
	case CompressionCompressed, CompressionUncompressed, CompressionBoth:
	default:
		return nil, fmt.Errorf("invalid compression: %s (use compressed, uncompressed, or both)", compression)
	}
	return &Writer{
		BaseDir:     baseDir,
		Format:      format,
		Compression: compression,
		Version:     version,
		timestamp:   time.Now().UTC(),
	}, nil
}

// Write lays the capture out on disk and returns the directory path and, when
// an archive was produced, its path.
func (w *Writer) Write(namespaced, cluster resource.Map, stats sanitize.Stats, report detect.Report) (dir string, archive string, err error) {
	dir = filepath.Join(w.BaseDir, fmt.Sprintf("ketchup-%s", w.timestamp.Format("2006-01-02-15-04-05")))
	slog.Info("creating output directory", slog.String("dir", dir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create output directory: %w", err)
	}

	for key, records := range namespaced {
		for _, rec := range records {
			target := filepath.Join(dir, rec.Namespace, key)
			if err := w.writeRecord(target, rec); err != nil {
				return "", "", err
			}
		}
	}
	for key, records := range cluster {
		for _, rec := range records {
			target := filepath.Join(dir, clusterDir, key)
			if err := w.writeRecord(target, rec); err != nil {
				return "", "", err
			}
		}
	}

	summary := buildSummary(w.timestamp, w.Version, namespaced, cluster, stats)
	if err := writeYAML(filepath.Join(dir, summaryFile), summary); err != nil {
		return "", "", err
	}
	if err := writeYAML(filepath.Join(dir, analysisFile), report); err != nil {
		return "", "", err
	}

	switch w.Compression {
	case CompressionUncompressed:
		slog.Info("skipping compression as requested")
	case CompressionCompressed:
		archive, err = createArchive(dir)
		if err != nil {
			return "", "", err
		}
		if err := os.RemoveAll(dir); err != nil {
			return "", "", fmt.Errorf("failed to remove uncompressed directory: %w", err)
		}
		dir = ""
	case CompressionBoth:
		archive, err = createArchive(dir)
		if err != nil {
			return "", "", err
		}
	}

	return dir, archive, nil
}

// writeRecord writes one resource document in the configured renderings.
func (w *Writer) writeRecord(targetDir string, rec resource.Record) error {
	if rec.Name == "" {
		return nil
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("failed to create resource directory: %w", err)
	}

	if w.Format == FormatJSON || w.Format == FormatBoth {
		content, err := serializer.Marshal(serializer.FormatJSON, rec.Object)
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", rec.ID(), err)
		}
		if err := os.WriteFile(filepath.Join(targetDir, rec.Name+".json"), content, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", rec.ID(), err)
		}
	}
	if w.Format == FormatYAML || w.Format == FormatBoth {
		content, err := serializer.Marshal(serializer.FormatYAML, rec.Object)
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", rec.ID(), err)
		}
		if err := os.WriteFile(filepath.Join(targetDir, rec.Name+".yaml"), content, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", rec.ID(), err)
		}
	}
	return nil
}

func writeYAML(path string, payload any) error {
	content, err := serializer.Marshal(serializer.FormatYAML, payload)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// createArchive produces <dir>.tar.gz next to the directory.
func createArchive(dir string) (string, error) {
	archiveName := dir + ".tar.gz"
	slog.Info("creating compressed archive", slog.String("archive", archiveName))

	out, err := os.Create(archiveName)
	if err != nil {
		return "", fmt.Errorf("failed to create archive file: %w", err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(tw, file)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to add directory to archive: %w", err)
	}

	if err := tw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}
	return archiveName, nil
}
