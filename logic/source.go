package logic

import (
	"FormRecognitionConsole/models"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const ReportExtension = ".txt"

// ReportName replaces the extension of an image name with the report extension.
func ReportName(name string) string {
	base := path.Base(filepath.ToSlash(name))
	return strings.TrimSuffix(base, path.Ext(base)) + ReportExtension
}

// ListLocalImages returns every regular file of folder in name order. Reports go next to the images.
func ListLocalImages(folder string) ([]models.ImageRef, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", folder, err)
	}

	var refs []models.ImageRef
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		imagePath := filepath.Join(folder, name)

		// follows symlinks, so linked files are kept and linked folders dropped
		info, err := os.Stat(imagePath)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		refs = append(refs, models.ImageRef{
			Name:       name,
			Path:       imagePath,
			OutputPath: filepath.Join(folder, ReportName(name)),
		})
	}

	return refs, nil
}

// InspectLocalImage fills the page count of a local PDF and rejects PDFs that cannot be parsed,
// so they never reach the recognition service. Other refs are returned unchanged.
func InspectLocalImage(ref models.ImageRef) (models.ImageRef, error) {
	if ref.IsRemote() || !strings.EqualFold(filepath.Ext(ref.Path), ".pdf") {
		return ref, nil
	}

	pages, err := CountPdfPages(ref.Path)
	if err != nil {
		return ref, fmt.Errorf("unreadable pdf %s: %w", ref.Name, err)
	}
	if pages == 0 {
		return ref, fmt.Errorf("pdf %s has no pages", ref.Name)
	}

	ref.Pages = pages
	return ref, nil
}

func CountPdfPages(pdfPath string) (pages int, err error) {
	// the pdf reader panics on some malformed trailers
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	file, reader, err := pdf.Open(pdfPath)
	if file != nil {
		defer file.Close()
	}
	if err != nil {
		return 0, err
	}

	return reader.NumPage(), nil
}
