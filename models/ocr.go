package models

// ImageRef is one image to recognize. Local images carry Path, remote ones carry URL.
type ImageRef struct {
	Name       string
	Path       string
	URL        string
	OutputPath string
	// Pages is the page count of a PDF input, 0 for images or unreadable PDFs.
	Pages int
}

func (r ImageRef) IsRemote() bool {
	return r.URL != ""
}

type OcrResponse struct {
	Ref   ImageRef
	Forms []RecognizedForm
	Error error
}

type BatchSummary struct {
	Total     int
	Succeeded int
	Failed    int
	// Skipped counts images never started because the batch was cancelled.
	Skipped   int
}
