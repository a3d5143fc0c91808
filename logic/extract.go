package logic

import (
	"FormRecognitionConsole/models"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultAPIVersion   = "v2.1"
	DefaultPollInterval = time.Second
	defaultConfidence   = 1.0
)

// Recognizer submits one image to the recognition service and waits for the result.
type Recognizer interface {
	RecognizeFromStream(ctx context.Context, modelID string, image io.Reader) ([]models.RecognizedForm, error)
	RecognizeFromURL(ctx context.Context, modelID string, imageURL string) ([]models.RecognizedForm, error)
}

type ServiceError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("form recognizer returned %d: %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("form recognizer: %s: %s", e.Code, e.Message)
}

// FormRecognizerClient talks to the custom model analyze API of Azure Form Recognizer.
type FormRecognizerClient struct {
	Endpoint     string
	APIKey       string
	APIVersion   string
	PollInterval time.Duration
	client       *http.Client
}

func NewFormRecognizerClient(endpoint, apiKey string) *FormRecognizerClient {
	return &FormRecognizerClient{
		Endpoint:     strings.TrimRight(endpoint, "/"),
		APIKey:       apiKey,
		APIVersion:   DefaultAPIVersion,
		PollInterval: DefaultPollInterval,
		client:       &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *FormRecognizerClient) RecognizeFromStream(ctx context.Context, modelID string, image io.Reader) ([]models.RecognizedForm, error) {
	body, err := io.ReadAll(image)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	operation, err := c.startAnalyze(ctx, modelID, SniffContentType(body), body)
	if err != nil {
		return nil, err
	}
	return c.waitForCompletion(ctx, operation)
}

func (c *FormRecognizerClient) RecognizeFromURL(ctx context.Context, modelID string, imageURL string) ([]models.RecognizedForm, error) {
	payload, err := json.Marshal(map[string]string{"source": imageURL})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	operation, err := c.startAnalyze(ctx, modelID, "application/json", payload)
	if err != nil {
		return nil, err
	}
	return c.waitForCompletion(ctx, operation)
}

func (c *FormRecognizerClient) analyzeURL(modelID string) string {
	return fmt.Sprintf("%s/formrecognizer/%s/custom/models/%s/analyze", c.Endpoint, c.APIVersion, url.PathEscape(modelID))
}

// startAnalyze submits the job and returns its Operation-Location.
func (c *FormRecognizerClient) startAnalyze(ctx context.Context, modelID, contentType string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.analyzeURL(modelID), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Ocp-Apim-Subscription-Key", c.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("analyze request failed: %w", err)
	}
	defer closeBody(resp.Body)

	if resp.StatusCode != http.StatusAccepted {
		return "", decodeServiceError(resp)
	}

	operation := resp.Header.Get("Operation-Location")
	if operation == "" {
		return "", errors.New("analyze response has no Operation-Location header")
	}

	return operation, nil
}

func (c *FormRecognizerClient) waitForCompletion(ctx context.Context, operation string) ([]models.RecognizedForm, error) {
	for {
		result, wait, err := c.getOperation(ctx, operation)
		if err != nil {
			return nil, err
		}

		switch result.Status {
		case models.StatusSucceeded:
			if result.AnalyzeResult == nil {
				return nil, errors.New("analyze operation succeeded without a result")
			}
			return ConvertAnalyzeResult(result.AnalyzeResult), nil
		case models.StatusFailed:
			return nil, operationError(result)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *FormRecognizerClient) getOperation(ctx context.Context, operation string) (*models.AnalyzeOperation, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, operation, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("poll request failed: %w", err)
	}
	defer closeBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, 0, decodeServiceError(resp)
	}

	var result models.AnalyzeOperation
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, 0, fmt.Errorf("failed to parse analyze result: %w", err)
	}

	return &result, c.retryAfter(resp.Header.Get("Retry-After")), nil
}

func (c *FormRecognizerClient) retryAfter(header string) time.Duration {
	if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if c.PollInterval > 0 {
		return c.PollInterval
	}
	return DefaultPollInterval
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		log.Println("Unable to close body")
	}
}

func decodeServiceError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ServiceError{StatusCode: resp.StatusCode, Code: resp.Status, Message: fmt.Sprintf("unable to read error body: %s", err)}
	}

	var parsed models.ErrorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil {
		return &ServiceError{StatusCode: resp.StatusCode, Code: parsed.Error.Code, Message: parsed.Error.Message}
	}
	return &ServiceError{StatusCode: resp.StatusCode, Code: resp.Status, Message: strings.TrimSpace(string(body))}
}

func operationError(result *models.AnalyzeOperation) error {
	if result.AnalyzeResult != nil && len(result.AnalyzeResult.Errors) > 0 {
		first := result.AnalyzeResult.Errors[0]
		return &ServiceError{Code: first.Code, Message: first.Message}
	}
	if result.Error != nil {
		return &ServiceError{Code: result.Error.Code, Message: result.Error.Message}
	}
	return &ServiceError{Code: "Failed", Message: "analyze operation failed"}
}

// ConvertAnalyzeResult builds one form per document result for labeled models,
// and one form per page for unlabeled models.
func ConvertAnalyzeResult(result *models.AnalyzeResult) []models.RecognizedForm {
	if len(result.DocumentResults) > 0 {
		forms := make([]models.RecognizedForm, 0, len(result.DocumentResults))
		for _, doc := range result.DocumentResults {
			forms = append(forms, labeledForm(result, doc))
		}
		return forms
	}

	forms := make([]models.RecognizedForm, 0, len(result.PageResults))
	for _, page := range result.PageResults {
		forms = append(forms, unlabeledForm(page))
	}
	return forms
}

func labeledForm(result *models.AnalyzeResult, doc models.DocumentResult) models.RecognizedForm {
	form := models.RecognizedForm{FormType: doc.DocType}

	for _, field := range doc.Fields {
		formField := models.FormField{Name: field.Name, Confidence: defaultConfidence}
		if field.Value != nil {
			formField.Value = &models.FieldText{Text: field.Value.Text, Page: field.Value.Page}
			if field.Value.Confidence != nil {
				formField.Confidence = *field.Value.Confidence
			}
		}
		form.Fields = append(form.Fields, formField)
	}

	first, last := pageRange(result, doc.PageRange)
	for number := first; number <= last; number++ {
		page := models.FormPage{Number: number}
		for _, pageResult := range result.PageResults {
			if pageResult.Page == number {
				page.Tables = convertTables(pageResult.Tables)
				break
			}
		}
		form.Pages = append(form.Pages, page)
	}

	return form
}

func pageRange(result *models.AnalyzeResult, pages []int) (int, int) {
	if len(pages) == 2 {
		return pages[0], pages[1]
	}

	first, last := 0, -1
	for _, page := range result.PageResults {
		if first == 0 || page.Page < first {
			first = page.Page
		}
		if page.Page > last {
			last = page.Page
		}
	}
	return first, last
}

func unlabeledForm(page models.PageResult) models.RecognizedForm {
	form := models.RecognizedForm{FormType: "form"}
	if page.ClusterId != nil {
		form.FormType = fmt.Sprintf("form-%d", *page.ClusterId)
	}

	for i, pair := range page.KeyValuePairs {
		form.Fields = append(form.Fields, models.FormField{
			Name:       fmt.Sprintf("field-%d", i),
			Label:      &models.FieldText{Text: pair.Key.Text, Page: page.Page},
			Value:      &models.FieldText{Text: pair.Value.Text, Page: page.Page},
			Confidence: pair.Confidence,
		})
	}

	form.Pages = []models.FormPage{{Number: page.Page, Tables: convertTables(page.Tables)}}
	return form
}

func convertTables(tables []models.DataTable) []models.FormTable {
	var converted []models.FormTable
	for _, table := range tables {
		formTable := models.FormTable{RowCount: table.Rows, ColumnCount: table.Columns}
		for _, cell := range table.Cells {
			formTable.Cells = append(formTable.Cells, models.FormTableCell{
				RowIndex:    cell.RowIndex,
				ColumnIndex: cell.ColumnIndex,
				Text:        cell.Text,
				IsHeader:    cell.IsHeader,
			})
		}
		converted = append(converted, formTable)
	}
	return converted
}

// SniffContentType maps the leading bytes of an image to a media type the service accepts.
func SniffContentType(head []byte) string {
	switch {
	case bytes.HasPrefix(head, []byte("%PDF")):
		return "application/pdf"
	case bytes.HasPrefix(head, []byte("II*\x00")), bytes.HasPrefix(head, []byte("MM\x00*")):
		return "image/tiff"
	case bytes.HasPrefix(head, []byte("BM")):
		return "image/bmp"
	}

	switch detected := http.DetectContentType(head); detected {
	case "image/jpeg", "image/png":
		return detected
	}
	return "application/octet-stream"
}
