package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Operation states reported by the analyze operation.
const (
	StatusNotStarted = "notStarted"
	StatusRunning    = "running"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
)

type AnalyzeOperation struct {
	Status        string         `json:"status"`
	AnalyzeResult *AnalyzeResult `json:"analyzeResult"`
	Error         *ErrorDetail   `json:"error"`
}

type AnalyzeResult struct {
	Version         string           `json:"version"`
	ReadResults     []ReadResult     `json:"readResults"`
	PageResults     []PageResult     `json:"pageResults"`
	DocumentResults []DocumentResult `json:"documentResults"`
	Errors          []ErrorDetail    `json:"errors"`
}

type ReadResult struct {
	Page int `json:"page"`
}

type PageResult struct {
	Page          int            `json:"page"`
	ClusterId     *int           `json:"clusterId"`
	KeyValuePairs []KeyValuePair `json:"keyValuePairs"`
	Tables        []DataTable    `json:"tables"`
}

type KeyValuePair struct {
	Key        KeyValueElement `json:"key"`
	Value      KeyValueElement `json:"value"`
	Confidence float64         `json:"confidence"`
}

type KeyValueElement struct {
	Text string `json:"text"`
}

type DataTable struct {
	Rows    int             `json:"rows"`
	Columns int             `json:"columns"`
	Cells   []DataTableCell `json:"cells"`
}

type DataTableCell struct {
	RowIndex    int    `json:"rowIndex"`
	ColumnIndex int    `json:"columnIndex"`
	Text        string `json:"text"`
	IsHeader    bool   `json:"isHeader"`
}

type DocumentResult struct {
	DocType   string         `json:"docType"`
	ModelId   string         `json:"modelId"`
	PageRange []int          `json:"pageRange"`
	Fields    DocumentFields `json:"fields"`
}

type FieldValue struct {
	Type       string   `json:"type"`
	Text       string   `json:"text"`
	Page       int      `json:"page"`
	Confidence *float64 `json:"confidence"`
}

type NamedField struct {
	Name  string
	Value *FieldValue
}

// DocumentFields keeps the fields in the order the service wrote them.
type DocumentFields []NamedField

func (f *DocumentFields) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("fields: expected object, got %v", tok)
	}

	var fields DocumentFields
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("fields: expected name, got %v", tok)
		}

		var value *FieldValue
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("fields: %s: %w", name, err)
		}
		fields = append(fields, NamedField{Name: name, Value: value})
	}

	*f = fields
	return nil
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error *ErrorDetail `json:"error"`
}
