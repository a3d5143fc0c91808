package logic

import (
	"FormRecognitionConsole/models"
	"strings"
	"testing"
)

func sampleForm() models.RecognizedForm {
	return models.RecognizedForm{
		FormType: "custom:invoice",
		Fields: []models.FormField{
			{
				Name:       "Total",
				Value:      &models.FieldText{Text: "42"},
				Confidence: 0.95,
			},
			{
				Name:       "field-1",
				Label:      &models.FieldText{Text: "Date:"},
				Value:      &models.FieldText{Text: "2021-02-01"},
				Confidence: 1,
			},
		},
		Pages: []models.FormPage{
			{
				Number: 1,
				Tables: []models.FormTable{
					{
						RowCount:    2,
						ColumnCount: 1,
						Cells: []models.FormTableCell{
							{RowIndex: 0, ColumnIndex: 0, Text: "Item", IsHeader: true},
							{RowIndex: 1, ColumnIndex: 0, Text: "Coffee"},
						},
					},
				},
			},
			{
				Number: 2,
				Tables: []models.FormTable{
					{RowCount: 1, ColumnCount: 1, Cells: []models.FormTableCell{{Text: "x"}}},
				},
			},
		},
	}
}

func TestFormatFormsFullForm(t *testing.T) {
	got := FormatForms([]models.RecognizedForm{sampleForm()})

	want := "Custom Model Name: custom:invoice\n" +
		"------\nFields:\n" +
		"'Total':\n" +
		"    Value: '42'\n" +
		"    Confidence: '0.95'\n" +
		"'field-1':\n" +
		"    Label: 'Date:'\n" +
		"    Value: '2021-02-01'\n" +
		"    Confidence: '1'\n" +
		"------\nTable data:\n" +
		"Table 0 has 2 rows and 1 columns.\n" +
		"    Cell (0, 0) contains header: 'Item'\n" +
		"    Cell (1, 0) contains text: 'Coffee'\n" +
		"Table 0 has 1 rows and 1 columns.\n" +
		"    Cell (0, 0) contains text: 'x'\n" +
		"------\nRecognized Result End\n"

	if got != want {
		t.Fatalf("unexpected report:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatFormsIsIdempotent(t *testing.T) {
	forms := []models.RecognizedForm{sampleForm(), sampleForm()}

	first := FormatForms(forms)
	second := FormatForms(forms)

	if first != second {
		t.Fatalf("formatting the same forms twice differs")
	}
}

func TestFormatFormsEmptyForm(t *testing.T) {
	got := FormatForms([]models.RecognizedForm{{FormType: "form-0"}})

	want := "Custom Model Name: form-0\n------\nFields:\n------\nTable data:\n------\nRecognized Result End\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatFormsDelimitersPerForm(t *testing.T) {
	forms := []models.RecognizedForm{sampleForm(), {FormType: "b"}, {FormType: "c"}}
	got := FormatForms(forms)

	delimiters := 0
	for _, line := range strings.Split(got, "\n") {
		if line == Separator || line == EndMarker {
			delimiters++
		}
	}

	if delimiters != 4*len(forms) {
		t.Fatalf("expected %d delimiter lines, got %d", 4*len(forms), delimiters)
	}
	if strings.Count(got, "Custom Model Name: ") != len(forms) {
		t.Fatalf("expected one header per form:\n%s", got)
	}
}

func TestFormatFormsOmitsMissingLabel(t *testing.T) {
	form := models.RecognizedForm{
		FormType: "custom:x",
		Fields:   []models.FormField{{Name: "Total", Value: &models.FieldText{Text: "42"}, Confidence: 0.5}},
	}

	got := FormatForms([]models.RecognizedForm{form})

	if strings.Contains(got, "Label:") {
		t.Fatalf("label line must be omitted:\n%s", got)
	}
	if !strings.Contains(got, "    Value: '42'\n") || !strings.Contains(got, "    Confidence: '0.5'\n") {
		t.Fatalf("value and confidence lines missing:\n%s", got)
	}
}

func TestFormatFormsMissingValue(t *testing.T) {
	form := models.RecognizedForm{
		Fields: []models.FormField{{Name: "Signature", Confidence: 0.1}},
	}

	got := FormatForms([]models.RecognizedForm{form})

	if !strings.Contains(got, "'Signature':\n    Value: ''\n    Confidence: '0.1'\n") {
		t.Fatalf("unexpected field rendering:\n%s", got)
	}
}

func TestFormatConfidence(t *testing.T) {
	cases := map[float64]string{
		0.95:  "0.95",
		1:     "1",
		0:     "0",
		0.123: "0.123",
	}
	for in, want := range cases {
		if got := FormatConfidence(in); got != want {
			t.Errorf("FormatConfidence(%v) = %q, want %q", in, got, want)
		}
	}
}
