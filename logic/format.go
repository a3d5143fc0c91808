package logic

import (
	"FormRecognitionConsole/models"
	"fmt"
	"strconv"
	"strings"
)

const (
	Separator = "------"
	EndMarker = "Recognized Result End"
)

// FormatForms renders every recognized form as one text block. The output only depends on forms.
func FormatForms(forms []models.RecognizedForm) string {
	var sb strings.Builder
	for _, form := range forms {
		writeForm(&sb, form)
	}
	return sb.String()
}

func writeForm(sb *strings.Builder, form models.RecognizedForm) {
	fmt.Fprintf(sb, "Custom Model Name: %s\n", form.FormType)
	fmt.Fprintf(sb, "%s\nFields:\n", Separator)
	for _, field := range form.Fields {
		fmt.Fprintf(sb, "'%s':\n", field.Name)

		if field.Label != nil {
			fmt.Fprintf(sb, "    Label: '%s'\n", field.Label.Text)
		}

		fmt.Fprintf(sb, "    Value: '%s'\n", fieldText(field.Value))
		fmt.Fprintf(sb, "    Confidence: '%s'\n", FormatConfidence(field.Confidence))
	}

	fmt.Fprintf(sb, "%s\nTable data:\n", Separator)
	for _, page := range form.Pages {
		for i, table := range page.Tables {
			fmt.Fprintf(sb, "Table %d has %d rows and %d columns.\n", i, table.RowCount, table.ColumnCount)
			for _, cell := range table.Cells {
				fmt.Fprintf(sb, "    Cell (%d, %d) contains %s: '%s'\n", cell.RowIndex, cell.ColumnIndex, cellKind(cell), cell.Text)
			}
		}
	}

	fmt.Fprintf(sb, "%s\n%s\n", Separator, EndMarker)
}

// FormatConfidence prints the score as the service sent it, without rounding.
func FormatConfidence(confidence float64) string {
	return strconv.FormatFloat(confidence, 'f', -1, 64)
}

func fieldText(text *models.FieldText) string {
	if text == nil {
		return ""
	}
	return text.Text
}

func cellKind(cell models.FormTableCell) string {
	if cell.IsHeader {
		return "header"
	}
	return "text"
}
