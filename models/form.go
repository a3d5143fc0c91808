package models

type RecognizedForm struct {
	FormType string
	Fields   []FormField
	Pages    []FormPage
}

type FieldText struct {
	Text string
	Page int
}

// FormField keeps Label nil when the service returned no label for the field.
type FormField struct {
	Name       string
	Label      *FieldText
	Value      *FieldText
	Confidence float64
}

type FormPage struct {
	Number int
	Tables []FormTable
}

type FormTable struct {
	RowCount    int
	ColumnCount int
	Cells       []FormTableCell
}

type FormTableCell struct {
	RowIndex    int
	ColumnIndex int
	Text        string
	IsHeader    bool
}
