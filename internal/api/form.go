package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// Form builds a multipart request body for endpoints that accept file
// uploads alongside plain fields (book create/update with cover images).
type Form struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name  string
	value string
}

type formFile struct {
	field    string
	filename string
	reader   io.Reader
}

// NewForm creates an empty multipart form.
func NewForm() *Form {
	return &Form{}
}

// AddField appends a plain text field.
func (f *Form) AddField(name, value string) *Form {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// AddFile appends a file part read from r.
func (f *Form) AddFile(field, filename string, r io.Reader) *Form {
	f.files = append(f.files, formFile{field: field, filename: filename, reader: r})
	return f
}

// encode renders the form into a buffer and returns the content type
// carrying the part boundary.
func (f *Form) encode() (string, io.Reader, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range f.fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return "", nil, fmt.Errorf("write field %q: %w", field.name, err)
		}
	}
	for _, file := range f.files {
		part, err := w.CreateFormFile(file.field, file.filename)
		if err != nil {
			return "", nil, fmt.Errorf("create file part %q: %w", file.field, err)
		}
		if _, err := io.Copy(part, file.reader); err != nil {
			return "", nil, fmt.Errorf("copy file part %q: %w", file.field, err)
		}
	}
	if err := w.Close(); err != nil {
		return "", nil, fmt.Errorf("close form: %w", err)
	}

	return w.FormDataContentType(), &buf, nil
}
