// Copyright (c) 2026 ExpenseReport. All rights reserved.
// Author: s.maher.dev@gmail.com

package requestutil

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/slmaher/ExpenseReport/internal/platform/constants"
	"github.com/slmaher/ExpenseReport/internal/platform/validate"
)

// Upload is an in-memory copy of a file received via multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

/*
ParseMultipart parses a multipart/form-data request body with the standard
upload size cap applied.

Returns:
  - error: validate.ErrInvalidForm if the body is not a parseable multipart form
*/
func ParseMultipart(request *http.Request) error {
	if err := request.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		return validate.ErrInvalidForm
	}
	return nil
}

/*
FormValue returns the trimmed value of a form field, or "" when absent.
*/
func FormValue(request *http.Request, name string) string {
	return strings.TrimSpace(request.FormValue(name))
}

/*
OptionalFormValue returns a pointer to the field value when the field was
present in the form, or nil when it was omitted entirely.

The distinction matters for partial updates: an omitted field is left
untouched, while a present-but-empty field clears the stored value.
*/
func OptionalFormValue(request *http.Request, name string) *string {
	if request.MultipartForm == nil {
		return nil
	}
	values, ok := request.MultipartForm.Value[name]
	if !ok || len(values) == 0 {
		return nil
	}
	trimmed := strings.TrimSpace(values[0])
	return &trimmed
}

/*
OptionalFormFloat parses an optional numeric form field.

Returns:
  - *float64: nil when the field was omitted
  - error: A field-level validation error when present but not numeric
*/
func OptionalFormFloat(request *http.Request, name string) (*float64, error) {
	raw := OptionalFormValue(request, name)
	if raw == nil {
		return nil, nil
	}
	value, err := strconv.ParseFloat(*raw, 64)
	if err != nil {
		return nil, validate.RequiredError(name, "Must be a number")
	}
	return &value, nil
}

/*
OptionalFile reads an optional uploaded file fully into memory.

Returns:
  - *Upload: nil when no file was attached under the given field name
  - error: validate.ErrInvalidForm on read failures
*/
func OptionalFile(request *http.Request, name string) (*Upload, error) {
	file, header, err := request.FormFile(name)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, validate.ErrInvalidForm
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(io.LimitReader(file, constants.MaxUploadBytes))
	if err != nil {
		return nil, validate.ErrInvalidForm
	}

	return &Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}
