package extraction

import "errors"

var (
	// ErrFileTooLarge is returned when the upload exceeds the synchronous
	// processing limit (20MB for the Vision API).
	ErrFileTooLarge = errors.New("file size exceeds the maximum limit")

	// ErrInvalidPDF is returned when a PDF upload is missing its header.
	ErrInvalidPDF = errors.New("invalid or corrupted PDF document")

	// ErrTooManyPages is returned when a PDF exceeds the synchronous page limit.
	ErrTooManyPages = errors.New("PDF has too many pages for synchronous processing")

	// ErrEngineFailed is returned when the OCR backend rejects the document.
	ErrEngineFailed = errors.New("OCR processing failed")

	// ErrEmptyDocument is returned when no readable text was found.
	ErrEmptyDocument = errors.New("document contains no readable text")

	// ErrMissingCredentials is returned when no Google Cloud credentials are
	// configured in the environment.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS")
)
