package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/invoiceiq/invoiceiq/internal/platform/httpx"
)

func newHandlerRouter(t *testing.T, engine Engine, maxBytes int64) (chi.Router, *captureRepo) {
	t.Helper()
	repo := newCaptureRepo()
	svc := newTestService(engine, repo, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(logger, svc, maxBytes).MountRoutes(r)
	return r, repo
}

func newUploadRequest(t *testing.T, field, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/extract", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeProblem(t *testing.T, body *bytes.Buffer) httpx.ProblemDetail {
	t.Helper()
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(body.Bytes(), &problem))
	return problem
}

func TestExtractEndpointStoresInvoice(t *testing.T) {
	engine := &stubEngine{text: "Globex Traders\nInvoice No: INV-77\nTotal 500.00"}
	router, repo := newHandlerRouter(t, engine, 0)

	req := newUploadRequest(t, "file", "invoice.png", "image/png", []byte("scanned bytes"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, "INV-77", result.InvoiceNo)
	require.Len(t, repo.created, 1)
}

func TestExtractEndpointRejectsOversizedUpload(t *testing.T) {
	router, repo := newHandlerRouter(t, &stubEngine{text: "Total 10"}, 64)

	req := newUploadRequest(t, "file", "huge.png", "image/png", bytes.Repeat([]byte("x"), 1024))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	require.Empty(t, repo.created)
	problem := decodeProblem(t, rec.Body)
	require.Equal(t, "Payload Too Large", problem.Title)
}

func TestExtractEndpointRejectsUnsupportedMedia(t *testing.T) {
	router, repo := newHandlerRouter(t, &stubEngine{text: "Total 10"}, 0)

	req := newUploadRequest(t, "file", "notes.txt", "text/plain", []byte("plain text, not a document"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	require.Empty(t, repo.created)
}

func TestExtractEndpointRequiresFileField(t *testing.T) {
	router, _ := newHandlerRouter(t, &stubEngine{text: "Total 10"}, 0)

	req := newUploadRequest(t, "document", "invoice.png", "image/png", []byte("scanned bytes"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	problem := decodeProblem(t, rec.Body)
	require.Equal(t, "Validation Failed", problem.Title)
}
