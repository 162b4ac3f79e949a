package extraction

import (
	"context"
	"fmt"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

const (
	// MaxFileSizeBytes is the Vision API limit for synchronous processing.
	MaxFileSizeBytes = 20 * 1024 * 1024

	// MaxPagesSync is the Vision API page limit for synchronous processing.
	MaxPagesSync = 5
)

// VisionEngine extracts document text with the Google Cloud Vision API.
type VisionEngine struct {
	client *vision.ImageAnnotatorClient
}

var _ Engine = (*VisionEngine)(nil)

// NewVisionEngine builds the engine with credentials from the environment.
// GOOGLE_CREDENTIALS (inline JSON) wins over GOOGLE_APPLICATION_CREDENTIALS
// (file path); application default credentials are the last resort.
func NewVisionEngine(ctx context.Context) (*VisionEngine, error) {
	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, fmt.Errorf("extraction: vision client with GOOGLE_CREDENTIALS: %w", err)
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, fmt.Errorf("extraction: vision client with GOOGLE_APPLICATION_CREDENTIALS: %w", err)
		}
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("extraction: %w", ErrMissingCredentials)
		}
	}

	return &VisionEngine{client: client}, nil
}

// NewVisionEngineWithClient builds the engine around an explicit client.
func NewVisionEngineWithClient(client *vision.ImageAnnotatorClient) *VisionEngine {
	return &VisionEngine{client: client}
}

// Name identifies the engine in logs and metrics.
func (e *VisionEngine) Name() string { return "vision" }

// ExtractText routes PDFs through file annotation and everything else
// through image annotation.
func (e *VisionEngine) ExtractText(ctx context.Context, content []byte, contentType string) (string, error) {
	if len(content) > MaxFileSizeBytes {
		return "", fmt.Errorf("extraction: %w: %d bytes", ErrFileTooLarge, len(content))
	}
	if strings.Contains(contentType, "pdf") {
		return e.extractPDF(ctx, content)
	}
	return e.extractImage(ctx, content)
}

func (e *VisionEngine) extractImage(ctx context.Context, content []byte) (string, error) {
	resp, err := e.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: content},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("extraction: %w: %v", ErrEngineFailed, err)
	}
	if len(resp.Responses) == 0 {
		return "", fmt.Errorf("extraction: %w: empty response", ErrEngineFailed)
	}
	annotated := resp.Responses[0]
	if annotated.Error != nil {
		return "", fmt.Errorf("extraction: %w: %s", ErrEngineFailed, annotated.Error.Message)
	}

	text := annotated.GetFullTextAnnotation().GetText()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

func (e *VisionEngine) extractPDF(ctx context.Context, content []byte) (string, error) {
	if len(content) < 4 || string(content[:4]) != "%PDF" {
		return "", ErrInvalidPDF
	}

	resp, err := e.client.BatchAnnotateFiles(ctx, &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  content,
					MimeType: "application/pdf",
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("extraction: %w: %v", ErrEngineFailed, err)
	}
	if len(resp.Responses) == 0 {
		return "", fmt.Errorf("extraction: %w: empty response", ErrEngineFailed)
	}
	fileResp := resp.Responses[0]
	if fileResp.Error != nil {
		return "", fmt.Errorf("extraction: %w: %s", ErrEngineFailed, fileResp.Error.Message)
	}
	if len(fileResp.Responses) > MaxPagesSync {
		return "", fmt.Errorf("%w: %d pages", ErrTooManyPages, len(fileResp.Responses))
	}

	var builder strings.Builder
	for i, page := range fileResp.Responses {
		if page.Error != nil {
			return "", fmt.Errorf("extraction: %w: page %d: %s", ErrEngineFailed, i+1, page.Error.Message)
		}
		if page.FullTextAnnotation == nil {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(page.FullTextAnnotation.Text)
	}

	text := builder.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

// Close releases the underlying client.
func (e *VisionEngine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}
