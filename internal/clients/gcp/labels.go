package gcp

import (
	"context"
	"fmt"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/yungbote/smartfridge-backend/internal/logger"
)

// Label is one classifier prediction for an image.
type Label struct {
	Description string
	Score       float64
}

// LabelDetector is the external image classifier consumed by the admission
// gate's primary stage.
type LabelDetector interface {
	DetectLabels(ctx context.Context, img []byte, maxResults int) ([]Label, error)
	Close() error
}

type labelService struct {
	log    *logger.Logger
	client *vision.ImageAnnotatorClient
}

func NewLabelDetector(log *logger.Logger) (LabelDetector, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "gcp.LabelDetector")

	client, err := vision.NewImageAnnotatorClient(context.Background(), ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &labelService{log: slog, client: client}, nil
}

func (s *labelService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *labelService) DetectLabels(ctx context.Context, img []byte, maxResults int) ([]Label, error) {
	if len(img) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: img},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: int32(maxResults)},
				},
			},
		},
	}

	resp, err := s.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return []Label{}, nil
	}

	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return nil, fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}

	out := make([]Label, 0, len(r0.LabelAnnotations))
	for _, ann := range r0.LabelAnnotations {
		if ann == nil {
			continue
		}
		out = append(out, Label{
			Description: ann.Description,
			Score:       float64(ann.Score),
		})
	}
	return out, nil
}
