package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"strings"

	// Register decoders for the formats the camera and uploads produce.
	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/yungbote/smartfridge-backend/internal/clients/gcp"
	"github.com/yungbote/smartfridge-backend/internal/logger"
	"github.com/yungbote/smartfridge-backend/internal/types"
)

// DefaultAdmissionThreshold is the minimum confidence required before an
// image is handed to the expensive vision extraction call.
const DefaultAdmissionThreshold = 0.3

// foodKeywords is the curated set matched against classifier labels when
// scoring food likelihood.
var foodKeywords = []string{
	"food", "fruit", "vegetable", "meat", "dairy", "bread",
	"apple", "banana", "orange", "carrot", "potato", "tomato",
	"cheese", "milk", "egg", "chicken", "beef", "fish",
	"pizza", "sandwich", "salad", "soup", "cake", "cookie",
}

type classifyOutcome int

const (
	classifySucceeded classifyOutcome = iota
	classifyInconclusive
	classifyUnavailable
)

// classifyStrategy is one stage of the admission cascade. A stage reporting
// anything other than classifySucceeded hands the image to the next stage.
type classifyStrategy interface {
	Name() string
	Classify(ctx context.Context, img []byte) (types.ClassificationResult, classifyOutcome)
}

// ImageGuardrail decides whether an image is worth expensive model-based
// analysis. It exists purely for cost control: a rejected image skips the
// vision extraction call and every item-dependent analyzer downstream.
type ImageGuardrail struct {
	log        *logger.Logger
	strategies []classifyStrategy
}

func NewImageGuardrail(log *logger.Logger, detector gcp.LabelDetector) *ImageGuardrail {
	glog := log.With("service", "ImageGuardrail")
	return &ImageGuardrail{
		log: glog,
		strategies: []classifyStrategy{
			&labelClassifierStage{log: glog, detector: detector, retries: 2},
			&colorHeuristicStage{log: glog},
			&validityStage{},
		},
	}
}

// Classify runs the cascade and always returns a result; undecodable input
// yields zero confidence rather than an error.
func (g *ImageGuardrail) Classify(ctx context.Context, img []byte) types.ClassificationResult {
	var result types.ClassificationResult
	for _, s := range g.strategies {
		var outcome classifyOutcome
		result, outcome = s.Classify(ctx, img)
		if outcome == classifySucceeded {
			return result
		}
		g.log.Debug("Admission stage fell through", "stage", s.Name(), "outcome", int(outcome))
	}
	return result
}

// ShouldProcess reports whether the image clears the admission threshold.
func (g *ImageGuardrail) ShouldProcess(ctx context.Context, img []byte, threshold float64) (bool, types.ClassificationResult) {
	result := g.Classify(ctx, img)
	admit := result.IsLikelyFood && result.Confidence >= threshold
	g.log.Info("Admission decision",
		"admit", admit,
		"confidence", result.Confidence,
		"method", string(result.Method),
	)
	return admit, result
}

// ---- Stage 1: external label classifier ----

type labelClassifierStage struct {
	log      *logger.Logger
	detector gcp.LabelDetector
	retries  int
}

func (s *labelClassifierStage) Name() string { return "label_classifier" }

func (s *labelClassifierStage) Classify(ctx context.Context, img []byte) (types.ClassificationResult, classifyOutcome) {
	if s.detector == nil {
		return types.ClassificationResult{}, classifyUnavailable
	}

	prepared, err := prepareImage(img)
	if err != nil {
		return types.ClassificationResult{}, classifyUnavailable
	}

	var labels []gcp.Label
	for attempt := 0; attempt <= s.retries; attempt++ {
		labels, err = s.detector.DetectLabels(ctx, prepared, 5)
		if err == nil {
			break
		}
		s.log.Warn("Label detection failed", "attempt", attempt+1, "error", err)
	}
	if err != nil {
		return types.ClassificationResult{}, classifyUnavailable
	}

	confidence := 0.0
	detected := make([]string, 0, len(labels))
	for _, l := range labels {
		label := strings.ToLower(l.Description)
		detected = append(detected, fmt.Sprintf("%s: %.2f", label, l.Score))
		for _, kw := range foodKeywords {
			if strings.Contains(label, kw) {
				confidence = math.Max(confidence, l.Score)
				break
			}
		}
	}

	return types.ClassificationResult{
		IsLikelyFood: confidence > DefaultAdmissionThreshold,
		Confidence:   clamp01(confidence),
		Method:       types.MethodPrimary,
		Labels:       detected,
	}, classifySucceeded
}

// ---- Stage 2: local color heuristic ----

type colorHeuristicStage struct {
	log *logger.Logger
}

func (s *colorHeuristicStage) Name() string { return "color_heuristic" }

func (s *colorHeuristicStage) Classify(_ context.Context, img []byte) (types.ClassificationResult, classifyOutcome) {
	decoded, _, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		return types.ClassificationResult{}, classifyUnavailable
	}

	r, g, b := meanChannels(decoded)
	mean := (r + g + b) / 3
	variance := ((r-mean)*(r-mean) + (g-mean)*(g-mean) + (b-mean)*(b-mean)) / 3

	// Color bands typical of produce, meat, bread and dairy.
	indicators := 0
	if g > 80 {
		indicators++
	}
	if r > 100 {
		indicators++
	}
	if r > 120 && g > 120 && b < 100 {
		indicators++
	}
	if r > 80 && g > 60 && b < 80 {
		indicators++
	}
	colorScore := float64(indicators) / 4

	confidence := math.Min(0.7, colorScore+variance/2000)
	likely := variance > 500 && colorScore > 0.25

	return types.ClassificationResult{
		IsLikelyFood: likely,
		Confidence:   clamp01(confidence),
		Method:       types.MethodHeuristic,
		Labels:       []string{fmt.Sprintf("color_analysis: %.2f", colorScore)},
	}, classifySucceeded
}

// ---- Stage 3: validity fallback ----

// validityStage only checks that the bytes decode at all. A decodable image
// passes with medium confidence: a missed admission costs one extra model
// call, a wrongful block loses the observation entirely.
type validityStage struct{}

func (s *validityStage) Name() string { return "validity_check" }

func (s *validityStage) Classify(_ context.Context, img []byte) (types.ClassificationResult, classifyOutcome) {
	if _, _, err := image.Decode(bytes.NewReader(img)); err != nil {
		return types.ClassificationResult{
			IsLikelyFood: false,
			Confidence:   0,
			Method:       types.MethodFallback,
			Labels:       []string{"invalid_image"},
		}, classifySucceeded
	}
	return types.ClassificationResult{
		IsLikelyFood: true,
		Confidence:   0.5,
		Method:       types.MethodFallback,
		Labels:       []string{"valid_image"},
	}, classifySucceeded
}

// ---- image helpers ----

const maxClassifierDimension = 800

// prepareImage decodes, downscales large frames and re-encodes as JPEG so
// the classifier call stays cheap.
func prepareImage(img []byte) ([]byte, error) {
	decoded, _, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, err
	}

	bounds := decoded.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxClassifierDimension || h > maxClassifierDimension {
		scale := float64(maxClassifierDimension) / float64(w)
		if h > w {
			scale = float64(maxClassifierDimension) / float64(h)
		}
		dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), decoded, bounds, xdraw.Over, nil)
		decoded = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, decoded, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// meanChannels returns per-channel means on the 0-255 scale.
func meanChannels(img image.Image) (float64, float64, float64) {
	bounds := img.Bounds()
	var rSum, gSum, bSum float64
	count := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			rSum += float64(r >> 8)
			gSum += float64(g >> 8)
			bSum += float64(b >> 8)
			count++
		}
	}
	if count == 0 {
		return 0, 0, 0
	}
	return rSum / float64(count), gSum / float64(count), bSum / float64(count)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
