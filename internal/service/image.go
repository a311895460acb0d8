package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"go.uber.org/zap"

	"github.com/pantrychef/backend/config"
	"github.com/pantrychef/backend/internal/logger"
	"github.com/pantrychef/backend/internal/metrics"
)

const thumbnailWidth = 256

// imageGenerationRequest is the request to the images API.
type imageGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	ResponseFormat string `json:"response_format"`
}

// imageGenerationResponse is the subset of the images API response we read.
type imageGenerationResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// ImageService generates a plated-dish image per recipe and stores it (plus
// a thumbnail) in S3.
type ImageService struct {
	apiKey   string
	apiURL   string
	s3Config *config.S3Config
	client   *http.Client
	metrics  *metrics.Metrics
}

// NewImageService creates an ImageService. metrics may be nil.
func NewImageService(cfg *config.Config, s3Config *config.S3Config, m *metrics.Metrics) (*ImageService, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY must be set for image generation")
	}
	return &ImageService{
		apiKey:   cfg.OpenAIAPIKey,
		apiURL:   cfg.ImagesAPIURL,
		s3Config: s3Config,
		client:   &http.Client{Timeout: 60 * time.Second},
		metrics:  m,
	}, nil
}

// GenerateRecipeImage generates a dish photo for the named recipe and
// returns the stored image URL.
func (s *ImageService) GenerateRecipeImage(ctx context.Context, recipeName string) (string, error) {
	prompt := fmt.Sprintf(
		"A beautifully plated %s, vibrant colors, appetizing presentation, professional food photography, natural lighting",
		recipeName,
	)

	reqBody := imageGenerationRequest{
		Model:          "dall-e-3",
		Prompt:         prompt,
		N:              1,
		Size:           "1024x1024",
		Quality:        "standard",
		ResponseFormat: "url",
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		logger.L().Warn("image request failed",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return "", fmt.Errorf("image request failed with status %d", resp.StatusCode)
	}

	var result imageGenerationResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Data) == 0 || result.Data[0].URL == "" {
		return "", fmt.Errorf("no image URL in API response")
	}

	if s.metrics != nil {
		s.metrics.ImagesGenerated.Inc()
	}

	storedURL, err := s.downloadAndStore(ctx, result.Data[0].URL)
	if err != nil {
		// The upstream URL still works for a while; better than failing
		// the whole generation.
		logger.L().Warn("failed to store image, returning upstream URL", zap.Error(err))
		return result.Data[0].URL, nil
	}
	return storedURL, nil
}

// downloadAndStore pulls the generated image, uploads the original and a
// thumbnail to S3, and returns the public URL of the original.
func (s *ImageService) downloadAndStore(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image, status: %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image data: %w", err)
	}

	key := uuid.New().String()
	publicURL, err := s.upload(ctx, imageData, fmt.Sprintf("recipe-images/%s.png", key))
	if err != nil {
		return "", err
	}

	if thumb, err := s.makeThumbnail(imageData); err != nil {
		logger.L().Warn("failed to build thumbnail", zap.Error(err))
	} else if _, err := s.upload(ctx, thumb, fmt.Sprintf("recipe-images/thumbs/%s.png", key)); err != nil {
		logger.L().Warn("failed to upload thumbnail", zap.Error(err))
	}

	return publicURL, nil
}

// makeThumbnail scales the PNG down to the card size used by listings.
func (s *ImageService) makeThumbnail(imageData []byte) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := resize.Resize(thumbnailWidth, 0, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *ImageService) upload(ctx context.Context, data []byte, key string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key), nil
}
