// Package gemini implements the recognizer against the Gemini vision API.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hkb3711220/passport-ocr/internal/domain"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// codeFencePattern strips the markdown fences models like to wrap JSON in.
var codeFencePattern = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

var mimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
}

// Client handles communication with the Gemini generateContent API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new Gemini client for the given model.
func NewClient(apiKey, model string, log zerolog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
		log:        log,
	}
}

// request/response mirror the generateContent wire format.

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

type request struct {
	Contents []content `json:"contents"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type response struct {
	Candidates []candidate `json:"candidates"`
}

// Recognize sends the prompt plus the image to the model and decodes the
// structured result. Every failure is returned as an error for the caller's
// retry loop; no retrying happens here.
func (c *Client) Recognize(ctx context.Context, prompt, imagePath string) (domain.OCRData, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, domain.ValidationError("prompt cannot be empty", nil)
	}

	body, err := c.buildRequest(prompt, imagePath)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, domain.APIError("cannot build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.APIError("request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, domain.APIError(fmt.Sprintf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))), nil)
	}

	var parsed response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, domain.APIError("cannot decode response", err)
	}

	text, err := extractText(parsed)
	if err != nil {
		return nil, err
	}

	data, err := decodeResult(text)
	if err != nil {
		return nil, err
	}

	c.log.Debug().
		Str("image", imagePath).
		Dur("latency", time.Since(start)).
		Msg("recognition call completed")

	return data, nil
}

// buildRequest encodes the image inline next to the prompt text.
func (c *Client) buildRequest(prompt, imagePath string) ([]byte, error) {
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, domain.IOError(fmt.Sprintf("cannot read image %s", imagePath), err)
	}

	mimeType, ok := mimeTypes[strings.ToLower(filepath.Ext(imagePath))]
	if !ok {
		return nil, domain.ValidationError(fmt.Sprintf("unsupported image format: %s", imagePath), nil)
	}

	req := request{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(imageData),
				}},
			},
		}},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, domain.APIError("cannot marshal request", err)
	}
	return body, nil
}

// extractText pulls the generated text out of the first candidate.
func extractText(resp response) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", domain.RecognitionError("response has no candidates", nil)
	}
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			return p.Text, nil
		}
	}
	return "", domain.RecognitionError("response has no text content", nil)
}

// decodeResult turns the model's text into structured data. A single JSON
// object becomes the result directly; an array of objects (multiple records
// on one image) is kept under a "records" key.
func decodeResult(text string) (domain.OCRData, error) {
	cleaned := strings.TrimSpace(text)
	if m := codeFencePattern.FindStringSubmatch(cleaned); m != nil {
		cleaned = m[1]
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err == nil {
		return domain.OCRData(obj), nil
	}

	var arr []any
	if err := json.Unmarshal([]byte(cleaned), &arr); err == nil {
		return domain.OCRData{"records": arr}, nil
	}

	return nil, domain.RecognitionError("model output is not valid JSON", nil)
}
