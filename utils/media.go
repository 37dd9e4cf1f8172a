package utils

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"
	"time"

	"github.com/ShivamG1979/Blog-Post-Api/config"
)

// UploadResult carries what the media host returned for a stored blob.
type UploadResult struct {
	PublicID string `json:"public_id"`
	URL      string `json:"secure_url"`
}

// MediaUploader stores a binary blob on the external media host and returns
// a stable URL plus identifier. Declared as an interface so controllers can
// take a test double.
type MediaUploader interface {
	Upload(ctx context.Context, data []byte, contentType, publicID, folder string) (*UploadResult, error)
}

// CloudinaryClient talks to the Cloudinary-compatible signed upload API.
type CloudinaryClient struct {
	cloudName  string
	apiKey     string
	apiSecret  string
	baseURL    string
	httpClient *http.Client
}

// NewCloudinaryClient builds a media client from loaded configuration.
func NewCloudinaryClient(cfg config.AppConfig) *CloudinaryClient {
	return &CloudinaryClient{
		cloudName: cfg.MediaCloudName,
		apiKey:    cfg.MediaAPIKey,
		apiSecret: cfg.MediaAPISecret,
		baseURL:   "https://api.cloudinary.com/v1_1",
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// NewCloudinaryClientAt is like NewCloudinaryClient but targets a custom API
// endpoint. Used by tests against a local stub server.
func NewCloudinaryClientAt(baseURL, cloudName, apiKey, apiSecret string) *CloudinaryClient {
	return &CloudinaryClient{
		cloudName:  cloudName,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Upload sends the blob as a signed multipart request. No retries: a media
// host failure surfaces directly as an error.
func (c *CloudinaryClient) Upload(ctx context.Context, data []byte, contentType, publicID, folder string) (*UploadResult, error) {
	params := map[string]string{
		"timestamp": fmt.Sprintf("%d", time.Now().Unix()),
		"public_id": publicID,
	}
	if folder != "" {
		params["folder"] = folder
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range params {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := mw.WriteField("api_key", c.apiKey); err != nil {
		return nil, err
	}
	if err := mw.WriteField("signature", signParams(params, c.apiSecret)); err != nil {
		return nil, err
	}

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="blob"`)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s/image/upload", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media host request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media host returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var result UploadResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("media host response decode failed: %w", err)
	}
	if result.URL == "" {
		return nil, fmt.Errorf("media host response missing url")
	}
	return &result, nil
}

// signParams builds the SHA-1 request signature over the sorted parameter
// string, the scheme the upload API verifies.
func signParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}
