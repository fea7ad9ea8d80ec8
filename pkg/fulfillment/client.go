package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"stockpoints-be/internal/pkg/apperror"
)

// Client talks to the external stock fulfillment provider. The provider
// resolves asset metadata (including point cost), downloads assets as
// asynchronous tasks, and serves short-lived download links.
type Client interface {
	GetMetadata(ctx context.Context, site string, externalId string) (*AssetMetadata, error)
	CreateTask(ctx context.Context, site string, externalId string, sourceURL string) (*Task, error)
	GetStatus(ctx context.Context, taskId string) (*TaskStatus, error)
	GetDownloadLink(ctx context.Context, taskId string) (string, error)
}

type AssetMetadata struct {
	Site       string `json:"site"`
	ExternalId string `json:"external_id"`
	Title      string `json:"title"`
	PreviewURL string `json:"preview_url"`
	CostPoints int64  `json:"cost_points"`
}

type Task struct {
	TaskId string `json:"task_id"`
}

type TaskStatus struct {
	TaskId string `json:"task_id"`
	// Status is one of "pending", "processing", "ready", "failed".
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type downloadLinkResponse struct {
	URL string `json:"url"`
}

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusFailed     = "failed"
)

type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	// metadataCache avoids hammering the provider for repeat lookups of
	// the same asset (it also keeps the quoted cost stable while a user
	// is deciding whether to order).
	metadataCache *cache.Cache
}

func NewHTTPClient(baseURL string, apiKey string, requestTimeout time.Duration, metadataTTL time.Duration) Client {
	if requestTimeout <= 0 {
		requestTimeout = 15 * time.Second
	}
	return &HTTPClient{
		baseURL:       baseURL,
		apiKey:        apiKey,
		httpClient:    &http.Client{Timeout: requestTimeout},
		metadataCache: cache.New(metadataTTL, 2*metadataTTL),
	}
}

func (c *HTTPClient) GetMetadata(ctx context.Context, site string, externalId string) (*AssetMetadata, error) {
	cacheKey := site + "/" + externalId
	if cached, ok := c.metadataCache.Get(cacheKey); ok {
		meta := cached.(AssetMetadata)
		return &meta, nil
	}

	endpoint := fmt.Sprintf("%s/v1/assets/%s/%s", c.baseURL, site, externalId)
	var meta AssetMetadata
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &meta); err != nil {
		return nil, err
	}

	c.metadataCache.Set(cacheKey, meta, cache.DefaultExpiration)
	return &meta, nil
}

func (c *HTTPClient) CreateTask(ctx context.Context, site string, externalId string, sourceURL string) (*Task, error) {
	endpoint := fmt.Sprintf("%s/v1/tasks", c.baseURL)
	reqBody := map[string]string{
		"site":        site,
		"external_id": externalId,
		"source_url":  sourceURL,
	}
	var task Task
	if err := c.doJSON(ctx, http.MethodPost, endpoint, reqBody, &task); err != nil {
		return nil, err
	}
	if task.TaskId == "" {
		return nil, apperror.Upstream(http.StatusBadGateway, "provider returned an empty task id", nil)
	}
	return &task, nil
}

func (c *HTTPClient) GetStatus(ctx context.Context, taskId string) (*TaskStatus, error) {
	endpoint := fmt.Sprintf("%s/v1/tasks/%s", c.baseURL, taskId)
	var status TaskStatus
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *HTTPClient) GetDownloadLink(ctx context.Context, taskId string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/tasks/%s/link", c.baseURL, taskId)
	var link downloadLinkResponse
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &link); err != nil {
		return "", err
	}
	if link.URL == "" {
		return "", apperror.Upstream(http.StatusBadGateway, "provider returned an empty download link", nil)
	}
	return link.URL, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method string, endpoint string, reqBody any, out any) error {
	var body io.Reader
	if reqBody != nil {
		jsonBody, err := json.Marshal(reqBody)
		if err != nil {
			return apperror.Wrap(apperror.CodeInternal, "marshal provider request", err)
		}
		body = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return apperror.Wrap(apperror.CodeInternal, "build provider request", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperror.Upstream(http.StatusBadGateway, "fulfillment provider unreachable", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.Upstream(http.StatusBadGateway, "read provider response", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperror.NotFound("asset not found at provider")
	case resp.StatusCode >= 400:
		return apperror.Upstream(resp.StatusCode, fmt.Sprintf("provider error: %s", truncate(string(bodyBytes), 256)), nil)
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return apperror.Upstream(http.StatusBadGateway, "decode provider response", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
