package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const DefaultGenerationBaseURL = "https://dashscope.aliyuncs.com/api/v1"

// Normalized remote task statuses.
const (
	TaskPending   = "PENDING"
	TaskRunning   = "RUNNING"
	TaskSucceeded = "SUCCEEDED"
	TaskFailed    = "FAILED"
	TaskCanceled  = "CANCELED"
)

// Resolutions accepted by the remote service. Anything else falls back to
// the default.
const (
	Resolution720p    = "720P"
	Resolution1080p   = "1080P"
	DefaultResolution = Resolution720p
)

// NormalizeResolution maps caller input onto the enumerated set.
func NormalizeResolution(r string) string {
	switch r {
	case Resolution720p, Resolution1080p:
		return r
	default:
		return DefaultResolution
	}
}

// SubmitRequest is one asynchronous job creation.
type SubmitRequest struct {
	ImageURL   string
	Template   string
	Model      string
	Resolution string
}

// SubmitResult is the remote service's acknowledgement of a new job.
type SubmitResult struct {
	TaskID     string `json:"taskId"`
	TaskStatus string `json:"taskStatus"`
	RequestID  string `json:"requestId"`
}

// TaskStatusInfo is a normalized snapshot of a remote job.
type TaskStatusInfo struct {
	TaskID     string          `json:"taskId"`
	TaskStatus string          `json:"taskStatus"`
	VideoURL   string          `json:"videoUrl,omitempty"`
	SubmitTime string          `json:"submitTime,omitempty"`
	EndTime    string          `json:"endTime,omitempty"`
	Code       string          `json:"errorCode,omitempty"`
	Message    string          `json:"errorMessage,omitempty"`
	Usage      json.RawMessage `json:"usage,omitempty"`
}

// UploadPolicy carries the temporary signed-upload credentials returned by
// the remote service's policy endpoint.
type UploadPolicy struct {
	Policy              string `json:"policy"`
	Signature           string `json:"signature"`
	UploadDir           string `json:"upload_dir"`
	UploadHost          string `json:"upload_host"`
	OSSAccessKeyID      string `json:"oss_access_key_id"`
	XOSSObjectACL       string `json:"x_oss_object_acl"`
	XOSSForbidOverwrite string `json:"x_oss_forbid_overwrite"`
}

// GenerationClient talks to the DashScope-compatible video synthesis API.
// It is constructed once and injected, so tests substitute fakes.
type GenerationClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewGenerationClient(baseURL, apiKey string) *GenerationClient {
	if baseURL == "" {
		baseURL = DefaultGenerationBaseURL
	}
	return &GenerationClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether the server-side credential is present. Its
// absence is a configuration error surfaced as HTTP 500, never leaked to
// the client.
func (c *GenerationClient) Configured() bool {
	return c.apiKey != ""
}

type submitBody struct {
	Model string `json:"model"`
	Input struct {
		ImgURL   string `json:"img_url"`
		Template string `json:"template"`
	} `json:"input"`
	Parameters struct {
		Resolution string `json:"resolution"`
	} `json:"parameters"`
}

type remoteErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SubmitJob creates one asynchronous job. It validates input before any
// network call and does not wait for completion.
func (c *GenerationClient) SubmitJob(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	if req.ImageURL == "" || req.Template == "" {
		return SubmitResult{}, &ValidationError{Msg: "img_url and template are required"}
	}

	body := submitBody{Model: req.Model}
	body.Input.ImgURL = req.ImageURL
	body.Input.Template = req.Template
	body.Parameters.Resolution = NormalizeResolution(req.Resolution)

	payload, err := json.Marshal(body)
	if err != nil {
		return SubmitResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/services/aigc/video-generation/video-synthesis", bytes.NewReader(payload))
	if err != nil {
		return SubmitResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("X-DashScope-Async", "enable")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return SubmitResult{}, &SubmissionError{StatusCode: http.StatusBadGateway, Message: "failed to reach generation service"}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return SubmitResult{}, &SubmissionError{StatusCode: http.StatusBadGateway, Message: "failed to read generation service response"}
	}

	if resp.StatusCode != http.StatusOK {
		var remoteErr remoteErrorBody
		_ = json.Unmarshal(raw, &remoteErr)
		if remoteErr.Message == "" {
			remoteErr.Message = "failed to create generation job"
		}
		return SubmitResult{}, &SubmissionError{
			StatusCode: resp.StatusCode,
			Code:       remoteErr.Code,
			Message:    remoteErr.Message,
		}
	}

	var parsed struct {
		Output struct {
			TaskID     string `json:"task_id"`
			TaskStatus string `json:"task_status"`
		} `json:"output"`
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return SubmitResult{}, &SubmissionError{StatusCode: http.StatusBadGateway, Message: "malformed generation service response"}
	}

	return SubmitResult{
		TaskID:     parsed.Output.TaskID,
		TaskStatus: parsed.Output.TaskStatus,
		RequestID:  parsed.RequestID,
	}, nil
}

// JobStatus queries one job by its opaque id.
func (c *GenerationClient) JobStatus(ctx context.Context, taskID string) (TaskStatusInfo, error) {
	if taskID == "" {
		return TaskStatusInfo{}, &ValidationError{Msg: "taskId is required"}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/tasks/%s", c.baseURL, url.PathEscape(taskID)), nil)
	if err != nil {
		return TaskStatusInfo{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return TaskStatusInfo{}, &PollError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return TaskStatusInfo{}, &PollError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		var remoteErr remoteErrorBody
		_ = json.Unmarshal(raw, &remoteErr)
		if remoteErr.Message == "" {
			remoteErr.Message = fmt.Sprintf("status query returned HTTP %d", resp.StatusCode)
		}
		return TaskStatusInfo{}, &PollError{Err: fmt.Errorf("%s", remoteErr.Message)}
	}

	var parsed struct {
		Output struct {
			TaskID     string `json:"task_id"`
			TaskStatus string `json:"task_status"`
			VideoURL   string `json:"video_url"`
			SubmitTime string `json:"submit_time"`
			EndTime    string `json:"end_time"`
			Code       string `json:"code"`
			Message    string `json:"message"`
		} `json:"output"`
		Usage json.RawMessage `json:"usage"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return TaskStatusInfo{}, &PollError{Err: err}
	}

	return TaskStatusInfo{
		TaskID:     parsed.Output.TaskID,
		TaskStatus: parsed.Output.TaskStatus,
		VideoURL:   parsed.Output.VideoURL,
		SubmitTime: parsed.Output.SubmitTime,
		EndTime:    parsed.Output.EndTime,
		Code:       parsed.Output.Code,
		Message:    parsed.Output.Message,
		Usage:      parsed.Usage,
	}, nil
}

// GetUploadPolicy fetches temporary signed-upload credentials for posting an
// image directly to the service's object storage.
func (c *GenerationClient) GetUploadPolicy(ctx context.Context, model string) (UploadPolicy, error) {
	endpoint := fmt.Sprintf("%s/uploads?action=getPolicy&model=%s", c.baseURL, url.QueryEscape(model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return UploadPolicy{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return UploadPolicy{}, &UploadError{Msg: "failed to fetch upload policy", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return UploadPolicy{}, &UploadError{Msg: fmt.Sprintf("upload policy request returned HTTP %d", resp.StatusCode)}
	}

	var parsed struct {
		Data UploadPolicy `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return UploadPolicy{}, &UploadError{Msg: "malformed upload policy response", Err: err}
	}

	return parsed.Data, nil
}
