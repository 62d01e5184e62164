package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type (
	// API calls the image and user services on behalf of a logged-in user.
	API struct {
		imageBase string
		userBase  string
		session   *Session
		http      *http.Client
	}

	// APIError carries the {error} message a service returned.
	APIError struct {
		Status  int
		Message string
	}

	SubmitResponse struct {
		Success       bool   `json:"success"`
		PresignedURL  string `json:"presignedUrl"`
		ImageID       int64  `json:"imageId"`
		UUIDFilename  string `json:"uuidFilename"`
		CloudfrontURL string `json:"cloudfrontUrl"`
		Message       string `json:"message"`
	}

	GalleryImage struct {
		ID            int64     `json:"id"`
		Username      string    `json:"username"`
		Nickname      *string   `json:"nickname"`
		ImageName     string    `json:"image_name"`
		CreatedAt     time.Time `json:"created_at"`
		CloudfrontURL string    `json:"cloudfront_url"`
	}

	GalleryResponse struct {
		Success bool           `json:"success"`
		Images  []GalleryImage `json:"images"`
		Count   int            `json:"count"`
	}
)

func (e *APIError) Error() string {
	return e.Message
}

func NewAPI(imageBase, userBase string, session *Session, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &API{
		imageBase: strings.TrimRight(imageBase, "/"),
		userBase:  strings.TrimRight(userBase, "/"),
		session:   session,
		http:      httpClient,
	}
}

func (a *API) Submit(ctx context.Context, imageName string) (*SubmitResponse, error) {
	body, err := json.Marshal(map[string]string{"imageName": imageName})
	if err != nil {
		return nil, err
	}
	out := &SubmitResponse{}
	if err := a.call(ctx, http.MethodPost, a.imageBase+"/v1/submit", bytes.NewReader(body), out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) Gallery(ctx context.Context, limit int) (*GalleryResponse, error) {
	target := a.imageBase + "/v1/gallery"
	if limit > 0 {
		target += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	out := &GalleryResponse{}
	if err := a.call(ctx, http.MethodGet, target, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Profile calls the user service's authenticated stub.
func (a *API) Profile(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	if err := a.call(ctx, http.MethodGet, a.userBase+"/v1/profile", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Upload PUTs the file bytes straight to storage. It carries no bearer
// token: the signature is in the URL. Any 2xx is success.
func (a *API) Upload(ctx context.Context, presignedURL string, body io.Reader, size int64, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, presignedURL, body)
	if err != nil {
		return fmt.Errorf("can not build upload request: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("upload failed: %s", strings.TrimSpace(string(text)))}
	}
	return nil
}

func (a *API) call(ctx context.Context, method, target string, body io.Reader, out any) error {
	token, err := a.session.BearerToken()
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("can not build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("can not read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("can not decode response: %w", err)
	}
	return nil
}

// responseError prefers the body's error, then message, then the raw text.
func responseError(resp *http.Response, data []byte) error {
	message := "Request failed: " + http.StatusText(resp.StatusCode)
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	switch {
	case json.Unmarshal(data, &parsed) == nil && parsed.Error != "":
		message = parsed.Error
	case parsed.Message != "":
		message = parsed.Message
	case len(bytes.TrimSpace(data)) > 0 && !json.Valid(data):
		message = strings.TrimSpace(string(data))
	}
	return &APIError{Status: resp.StatusCode, Message: message}
}
