package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aouyang1/beforeafter/api/models"
)

// SlideClient drives carousel sessions on a running gallery server.
type SlideClient struct {
	baseURL string
	client  *http.Client
}

func NewSlideClient(baseURL string) *SlideClient {
	return &SlideClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

// Mount starts a new carousel session for the server's current gallery
func (sc *SlideClient) Mount() (models.SlideStateResponse, error) {
	return sc.state(http.MethodPost, "/gallery/sessions")
}

func (sc *SlideClient) State(session string) (models.SlideStateResponse, error) {
	return sc.state(http.MethodGet, sessionPath(session))
}

func (sc *SlideClient) Next(session string) (models.SlideStateResponse, error) {
	return sc.state(http.MethodPost, sessionPath(session)+"/next")
}

func (sc *SlideClient) Prev(session string) (models.SlideStateResponse, error) {
	return sc.state(http.MethodPost, sessionPath(session)+"/prev")
}

func (sc *SlideClient) GoTo(session string, index int) (models.SlideStateResponse, error) {
	return sc.state(http.MethodPost, fmt.Sprintf("%s/goto/%d", sessionPath(session), index))
}

// Unmount stops the session's carousel on the server
func (sc *SlideClient) Unmount(session string) error {
	_, err := sc.do(http.MethodDelete, sessionPath(session))
	return err
}

func sessionPath(session string) string {
	return "/gallery/sessions/" + url.PathEscape(session)
}

func (sc *SlideClient) state(method, path string) (models.SlideStateResponse, error) {
	var state models.SlideStateResponse
	body, err := sc.do(method, path)
	if err != nil {
		return state, err
	}
	if err := json.Unmarshal(body, &state); err != nil {
		return state, fmt.Errorf("failed to parse response: %w", err)
	}
	return state, nil
}

func (sc *SlideClient) do(method, path string) ([]byte, error) {
	req, err := http.NewRequest(method, sc.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := sc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp models.ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("server error: %s", errResp.Error)
		}
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
