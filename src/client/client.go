// Package client implements the HTTP clients for the student-risk backend:
// credential submission, file upload for prediction, and file upload for
// visualization. All operations are context-aware and report failures through
// the typed error kinds in errors.go.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/eduwatch/StudentRiskViewer/src/logging"
	"github.com/eduwatch/StudentRiskViewer/src/schema"
	"github.com/eduwatch/StudentRiskViewer/src/session"
)

const fileField = "file"

// Client talks to the backend API. The session store is injected so login
// state is an explicit dependency rather than ambient global storage.
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Store

	// One guard per submit control. Predict and Visualize are independent
	// controls and may legitimately run concurrently with each other.
	predictCtl   control
	visualizeCtl control
}

// New builds a Client for the given API base URL (e.g. "http://host:5000/api").
func New(baseURL string, timeout time.Duration, store *session.Store) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		session: store,
	}
}

// PredictPhase exposes the upload control's lifecycle state.
func (c *Client) PredictPhase() Phase { return c.predictCtl.Phase() }

// VisualizePhase exposes the visualization control's lifecycle state.
func (c *Client) VisualizePhase() Phase { return c.visualizeCtl.Phase() }

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// serverMessage extracts the server-supplied error text from a response body,
// falling back to the given default.
func serverMessage(body []byte, fallback string) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Error != "" {
			return eb.Error
		}
		if eb.Message != "" {
			return eb.Message
		}
	}
	return fallback
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return resp, nil
}

// Login submits credentials. Any 2xx response is a success: the session flag
// is persisted. On failure the session is left untouched and the
// server-supplied error text (or a generic fallback) is returned.
func (c *Client) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("%w: please enter both username and password", ErrValidation)
	}
	logging.Debugf("login %s", username)
	resp, err := c.postJSON(ctx, "/login", credentials{Username: username, Password: password})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Warnf("login rejected: status=%d", resp.StatusCode)
		return &ServerError{Status: resp.StatusCode, Message: serverMessage(body, "Login failed")}
	}
	if err := c.session.SetAuthenticated(ctx, true); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	logging.Infof("login ok (%s)", username)
	return nil
}

// Register submits a registration request. Only HTTP 201 counts as success;
// a 200 with an identical body is still a failure. Registration never touches
// the session flag.
func (c *Client) Register(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("%w: please enter both username and password", ErrValidation)
	}
	logging.Debugf("register %s", username)
	resp, err := c.postJSON(ctx, "/register", credentials{Username: username, Password: password})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		logging.Warnf("register rejected: status=%d", resp.StatusCode)
		return &ServerError{Status: resp.StatusCode, Message: serverMessage(body, "Registration failed")}
	}
	logging.Infof("register ok (%s)", username)
	return nil
}

// postFile uploads the named file as multipart form data under the "file"
// field and returns the response.
func (c *Client) postFile(ctx context.Context, path, filePath string) (*http.Response, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(fileField, filepath.Base(filePath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return resp, nil
}

// PredictResult is the prediction endpoint's response body.
type PredictResult struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	DownloadURL string `json:"download_url"`
}

// Predict uploads a file for predictive processing. Success is signalled by
// the body-level status field, not the HTTP status. On success the file name
// is recorded in the session store for later correlation. The control's
// lifecycle state is restored on every exit path.
func (c *Client) Predict(ctx context.Context, filePath string) (res *PredictResult, err error) {
	if filePath == "" {
		return nil, fmt.Errorf("%w: please select a file first", ErrValidation)
	}
	if err := c.predictCtl.begin(); err != nil {
		return nil, err
	}
	defer c.predictCtl.finish(&err)

	logging.Infof("predict upload: %s", filepath.Base(filePath))
	resp, err := c.postFile(ctx, "/predict", filePath)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, rerr := io.ReadAll(resp.Body)
	if rerr != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, rerr)
	}
	var pr PredictResult
	if jerr := json.Unmarshal(body, &pr); jerr != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrMalformed, jerr)
	}
	if pr.Status != "success" {
		return nil, &ServerError{Status: resp.StatusCode, Message: serverMessage(body, "Error processing file")}
	}
	if serr := c.session.SetProcessedFile(ctx, filepath.Base(filePath)); serr != nil {
		logging.Warnf("record processed file: %v", serr)
	}
	return &pr, nil
}

type visualizationEnvelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Visualize uploads a file to the visualization endpoint and returns the
// decoded analytics payload. Unlike Predict, any non-2xx HTTP status is an
// error regardless of body shape, and a 2xx body without a data field is a
// malformed response.
func (c *Client) Visualize(ctx context.Context, filePath string) (p *schema.Payload, err error) {
	if filePath == "" {
		return nil, fmt.Errorf("%w: please select a file first", ErrValidation)
	}
	if err := c.visualizeCtl.begin(); err != nil {
		return nil, err
	}
	defer c.visualizeCtl.finish(&err)

	logging.Infof("visualization upload: %s", filepath.Base(filePath))
	resp, err := c.postFile(ctx, "/visualization", filePath)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, rerr := io.ReadAll(resp.Body)
	if rerr != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, rerr)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{Status: resp.StatusCode, Message: serverMessage(body, fmt.Sprintf("HTTP error! status: %d", resp.StatusCode))}
	}
	var env visualizationEnvelope
	if jerr := json.Unmarshal(body, &env); jerr != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrMalformed, jerr)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("%w: no visualization data received", schema.ErrMalformed)
	}
	payload, derr := schema.Decode(bytes.NewReader(env.Data))
	if derr != nil {
		return nil, derr
	}
	return payload, nil
}

// Download fetches the processed report produced by the last prediction run
// and writes it to dest.
func (c *Client) Download(ctx context.Context, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/download", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &ServerError{Status: resp.StatusCode, Message: serverMessage(body, "Error downloading file")}
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	logging.Infof("report saved: %s", dest)
	return nil
}
