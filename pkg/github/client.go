// Package github talks to the hosted contents API used as the remote
// single-file store for ledger backups.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	appErrors "github.com/noah-isme/smart-tuition/pkg/errors"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.github.com"

// Target addresses one file and carries the bearer token for it.
type Target struct {
	Token string
	Owner string
	Repo  string
	Path  string
}

// File is the decoded state of a remote file.
type File struct {
	SHA     string
	Type    string
	Size    int64
	Content []byte
}

// Repository is the subset of repository metadata used for diagnostics.
type Repository struct {
	FullName    string `json:"full_name"`
	Private     bool   `json:"private"`
	Permissions struct {
		Admin bool `json:"admin"`
		Push  bool `json:"push"`
		Pull  bool `json:"pull"`
	} `json:"permissions"`
}

// Client performs contents API calls.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client. An empty base URL selects the public API and a
// nil http client gets one with the given timeout.
func NewClient(baseURL string, httpClient *http.Client, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type contentResponse struct {
	SHA      string `json:"sha"`
	Type     string `json:"type"`
	Size     int64  `json:"size"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
}

// GetFile fetches and decodes the file. A missing file returns an error
// matching appErrors.ErrRemoteNotFound.
func (c *Client) GetFile(ctx context.Context, t Target) (*File, error) {
	body, err := c.do(ctx, http.MethodGet, c.contentsURL(t), t.Token, nil)
	if err != nil {
		return nil, err
	}
	var resp contentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, appErrors.CloneWrap(appErrors.ErrRemoteUnavailable, err, "remote returned an unreadable file description")
	}
	file := &File{SHA: resp.SHA, Type: resp.Type, Size: resp.Size}
	if resp.Content != "" {
		decoded, err := DecodeContent(resp.Content)
		if err != nil {
			return nil, appErrors.CloneWrap(appErrors.ErrInvalidBackup, err, "remote file content is not valid base64")
		}
		file.Content = decoded
	}
	return file, nil
}

// PutFile creates or overwrites the file. sha must be the blob hash read
// before the write, or empty when the file does not exist yet.
func (c *Client) PutFile(ctx context.Context, t Target, content []byte, message, sha string) error {
	payload, err := json.Marshal(putRequest{
		Message: message,
		Content: EncodeContent(content),
		SHA:     sha,
	})
	if err != nil {
		return fmt.Errorf("encode put request: %w", err)
	}
	_, err = c.do(ctx, http.MethodPut, c.contentsURL(t), t.Token, payload)
	return err
}

// GetRepository reads repository metadata including the caller's permissions.
func (c *Client) GetRepository(ctx context.Context, t Target) (*Repository, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, url.PathEscape(t.Owner), url.PathEscape(t.Repo))
	body, err := c.do(ctx, http.MethodGet, endpoint, t.Token, nil)
	if err != nil {
		return nil, err
	}
	var repo Repository
	if err := json.Unmarshal(body, &repo); err != nil {
		return nil, appErrors.CloneWrap(appErrors.ErrRemoteUnavailable, err, "remote returned unreadable repository metadata")
	}
	return &repo, nil
}

// EncodeContent base64-encodes the UTF-8 bytes of the payload.
func EncodeContent(content []byte) string {
	return base64.StdEncoding.EncodeToString(content)
}

// DecodeContent reverses EncodeContent. The API wraps base64 at 60 columns,
// so line breaks are dropped first.
func DecodeContent(encoded string) ([]byte, error) {
	cleaned := strings.NewReplacer("\n", "", "\r", "").Replace(encoded)
	return base64.StdEncoding.DecodeString(cleaned)
}

func (c *Client) contentsURL(t Target) string {
	segments := strings.Split(strings.Trim(t.Path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, url.PathEscape(t.Owner), url.PathEscape(t.Repo), strings.Join(segments, "/"))
}

func (c *Client) do(ctx context.Context, method, endpoint, token string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, appErrors.CloneWrap(appErrors.ErrRemoteUnavailable, err, "")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErrors.CloneWrap(appErrors.ErrRemoteUnavailable, err, "")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, body)
	}
	return body, nil
}

// statusError maps a non-2xx response onto the remote error taxonomy. The
// remote message is kept as the cause; it never echoes the token.
func statusError(status int, body []byte) error {
	cause := fmt.Errorf("remote responded %d: %s", status, remoteMessage(body))
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return appErrors.CloneWrap(appErrors.ErrRemoteAuth, cause, "")
	case http.StatusNotFound:
		return appErrors.CloneWrap(appErrors.ErrRemoteNotFound, cause, "")
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return appErrors.CloneWrap(appErrors.ErrRemoteConflict, cause, "")
	default:
		return appErrors.CloneWrap(appErrors.ErrRemoteUnavailable, cause, "")
	}
}

func remoteMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return strings.TrimSpace(string(body))
}

// IsNotFound reports whether err is a remote 404.
func IsNotFound(err error) bool {
	return errors.Is(err, appErrors.ErrRemoteNotFound)
}
