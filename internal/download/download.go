// Package download fetches application descriptors and icons from the app store.
package download

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/conn-castle/apps/internal/appdata"
	"github.com/conn-castle/apps/internal/fsutil"
	"github.com/conn-castle/apps/internal/messages"
)

const (
	defaultUserAgent     = "apps-installer"
	defaultRetryInterval = 500 * time.Millisecond
	maxDescriptorBytes   = 4 << 20
	maxIconBytes         = 8 << 20
)

var (
	objectIDPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)
	handlePattern   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

// DownloadError reports why an application could not be fetched.
// Its message is suitable for showing to the user.
type DownloadError struct {
	Handle string
	Err    error
}

func (e *DownloadError) Error() string {
	return e.Err.Error()
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// IsDownloadError reports whether err is a *DownloadError.
func IsDownloadError(err error) bool {
	var de *DownloadError
	return errors.As(err, &de)
}

// Client talks to the app store HTTP API.
type Client struct {
	BaseURL       string
	HTTP          *http.Client
	TempDir       string
	Retries       int
	RetryInterval time.Duration
	UserAgent     string
}

// NewClient returns a Client for baseURL that stores files under tempDir.
func NewClient(baseURL string, tempDir string, timeout time.Duration, retries int) *Client {
	return &Client{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		HTTP:          &http.Client{Timeout: timeout},
		TempDir:       tempDir,
		Retries:       retries,
		RetryInterval: defaultRetryInterval,
		UserAgent:     defaultUserAgent,
	}
}

// appResponse keeps the descriptor bytes as sent so numbers are not rounded.
type appResponse struct {
	App json.RawMessage `json:"app"`
}

// Download fetches the application identified by handle (a store id or a slug) and
// writes its descriptor and icon into the temp directory. The icon path is empty when
// the store has no icon for the application. Every error is a *DownloadError.
func (c *Client) Download(ctx context.Context, handle string) (string, string, error) {
	dataFile, iconFile, err := c.download(ctx, handle)
	if err != nil {
		return "", "", &DownloadError{Handle: handle, Err: err}
	}
	return dataFile, iconFile, nil
}

func (c *Client) download(ctx context.Context, handle string) (string, string, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return "", "", errors.New(messages.DownloadHandleRequired)
	}
	if !handlePattern.MatchString(handle) {
		return "", "", fmt.Errorf(messages.DownloadInvalidHandleFmt, handle)
	}

	endpoint, err := c.appURL(handle)
	if err != nil {
		return "", "", err
	}
	log.Debugf("fetching app %s from %s", handle, endpoint)

	body, err := c.get(ctx, endpoint, maxDescriptorBytes, handle)
	if err != nil {
		return "", "", err
	}
	var resp appResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", fmt.Errorf(messages.DownloadDecodeFmt, err)
	}
	data := []byte(resp.App)
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return "", "", errors.New(messages.DownloadMissingApp)
	}
	app, err := appdata.Parse(data, endpoint)
	if err != nil {
		return "", "", fmt.Errorf(messages.DownloadDecodeFmt, err)
	}

	if err := os.MkdirAll(c.TempDir, 0o755); err != nil {
		return "", "", fmt.Errorf(messages.DownloadTempDirFmt, c.TempDir, err)
	}
	slug := app.FileSlug()
	dataFile := filepath.Join(c.TempDir, slug+".app")
	if err := fsutil.WriteFileAtomic(dataFile, data, 0o644); err != nil {
		return "", "", fmt.Errorf(messages.DownloadWriteFmt, dataFile, err)
	}

	iconURL := app.IconURL()
	if iconURL == "" {
		log.Infof("app %s has no icon", slug)
		return dataFile, "", nil
	}
	iconFile := filepath.Join(c.TempDir, slug+iconExt(iconURL))
	icon, err := c.get(ctx, iconURL, maxIconBytes, "")
	if err == nil {
		err = fsutil.WriteFileAtomic(iconFile, icon, 0o644)
	}
	if err != nil {
		if cleanupErr := Cleanup(dataFile); cleanupErr != nil {
			log.Warnf("%v", cleanupErr)
		}
		return "", "", fmt.Errorf(messages.DownloadIconFmt, err)
	}
	log.Infof("downloaded app %s to %s", slug, dataFile)
	return dataFile, iconFile, nil
}

// appURL picks the id endpoint for store object ids and the slug endpoint otherwise.
func (c *Client) appURL(handle string) (string, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		if err == nil {
			err = errors.New("missing scheme or host")
		}
		return "", fmt.Errorf(messages.DownloadBaseURLInvalidFmt, c.BaseURL, err)
	}
	if objectIDPattern.MatchString(handle) {
		return base.JoinPath("apps", handle).String(), nil
	}
	return base.JoinPath("apps", "slug", handle).String(), nil
}

// get performs a GET with retries on transient failures. A 404 for an app endpoint
// (handle non-empty) reports the app as not found.
func (c *Client) get(ctx context.Context, target string, limit int64, handle string) ([]byte, error) {
	var body []byte
	attempt := 0
	op := func() error {
		attempt++
		data, err := c.getOnce(ctx, target, limit, handle)
		if err != nil {
			if !shouldRetry(err) {
				return backoff.Permanent(err)
			}
			log.Warnf("request to %s failed (attempt %d): %v", target, attempt, err)
			return err
		}
		body = data
		return nil
	}
	if err := backoff.Retry(op, c.backoff(ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) backoff(ctx context.Context) backoff.BackOff {
	interval := c.RetryInterval
	if interval <= 0 {
		interval = defaultRetryInterval
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = interval
	b.MaxElapsedTime = 0
	retries := c.Retries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

// statusError is a non-200 response.
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf(messages.DownloadStatusFmt, e.status)
}

func (c *Client) getOnce(ctx context.Context, target string, limit int64, handle string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf(messages.DownloadRequestFmt, target, err)
	}
	ua := c.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "application/json, image/*")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf(messages.DownloadFetchFmt, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.Warnf("error closing response body: %v", cerr)
		}
	}()

	if resp.StatusCode == http.StatusNotFound && handle != "" {
		return nil, fmt.Errorf(messages.DownloadNotFoundFmt, handle)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode, status: resp.Status}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf(messages.DownloadFetchFmt, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf(messages.DownloadTooLargeFmt, target, limit)
	}
	return data, nil
}

func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 && se.code <= 599
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// iconExt returns the icon file extension from its URL, defaulting to .png.
func iconExt(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	switch ext {
	case ".png", ".svg", ".jpg", ".jpeg", ".xpm":
		return ext
	}
	return ".png"
}

// Cleanup removes downloaded files, ignoring ones that are already gone.
func Cleanup(paths ...string) error {
	var merr *multierror.Error
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			merr = multierror.Append(merr, err)
		}
	}
	if err := merr.ErrorOrNil(); err != nil {
		return fmt.Errorf(messages.DownloadCleanupFailedFmt, err)
	}
	return nil
}
