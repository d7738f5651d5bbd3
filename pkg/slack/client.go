// Package slack implements the two Slack calls the mirror needs: listing
// the workspace's custom emoji, and downloading an emoji image.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/sidkik/emoji-mirror/pkg/emoji"
	"github.com/sidkik/emoji-mirror/pkg/errors"
)

const (
	// DefaultAPIURL is the base URL of the Slack Web API.
	DefaultAPIURL = "https://slack.com/api"

	// DefaultTimeout bounds every request made by the client.
	DefaultTimeout = 60 * time.Second

	// MaxIndexBytes caps the size of an `emoji.list` response.
	MaxIndexBytes = 64 << 20

	// MaxAssetBytes caps the size of a single emoji image.
	MaxAssetBytes = 16 << 20
)

// Client is an authorized Slack API client.
type Client struct {
	// Token is the bot user token sent with API calls.
	Token string

	// Cookie is sent as the Cookie header on every request. Some workspaces
	// require the `d` session cookie for emoji downloads.
	Cookie string

	// APIURL defaults to DefaultAPIURL.
	APIURL string

	HTTPClient *http.Client
}

// New returns a client that uses the given credentials.
func New(token, cookie, apiURL string, timeout time.Duration) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		Token:      token,
		Cookie:     cookie,
		APIURL:     strings.TrimSuffix(apiURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// FetchIndex calls `emoji.list`. An `ok: false` response is returned as a
// RemoteError.
func (c *Client) FetchIndex(ctx context.Context) (emoji.RawIndex, error) {
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	if err := form.WriteField("content", "null"); err != nil {
		return emoji.RawIndex{}, errors.WithContext(err, "build form")
	}
	if err := form.WriteField("token", c.Token); err != nil {
		return emoji.RawIndex{}, errors.WithContext(err, "build form")
	}
	if err := form.Close(); err != nil {
		return emoji.RawIndex{}, errors.WithContext(err, "build form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL+"/emoji.list", body)
	if err != nil {
		return emoji.RawIndex{}, errors.WithContext(err, "create request")
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	c.authorize(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return emoji.RawIndex{}, errors.WithContext(err, "emoji.list")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return emoji.RawIndex{}, errors.RemoteError{
			Op:         "emoji.list",
			StatusCode: resp.StatusCode,
			Reason:     resp.Status,
		}
	}

	var index emoji.RawIndex
	dec := json.NewDecoder(io.LimitReader(resp.Body, MaxIndexBytes))
	if err := dec.Decode(&index); err != nil {
		return emoji.RawIndex{}, errors.WithContext(err, "decode emoji.list response")
	}

	if !index.OK {
		reason := index.Error
		if reason == "" {
			reason = "non-ok response"
		}
		return emoji.RawIndex{}, errors.RemoteError{Op: "emoji.list", Reason: reason}
	}

	if index.Emoji == nil {
		index.Emoji = map[string]string{}
	}
	return index, nil
}

// FetchAsset downloads the image at url. The caller must close the returned
// reader.
func (c *Client) FetchAsset(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WithContext(err, "create request")
	}
	c.authorize(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.WithContext(err, fmt.Sprintf("get %s", url))
	}

	if resp.StatusCode/100 != 2 {
		resp.Body.Close()
		return nil, errors.RemoteError{
			Op:         "download",
			StatusCode: resp.StatusCode,
			Reason:     resp.Status,
		}
	}
	return newCappedBody(resp.Body, MaxAssetBytes), nil
}

func (c *Client) authorize(req *http.Request) {
	if c.Cookie != "" {
		req.Header.Set("Cookie", c.Cookie)
	}
}

// cappedBody fails the read that takes the body past limit, rather than
// silently truncating it.
type cappedBody struct {
	r     *io.LimitedReader
	c     io.Closer
	limit int64
}

func newCappedBody(body io.ReadCloser, limit int64) *cappedBody {
	return &cappedBody{
		r:     &io.LimitedReader{R: body, N: limit + 1},
		c:     body,
		limit: limit,
	}
}

func (b *cappedBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if b.r.N <= 0 {
		return n, errors.TooLargeError{Limit: b.limit}
	}
	return n, err
}

func (b *cappedBody) Close() error {
	return b.c.Close()
}
