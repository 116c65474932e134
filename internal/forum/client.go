package forum

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

const (
	// DefaultBaseURL is the board the bot plays on.
	DefaultBaseURL = "https://2ch.hk"
	// HTTPTimeout bounds every request.
	HTTPTimeout = 30 * time.Second

	userAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:144.0) Gecko/20100101 Firefox/144.0"
	dateLayout = "02/01/06 15:04:05"
)

// Config holds the client settings.
type Config struct {
	BaseURL      string
	Usercode     string
	UsercodeAuth string
	PasscodeAuth string
	UseProxy     bool
	Proxy        string
	Location     *time.Location // Zone of the "date" field
}

// Client is an imageboard API client.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *log.Logger

	mu     sync.Mutex
	tokens map[string]string
}

// NewClient creates a client.
func NewClient(cfg Config, logger *log.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.UseProxy && cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Transport: transport, Timeout: HTTPTimeout},
		logger: logger,
		tokens: make(map[string]string),
	}, nil
}

// ThreadURL formats the public link of a thread on this board.
func (c *Client) ThreadURL(board string, thread int) string {
	return ThreadURL(c.cfg.BaseURL, board, thread)
}

// SetSessionTokens replaces the extra cookies sent with every request.
func (c *Client) SetSessionTokens(tokens map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = maps.Clone(tokens)
}

func (c *Client) decorate(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")

	req.AddCookie(&http.Cookie{Name: "usercode_auth", Value: c.cfg.UsercodeAuth})
	req.AddCookie(&http.Cookie{Name: "passcode_auth", Value: c.cfg.PasscodeAuth})

	c.mu.Lock()
	defer c.mu.Unlock()
	for name, value := range c.tokens {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
}

func (c *Client) do(req *http.Request) (*http.Response, []byte, error) {
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, wrapNetwork(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, wrapNetwork(err)
	}
	c.logger.Printf("%s %s - %d", req.Method, req.URL, resp.StatusCode)
	return resp, body, nil
}

func wrapNetwork(err error) error {
	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	return err
}

// FetchThread downloads a thread and its posts.
func (c *Client) FetchThread(ctx context.Context, board string, thread int) (*Thread, error) {
	u := fmt.Sprintf("%s/%s/res/%d.json", c.cfg.BaseURL, board, thread)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s/%d (status %d)", ErrThreadNotFound, board, thread, resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: %s/%d returned invalid JSON", ErrThreadNotFound, board, thread)
	}

	t := &Thread{Board: board, Num: thread}
	gjson.GetBytes(body, "threads.0.posts").ForEach(func(_, p gjson.Result) bool {
		t.Posts = append(t.Posts, Post{
			Num:      int(p.Get("num").Int()),
			Position: int(p.Get("number").Int()),
			Comment:  p.Get("comment").String(),
			Time:     c.postTime(p),
			Sage:     p.Get("email").String() == "mailto:sage",
		})
		return true
	})

	return t, nil
}

// postTime prefers the unix timestamp and falls back to the "date" text,
// which looks like "14/10/26 Втр 15:04:05".
func (c *Client) postTime(p gjson.Result) time.Time {
	if ts := p.Get("timestamp").Int(); ts > 0 {
		return time.Unix(ts, 0)
	}

	parts := strings.Fields(p.Get("date").String())
	if len(parts) < 3 {
		return time.Time{}
	}
	t, err := time.ParseInLocation(dateLayout, parts[0]+" "+parts[2], c.cfg.Location)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Post sends a reply, or opens a thread when req.Thread is zero.
func (c *Client) Post(ctx context.Context, req PostRequest) (*PostResult, error) {
	body, contentType, err := c.encodeForm(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/user/posting?nc=1", body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, data, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	res := gjson.ParseBytes(data)
	if res.Get("result").Int() != 1 {
		msg := res.Get("error.message").String()
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s", ErrPostRejected, msg)
	}

	result := &PostResult{
		Num:           int(res.Get("num").Int()),
		Thread:        int(res.Get("thread").Int()),
		SessionTokens: make(map[string]string),
	}
	for _, cookie := range resp.Cookies() {
		if strings.HasPrefix(cookie.Name, "op") {
			result.SessionTokens[cookie.Name] = cookie.Value
		}
	}
	return result, nil
}

func (c *Client) encodeForm(req PostRequest) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	thread := ""
	if req.Thread != 0 {
		thread = strconv.Itoa(req.Thread)
	}

	fields := [][2]string{
		{"board", req.Board},
		{"thread", thread},
		{"comment", req.Comment},
		{"op_mark", "1"},
		{"subject", req.Subject},
		{"name", ""},
		{"email", ""},
		{"tags", ""},
		{"task", "post"},
		{"submit", "Ответ"},
		{"captcha_type", "2chcaptcha"},
		{"usercode", c.cfg.Usercode},
		{"code", ""},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	for _, f := range req.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file[]"; filename="%s"`, f.Name))
		h.Set("Content-Type", "image/png")
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
