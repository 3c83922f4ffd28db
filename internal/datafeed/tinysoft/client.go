package tinysoft

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"tslfeed/internal/logger"
	"tslfeed/internal/pkg/circuit"

	"github.com/tidwall/gjson"
)

// ClientConfig 描述天软网关的连接参数。
type ClientConfig struct {
	// BaseURL overrides Host/Port when set (tests, alternate gateways).
	BaseURL string

	Host               string
	Port               int
	Username           string
	Password           string
	Timeout            time.Duration
	InsecureSkipVerify bool

	BreakerThreshold int
	BreakerCooldown  time.Duration
}

func (c *ClientConfig) withDefaults() ClientConfig {
	out := *c
	out.Host = strings.TrimSpace(out.Host)
	if out.Host == "" {
		out.Host = "tsl.tinysoft.com.cn"
	}
	if out.Port <= 0 {
		out.Port = 443
	}
	if out.Timeout <= 0 {
		out.Timeout = 15 * time.Second
	}
	if out.BreakerThreshold <= 0 {
		out.BreakerThreshold = 5
	}
	if out.BreakerCooldown <= 0 {
		out.BreakerCooldown = 30 * time.Second
	}
	return out
}

// Client 是 Session 的网关实现：登录拿 token，之后把 TSL 语句提交给
// /api/v1/exec 并解析 {code, message, data[]} 响应信封。
// 会话丢失后在下一次 Exec 前自动重新登录（原始实现的惰性初始化语义）。
type Client struct {
	cfg        ClientConfig
	baseURL    *url.URL
	httpClient *http.Client
	breaker    *circuit.Breaker

	mu       sync.Mutex
	token    string
	loggedIn bool
}

func NewClient(cfg ClientConfig) (*Client, error) {
	final := cfg.withDefaults()
	if strings.TrimSpace(final.Username) == "" {
		return nil, fmt.Errorf("tinysoft: username is required")
	}
	if strings.TrimSpace(final.Password) == "" {
		return nil, fmt.Errorf("tinysoft: password is required")
	}
	raw := strings.TrimSpace(final.BaseURL)
	if raw == "" {
		raw = fmt.Sprintf("https://%s:%d", final.Host, final.Port)
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("tinysoft: invalid gateway address: %w", err)
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if final.InsecureSkipVerify {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402
		} else {
			transport.TLSClientConfig.InsecureSkipVerify = true // #nosec G402
		}
	}
	return &Client{
		cfg:     final,
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   final.Timeout,
			Transport: transport,
		},
		breaker: circuit.New("tinysoft", final.BreakerThreshold, final.BreakerCooldown),
	}, nil
}

// SetHTTPClient sets the HTTP client for testing.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Login authenticates against the gateway and stores the session token.
// Exec calls it lazily, but callers may log in eagerly at startup to fail
// fast on bad credentials.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginLocked(ctx)
}

func (c *Client) loginLocked(ctx context.Context) error {
	if c.loggedIn {
		return nil
	}
	payload := map[string]string{
		"username": c.cfg.Username,
		"password": c.cfg.Password,
	}
	body, err := c.post(ctx, "/api/v1/login", payload, "")
	if err != nil {
		return fmt.Errorf("tinysoft: login failed: %w", err)
	}
	code := gjson.GetBytes(body, "code").Int()
	if code != codeOK {
		msg := gjson.GetBytes(body, "message").String()
		return &QueryError{Code: int(code), Message: msg}
	}
	token := gjson.GetBytes(body, "data.token").String()
	if token == "" {
		return fmt.Errorf("tinysoft: login response missing token")
	}
	c.token = token
	c.loggedIn = true
	logger.Infof("[tinysoft] logged in to %s", c.baseURL.Host)
	return nil
}

// Exec submits one TSL command and returns the raw page envelope. Vendor
// error codes come back inside the Page; only transport-level failures are
// returned as errors (and feed the circuit breaker).
func (c *Client) Exec(ctx context.Context, cmd string) (Page, error) {
	if !c.breaker.Allow() {
		return Page{}, fmt.Errorf("tinysoft: gateway circuit open")
	}

	c.mu.Lock()
	if err := c.loginLocked(ctx); err != nil {
		c.mu.Unlock()
		c.breaker.RecordFailure()
		return Page{}, err
	}
	token := c.token
	c.mu.Unlock()

	body, err := c.post(ctx, "/api/v1/exec", map[string]string{"cmd": cmd}, token)
	if err != nil {
		c.breaker.RecordFailure()
		return Page{}, err
	}
	c.breaker.RecordSuccess()

	code := int(gjson.GetBytes(body, "code").Int())
	page := Page{
		OK:      code == codeOK,
		ErrCode: code,
		Message: gjson.GetBytes(body, "message").String(),
	}
	if page.OK {
		page.Rows = rowsFromJSON(gjson.GetBytes(body, "data"))
	} else if code == codeSessionLost {
		// 会话已失效，下一次 Exec 重新登录。
		c.mu.Lock()
		c.loggedIn = false
		c.token = ""
		c.mu.Unlock()
		logger.Warnf("[tinysoft] session lost, will re-login on next call")
	}
	return page, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.loggedIn = false
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any, token string) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request failed: %w", err)
	}
	endpoint := *c.baseURL
	endpoint.Path = strings.TrimSuffix(endpoint.Path, "/") + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("building request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gateway failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if len(data) == 0 {
			return nil, fmt.Errorf("gateway returned %s", resp.Status)
		}
		return nil, fmt.Errorf("gateway returned %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}
	return io.ReadAll(resp.Body)
}

// rowsFromJSON flattens the envelope's data array into keyed rows. gjson
// yields float64 for every JSON number, which matches the vendor's
// serial-double timestamps.
func rowsFromJSON(data gjson.Result) []Row {
	if !data.IsArray() {
		return nil
	}
	var rows []Row
	data.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		row := make(Row)
		item.ForEach(func(key, value gjson.Result) bool {
			row[key.String()] = value.Value()
			return true
		})
		rows = append(rows, row)
		return true
	})
	return rows
}
