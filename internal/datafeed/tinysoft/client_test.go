package tinysoft

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gatewayStub struct {
	logins   atomic.Int64
	execs    atomic.Int64
	execResp func(call int64) map[string]any
}

func (g *gatewayStub) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/login":
			g.logins.Add(1)
			var creds map[string]string
			_ = json.NewDecoder(r.Body).Decode(&creds)
			if creds["username"] != "demo" || creds["password"] != "secret" {
				_ = json.NewEncoder(w).Encode(map[string]any{"code": codeForbidden, "message": "bad credentials"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"code": codeOK,
				"data": map[string]any{"token": "tok-1"},
			})
		case "/api/v1/exec":
			if r.Header.Get("Authorization") != "Bearer tok-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			call := g.execs.Add(1)
			_ = json.NewEncoder(w).Encode(g.execResp(call))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newTestClient(t *testing.T, stub *gatewayStub) *Client {
	t.Helper()
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)
	client, err := NewClient(ClientConfig{
		BaseURL:  srv.URL,
		Username: "demo",
		Password: "secret",
	})
	require.NoError(t, err)
	return client
}

func TestClientExec(t *testing.T) {
	stub := &gatewayStub{execResp: func(int64) map[string]any {
		return map[string]any{
			"code": codeOK,
			"data": []map[string]any{
				{"date": 45000.5, "open": 3500.0, "close": 3510.0},
			},
		}
	}}
	client := newTestClient(t, stub)

	page, err := client.Exec(context.Background(), "return 1;")
	require.NoError(t, err)
	assert.True(t, page.OK)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, 45000.5, page.Rows[0]["date"])
	assert.Equal(t, 3510.0, page.Rows[0]["close"])

	// 登录是惰性的且只发生一次
	assert.EqualValues(t, 1, stub.logins.Load())
}

func TestClientExecVendorError(t *testing.T) {
	stub := &gatewayStub{execResp: func(int64) map[string]any {
		return map[string]any{"code": codeNoContract, "message": "not subscribed"}
	}}
	client := newTestClient(t, stub)

	page, err := client.Exec(context.Background(), "return 1;")
	// 厂商业务错误码通过 Page 返回，不是传输错误
	require.NoError(t, err)
	assert.False(t, page.OK)
	assert.Equal(t, codeNoContract, page.ErrCode)
	assert.Equal(t, "not subscribed", page.Message)
}

func TestClientReloginAfterSessionLost(t *testing.T) {
	stub := &gatewayStub{execResp: func(call int64) map[string]any {
		if call == 1 {
			return map[string]any{"code": codeSessionLost, "message": "session expired"}
		}
		return map[string]any{"code": codeOK, "data": []map[string]any{}}
	}}
	client := newTestClient(t, stub)

	page, err := client.Exec(context.Background(), "return 1;")
	require.NoError(t, err)
	assert.Equal(t, codeSessionLost, page.ErrCode)

	// 下一次调用自动重新登录
	page, err = client.Exec(context.Background(), "return 1;")
	require.NoError(t, err)
	assert.True(t, page.OK)
	assert.EqualValues(t, 2, stub.logins.Load())
}

func TestClientLoginFailure(t *testing.T) {
	stub := &gatewayStub{execResp: func(int64) map[string]any {
		return map[string]any{"code": codeOK}
	}}
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)
	client, err := NewClient(ClientConfig{
		BaseURL:  srv.URL,
		Username: "demo",
		Password: "wrong",
	})
	require.NoError(t, err)

	err = client.Login(context.Background())
	require.Error(t, err)
	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, codeForbidden, qe.Code)
}

func TestClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(ClientConfig{Username: "", Password: "x"})
	assert.Error(t, err)
	_, err = NewClient(ClientConfig{Username: "x", Password: ""})
	assert.Error(t, err)
}

func TestClientBreakerOpensOnTransportFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	client, err := NewClient(ClientConfig{
		BaseURL:          srv.URL,
		Username:         "demo",
		Password:         "secret",
		BreakerThreshold: 2,
	})
	require.NoError(t, err)

	_, err = client.Exec(context.Background(), "return 1;")
	require.Error(t, err)
	_, err = client.Exec(context.Background(), "return 1;")
	require.Error(t, err)

	// 连续失败达到阈值后熔断，不再触达网关
	_, err = client.Exec(context.Background(), "return 1;")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit open")
}
