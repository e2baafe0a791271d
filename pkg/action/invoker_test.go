package action

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

func newRecorder(t *testing.T, status int, respBody string) (*httptest.Server, *captured, *int32) {
	t.Helper()
	var hits int32
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		body, _ := io.ReadAll(r.Body)
		*c = captured{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Header:   r.Header.Clone(),
			Body:     body,
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)
	return srv, c, &hits
}

func compile(t *testing.T, desc domain.ActionDescriptor, opts ...Option) *Invoker {
	t.Helper()
	inv, err := NewCompiler(opts...).Compile(desc)
	require.NoError(t, err)
	return inv
}

func TestInvoke_PathSubstitutionKeepsEscapedLiteral(t *testing.T) {
	srv, got, _ := newRecorder(t, http.StatusOK, `{"ok":true}`)
	inv := compile(t, domain.ActionDescriptor{
		Name:       "get_order",
		HTTPMethod: "GET",
		URL:        srv.URL + "/orders/{order_id}?note={{fixed}}",
		Parameters: []domain.ParameterSpec{{Name: "order_id", Type: "integer"}},
	})

	res := inv.Invoke(context.Background(), map[string]any{"order_id": 7})

	require.Equal(t, domain.ActionSuccess, res.Status, res.Message)
	assert.Equal(t, "/orders/7", got.Path)
	assert.Contains(t, got.RawQuery, "{fixed}")
	assert.Equal(t, map[string]any{"ok": true}, res.Data)
}

func TestInvoke_GETSendsQueryParameters(t *testing.T) {
	srv, got, _ := newRecorder(t, http.StatusOK, `[]`)
	inv := compile(t, domain.ActionDescriptor{
		Name:       "list",
		HTTPMethod: "get",
		URL:        srv.URL + "/items",
		Parameters: []domain.ParameterSpec{{Name: "a", Type: "int"}, {Name: "b", Type: "int"}},
	})

	res := inv.Invoke(context.Background(), map[string]any{"a": 1, "b": 2})

	require.True(t, res.OK(), res.Message)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/items", got.Path)
	assert.Equal(t, "a=1&b=2", got.RawQuery)
	assert.Empty(t, got.Body)
}

func TestInvoke_BodyMethodsSendWholeArgumentSet(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			srv, got, _ := newRecorder(t, http.StatusOK, `{"canceled":true}`)
			inv := compile(t, domain.ActionDescriptor{
				Name:       "cancel_order",
				HTTPMethod: method,
				URL:        srv.URL + "/orders/{order_id}/cancel",
				Parameters: []domain.ParameterSpec{{Name: "order_id", Type: "integer"}},
			})

			res := inv.Invoke(context.Background(), map[string]any{"order_id": 7})

			require.True(t, res.OK(), res.Message)
			assert.Equal(t, method, got.Method)
			assert.Equal(t, "/orders/7/cancel", got.Path)
			assert.Empty(t, got.RawQuery)
			assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
			assert.JSONEq(t, `{"order_id":7}`, string(got.Body))
			assert.Equal(t, `Success {"order_id":7}`, res.Message)
		})
	}
}

func TestInvoke_UnsupportedMethodMakesNoCall(t *testing.T) {
	srv, _, hits := newRecorder(t, http.StatusOK, `{}`)
	inv := compile(t, domain.ActionDescriptor{
		Name:       "patch_order",
		HTTPMethod: "PATCH",
		URL:        srv.URL + "/orders",
	})

	res := inv.Invoke(context.Background(), nil)

	assert.Equal(t, domain.ActionFailed, res.Status)
	assert.Contains(t, res.Message, "PATCH")
	assert.Equal(t, []any{}, res.Data)
	assert.Zero(t, atomic.LoadInt32(hits))
}

func TestInvoke_InvalidArgumentsMakeNoCall(t *testing.T) {
	srv, _, hits := newRecorder(t, http.StatusOK, `{}`)
	inv := compile(t, domain.ActionDescriptor{
		Name:       "get_order",
		URL:        srv.URL + "/orders/{order_id}",
		Parameters: []domain.ParameterSpec{{Name: "order_id", Type: "integer"}},
	})

	res := inv.Invoke(context.Background(), map[string]any{"order_id": "abc"})
	assert.Equal(t, domain.ActionFailed, res.Status)

	res = inv.Invoke(context.Background(), map[string]any{})
	assert.Equal(t, domain.ActionFailed, res.Status)
	assert.Contains(t, res.Message, "required")

	assert.Zero(t, atomic.LoadInt32(hits))
}

func TestInvoke_NonSuccessStatus(t *testing.T) {
	srv, _, _ := newRecorder(t, http.StatusNotFound, `{"detail":"nope"}`)
	inv := compile(t, domain.ActionDescriptor{Name: "get", HTTPMethod: "GET", URL: srv.URL + "/missing"})

	res := inv.Invoke(context.Background(), nil)

	assert.Equal(t, domain.ActionFailed, res.Status)
	assert.Equal(t, "404 Not Found for url: "+srv.URL+"/missing", res.Message)
	assert.Equal(t, []any{}, res.Data)
}

func TestInvoke_EmptyBodyYieldsEmptyObject(t *testing.T) {
	srv, _, _ := newRecorder(t, http.StatusNoContent, ``)
	inv := compile(t, domain.ActionDescriptor{Name: "del", HTTPMethod: "DELETE", URL: srv.URL + "/x"})

	res := inv.Invoke(context.Background(), nil)

	require.True(t, res.OK(), res.Message)
	assert.Equal(t, map[string]any{}, res.Data)
}

func TestInvoke_UnparsableBody(t *testing.T) {
	srv, _, _ := newRecorder(t, http.StatusOK, `<html>oops</html>`)
	inv := compile(t, domain.ActionDescriptor{Name: "get", URL: srv.URL})

	res := inv.Invoke(context.Background(), nil)

	assert.Equal(t, domain.ActionFailed, res.Status)
	assert.Contains(t, res.Message, "decode")
}

func TestInvoke_TransportFailure(t *testing.T) {
	srv, _, _ := newRecorder(t, http.StatusOK, `{}`)
	url := srv.URL
	srv.Close()

	inv := compile(t, domain.ActionDescriptor{Name: "get", URL: url})
	res := inv.Invoke(context.Background(), nil)

	assert.Equal(t, domain.ActionFailed, res.Status)
	assert.Contains(t, res.Message, "transport")
}

func TestInvoke_Headers(t *testing.T) {
	srv, got, _ := newRecorder(t, http.StatusOK, `{}`)
	inv := compile(t, domain.ActionDescriptor{
		Name: "get",
		URL:  srv.URL,
		Headers: []domain.Header{
			{Key: "Accept", Value: "application/vnd.api+json"},
			{Key: "X-Api-Key", Value: "secret"},
		},
	})

	ctx := WithIdempotencyKey(context.Background(), "key-1")
	res := inv.Invoke(ctx, nil)

	require.True(t, res.OK())
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "application/vnd.api+json", got.Header.Get("Accept"))
	assert.Equal(t, DefaultUserAgent, got.Header.Get("User-Agent"))
	assert.Equal(t, "secret", got.Header.Get("X-Api-Key"))
	assert.Equal(t, "key-1", got.Header.Get("Idempotency-Key"))
}

func TestInvoke_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	inv := compile(t, domain.ActionDescriptor{Name: "slow", URL: srv.URL}, WithTimeout(50*time.Millisecond))

	start := time.Now()
	res := inv.Invoke(context.Background(), nil)

	assert.Equal(t, domain.ActionFailed, res.Status)
	assert.Less(t, time.Since(start), time.Second)
}

func TestInvoke_MissingPlaceholderFallsBack(t *testing.T) {
	srv, got, _ := newRecorder(t, http.StatusOK, `{}`)
	inv := compile(t, domain.ActionDescriptor{
		Name:       "get",
		URL:        srv.URL + "/a/{x}/{y}",
		Parameters: []domain.ParameterSpec{{Name: "x", Type: "float"}},
	})

	res := inv.Invoke(context.Background(), map[string]any{"x": 7.0})

	require.True(t, res.OK(), res.Message)
	assert.Equal(t, "/a/7/{y}", got.Path)
}

func TestRenderURL_WholeFloatPathValue(t *testing.T) {
	inv := compile(t, domain.ActionDescriptor{
		Name:       "get",
		URL:        "https://api.x/orders/{order_id}",
		Parameters: []domain.ParameterSpec{{Name: "order_id", Type: "float"}},
	})

	url, rest := inv.RenderURL(map[string]any{"order_id": 7.0, "q": "x"})
	assert.Equal(t, "https://api.x/orders/7", url)
	assert.Equal(t, map[string]any{"q": "x"}, rest)
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []domain.ActionStatus
}

func (o *recordingObserver) ObserveAction(_ string, status domain.ActionStatus, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, status)
}

func TestInvoke_Observer(t *testing.T) {
	srv, _, _ := newRecorder(t, http.StatusOK, `{}`)
	obs := &recordingObserver{}
	inv := compile(t, domain.ActionDescriptor{Name: "get", URL: srv.URL}, WithObserver(obs))

	inv.Invoke(context.Background(), nil)
	assert.Equal(t, []domain.ActionStatus{domain.ActionSuccess}, obs.calls)
}

func TestCompile(t *testing.T) {
	c := NewCompiler()

	_, err := c.Compile(domain.ActionDescriptor{URL: "http://x"})
	var cfgErr *domain.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))

	_, err = c.Compile(domain.ActionDescriptor{Name: "x"})
	assert.True(t, errors.As(err, &cfgErr))

	inv, err := c.Compile(domain.ActionDescriptor{
		Name:       "lookup user",
		URL:        "http://x/{id}",
		Parameters: []domain.ParameterSpec{{Name: "id", Type: "uuid"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "lookup_user", inv.Name())
	assert.Equal(t, http.MethodGet, inv.Method())

	kind, ok := inv.Schema().Kind("id")
	require.True(t, ok)
	assert.Equal(t, "string", kind.Name())

	data, err := json.Marshal(inv.Schema())
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"id","type":"string"}]`, string(data))
}

func TestPool_BoundsConcurrency(t *testing.T) {
	p := NewPool(1)
	release, err := p.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = p.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	release2, err := p.Acquire(context.Background())
	require.NoError(t, err)
	release2()

	unbounded := NewPool(0)
	r, err := unbounded.Acquire(context.Background())
	require.NoError(t, err)
	r()
	assert.Equal(t, 0, unbounded.Size())
}

func TestIdempotencyKey(t *testing.T) {
	a := IdempotencyKey("s1", 1, "fetch")
	assert.Equal(t, a, IdempotencyKey("s1", 1, "fetch"))
	assert.NotEqual(t, a, IdempotencyKey("s1", 3, "fetch"))
	assert.Len(t, a, 32)
}
