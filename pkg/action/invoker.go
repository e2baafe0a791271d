package action

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/dewakar-s/procflow/pkg/schema"
)

const maxResponseBytes = 10 << 20

// Invoker performs one compiled action. It is safe for concurrent use.
type Invoker struct {
	name     string
	desc     domain.ActionDescriptor
	method   string
	schema   schema.Schema
	template *Template
	headers  http.Header
	client   Doer
	logger   *slog.Logger
	timeout  time.Duration
	pool     *Pool
	observer Observer
}

// Name returns the sanitized action name.
func (inv *Invoker) Name() string { return inv.name }

// Description returns the descriptor's description.
func (inv *Invoker) Description() string { return inv.desc.Description }

// Method returns the normalized HTTP method.
func (inv *Invoker) Method() string { return inv.method }

// Schema returns the compiled parameter schema.
func (inv *Invoker) Schema() schema.Schema { return inv.schema }

// Descriptor returns the descriptor the Invoker was compiled from.
func (inv *Invoker) Descriptor() domain.ActionDescriptor { return inv.desc }

// Invoke validates args, performs the request and converts every outcome into an ActionResult.
func (inv *Invoker) Invoke(ctx context.Context, args map[string]any) domain.ActionResult {
	start := time.Now()
	res := inv.invoke(ctx, args)
	if inv.observer != nil {
		inv.observer.ObserveAction(inv.name, res.Status, time.Since(start))
	}
	return res
}

func (inv *Invoker) invoke(ctx context.Context, args map[string]any) domain.ActionResult {
	if !SupportedMethod(inv.method) {
		return inv.fail(&ActionInvocationError{
			Action: inv.name,
			Kind:   FailureMethod,
			Err:    fmt.Errorf("unsupported HTTP method: %s", inv.method),
		})
	}

	validated, err := inv.schema.Apply(args)
	if err != nil {
		return inv.fail(&ActionInvocationError{Action: inv.name, Kind: FailureArguments, Err: err})
	}

	target, rest := inv.RenderURL(validated)

	var body io.Reader
	if inv.method == http.MethodGet {
		target = appendQuery(target, rest)
	} else {
		// The whole argument set is sent, path arguments included.
		payload, err := json.Marshal(validated)
		if err != nil {
			return inv.fail(&ActionInvocationError{Action: inv.name, Kind: FailureArguments, Err: err})
		}
		body = bytes.NewReader(payload)
	}

	release, err := inv.pool.Acquire(ctx)
	if err != nil {
		return inv.fail(&ActionInvocationError{Action: inv.name, Kind: FailureTransport, URL: target, Err: err})
	}
	defer release()

	if inv.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, inv.method, target, body)
	if err != nil {
		return inv.fail(&ActionInvocationError{Action: inv.name, Kind: FailureTransport, URL: target, Err: err})
	}
	req.Header = inv.headers.Clone()
	if key, ok := IdempotencyKeyFrom(ctx); ok && req.Header.Get("Idempotency-Key") == "" {
		req.Header.Set("Idempotency-Key", key)
	}

	inv.logger.Debug("Invoking action", "method", inv.method, "url", target)

	resp, err := inv.client.Do(req)
	if err != nil {
		return inv.fail(&ActionInvocationError{Action: inv.name, Kind: FailureTransport, URL: target, Err: err})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return inv.fail(&ActionInvocationError{Action: inv.name, Kind: FailureTransport, URL: target, Err: err})
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return inv.fail(&ActionInvocationError{
			Action:     inv.name,
			Kind:       FailureStatus,
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			URL:        target,
		})
	}

	var data any = map[string]any{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return inv.fail(&ActionInvocationError{Action: inv.name, Kind: FailureDecode, URL: target, Err: err})
		}
	}

	argText, _ := json.Marshal(validated)
	return domain.Succeeded("Success "+string(argText), data)
}

// RenderURL substitutes path arguments into the template and returns the URL together
// with the arguments that did not match a placeholder.
func (inv *Invoker) RenderURL(args map[string]any) (string, map[string]any) {
	pathValues := make(map[string]string)
	rest := make(map[string]any)
	for k, v := range args {
		if inv.template.Has(k) {
			pathValues[k] = url.PathEscape(formatScalar(v))
			continue
		}
		rest[k] = v
	}

	rendered, err := inv.template.Render(pathValues)
	if err != nil {
		rendered = inv.template.RenderPartial(pathValues)
		inv.logger.Error("URL placeholder substitution failed, using literal replacement",
			"err", err,
			"url", rendered,
		)
	}
	return rendered, rest
}

func appendQuery(target string, args map[string]any) string {
	if len(args) == 0 {
		return target
	}
	q := url.Values{}
	for k, v := range args {
		q.Set(k, formatScalar(v))
	}
	enc := q.Encode()
	switch {
	case !strings.Contains(target, "?"):
		return target + "?" + enc
	case strings.HasSuffix(target, "?"), strings.HasSuffix(target, "&"):
		return target + enc
	default:
		return target + "&" + enc
	}
}

// formatScalar renders a value as text; whole floats render without a fractional part.
func formatScalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return formatScalar(float64(x))
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(v)
	}
}

func (inv *Invoker) fail(err *ActionInvocationError) domain.ActionResult {
	inv.logger.Warn("Action invocation failed", "kind", err.Kind, "err", err)
	return domain.Failed(err.Error())
}
