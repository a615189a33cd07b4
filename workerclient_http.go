package wpool

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/compilepool/poold/internal"
	"github.com/compilepool/poold/sloghelper"
)

const signatureHeader = "X-Poold-Signature"

// httpWorkerClient is the concrete WorkerClient of §6.2: one HTTPS request
// per RPC (RunJob a signed POST, GetVersions an unsigned GET), each response
// verified against the worker's pubkey. Grounded on the request/response shape of bamboo's
// worker_client.go (context-scoped timeout, per-call logger, retry wrapper
// built from the backoff package) but transposed from pubsub-delivered
// protobuf frames onto direct signed HTTP, since this pool's workers are
// addressed individually over HTTP rather than through a shared broker.
type httpWorkerClient struct {
	http *http.Client
}

// NewHTTPWorkerClient returns a WorkerClient that talks to workers over
// HTTPS with the given per-request timeout.
func NewHTTPWorkerClient(timeout time.Duration) WorkerClient {
	return &httpWorkerClient{
		http: &http.Client{Timeout: timeout},
	}
}

type versionsResponse struct {
	Versions  []Version `json:"versions"`
	Signature string    `json:"signature"`
}

type runResponseWire struct {
	Stdout    []byte `json:"stdout"`
	Stderr    []byte `json:"stderr"`
	ExitCode  int    `json:"exit_code"`
	Signature string `json:"signature"`
}

// GetVersions lists a worker's compiler versions. Unlike RunJob this RPC is
// idempotent, so failed attempts are retried with exponential backoff for
// up to 2 seconds in total — this is a narrower concern than the health-check
// backoff of §4.6, which governs how often the event loop *schedules* a
// retry at all, not whether a single in-flight HTTP call is retried.
func (c *httpWorkerClient) GetVersions(ctx context.Context, addr WorkerAddr) ([]Version, error) {
	logger := sloghelper.FromContext(ctx, sloghelper.WorkerClientLoggerKey)

	var versions []Version
	attempt := 0
	operation := func() error {
		attempt++
		v, err := c.getVersionsOnce(ctx, addr)
		if err != nil {
			return err
		}
		versions = v
		return nil
	}

	backOff := backoff.NewExponentialBackOff()
	backOff.MaxElapsedTime = 2 * time.Second

	notify := func(err error, d time.Duration) {
		logger.DebugContext(ctx, "getVersions attempt failed", slog.Any("err", err), slog.Int("attempt", attempt))
	}

	if err := backoff.RetryNotify(operation, backOff, notify); err != nil {
		return nil, internal.Errorf("getVersions. host: %s, err: %w", addr.Host, err)
	}

	return versions, nil
}

func (c *httpWorkerClient) getVersionsOnce(ctx context.Context, addr WorkerAddr) ([]Version, error) {
	url := fmt.Sprintf("https://%s/versions", addr.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, internal.Errorf("http.NewRequestWithContext. err: %w", err)
	}

	internal.FromContext(ctx).Debugf("GET %s", url)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, internal.Errorf("http.Do. err: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, internal.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, internal.Errorf("io.ReadAll. err: %w", err)
	}

	var wire versionsResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, internal.Errorf("json.Unmarshal. err: %w", err)
	}

	if err := verifySignature(addr.Pubkey, versionsSigningBytes(wire.Versions), wire.Signature); err != nil {
		return nil, err
	}

	return wire.Versions, nil
}

// RunJob executes req on the worker at addr. Never retried internally: a
// compile/run may have side effects, so at-most-one HTTP attempt is made and
// any failure is surfaced to the caller (who converts it to EWorkerFailed).
func (c *httpWorkerClient) RunJob(ctx context.Context, secretKey [64]byte, addr WorkerAddr, req RunRequest) (*RunResponse, error) {
	logger := sloghelper.FromContext(ctx, sloghelper.WorkerClientLoggerKey)
	logger.DebugContext(ctx, "runJob", slog.String("host", addr.Host))

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, internal.Errorf("json.Marshal. err: %w", err)
	}

	signature := ed25519.Sign(ed25519.PrivateKey(secretKey[:]), payload)

	url := fmt.Sprintf("https://%s/run", addr.Host)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, internal.Errorf("http.NewRequestWithContext. err: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(signatureHeader, base64.StdEncoding.EncodeToString(signature))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, internal.Errorf("http.Do. err: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, internal.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, internal.Errorf("io.ReadAll. err: %w", err)
	}

	var wire runResponseWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, internal.Errorf("json.Unmarshal. err: %w", err)
	}

	if err := verifySignature(addr.Pubkey, runResponseSigningBytes(wire), wire.Signature); err != nil {
		return nil, err
	}

	return &RunResponse{
		Stdout:   wire.Stdout,
		Stderr:   wire.Stderr,
		ExitCode: wire.ExitCode,
	}, nil
}

func verifySignature(pubkey [32]byte, signed []byte, signatureB64 string) error {
	signature, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return internal.Errorf("base64.StdEncoding.DecodeString. err: %w", err)
	}

	if !ed25519.Verify(ed25519.PublicKey(pubkey[:]), signed, signature) {
		return ErrSignatureMismatch
	}
	return nil
}

func versionsSigningBytes(versions []Version) []byte {
	b, _ := json.Marshal(versions)
	return b
}

func runResponseSigningBytes(wire runResponseWire) []byte {
	unsigned := wire
	unsigned.Signature = ""
	b, _ := json.Marshal(unsigned)
	return b
}
