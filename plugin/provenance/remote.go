package provenance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/cwbudde/algo-safe/plugin/analysis"
)

const (
	// DefaultRemoteTimeout bounds one upload or lookup.
	DefaultRemoteTimeout = 30 * time.Second

	// notFoundBody is the lookup response for an unknown descriptor.
	notFoundBody = "Descriptor not found."
	// uploadAck is the WebSocket reply confirming a stored upload.
	uploadAck  = "ok"
	uploadForm = "turtles"
	maxBody    = 1 << 20
)

// RemoteConfig locates the aggregation service.
type RemoteConfig struct {
	// UploadURL receives record archives. http(s) URLs get a multipart form
	// POST with the archive in field "turtles"; ws(s) URLs get one binary
	// message and must answer with the text "ok".
	UploadURL string
	// LookupURL answers GET ?Plugin=<code>&Descriptor=<term> with one
	// "name, value" line per parameter.
	LookupURL string
	Timeout   time.Duration
}

// RemoteExporter uploads provenance records to and reads parameter
// settings from the aggregation service.
type RemoteExporter struct {
	cfg    RemoteConfig
	info   Info
	client *http.Client
}

// NewRemoteExporter validates cfg. Either URL may be empty to disable that
// direction.
func NewRemoteExporter(cfg RemoteConfig, info Info) (*RemoteExporter, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRemoteTimeout
	}
	if cfg.UploadURL != "" {
		u, err := url.Parse(cfg.UploadURL)
		if err != nil {
			return nil, fmt.Errorf("provenance: upload url: %w", err)
		}
		switch u.Scheme {
		case "http", "https", "ws", "wss":
		default:
			return nil, fmt.Errorf("provenance: upload url scheme %q not supported", u.Scheme)
		}
	}
	if cfg.LookupURL != "" {
		u, err := url.Parse(cfg.LookupURL)
		if err != nil {
			return nil, fmt.Errorf("provenance: lookup url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("provenance: lookup url scheme %q not supported", u.Scheme)
		}
	}
	return &RemoteExporter{
		cfg:    cfg,
		info:   info,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Upload sends the provenance record of a. Failures are logged and
// reported as ServerUnavailable.
func (r *RemoteExporter) Upload(ctx context.Context, a analysis.Annotation) analysis.Warning {
	if r.cfg.UploadURL == "" {
		slog.Warn("remote upload not configured")
		return analysis.ServerUnavailable
	}

	created := a.Created
	if created.IsZero() {
		created = time.Now()
	}
	data, err := Archive(Record(r.info, a, uuid.NewString()), created)
	if err != nil {
		slog.Error("build record archive", "err", err)
		return analysis.ServerUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	if strings.HasPrefix(r.cfg.UploadURL, "ws") {
		err = r.uploadWebSocket(ctx, data)
	} else {
		err = r.uploadForm(ctx, data)
	}
	if err != nil {
		slog.Error("upload annotation", "url", r.cfg.UploadURL, "err", err)
		return analysis.ServerUnavailable
	}
	slog.Info("annotation uploaded", "descriptor", a.Descriptor, "bytes", len(data))
	return analysis.NoWarning
}

func (r *RemoteExporter) uploadWebSocket(ctx context.Context, data []byte) error {
	conn, _, err := websocket.Dial(ctx, r.cfg.UploadURL, nil)
	if err != nil {
		return fmt.Errorf("provenance: dial: %w", err)
	}
	defer conn.CloseNow()

	if err := conn.Write(ctx, websocket.MessageBinary, data); err != nil {
		return fmt.Errorf("provenance: send archive: %w", err)
	}
	typ, reply, err := conn.Read(ctx)
	if err != nil {
		return fmt.Errorf("provenance: read reply: %w", err)
	}
	if typ != websocket.MessageText || strings.TrimSpace(string(reply)) != uploadAck {
		return fmt.Errorf("provenance: upload rejected: %q", reply)
	}
	conn.Close(websocket.StatusNormalClosure, "uploaded")
	return nil
}

func (r *RemoteExporter) uploadForm(ctx context.Context, data []byte) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(uploadForm, ArchiveName)
	if err != nil {
		return err
	}
	if _, err := fw.Write(data); err != nil {
		return err
	}
	if err := mw.WriteField("submit", "send"); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.UploadURL, &body)
	if err != nil {
		return fmt.Errorf("provenance: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("provenance: post archive: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("provenance: upload status %s", resp.Status)
	}
	return nil
}

// Lookup fetches the average parameter settings stored for the first term
// of descriptor.
func (r *RemoteExporter) Lookup(ctx context.Context, descriptor string) ([]float64, analysis.Warning) {
	terms := analysis.SplitDescriptor(descriptor)
	if len(terms) == 0 {
		return nil, analysis.DescriptorNotOnServer
	}
	if r.cfg.LookupURL == "" {
		slog.Warn("remote lookup not configured")
		return nil, analysis.ServerUnavailable
	}

	body, err := r.get(ctx, terms[0])
	if err != nil {
		slog.Error("remote lookup", "descriptor", terms[0], "err", err)
		return nil, analysis.ServerUnavailable
	}
	if strings.TrimSpace(body) == notFoundBody {
		return nil, analysis.DescriptorNotOnServer
	}
	values, err := parseSettings(body)
	if err != nil {
		slog.Error("remote lookup", "descriptor", terms[0], "err", err)
		return nil, analysis.ServerUnavailable
	}
	return values, analysis.NoWarning
}

func (r *RemoteExporter) get(ctx context.Context, term string) (string, error) {
	u, err := url.Parse(r.cfg.LookupURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("Plugin", r.info.Code)
	q.Set("Descriptor", term)
	u.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("provenance: build request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("provenance: get: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", fmt.Errorf("provenance: read response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return notFoundBody, nil
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("provenance: lookup status %s", resp.Status)
	}
	return string(data), nil
}

// parseSettings reads one "name, value" line per parameter. A line without
// a separator is taken as a bare value.
func parseSettings(body string) ([]float64, error) {
	var values []float64
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		field := line
		if _, after, ok := strings.Cut(line, ", "); ok {
			field = after
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("provenance: parameter line %q: %w", line, err)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, errors.New("provenance: empty parameter list")
	}
	return values, nil
}
