package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/sirupsen/logrus"
)

// Failure reasons attached to log entries so a transport problem can be told
// apart from a host that answered with something unusable.
const (
	ReasonRequest = "request"
	ReasonStatus  = "status"
	ReasonDecode  = "decode"
)

// Resolver fetches metadata documents. It makes one attempt per URI and never
// returns an error: any failure is logged and reported as nil metadata.
type Resolver struct {
	client  *http.Client
	gateway string
	log     logrus.FieldLogger
}

// NewResolver returns a resolver that rewrites ipfs:// through gateway. A zero
// timeout keeps the HTTP client's default.
func NewResolver(gateway string, timeout time.Duration, log logrus.FieldLogger) *Resolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{
		client:  &http.Client{Timeout: timeout},
		gateway: gateway,
		log:     log,
	}
}

// FetchURL returns the HTTP URL Resolve would request for uri.
func (r *Resolver) FetchURL(uri string) string {
	return GatewayURL(uri, r.gateway)
}

// Resolve GETs the document behind uri and decodes it as a JSON object.
// It returns nil if the request fails, the status is not 2xx, or the body is
// not a JSON object.
func (r *Resolver) Resolve(ctx context.Context, uri string) Metadata {
	target := r.FetchURL(uri)
	entry := r.log.WithFields(logrus.Fields{"uri": uri, "url": target})

	if strings.HasPrefix(uri, IPFSScheme) {
		r.checkCID(entry, strings.TrimPrefix(uri, IPFSScheme))
	}

	md, reason, err := r.fetch(ctx, target)
	if err != nil {
		entry.WithError(err).WithField("reason", reason).Warn("Error fetching metadata")
		return nil
	}
	entry.Debug("metadata fetched")
	return md
}

func (r *Resolver) fetch(ctx context.Context, target string) (Metadata, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, ReasonRequest, err
	}
	req.Header.Set("Accept", "application/json, */*")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, ReasonRequest, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ReasonStatus, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ReasonRequest, fmt.Errorf("read body: %w", err)
	}

	// The whole body must be one JSON object; trailing bytes are an error.
	var md Metadata
	if err := json.Unmarshal(body, &md); err != nil {
		return nil, ReasonDecode, fmt.Errorf("invalid JSON body: %w", err)
	}
	if md == nil {
		return nil, ReasonDecode, fmt.Errorf("JSON body is null")
	}
	return md, "", nil
}

// checkCID logs, without failing, when the first path segment of an ipfs://
// URI is not a valid CID. Gateways reject such paths, so the warning that
// follows a failed fetch gets a clearer cause.
func (r *Resolver) checkCID(entry logrus.FieldLogger, path string) {
	segment, _, _ := strings.Cut(path, "/")
	c, err := cid.Decode(segment)
	if err != nil {
		entry.WithError(err).Debug("ipfs URI does not start with a valid CID")
		return
	}
	entry.WithField("cid_version", c.Version()).Debug("ipfs URI parsed")
}
