// HTTPProvider implements Objects and Index against a remote reproto
// repository server, per spec.md §6's wire contract: GET
// /index/<pkg>/versions, GET /objects/<hex>, PUT /index/<pkg>/<version>
// conditional on If-None-Match for atomicity. Timeouts default to the
// connect/read budget of spec.md §5 (30s/120s). Object fetches (Get) are
// logged through the same structured-field idiom as the teacher's
// auth.AuditLog; the other requests are not logged.
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gitter-badger/reproto/core"
)

// HTTPProvider is both an Objects and an Index implementation talking to
// a REST-ish reproto repository server.
type HTTPProvider struct {
	BaseURL string
	Client  *http.Client
	Log     *logrus.Entry
}

var _ Objects = (*HTTPProvider)(nil)
var _ Index = (*HTTPProvider)(nil)

// NewHTTPProvider builds a provider with spec.md §5's default timeouts:
// 30s to connect, 120s total for the response body.
func NewHTTPProvider(baseURL string, log *logrus.Entry) *HTTPProvider {
	return &HTTPProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout: 120 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 30 * time.Second}).DialContext,
			},
		},
		Log: log,
	}
}

func (h *HTTPProvider) logger() *logrus.Entry {
	if h.Log != nil {
		return h.Log
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

func (h *HTTPProvider) Get(ctx context.Context, checksum string) ([]byte, error) {
	u := h.BaseURL + "/objects/" + url.PathEscape(checksum)
	start := time.Now()
	log := h.logger().WithFields(logrus.Fields{"url": u, "checksum": checksum})
	req, err := h.requestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, core.IoError.Wrap(err, "building object fetch request")
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		log.WithError(err).Warn("object fetch failed")
		return nil, core.RepoErrTimeout.Wrap(err, "fetching object %s", checksum)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		log.Info("object not found")
		return nil, core.RepoErrNotFound.New(checksum)
	}
	if resp.StatusCode != http.StatusOK {
		log.WithField("status", resp.StatusCode).Warn("unexpected object fetch status")
		return nil, core.IoError.New("unexpected status %d fetching object %s", resp.StatusCode, checksum)
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.IoError.Wrap(err, "reading object body %s", checksum)
	}
	log.WithField("elapsed", time.Since(start)).Info("object fetched")
	return content, nil
}

func (h *HTTPProvider) Put(ctx context.Context, content []byte) (string, error) {
	checksum := Checksum(content)
	u := h.BaseURL + "/objects/" + url.PathEscape(checksum)
	req, err := h.requestWithContext(ctx, http.MethodPut, u, bytes.NewReader(content))
	if err != nil {
		return "", core.IoError.Wrap(err, "building object upload request")
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return "", core.RepoErrTimeout.Wrap(err, "uploading object %s", checksum)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", core.IoError.New("unexpected status %d uploading object %s", resp.StatusCode, checksum)
	}
	return checksum, nil
}

func (h *HTTPProvider) ListVersions(ctx context.Context, pkg core.PackageID) ([]core.Version, error) {
	u := h.BaseURL + "/index/" + url.PathEscape(pkg.String()) + "/versions"
	req, err := h.requestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, core.IoError.Wrap(err, "building version list request")
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, core.RepoErrTimeout.Wrap(err, "listing versions for %s", pkg.String())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, core.IoError.New("unexpected status %d listing versions for %s", resp.StatusCode, pkg.String())
	}
	var texts []string
	if err := json.NewDecoder(resp.Body).Decode(&texts); err != nil {
		return nil, core.IoError.Wrap(err, "decoding version list for %s", pkg.String())
	}
	out := make([]core.Version, 0, len(texts))
	for _, t := range texts {
		v, err := core.ParseVersion(t)
		if err != nil {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

type indexPutBody struct {
	Checksum     string   `json:"checksum"`
	Dependencies []string `json:"dependencies,omitempty"`
}

func (h *HTTPProvider) GetChecksum(ctx context.Context, pkg core.PackageID, v core.Version) (string, error) {
	u := h.BaseURL + "/index/" + url.PathEscape(pkg.String()) + "/" + url.PathEscape(v.String())
	req, err := h.requestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", core.IoError.Wrap(err, "building index fetch request")
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return "", core.RepoErrTimeout.Wrap(err, "fetching index entry for %s@%s", pkg.String(), v.String())
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", core.RepoErrNotFound.New(pkg.String() + "@" + v.String())
	}
	if resp.StatusCode != http.StatusOK {
		return "", core.IoError.New("unexpected status %d fetching index entry for %s@%s", resp.StatusCode, pkg.String(), v.String())
	}
	var body indexPutBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", core.IoError.Wrap(err, "decoding index entry for %s@%s", pkg.String(), v.String())
	}
	return body.Checksum, nil
}

func (h *HTTPProvider) PutChecksum(ctx context.Context, pkg core.PackageID, v core.Version, entry IndexEntry) error {
	u := h.BaseURL + "/index/" + url.PathEscape(pkg.String()) + "/" + url.PathEscape(v.String())
	payload, err := json.Marshal(indexPutBody{Checksum: entry.Checksum, Dependencies: entry.Dependencies})
	if err != nil {
		return core.IoError.Wrap(err, "encoding index entry")
	}
	req, err := h.requestWithContext(ctx, http.MethodPut, u, bytes.NewReader(payload))
	if err != nil {
		return core.IoError.Wrap(err, "building index publish request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("If-None-Match", "*")
	resp, err := h.Client.Do(req)
	if err != nil {
		return core.RepoErrTimeout.Wrap(err, "publishing index entry for %s@%s", pkg.String(), v.String())
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusPreconditionFailed, http.StatusConflict:
		return core.RepoErrAlreadyPublished.New(pkg.String() + "@" + v.String())
	default:
		return core.IoError.New("unexpected status %d publishing %s@%s", resp.StatusCode, pkg.String(), v.String())
	}
}

// requestWithContext builds a request bound to ctx, so a caller's
// cancellation or deadline aborts the in-flight round trip instead of
// running to the client's own fixed timeout, per spec.md §5's
// "cancellation is cooperative" note.
func (h *HTTPProvider) requestWithContext(ctx context.Context, method, u string, body io.Reader) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, method, u, body)
}
