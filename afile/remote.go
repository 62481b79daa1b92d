package afile

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-applesoft/applesoft/berrors"
)

// Remote is a FileStore that SAVEs and LOADs against a server started
// with WrapFileRoutes, for the --serve deployment mode: the REPL still
// calls Save/Load exactly as it would against Local, unaware the bytes
// are crossing the network.
type Remote struct {
	BaseURL string
	Client  *http.Client
}

// NewRemote creates a Remote FileStore pointed at baseURL (e.g.
// "http://127.0.0.1:6502").
func NewRemote(baseURL string) *Remote {
	return &Remote{BaseURL: strings.TrimRight(baseURL, "/"), Client: http.DefaultClient}
}

func (r *Remote) Save(name string, lines []string) error {
	body := strings.Join(lines, "\n") + "\n"
	req, err := http.NewRequest(http.MethodPut, r.url(name), bytes.NewBufferString(body))
	if err != nil {
		return &berrors.HostError{Detail: err.Error()}
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return &berrors.HostError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return &berrors.HostError{Detail: resp.Status}
	}
	return nil
}

func (r *Remote) Load(name string) ([]string, error) {
	resp, err := r.Client.Get(r.url(name))
	if err != nil {
		return nil, &berrors.HostError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, berrors.New(berrors.FileNotFound)
	}
	if resp.StatusCode >= 300 {
		return nil, &berrors.HostError{Detail: resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &berrors.HostError{Detail: err.Error()}
	}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

func (r *Remote) url(name string) string {
	return r.BaseURL + "/files/" + url.PathEscape(name)
}
