package apiclient

import (
	"github.com/hashicorp/go-version"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// ID is a backend-assigned report identifier. The backend may send it as a
// JSON number or string; it is kept as text either way.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		*id = ""
		return nil
	}
	*id = ID(res.String())
	return nil
}

func (id ID) String() string { return string(id) }

type Summary struct {
	ID        ID     `json:"id"`
	Filename  string `json:"filename"`
	Uploader  string `json:"uploader"`
	Timestamp string `json:"timestamp"`
}

type Finding struct {
	TestName string `json:"test_name"`
	Line     int    `json:"line"`
	Issue    string `json:"issue"`
	Severity string `json:"severity"`
}

type Detail struct {
	Summary
	Vulnerabilities []Finding `json:"vulnerabilities"`
	RawOutput       []string  `json:"raw_output"`
}

type Health struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Outdated reports whether the server version is older than min.
// Servers that do not advertise a version are never outdated.
func (h *Health) Outdated(min string) (bool, error) {
	if min == "" || h.Version == "" {
		return false, nil
	}

	current, err := version.NewVersion(h.Version)
	if err != nil {
		return false, errors.Wrapf(err, "server version %q", h.Version)
	}

	minimum, err := version.NewVersion(min)
	if err != nil {
		return false, errors.Wrapf(err, "minimum version %q", min)
	}

	return current.LessThan(minimum), nil
}
