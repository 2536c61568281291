package formats

import (
	"bytes"
	"time"

	"github.com/go-andiamo/iccarus"
)

var iccHeaderOnly = &iccarus.ParseOptions{Mode: iccarus.ParseHeaderOnly}

// parseICCHeader parses the 128-byte header of an ICC profile.
func parseICCHeader(data []byte) (*iccarus.Header, error) {
	p, err := iccarus.ParseProfile(bytes.NewReader(data), iccHeaderOnly)
	if err != nil {
		return nil, err
	}
	return &p.Header, nil
}

func iccReport(h *iccarus.Header) *Report {
	r := NewReport()
	r.Set("Profile Size", h.ProfileSize)
	r.Set("Version", h.Version.String())
	r.Set("Device Class", h.DeviceClass)
	r.Set("Color Space", h.ColorSpace)
	r.Set("PCS", h.PCS)
	if h.CMMType != "" {
		r.Set("CMM", h.CMMType)
	}
	if h.Manufacturer != "" {
		r.Set("Manufacturer", h.Manufacturer)
	}
	if h.Creator != "" {
		r.Set("Creator", h.Creator)
	}
	r.Set("Created", h.Created.Format(time.RFC3339))
	return r
}
