package environment

import (
	"encoding/json"
	"math"
	"time"

	"github.com/cperrin88/envpkgsearch/pkg/errors"
)

// environmentJSON is the flat cache mapping. Fields may be added but never
// renamed; decoding tolerates missing optional fields and unknown keys.
type environmentJSON struct {
	ID               string             `json:"id"`
	Creator          Creator            `json:"creator"`
	Path             string             `json:"path"`
	Executable       string             `json:"executable"`
	Version          string             `json:"version"`
	SitePackagesDirs []string           `json:"site_packages_dirs"`
	UserSiteDir      *string            `json:"user_site_dir"`
	BasePrefix       *string            `json:"base_prefix,omitempty"`
	DetectedPackages map[string]Package `json:"detected_packages"`
	LastScanTime     float64            `json:"last_scan_time"`
}

// MarshalJSON implements json.Marshaler.
func (e *Environment) MarshalJSON() ([]byte, error) {
	base := e.BasePrefix
	wire := environmentJSON{
		ID:               e.ID,
		Creator:          e.Creator,
		Path:             e.Path,
		Executable:       e.Executable,
		Version:          e.Version,
		SitePackagesDirs: e.SitePackagesDirs,
		UserSiteDir:      e.UserSiteDir,
		BasePrefix:       &base,
		DetectedPackages: e.DetectedPackages,
		LastScanTime:     unixSeconds(e.LastScanTime),
	}
	if wire.SitePackagesDirs == nil {
		wire.SitePackagesDirs = []string{}
	}
	if wire.DetectedPackages == nil {
		wire.DetectedPackages = map[string]Package{}
	}
	return json.Marshal(wire)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Environment) UnmarshalJSON(data []byte) error {
	var wire environmentJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.Wrapf(errors.ErrMalformedEnvironment, "%v", err)
	}
	switch {
	case wire.ID == "":
		return errors.Wrap(errors.ErrMalformedEnvironment, "missing id")
	case wire.Path == "":
		return errors.Wrap(errors.ErrMalformedEnvironment, "missing path")
	case wire.Executable == "":
		return errors.Wrap(errors.ErrMalformedEnvironment, "missing executable")
	}

	*e = Environment{
		ID:               wire.ID,
		Creator:          wire.Creator,
		Path:             wire.Path,
		Executable:       wire.Executable,
		Version:          wire.Version,
		SitePackagesDirs: wire.SitePackagesDirs,
		UserSiteDir:      wire.UserSiteDir,
		BasePrefix:       wire.Path,
		DetectedPackages: wire.DetectedPackages,
		LastScanTime:     fromUnixSeconds(wire.LastScanTime),
	}
	if wire.BasePrefix != nil && *wire.BasePrefix != "" {
		e.BasePrefix = *wire.BasePrefix
	}
	if e.Creator == "" {
		e.Creator = CreatorUnknown
	}
	if e.DetectedPackages == nil {
		e.DetectedPackages = map[string]Package{}
	}
	return nil
}

func unixSeconds(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixNano()) / float64(time.Second)
}

func fromUnixSeconds(s float64) time.Time {
	if s <= 0 {
		return time.Time{}
	}
	sec, frac := math.Modf(s)
	return time.Unix(int64(sec), int64(math.Round(frac*float64(time.Second))))
}
