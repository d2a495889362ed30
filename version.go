package embeddedsass

import (
	"fmt"
	"strconv"
	"strings"
)

// minimumProtocolVersion is the lowest protocol version (three dotted
// integers) this driver accepts. A child whose reported version has a
// different major, or is numerically lower, is rejected and the driver
// goes broken.
var minimumProtocolVersion = protocolVersion{major: 2, minor: 0, patch: 0}

type protocolVersion struct {
	major, minor, patch int
}

func (v protocolVersion) less(o protocolVersion) bool {
	if v.major != o.major {
		return v.major < o.major
	}
	if v.minor != o.minor {
		return v.minor < o.minor
	}
	return v.patch < o.patch
}

// parseProtocolVersion accepts "major.minor.patch" with an optional
// "-prerelease" suffix, which is parsed but otherwise ignored: only the
// three numeric components participate in comparison.
func parseProtocolVersion(s string) (protocolVersion, error) {
	s, _, _ = strings.Cut(s, "-")
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return protocolVersion{}, fmt.Errorf("expected major.minor.patch, got %q", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return protocolVersion{}, fmt.Errorf("invalid version component %q: %w", p, err)
		}
		nums[i] = n
	}
	return protocolVersion{major: nums[0], minor: nums[1], patch: nums[2]}, nil
}

// negotiateVersion reports an error unless reported is parseable, shares
// its major component with minimumProtocolVersion, and is >= it.
func negotiateVersion(reported string) error {
	v, err := parseProtocolVersion(reported)
	if err != nil {
		return fmt.Errorf("embeddedsass: unparsable protocol version %q: %w", reported, err)
	}
	if v.major != minimumProtocolVersion.major {
		return fmt.Errorf("embeddedsass: protocol major version mismatch: got %d, want %d", v.major, minimumProtocolVersion.major)
	}
	if v.less(minimumProtocolVersion) {
		return fmt.Errorf("embeddedsass: protocol version %s is below minimum %d.%d.%d",
			reported, minimumProtocolVersion.major, minimumProtocolVersion.minor, minimumProtocolVersion.patch)
	}
	return nil
}

// Version captures the four version strings the child reports in its
// VersionResponse: protocol version, package version, compiler version,
// and a human-readable compiler name.
type Version struct {
	ProtocolVersion string
	PackageVersion  string
	CompilerVersion string
	CompilerName    string
}
