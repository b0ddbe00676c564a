package features

import (
	"errors"
	"fmt"
	"strings"
)

// Descriptor names a per-frame audio feature.
type Descriptor string

// Temporal descriptors.
const (
	RMS              Descriptor = "rms"
	Peak             Descriptor = "peak"
	CrestFactor      Descriptor = "crest_factor"
	ZeroCrossingRate Descriptor = "zero_crossing_rate"
	Variance         Descriptor = "variance"
	Skewness         Descriptor = "skewness"
	Kurtosis         Descriptor = "kurtosis"
)

// Spectral descriptors.
const (
	SpectralCentroid Descriptor = "spectral_centroid"
	SpectralSpread   Descriptor = "spectral_spread"
	SpectralFlatness Descriptor = "spectral_flatness"
	SpectralRolloff  Descriptor = "spectral_rolloff"
)

// ErrUnknownDescriptor is returned for unsupported descriptor names.
var ErrUnknownDescriptor = errors.New("features: unknown descriptor")

var allDescriptors = []Descriptor{
	RMS, Peak, CrestFactor, ZeroCrossingRate, Variance, Skewness, Kurtosis,
	SpectralCentroid, SpectralSpread, SpectralFlatness, SpectralRolloff,
}

// AllDescriptors returns every supported descriptor in canonical order.
func AllDescriptors() []Descriptor {
	return append([]Descriptor(nil), allDescriptors...)
}

// Spectral reports whether d needs a magnitude spectrum.
func (d Descriptor) Spectral() bool {
	return strings.HasPrefix(string(d), "spectral_")
}

// Valid reports whether d is a supported descriptor.
func (d Descriptor) Valid() bool {
	for _, v := range allDescriptors {
		if v == d {
			return true
		}
	}
	return false
}

// ParseDescriptors parses a comma separated descriptor list. An empty string
// selects every descriptor.
func ParseDescriptors(list string) ([]Descriptor, error) {
	if strings.TrimSpace(list) == "" {
		return AllDescriptors(), nil
	}
	var out []Descriptor
	for _, name := range strings.Split(list, ",") {
		d := Descriptor(strings.ToLower(strings.TrimSpace(name)))
		if !d.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDescriptor, name)
		}
		out = append(out, d)
	}
	return out, nil
}
