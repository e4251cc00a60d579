package geo

// DefaultFallbackMeters is the distance beyond which a taxpayer's raw GPS
// capture is considered implausible and the neighborhood reference point
// is displayed instead.
const DefaultFallbackMeters = 1000.0

// Resolution is the outcome of resolving a taxpayer's display coordinate.
// The raw distance is always reported so a substituted marker remains
// explainable; nothing is dropped silently.
type Resolution struct {
	Point          Point   `json:"point"`
	DistanceMeters float64 `json:"distance_meters"`
	Substituted    bool    `json:"substituted"`
	Excluded       bool    `json:"excluded"`
}

// ResolverConfig controls display-point resolution. A zero HardCutoff
// disables exclusion entirely.
type ResolverConfig struct {
	FallbackMeters   float64
	HardCutoffMeters float64
}

// ResolveDisplayPoint decides which coordinate to show on the map for a
// taxpayer. own is the taxpayer's captured GPS position, ref the
// neighborhood reference point; either may be nil.
//
// Rules, in order:
//   - no own coordinate: substitute the reference point (or exclude when
//     the neighborhood has none either);
//   - hard cutoff configured and exceeded: exclude the marker entirely;
//   - distance beyond the fallback threshold: substitute the reference
//     point, keeping the raw distance;
//   - otherwise the own coordinate passes through unmodified.
func ResolveDisplayPoint(own, ref *Point, cfg ResolverConfig) Resolution {
	if cfg.FallbackMeters <= 0 {
		cfg.FallbackMeters = DefaultFallbackMeters
	}

	if own == nil {
		if ref == nil {
			return Resolution{Excluded: true}
		}
		return Resolution{Point: *ref, Substituted: true}
	}

	if ref == nil {
		// Nothing to compare against: trust the capture.
		return Resolution{Point: *own}
	}

	d := DistanceMeters(*own, *ref)

	if cfg.HardCutoffMeters > 0 && d > cfg.HardCutoffMeters {
		return Resolution{DistanceMeters: d, Excluded: true}
	}

	if d > cfg.FallbackMeters {
		return Resolution{Point: *ref, DistanceMeters: d, Substituted: true}
	}

	return Resolution{Point: *own, DistanceMeters: d}
}
