package endpoint

import "strings"

// Affinity labels which app build a host candidate is meant for. The
// Android emulator reaches the host machine through 10.0.2.2, the iOS
// simulator through loopback, and web builds through whatever origin the
// page was served from; "any" candidates are tried by every platform.
type Affinity string

const (
	AffinityWeb     Affinity = "web"
	AffinityAndroid Affinity = "android"
	AffinityIOS     Affinity = "ios"
	AffinityAny     Affinity = "any"
)

// ParseAffinity maps a config string onto an affinity, defaulting to any.
func ParseAffinity(s string) Affinity {
	switch Affinity(strings.ToLower(strings.TrimSpace(s))) {
	case AffinityWeb:
		return AffinityWeb
	case AffinityAndroid:
		return AffinityAndroid
	case AffinityIOS:
		return AffinityIOS
	default:
		return AffinityAny
	}
}

// Candidate is one host the backend may be reachable at. The candidate
// list is static; only the resolver's notion of which one is active moves.
type Candidate struct {
	URL      string
	Affinity Affinity
}

// orderFor returns the probe order for a platform: platform-affine
// candidates first, then any-affinity ones. Candidates pinned to a
// different platform are not probed at all.
func orderFor(candidates []Candidate, platform Affinity) []Candidate {
	ordered := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Affinity == platform && platform != AffinityAny {
			ordered = append(ordered, c)
		}
	}
	for _, c := range candidates {
		if c.Affinity == AffinityAny {
			ordered = append(ordered, c)
		}
	}
	return ordered
}
