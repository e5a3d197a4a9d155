// Package rules evaluates the Allow/Disallow rule sets that gate library
// and argument inclusion against the current platform and feature set.
package rules

import "runtime"

// Action is the effect of a matching rule.
type Action string

const (
	Allow    Action = "allow"
	Disallow Action = "disallow"
)

// OS restricts a rule to a specific operating system/arch.
type OS struct {
	Name string `json:"name,omitempty"` // "osx", "linux", "windows"; empty matches any
	Arch string `json:"arch,omitempty"` // empty matches any
}

// Features restricts a rule to a specific feature set. A nil pointer field
// means "don't care"; a non-nil pointer must equal the current value. The
// json tags match the wire names used in Mojang version manifests, so this
// type doubles as the decode target for a rule's "features" object.
type Features struct {
	IsDemoUser              *bool `json:"is_demo_user,omitempty"`
	HasCustomResolution     *bool `json:"has_custom_resolution,omitempty"`
	IsQuickPlaySingleplayer *bool `json:"is_quick_play_singleplayer,omitempty"`
	IsQuickPlayMultiplayer  *bool `json:"is_quick_play_multiplayer,omitempty"`
	HasQuickPlaysSupport    *bool `json:"has_quick_plays_support,omitempty"`
	IsQuickPlayRealms       *bool `json:"is_quick_play_realms,omitempty"`
}

// Rule is one entry in a rule set, directly JSON-decodable from a Mojang
// version manifest's "rules" array entries.
type Rule struct {
	Action   Action    `json:"action"`
	OS       *OS       `json:"os,omitempty"`
	Features *Features `json:"features,omitempty"`
}

// CurrentOSName maps runtime.GOOS to Mojang's OS naming ("osx" for darwin).
func CurrentOSName() string {
	switch runtime.GOOS {
	case "darwin":
		return "osx"
	default:
		return runtime.GOOS
	}
}

// osMatches reports whether r applies to the current OS/arch.
func osMatches(r OS) bool {
	if r.Name != "" && r.Name != CurrentOSName() {
		return false
	}
	if r.Arch != "" && r.Arch != runtime.GOARCH {
		return false
	}
	return true
}

// featuresMatch reports whether every specified feature flag in want
// equals the corresponding value in have.
func featuresMatch(want Features, have Features) bool {
	checks := []struct {
		want, have *bool
	}{
		{want.IsDemoUser, have.IsDemoUser},
		{want.HasCustomResolution, have.HasCustomResolution},
		{want.IsQuickPlaySingleplayer, have.IsQuickPlaySingleplayer},
		{want.IsQuickPlayMultiplayer, have.IsQuickPlayMultiplayer},
		{want.HasQuickPlaysSupport, have.HasQuickPlaysSupport},
		{want.IsQuickPlayRealms, have.IsQuickPlayRealms},
	}
	for _, c := range checks {
		if c.want == nil {
			continue
		}
		haveVal := false
		if c.have != nil {
			haveVal = *c.have
		}
		if *c.want != haveVal {
			return false
		}
	}
	return true
}

// Bool returns a pointer to b, for building Features literals tersely.
func Bool(b bool) *bool { return &b }

// Evaluate applies every rule in order against the current platform and
// the supplied feature set and reports whether the effective action is
// Allow. An empty rule set always evaluates to true (no rules at all means unconditional
// inclusion, distinct from a single rule that happens not to match).
func Evaluate(rs []Rule, have Features) bool {
	if len(rs) == 0 {
		return true
	}

	result := Disallow
	for _, r := range rs {
		if r.OS != nil && !osMatches(*r.OS) {
			continue
		}
		if r.Features != nil && !featuresMatch(*r.Features, have) {
			continue
		}
		result = r.Action
	}

	return result == Allow
}
