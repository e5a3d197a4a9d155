package launch

import "github.com/aayushdutt/mcprovision/internal/rules"

// QuickPlay selects which save/server a launch should jump directly
// into, skipping the title screen. A nil QuickPlay launches to the
// title screen as usual.
type QuickPlay interface {
	features() rules.Features
	variable() (name, value string)
}

// Singleplayer jumps directly into the named world.
type Singleplayer struct{ World string }

func (s Singleplayer) features() rules.Features {
	return rules.Features{IsQuickPlaySingleplayer: rules.Bool(true)}
}

func (s Singleplayer) variable() (string, string) {
	return "${quickPlaySingleplayer}", s.World
}

// Multiplayer jumps directly into the given server address.
type Multiplayer struct{ Address string }

func (m Multiplayer) features() rules.Features {
	return rules.Features{IsQuickPlayMultiplayer: rules.Bool(true)}
}

func (m Multiplayer) variable() (string, string) {
	return "${quickPlayMultiplayer}", m.Address
}

// Realms jumps directly into the given Realms world id.
type Realms struct{ ID string }

func (r Realms) features() rules.Features {
	return rules.Features{IsQuickPlayRealms: rules.Bool(true)}
}

func (r Realms) variable() (string, string) {
	return "${quickPlayRealms}", r.ID
}

// gameFeatures builds the feature set game arguments are evaluated
// against: quick-play support is always advertised, with at most one
// variant flag set for the selected QuickPlay.
func gameFeatures(qp QuickPlay) rules.Features {
	f := rules.Features{HasQuickPlaysSupport: rules.Bool(true)}
	if qp == nil {
		return f
	}
	sel := qp.features()
	f.IsQuickPlaySingleplayer = sel.IsQuickPlaySingleplayer
	f.IsQuickPlayMultiplayer = sel.IsQuickPlayMultiplayer
	f.IsQuickPlayRealms = sel.IsQuickPlayRealms
	return f
}

// quickPlayVariables fills in the three quickPlay{Singleplayer,
// Multiplayer,Realms} substitution variables, empty for every variant
// except the selected one (if any).
func quickPlayVariables(qp QuickPlay) map[string]string {
	vars := map[string]string{
		"${quickPlaySingleplayer}": "",
		"${quickPlayMultiplayer}":  "",
		"${quickPlayRealms}":       "",
	}
	if qp != nil {
		name, value := qp.variable()
		vars[name] = value
	}
	return vars
}
