package rules

import "testing"

func TestEvaluate_EmptyRuleSetAllows(t *testing.T) {
	if !Evaluate(nil, Features{}) {
		t.Error("expected empty rule set to evaluate to allow")
	}
}

func TestEvaluate_OSGatedRule(t *testing.T) {
	rs := []Rule{
		{Action: Disallow},
		{Action: Allow, OS: &OS{Name: CurrentOSName()}},
	}
	if !Evaluate(rs, Features{}) {
		t.Error("expected rule matching the current OS to allow")
	}

	rs2 := []Rule{
		{Action: Disallow},
		{Action: Allow, OS: &OS{Name: "not-a-real-os"}},
	}
	if Evaluate(rs2, Features{}) {
		t.Error("expected rule with a non-matching OS to fall through to disallow")
	}
}

func TestEvaluate_LastMatchingRuleWins(t *testing.T) {
	rs := []Rule{
		{Action: Allow},
		{Action: Disallow, OS: &OS{Name: CurrentOSName()}},
	}
	if Evaluate(rs, Features{}) {
		t.Error("expected the later, more specific matching rule to win")
	}
}

func TestEvaluate_FeatureGatedRule(t *testing.T) {
	rs := []Rule{
		{Action: Disallow},
		{Action: Allow, Features: &Features{IsQuickPlaySingleplayer: Bool(true)}},
	}

	if Evaluate(rs, Features{}) {
		t.Error("expected disallow when the wanted feature is unset")
	}
	if !Evaluate(rs, Features{IsQuickPlaySingleplayer: Bool(true)}) {
		t.Error("expected allow when the wanted feature matches")
	}
	if Evaluate(rs, Features{IsQuickPlaySingleplayer: Bool(false)}) {
		t.Error("expected disallow when the wanted feature is explicitly false")
	}
}

func TestEvaluate_ArchGating(t *testing.T) {
	rs := []Rule{
		{Action: Disallow},
		{Action: Allow, OS: &OS{Arch: "definitely-not-an-arch"}},
	}
	if Evaluate(rs, Features{}) {
		t.Error("expected disallow when the rule's arch does not match runtime.GOARCH")
	}
}
