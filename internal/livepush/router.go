package livepush

import "strings"

type Router struct{}

func (r Router) MatchTargets(targets []PushTarget, kind NoticeKind) []PushTarget {
	if len(targets) == 0 {
		return nil
	}
	out := make([]PushTarget, 0, len(targets))
	for _, target := range targets {
		if !target.Enabled {
			continue
		}
		if !kindAllowed(target.EventAllowlist, kind) {
			continue
		}
		out = append(out, target)
	}
	return out
}

func kindAllowed(allowlist []string, kind NoticeKind) bool {
	if len(allowlist) == 0 {
		return true
	}
	want := strings.ToLower(string(kind))
	for _, v := range allowlist {
		if strings.ToLower(strings.TrimSpace(v)) == want {
			return true
		}
	}
	return false
}
