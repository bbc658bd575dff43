package optimizer

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultFormation is used when no formation is given.
const DefaultFormation = "4-3-3"

// Formations maps a formation name to its ordered slot list. Order is
// the deterministic tie-break order for assignment, nothing more.
var Formations = map[string][]string{
	"4-3-3":   {"GK", "LB", "LCB", "RCB", "RB", "LCM", "CM", "RCM", "LW", "ST", "RW"},
	"4-2-3-1": {"GK", "LB", "LCB", "RCB", "RB", "LDM", "CDM", "RDM", "LAM", "CAM", "RAM", "ST"},
	"4-4-2":   {"GK", "LB", "LCB", "RCB", "RB", "LM", "LCM", "RCM", "RM", "LS", "RS"},
}

// eligibleMap lists, per slot, the raw position tags that qualify a
// player. Matching is substring based: a player tagged "AM, LW" can
// fill any slot that accepts "AM" or "LW".
var eligibleMap = map[string][]string{
	"GK":  {"GK"},
	"LB":  {"LB", "LWB", "FB", "WB", "LB/LWB"},
	"RB":  {"RB", "RWB", "FB", "WB", "RB/RWB"},
	"LCB": {"CB", "LCB", "DEF"},
	"RCB": {"CB", "RCB", "DEF"},
	"CM":  {"CM", "DM", "AM", "LCM", "RCM", "MID"},
	"LCM": {"CM", "LCM", "DM", "MID", "AM"},
	"RCM": {"CM", "RCM", "DM", "MID", "AM"},
	"LDM": {"DM", "CM", "MID"},
	"CDM": {"DM", "CM", "MID"},
	"RDM": {"DM", "CM", "MID"},
	"LM":  {"LM", "LW", "MID"},
	"RM":  {"RM", "RW", "MID"},
	"CAM": {"AM", "CM"},
	"LAM": {"AM", "LW", "LM"},
	"RAM": {"AM", "RW", "RM"},
	"LW":  {"LW", "LM", "AM"},
	"RW":  {"RW", "RM", "AM"},
	"ST":  {"ST", "CF", "FW"},
	"LS":  {"ST", "CF", "FW"},
	"RS":  {"ST", "CF", "FW"},
}

// FormationNames returns the registered formation names in a stable
// order.
func FormationNames() []string {
	names := make([]string, 0, len(Formations))
	for name := range Formations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormationSlots resolves a formation name to its ordered slots. An
// unknown name or an empty slot list is a caller error, not data
// noise, so it surfaces immediately.
func FormationSlots(formation string) ([]string, error) {
	slots, ok := Formations[formation]
	if !ok {
		return nil, fmt.Errorf("unknown formation %q", formation)
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("formation %q has no slots", formation)
	}
	return slots, nil
}

// IsEligible reports whether a raw position tag qualifies a player for
// a slot. The tag is uppercased and each accepted tag is checked as a
// substring; a slot missing from the map accepts only its own name.
func IsEligible(slot, rawPos string) bool {
	accepted, ok := eligibleMap[slot]
	if !ok {
		accepted = []string{slot}
	}
	pos := strings.ToUpper(strings.TrimSpace(rawPos))
	for _, tag := range accepted {
		if strings.Contains(pos, tag) {
			return true
		}
	}
	return false
}
