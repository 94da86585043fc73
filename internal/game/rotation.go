package game

import "slices"

// CalculateStartingPlayer resolves who opens the next round or match.
// It is a pure function of its inputs:
//   - no rotation reference yet (first match ever): the host starts;
//   - otherwise rotate forward from lastStarter through playerOrder,
//     skipping anyone not currently eligible;
//   - if lastStarter is absent from playerOrder entirely, the caller is
//     expected to have re-anchored the reference on removal; the final
//     fallback here is the host, then the first eligible player in order.
//
// Returns "" only when eligible is empty.
func CalculateStartingPlayer(playerOrder, eligible []string, lastStarter, hostID string) string {
	if len(eligible) == 0 {
		return ""
	}
	isEligible := func(uid string) bool { return slices.Contains(eligible, uid) }

	if lastStarter != "" {
		if idx := slices.Index(playerOrder, lastStarter); idx >= 0 {
			for i := 1; i <= len(playerOrder); i++ {
				candidate := playerOrder[(idx+i)%len(playerOrder)]
				if isEligible(candidate) {
					return candidate
				}
			}
		}
	}

	if isEligible(hostID) {
		return hostID
	}
	for _, uid := range playerOrder {
		if isEligible(uid) {
			return uid
		}
	}
	return eligible[0]
}

// ReanchorStarter resolves the rotation reference to carry forward when
// lastStarter may no longer be around: the starter themselves if present
// still holds, otherwise the nearest preceding player in playerOrder for
// whom present returns true. Anchoring on the predecessor keeps the next
// forward rotation landing just past the departed starter's slot.
// Returns "" when nobody from playerOrder remains.
func ReanchorStarter(playerOrder []string, lastStarter string, present func(uid string) bool) string {
	if lastStarter == "" {
		return ""
	}
	if present(lastStarter) {
		return lastStarter
	}
	idx := slices.Index(playerOrder, lastStarter)
	if idx < 0 {
		return ""
	}
	n := len(playerOrder)
	for i := 1; i < n; i++ {
		if candidate := playerOrder[(idx-i+n)%n]; present(candidate) {
			return candidate
		}
	}
	return ""
}
