package schedule

// overlapThreshold is the number of shared players between a court and a
// court of the previous round that counts as a repeat.
const overlapThreshold = 3

type repairOutcome struct {
	Swaps    int
	Resolved bool
}

// repairOverlap swaps partners on current courts that share overlapThreshold
// or more players with any court of the previous round. After every swap the
// whole grid is scanned again. At most limit swaps are made; Resolved is false
// when a repeat is still present after that.
func repairOverlap(prev, cur []Court, limit int) repairOutcome {
	var out repairOutcome
	for {
		i := findOverlap(prev, cur)
		if i < 0 {
			out.Resolved = true
			return out
		}
		if out.Swaps >= limit {
			return out
		}
		cur[i].swapPartners()
		out.Swaps++
	}
}

// findOverlap returns the index of the first current court that repeats a
// previous court, or -1. Manual courts are left as entered.
func findOverlap(prev, cur []Court) int {
	for _, p := range prev {
		for i := range cur {
			if cur[i].Manual || !cur[i].full() {
				continue
			}
			if sharedPlayers(p, cur[i]) >= overlapThreshold {
				return i
			}
		}
	}
	return -1
}

func sharedPlayers(a, b Court) int {
	n := 0
	for _, p := range a.Players() {
		if p.ID != "" && b.has(p.ID) {
			n++
		}
	}
	return n
}

// full reports whether the court has four distinct players.
func (c Court) full() bool {
	seen := make(map[string]bool, 4)
	for _, p := range c.Players() {
		if p.ID == "" || seen[p.ID] {
			return false
		}
		seen[p.ID] = true
	}
	return true
}
