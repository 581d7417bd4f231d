// Package rosterfit decides whether a set of players fits a league's lineup slots.
package rosterfit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mcdev12/hoops/go/internal/models"
)

// Role is a lineup role a player can fill.
type Role uint8

const (
	Guard Role = 1 << iota
	Forward
	Center
)

// slot kinds used during assignment; bench accepts anyone
const (
	slotGuard = iota
	slotForward
	slotCenter
	slotBench
	numSlotKinds
)

var roleSlot = map[Role]int{Guard: slotGuard, Forward: slotForward, Center: slotCenter}

// ParsePosition returns the roles implied by a position string such as
// "G", "SF", "G-F" or "F/C". Unknown tokens contribute nothing.
func ParsePosition(position string) Role {
	var r Role
	tokens := strings.FieldsFunc(strings.ToUpper(position), func(c rune) bool {
		return c == '-' || c == '/' || c == ',' || c == ' '
	})
	for _, tok := range tokens {
		switch tok {
		case "G", "PG", "SG":
			r |= Guard
		case "F", "SF", "PF":
			r |= Forward
		case "C":
			r |= Center
		}
	}
	return r
}

// Result is the outcome of a feasibility check.
type Result struct {
	OK     bool
	Reason string
	// Assignment maps each input index to the slot kind it was placed in
	// ("G", "F", "C" or "BENCH"). Empty when OK is false.
	Assignment []string
}

// Feasible reports whether every position can occupy a distinct slot.
func Feasible(positions []string, slots models.RosterSlots) Result {
	total := slots.Total()
	if len(positions) > total {
		return Result{Reason: fmt.Sprintf("roster of %d exceeds %d slots", len(positions), total)}
	}

	roles := make([]Role, len(positions))
	pure := map[Role]int{}
	for i, p := range positions {
		roles[i] = ParsePosition(p)
		if roles[i] == Guard || roles[i] == Forward || roles[i] == Center {
			pure[roles[i]]++
		}
	}

	capacity := [numSlotKinds]int{slots.Guard, slots.Forward, slots.Center, slots.Bench}
	for role, n := range pure {
		if limit := capacity[roleSlot[role]] + slots.Bench; n > limit {
			return Result{Reason: fmt.Sprintf("%d %s-only players exceed %d available slots", n, roleName(role), limit)}
		}
	}

	// most constrained players first
	order := make([]int, len(roles))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return optionCount(roles[order[a]]) < optionCount(roles[order[b]])
	})

	placed := make([]int, len(roles))
	if !assign(order, 0, roles, &capacity, placed) {
		return Result{Reason: "no slot assignment fits every player"}
	}

	out := make([]string, len(roles))
	for i, k := range placed {
		out[i] = slotName(k)
	}
	return Result{OK: true, Assignment: out}
}

func assign(order []int, next int, roles []Role, capacity *[numSlotKinds]int, placed []int) bool {
	if next == len(order) {
		return true
	}
	idx := order[next]
	for _, k := range candidateSlots(roles[idx]) {
		if capacity[k] == 0 {
			continue
		}
		capacity[k]--
		placed[idx] = k
		if assign(order, next+1, roles, capacity, placed) {
			return true
		}
		capacity[k]++
	}
	return false
}

// candidateSlots lists role slots before the bench so flexible bench spots
// are spent last.
func candidateSlots(r Role) []int {
	var out []int
	for _, role := range []Role{Guard, Forward, Center} {
		if r&role != 0 {
			out = append(out, roleSlot[role])
		}
	}
	return append(out, slotBench)
}

func optionCount(r Role) int {
	return len(candidateSlots(r))
}

func roleName(r Role) string {
	switch r {
	case Guard:
		return "guard"
	case Forward:
		return "forward"
	case Center:
		return "center"
	}
	return "unknown"
}

func slotName(k int) string {
	switch k {
	case slotGuard:
		return "G"
	case slotForward:
		return "F"
	case slotCenter:
		return "C"
	}
	return "BENCH"
}
