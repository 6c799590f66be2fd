// Package occupancy decides which parking spots are occupied by
// matching detected vehicles to spot rectangles, and produces the
// lot-level summary.
//
// Matching is greedy and one to one: spots are visited in order, each
// claims its best eligible unassigned vehicle, and a claimed vehicle is
// unavailable to later spots. Vehicles left unassigned are counted but
// never treated as an error; a car parked outside the detected lot
// area is expected.
//
// When no spots were synthesized at all the lot falls back to simple
// counting against the caller-supplied manual total.
package occupancy
