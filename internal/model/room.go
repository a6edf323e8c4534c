package model

import "strings"

// Room identifies one of the four fixed zones of the clinic.
type Room string

const (
	RoomTherapyA Room = "TherapyA"
	RoomTherapyB Room = "TherapyB"
	RoomWaiting  Room = "Waiting"
	RoomAdmin    Room = "Admin"
)

// roomOrder is the fixed per-minute draw order.
var roomOrder = [...]Room{RoomTherapyA, RoomTherapyB, RoomWaiting, RoomAdmin}

// NumRooms is the number of simulated rooms.
const NumRooms = len(roomOrder)

// Rooms returns the rooms in draw order. The slice is a fresh copy.
func Rooms() []Room {
	out := make([]Room, NumRooms)
	copy(out, roomOrder[:])
	return out
}

// Valid reports whether r is one of the known rooms.
func (r Room) Valid() bool {
	for _, known := range roomOrder {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRoom matches s against the known rooms, ignoring case.
func ParseRoom(s string) (Room, bool) {
	s = strings.TrimSpace(s)
	for _, known := range roomOrder {
		if strings.EqualFold(s, string(known)) {
			return known, true
		}
	}
	return "", false
}

// RoomKind groups rooms with similar occupancy patterns.
type RoomKind string

const (
	KindClinical RoomKind = "clinical"
	KindWaiting  RoomKind = "waiting"
	KindAdmin    RoomKind = "admin"
)

// RoomInfo holds display name and kind for a room.
type RoomInfo struct {
	Name string
	Kind RoomKind
}

// Info returns display metadata for r.
func (r Room) Info() RoomInfo {
	switch r {
	case RoomTherapyA:
		return RoomInfo{Name: "Therapy Room A", Kind: KindClinical}
	case RoomTherapyB:
		return RoomInfo{Name: "Therapy Room B", Kind: KindClinical}
	case RoomWaiting:
		return RoomInfo{Name: "Waiting Area", Kind: KindWaiting}
	case RoomAdmin:
		return RoomInfo{Name: "Admin Office", Kind: KindAdmin}
	default:
		return RoomInfo{Name: string(r)}
	}
}
