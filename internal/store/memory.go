package store

import (
	"sync"

	"github.com/impostor-party/server/internal/game"
)

// RoomStore is the process-wide room registry. Rooms themselves are
// independently locked; the store only guards the map.
type RoomStore struct {
	rooms map[string]*game.RoomController
	mu    sync.RWMutex
}

// NewRoomStore creates a new room store
func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[string]*game.RoomController)}
}

// Get retrieves a room by code
func (s *RoomStore) Get(code string) (*game.RoomController, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, exists := s.rooms[code]
	return room, exists
}

// Set stores a room
func (s *RoomStore) Set(code string, room *game.RoomController) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[code] = room
}

// Delete removes a room
func (s *RoomStore) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
}

// Exists checks if a room code is taken
func (s *RoomStore) Exists(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.rooms[code]
	return exists
}

// FindByMember returns the room uid currently belongs to, if any
func (s *RoomStore) FindByMember(uid string) (*game.RoomController, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, room := range s.rooms {
		if room.IsMember(uid) {
			return room, true
		}
	}
	return nil, false
}

// All returns every live room
func (s *RoomStore) All() []*game.RoomController {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*game.RoomController, 0, len(s.rooms))
	for _, room := range s.rooms {
		all = append(all, room)
	}
	return all
}
