package rooms

// Memberships is the transport-level room grouping the service
// operates on. *broadcast.Hub implements it.
type Memberships interface {
	JoinRoom(connID, roomID string) bool
	RoomMembers(roomID string) []string
	RoomExists(roomID string) bool
}

// Service implements room membership semantics on top of the hub's
// grouping primitive. It holds no state of its own: a room exists
// exactly while its membership set is non-empty.
type Service struct {
	members Memberships
}

// NewService creates a membership service.
func NewService(members Memberships) *Service {
	return &Service{members: members}
}

// CreateRoom joins the requester to roomID, creating the room when it
// did not exist. Two callers racing on the same id both succeed and
// share the membership set; "already exists" is not an error. Returns
// the refreshed membership.
func (s *Service) CreateRoom(roomID, connID string) ([]string, error) {
	if roomID == "" {
		return nil, ErrInvalidRoomID
	}
	if !s.members.JoinRoom(connID, roomID) {
		return nil, ErrUnknownConnection
	}
	return s.members.RoomMembers(roomID), nil
}

// JoinRoom adds the requester to an existing room. Unlike CreateRoom
// it refuses to bring a room into existence: a room that was never
// created, or has since emptied, does not exist.
func (s *Service) JoinRoom(roomID, connID string) ([]string, error) {
	if roomID == "" {
		return nil, ErrInvalidRoomID
	}
	if !s.members.RoomExists(roomID) {
		return nil, ErrRoomNotFound
	}
	if !s.members.JoinRoom(connID, roomID) {
		return nil, ErrUnknownConnection
	}
	return s.members.RoomMembers(roomID), nil
}

// UsersInRoom returns the current membership snapshot in join order,
// empty when the room has no members.
func (s *Service) UsersInRoom(roomID string) []string {
	members := s.members.RoomMembers(roomID)
	if members == nil {
		members = []string{}
	}
	return members
}
