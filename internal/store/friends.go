package store

import (
	"context"

	"sugarbeat/models"
)

// SendFriendRequest creates a pending connection from requesterID.
func (s *Store) SendFriendRequest(ctx context.Context, requesterID, addresseeID uint) (*models.FriendConnection, error) {
	const op = "send friend request"
	if requesterID == addresseeID {
		return nil, invalid(op, "cannot befriend yourself")
	}
	if _, err := s.GetUser(ctx, addresseeID); err != nil {
		return nil, err
	}

	var count int64
	err := s.conn(ctx).Model(&models.FriendConnection{}).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			requesterID, addresseeID, addresseeID, requesterID).
		Count(&count).Error
	if err != nil {
		return nil, fail(op, err)
	}
	if count > 0 {
		return nil, &Error{Op: op, Err: ErrConflict}
	}

	conn := &models.FriendConnection{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      models.FriendStatusPending,
	}
	if err := s.conn(ctx).Create(conn).Error; err != nil {
		return nil, fail(op, err)
	}
	return conn, nil
}

// AcceptFriendRequest marks a pending request accepted. Only its addressee
// may accept it.
func (s *Store) AcceptFriendRequest(ctx context.Context, userID, connectionID uint) (*models.FriendConnection, error) {
	const op = "accept friend request"
	var conn models.FriendConnection
	if err := s.conn(ctx).First(&conn, connectionID).Error; err != nil {
		return nil, fail(op, err)
	}
	if !conn.Involves(userID) {
		return nil, &Error{Op: op, Err: ErrNotFound}
	}
	if conn.AddresseeID != userID {
		return nil, &Error{Op: op, Err: ErrForbidden}
	}
	if conn.Status == models.FriendStatusAccepted {
		return &conn, nil
	}
	conn.Status = models.FriendStatusAccepted
	if err := s.conn(ctx).Model(&conn).Update("status", conn.Status).Error; err != nil {
		return nil, fail(op, err)
	}
	return &conn, nil
}

// DeleteConnection rejects a pending request or removes a friendship.
// Either party may do so.
func (s *Store) DeleteConnection(ctx context.Context, userID, connectionID uint) error {
	const op = "delete connection"
	var conn models.FriendConnection
	if err := s.conn(ctx).First(&conn, connectionID).Error; err != nil {
		return fail(op, err)
	}
	if !conn.Involves(userID) {
		return &Error{Op: op, Err: ErrNotFound}
	}
	if err := s.conn(ctx).Unscoped().Delete(&conn).Error; err != nil {
		return fail(op, err)
	}
	return nil
}

// ListFriends returns the accepted friends of userID.
func (s *Store) ListFriends(ctx context.Context, userID uint) ([]models.User, error) {
	ids, err := s.friendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := s.conn(ctx).Where("id IN ?", ids).Order("name ASC, id ASC").Find(&users).Error; err != nil {
		return nil, fail("list friends", err)
	}
	return users, nil
}

// ListPendingRequests returns requests waiting for userID to answer.
func (s *Store) ListPendingRequests(ctx context.Context, userID uint) ([]models.FriendConnection, error) {
	var conns []models.FriendConnection
	err := s.conn(ctx).
		Where("addressee_id = ? AND status = ?", userID, models.FriendStatusPending).
		Order("created_at ASC, id ASC").
		Find(&conns).Error
	if err != nil {
		return nil, fail("list pending requests", err)
	}
	return conns, nil
}

// AreFriends reports whether an accepted connection links a and b.
func (s *Store) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	if a == b {
		return false, nil
	}
	var count int64
	err := s.conn(ctx).Model(&models.FriendConnection{}).
		Where("status = ?", models.FriendStatusAccepted).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)", a, b, b, a).
		Count(&count).Error
	if err != nil {
		return false, fail("are friends", err)
	}
	return count > 0, nil
}

func (s *Store) friendIDs(ctx context.Context, userID uint) ([]uint, error) {
	var conns []models.FriendConnection
	err := s.conn(ctx).
		Where("status = ?", models.FriendStatusAccepted).
		Where("requester_id = ? OR addressee_id = ?", userID, userID).
		Find(&conns).Error
	if err != nil {
		return nil, fail("list friends", err)
	}
	ids := make([]uint, 0, len(conns))
	for _, conn := range conns {
		ids = append(ids, conn.Other(userID))
	}
	return ids, nil
}
