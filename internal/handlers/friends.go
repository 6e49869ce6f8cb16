package handlers

import (
	"net/http"
	"time"

	applog "sugarbeat/internal/log"
	"sugarbeat/models"
)

type friendRequestPayload struct {
	Email  string `json:"email" validate:"omitempty,email"`
	UserID uint   `json:"user_id" validate:"required_without=Email"`
}

type connectionResponse struct {
	ID          uint      `json:"id"`
	RequesterID uint      `json:"requester_id"`
	AddresseeID uint      `json:"addressee_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func projectConnection(conn models.FriendConnection) connectionResponse {
	return connectionResponse{
		ID:          conn.ID,
		RequesterID: conn.RequesterID,
		AddresseeID: conn.AddresseeID,
		Status:      conn.Status,
		CreatedAt:   conn.CreatedAt,
	}
}

// FriendResource handles the friend graph:
//
//	GET    /api/friends                          accepted friends
//	GET    /api/friends/requests                 pending requests involving the user
//	POST   /api/friends/requests                 send a request by email or user id
//	POST   /api/friends/requests/{id}/accept     accept a request addressed to the user
//	DELETE /api/friends/connections/{id}         decline, cancel or unfriend
//	GET    /api/friends/{userID}/log             a friend's summary
func FriendResource(w http.ResponseWriter, r *http.Request) {
	userID, ok := authorize(w, r)
	if !ok {
		return
	}

	segments := resourcePath(r, "/api/friends")
	switch {
	case len(segments) == 0:
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		friends, err := service.Store().ListFriends(r.Context(), userID)
		if err != nil {
			writeServiceError(w, r, err, "unable to load friends")
			return
		}
		out := make([]userResponse, 0, len(friends))
		for _, friend := range friends {
			out = append(out, projectUser(friend))
		}
		writeJSON(w, http.StatusOK, out)
	case segments[0] == "requests":
		friendRequests(w, r, userID, segments[1:])
	case segments[0] == "connections" && len(segments) == 2:
		connectionID, ok := parseUintSegment(segments[1])
		if !ok {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := service.Store().DeleteConnection(r.Context(), userID, connectionID); err != nil {
			writeServiceError(w, r, err, "unable to remove connection")
			return
		}
		applog.Info(r.Context(), "friend connection removed", "user_id", userID, "connection_id", connectionID)
		w.WriteHeader(http.StatusNoContent)
	case len(segments) == 2 && segments[1] == "log":
		friendID, ok := parseUintSegment(segments[0])
		if !ok {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		ref, err := referenceTime(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid date or timezone")
			return
		}
		summary, err := service.FriendLog(r.Context(), userID, friendID, ref)
		if err != nil {
			writeServiceError(w, r, err, "unable to load friend log")
			return
		}
		writeJSON(w, http.StatusOK, projectSummary(summary))
	default:
		http.NotFound(w, r)
	}
}

func friendRequests(w http.ResponseWriter, r *http.Request, userID uint, segments []string) {
	switch {
	case len(segments) == 0 && r.Method == http.MethodGet:
		pending, err := service.Store().ListPendingRequests(r.Context(), userID)
		if err != nil {
			writeServiceError(w, r, err, "unable to load friend requests")
			return
		}
		out := make([]connectionResponse, 0, len(pending))
		for _, conn := range pending {
			out = append(out, projectConnection(conn))
		}
		writeJSON(w, http.StatusOK, out)
	case len(segments) == 0 && r.Method == http.MethodPost:
		var payload friendRequestPayload
		if !decodeJSON(w, r, &payload) {
			return
		}
		addresseeID := payload.UserID
		if addresseeID == 0 {
			user, err := service.Store().FindUserByEmail(r.Context(), payload.Email)
			if err != nil {
				writeServiceError(w, r, err, "unable to find user")
				return
			}
			addresseeID = user.ID
		}
		conn, err := service.Store().SendFriendRequest(r.Context(), userID, addresseeID)
		if err != nil {
			writeServiceError(w, r, err, "unable to send friend request")
			return
		}
		applog.Info(r.Context(), "friend request sent", "user_id", userID, "addressee_id", addresseeID)
		writeJSON(w, http.StatusCreated, projectConnection(*conn))
	case len(segments) == 2 && segments[1] == "accept":
		connectionID, ok := parseUintSegment(segments[0])
		if !ok {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		conn, err := service.Store().AcceptFriendRequest(r.Context(), userID, connectionID)
		if err != nil {
			writeServiceError(w, r, err, "unable to accept friend request")
			return
		}
		applog.Info(r.Context(), "friend request accepted", "user_id", userID, "connection_id", conn.ID)
		writeJSON(w, http.StatusOK, projectConnection(*conn))
	case len(segments) == 0:
		w.WriteHeader(http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}
