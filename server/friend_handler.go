package server

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// ListFriendsHandler 获取好友列表
func (s *Server) ListFriendsHandler(w http.ResponseWriter, r *http.Request) {
	friends, err := s.friends.ListFriends(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

// RecommendHandler 推荐好友，limit 缺省为 10
func (s *Server) RecommendHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	accounts, err := s.friends.Recommend(r.Context(), userIDFromContext(r.Context()), limit)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// FriendStatusHandler 查询与目标用户的好友状态
func (s *Server) FriendStatusHandler(w http.ResponseWriter, r *http.Request) {
	status, err := s.friends.GetStatus(r.Context(), userIDFromContext(r.Context()), mux.Vars(r)["targetId"])
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// AddFriendHandler 添加好友
func (s *Server) AddFriendHandler(w http.ResponseWriter, r *http.Request) {
	friendID := mux.Vars(r)["friendId"]
	if err := s.friends.AddFriend(r.Context(), userIDFromContext(r.Context()), friendID); err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"friendId": friendID})
}

// RemoveFriendHandler 删除好友
func (s *Server) RemoveFriendHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.friends.RemoveFriend(r.Context(), userIDFromContext(r.Context()), mux.Vars(r)["friendId"]); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
