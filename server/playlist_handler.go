package server

import (
	"encoding/json"
	"net/http"

	"SoundCircle/model"

	"github.com/gorilla/mux"
)

// createPlaylistRequest 创建歌单请求
type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    *bool  `json:"isPublic"`
}

// importResponse 导入外部歌曲的响应
type importResponse struct {
	Track *model.Track         `json:"track"`
	Entry *model.PlaylistTrack `json:"entry"`
}

const maxBodyBytes = 1 << 20

// CreatePlaylistHandler 创建歌单，默认公开
func (s *Server) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	var req createPlaylistRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	p, err := s.playlists.CreatePlaylist(r.Context(), userIDFromContext(r.Context()), req.Name, req.Description, isPublic)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// ListPlaylistsHandler 浏览可见歌单，未登录时只返回公开歌单
func (s *Server) ListPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	playlists, err := s.playlists.ListVisible(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

// UpdatePlaylistHandler 修改歌单名称、描述或公开状态
func (s *Server) UpdatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	var upd model.PlaylistUpdate
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&upd); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := s.playlists.UpdatePlaylist(r.Context(), mux.Vars(r)["id"], userIDFromContext(r.Context()), upd)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListMyPlaylistsHandler 获取当前用户的歌单
func (s *Server) ListMyPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	playlists, err := s.playlists.ListByOwner(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

// GetPlaylistHandler 获取歌单详情
func (s *Server) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	p, err := s.playlists.GetPlaylist(r.Context(), mux.Vars(r)["id"], userIDFromContext(r.Context()))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeletePlaylistHandler 删除歌单
func (s *Server) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.playlists.DeletePlaylist(r.Context(), mux.Vars(r)["id"], userIDFromContext(r.Context())); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPlaylistTracksHandler 按顺序获取歌单曲目
func (s *Server) ListPlaylistTracksHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := s.playlists.ListOrdered(r.Context(), mux.Vars(r)["id"], userIDFromContext(r.Context()))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// AddTrackHandler 添加歌曲到歌单末尾
func (s *Server) AddTrackHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entry, err := s.playlists.AddTrack(r.Context(), vars["id"], vars["trackId"], userIDFromContext(r.Context()))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// RemoveTrackHandler 从歌单移除歌曲
func (s *Server) RemoveTrackHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.playlists.RemoveTrack(r.Context(), vars["id"], vars["trackId"], userIDFromContext(r.Context())); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderHandler applies [{trackId, order}] and returns the new listing.
func (s *Server) ReorderHandler(w http.ResponseWriter, r *http.Request) {
	var orders []model.TrackOrder
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&orders); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	playlistID := mux.Vars(r)["id"]
	userID := userIDFromContext(ctx)
	if err := s.playlists.Reorder(ctx, playlistID, orders, userID); err != nil {
		writeAppError(w, r, err)
		return
	}

	entries, err := s.playlists.ListOrdered(ctx, playlistID, userID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// ImportExternalTrackHandler 导入外部曲库歌曲并加入歌单
func (s *Server) ImportExternalTrackHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	track, entry, err := s.playlists.ImportExternalTrack(r.Context(), vars["id"], vars["externalId"], userIDFromContext(r.Context()))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, importResponse{Track: track, Entry: entry})
}
