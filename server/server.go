package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"SoundCircle/logger"
	"SoundCircle/model"

	"github.com/gorilla/mux"
)

// FriendService is the friendship API consumed by the HTTP layer.
type FriendService interface {
	AddFriend(ctx context.Context, ownerID, otherID string) error
	RemoveFriend(ctx context.Context, ownerID, otherID string) error
	GetStatus(ctx context.Context, ownerID, otherID string) (*model.FriendStatus, error)
	ListFriends(ctx context.Context, ownerID string) ([]*model.AccountSummary, error)
	Recommend(ctx context.Context, ownerID string, limit int) ([]*model.AccountSummary, error)
}

// PlaylistService is the playlist API consumed by the HTTP layer.
type PlaylistService interface {
	CreatePlaylist(ctx context.Context, ownerID, name, description string, isPublic bool) (*model.Playlist, error)
	DeletePlaylist(ctx context.Context, playlistID, ownerID string) error
	UpdatePlaylist(ctx context.Context, playlistID, ownerID string, upd model.PlaylistUpdate) (*model.Playlist, error)
	GetPlaylist(ctx context.Context, playlistID, viewerID string) (*model.Playlist, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Playlist, error)
	ListVisible(ctx context.Context, viewerID string) ([]*model.Playlist, error)
	AddTrack(ctx context.Context, playlistID, trackID, ownerID string) (*model.PlaylistTrack, error)
	RemoveTrack(ctx context.Context, playlistID, trackID, ownerID string) error
	Reorder(ctx context.Context, playlistID string, orders []model.TrackOrder, ownerID string) error
	ListOrdered(ctx context.Context, playlistID, viewerID string) ([]*model.PlaylistTrack, error)
	ImportExternalTrack(ctx context.Context, playlistID, externalID, ownerID string) (*model.Track, *model.PlaylistTrack, error)
}

// Server HTTP 服务
type Server struct {
	friends   FriendService
	playlists PlaylistService
	jwtSecret []byte
}

// New 创建 HTTP 服务
func New(friends FriendService, playlists PlaylistService, jwtSecret string) *Server {
	return &Server{
		friends:   friends,
		playlists: playlists,
		jwtSecret: []byte(jwtSecret),
	}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// 好友相关的API端点
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/friends", s.authMiddleware(false, s.ListFriendsHandler)).Methods(http.MethodGet)
	api.HandleFunc("/friends/recommendations", s.authMiddleware(false, s.RecommendHandler)).Methods(http.MethodGet)
	api.HandleFunc("/friends/status/{targetId}", s.authMiddleware(false, s.FriendStatusHandler)).Methods(http.MethodGet)
	api.HandleFunc("/friends/{friendId}", s.authMiddleware(false, s.AddFriendHandler)).Methods(http.MethodPost)
	api.HandleFunc("/friends/{friendId}", s.authMiddleware(false, s.RemoveFriendHandler)).Methods(http.MethodDelete)

	// 歌单相关的API端点
	api.HandleFunc("/playlists", s.authMiddleware(true, s.ListPlaylistsHandler)).Methods(http.MethodGet)
	api.HandleFunc("/playlists", s.authMiddleware(false, s.CreatePlaylistHandler)).Methods(http.MethodPost)
	api.HandleFunc("/playlists/mine", s.authMiddleware(false, s.ListMyPlaylistsHandler)).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id}", s.authMiddleware(true, s.GetPlaylistHandler)).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id}", s.authMiddleware(false, s.UpdatePlaylistHandler)).Methods(http.MethodPatch)
	api.HandleFunc("/playlists/{id}", s.authMiddleware(false, s.DeletePlaylistHandler)).Methods(http.MethodDelete)
	api.HandleFunc("/playlists/{id}/tracks", s.authMiddleware(true, s.ListPlaylistTracksHandler)).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id}/tracks/{trackId}", s.authMiddleware(false, s.AddTrackHandler)).Methods(http.MethodPost)
	api.HandleFunc("/playlists/{id}/tracks/{trackId}", s.authMiddleware(false, s.RemoveTrackHandler)).Methods(http.MethodDelete)
	api.HandleFunc("/playlists/{id}/reorder", s.authMiddleware(false, s.ReorderHandler)).Methods(http.MethodPatch)
	api.HandleFunc("/playlists/{id}/external-tracks/{externalId}", s.authMiddleware(false, s.ImportExternalTrackHandler)).Methods(http.MethodPost)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "Route not found")
	})
	// 子路由的方法不匹配不会回落到根路由，需要单独设置
	methodNotAllowed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})
	router.MethodNotAllowedHandler = methodNotAllowed
	api.MethodNotAllowedHandler = methodNotAllowed

	// CORS wraps the router so preflight requests, which match no route, are answered too.
	return corsMiddleware(router)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP服务启动", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("正在关闭HTTP服务...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("HTTP服务已停止")
	return nil
}
