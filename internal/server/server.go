package server

import (
	"net/http"
	"time"

	"snaphunt/internal/config"

	"gorm.io/gorm"
)

type Server struct {
	store        *Store
	db           *gorm.DB
	ws           *wsHub
	cfg          config.Config
	content      ContentProvider
	blobs        BlobStore
	blobFiles    *diskBlobStore
	limiter      *rateLimiter
	voteSessions *voteSessionStore
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	disk := newDiskBlobStore(cfg.BlobDir, cfg.BlobSecret)
	var content ContentProvider
	if conn != nil {
		content = newDBContentProvider(conn)
	} else {
		content = defaultContent()
	}
	return &Server{
		store:        NewStore(),
		db:           conn,
		ws:           newWSHub(),
		cfg:          cfg,
		content:      content,
		blobs:        disk,
		blobFiles:    disk,
		limiter:      newRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst),
		voteSessions: newVoteSessionStore(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/hunts", s.handleCreateHunt)
	mux.HandleFunc("POST /api/hunts/join", s.handleJoinHunt)
	mux.HandleFunc("GET /api/hunts/", s.handleHuntSubroutes)
	mux.HandleFunc("POST /api/hunts/", s.handleHuntSubroutes)
	mux.HandleFunc("GET /api/packs", s.handleListPacks)
	mux.HandleFunc("GET /ws/hunts/", s.handleHuntWebsocket)
	mux.HandleFunc("GET /blobs/", s.handleBlobFetch)
	mux.Handle("/admin/api/", s.adminHandler())
	return mux
}

func (s *Server) signedURLTTL() time.Duration {
	return time.Duration(s.cfg.SignedURLTTLSeconds) * time.Second
}

func (s *Server) photoRetryDelay() time.Duration {
	return time.Duration(s.cfg.PhotoURLRetryDelayMillis) * time.Millisecond
}
