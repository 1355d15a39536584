package server

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/launchrank/pkg/config"
	"github.com/bastiangx/launchrank/pkg/rank"
	"github.com/bastiangx/launchrank/pkg/store"
)

// Server handles the IPC for ranking requests and feedback events.
type Server struct {
	engine rank.Ranker
	cfg    *config.Config
	dec    *msgpack.Decoder
	enc    *msgpack.Encoder
}

// NewServer creates a ranking server using stdin/stdout for IPC.
func NewServer(engine rank.Ranker, cfg *config.Config) *Server {
	return NewServerWithIO(engine, cfg, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server over explicit streams, mainly for tests.
func NewServerWithIO(engine rank.Ranker, cfg *config.Config, r io.Reader, w io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Server{
		engine: engine,
		cfg:    cfg,
		dec:    msgpack.NewDecoder(r),
		enc:    msgpack.NewEncoder(w),
	}
}

// Start begins processing requests until the input stream closes.
func (s *Server) Start() error {
	log.Debug("Starting ranking server.")
	s.sendResponse(StatusResponse{Status: "ready"})

	for {
		var request Request
		if err := s.dec.Decode(&request); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			s.sendError("", "Invalid msgpack request", 400)
			continue
		}
		s.handleRequest(request)
	}
}

// handleRequest dispatches a decoded request by command.
func (s *Server) handleRequest(request Request) {
	switch request.Cmd {
	case "rank":
		s.handleRank(request)
	case "visit":
		if request.Page == "" {
			s.sendError(request.ID, "Missing 'page' parameter", 400)
			return
		}
		s.engine.RecordVisit(request.Page, request.Time, request.Dwell)
		s.sendResponse(StatusResponse{ID: request.ID, Status: "ok"})
	case "click":
		if request.Page == "" {
			s.sendError(request.ID, "Missing 'page' parameter", 400)
			return
		}
		s.engine.RecordClick(request.Page, request.Time)
		s.sendResponse(StatusResponse{ID: request.ID, Status: "ok"})
	case "impression":
		if request.Page == "" {
			s.sendError(request.ID, "Missing 'page' parameter", 400)
			return
		}
		s.engine.RecordImpression(request.Page)
		s.sendResponse(StatusResponse{ID: request.ID, Status: "ok"})
	case "update_page":
		if request.Page == "" {
			s.sendError(request.ID, "Missing 'page' parameter", 400)
			return
		}
		s.engine.UpdatePage(request.Page, store.PageMeta{
			Title:    request.Title,
			URL:      request.URL,
			Category: request.Category,
			Tags:     request.Tags,
		})
		s.sendResponse(StatusResponse{ID: request.ID, Status: "ok"})
	case "health":
		s.sendResponse(StatusResponse{ID: request.ID, Status: "ok"})
	default:
		s.sendError(request.ID, fmt.Sprintf("Unknown command: %s", request.Cmd), 400)
	}
}

// handleRank validates a ranking request and answers with ordered page IDs.
func (s *Server) handleRank(request Request) {
	if request.Query == "" {
		s.sendError(request.ID, "Missing 'q' parameter", 400)
		log.Debug("Query is empty in request")
		return
	}
	if maxLen := s.cfg.Server.MaxQueryLen; maxLen > 0 && len(request.Query) > maxLen {
		s.sendError(request.ID, fmt.Sprintf("Query exceeds maximum length of %d characters", maxLen), 400)
		log.Debug("Query is too long in request")
		return
	}

	limit := request.Limit
	if limit < 1 {
		limit = s.cfg.Server.MaxResults
	}

	start := time.Now()
	ids := s.engine.RankPages(request.Query, limit, request.Time)
	elapsed := time.Since(start)

	pages := make([]RankedPage, len(ids))
	for i, id := range ids {
		pages[i] = RankedPage{Page: id, Rank: uint16(i + 1)}
	}

	s.sendResponse(RankResponse{
		ID:        request.ID,
		Pages:     pages,
		Count:     len(pages),
		TimeTaken: elapsed.Microseconds(),
	})
}

// sendResponse encodes the given response onto the output stream.
func (s *Server) sendResponse(response interface{}) {
	if err := s.enc.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(ErrorResponse{
		ID:    id,
		Error: message,
		Code:  code,
	})
}
