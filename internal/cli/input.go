// Package cli handles cmd line input and ranked results for DBG and testing various features
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/launchrank/pkg/rank"
	"github.com/bastiangx/launchrank/pkg/store"
)

// InputHandler reads queries from stdin and prints ranked pages, useful for
// poking at scoring behavior without a UI attached.
type InputHandler struct {
	engine       rank.Ranker
	pages        store.PageRegistry
	resultLimit  int
	maxQueryLen  int
	requestCount int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(engine rank.Ranker, pages store.PageRegistry, limit, maxQueryLen int) *InputHandler {
	return &InputHandler{
		engine:      engine,
		pages:       pages,
		resultLimit: limit,
		maxQueryLen: maxQueryLen,
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin,
// and passes the trimmed query to handleInput() for processing.
// Loop terminates if an error occurs while reading from stdin
func (h *InputHandler) Start() error {
	log.Print("LaunchRank CLI")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type a query and press Enter to see ranked pages (Ctrl+C to exit):")

	for {
		log.Print("> ")
		query, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}
		h.handleInput(query)
	}
}

// handleInput ranks a single query and prints the results with timing info.
func (h *InputHandler) handleInput(query string) {
	h.requestCount++

	if h.maxQueryLen > 0 && len(query) > h.maxQueryLen {
		log.Errorf("Query too long: %s", query)
		return
	}

	start := time.Now()
	ids := h.engine.RankPages(query, h.resultLimit, 0)
	elapsed := time.Since(start)

	log.Debugf("Took [ %v ] for query '%s'", elapsed, query)

	if len(ids) == 0 {
		log.Warnf("No pages found for query: '%s'", query)
		return
	}

	log.Printf("Found %d pages for query '%s':", len(ids), query)
	for i, id := range ids {
		title := id
		url := ""
		if meta, ok := h.pages.Get(id); ok {
			title = meta.Title
			url = meta.URL
		}
		clTitle := fmt.Sprintf("\033[38;5;75m%s\033[0m", title)
		log.Printf("%2d. %-40s (%s)", i+1, clTitle, url)
	}
}
