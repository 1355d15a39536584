package server

import (
	"bytes"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/launchrank/pkg/config"
	"github.com/bastiangx/launchrank/pkg/rank"
	"github.com/bastiangx/launchrank/pkg/store"
)

func newTestServer(t *testing.T, requests ...Request) *msgpack.Decoder {
	t.Helper()

	pages := store.NewMemoryRegistry(map[string]store.PageMeta{
		"p1": {Title: "GitHub Pull Requests", URL: "github.com/pulls"},
		"p2": {Title: "Google Docs", URL: "docs.google.com"},
	})
	visits := store.NewMemoryVisits(map[string]*store.VisitEntry{
		"p1": {Visits: []store.Visit{{Timestamp: 1_000_000}, {Timestamp: 1_050_000}}, PersonalScore: 0.5},
	})
	engine := rank.New(pages, visits, "test-user", rank.Options{})

	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, request := range requests {
		if err := enc.Encode(request); err != nil {
			t.Fatalf("encoding request: %v", err)
		}
	}

	var out bytes.Buffer
	srv := NewServerWithIO(engine, config.DefaultConfig(), &in, &out)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return msgpack.NewDecoder(&out)
}

func expectReady(t *testing.T, dec *msgpack.Decoder) {
	t.Helper()
	var status StatusResponse
	if err := dec.Decode(&status); err != nil {
		t.Fatalf("decoding ready status: %v", err)
	}
	if status.Status != "ready" {
		t.Fatalf("first message status = %q, want ready", status.Status)
	}
}

func TestServerRank(t *testing.T) {
	dec := newTestServer(t, Request{ID: "req_001", Cmd: "rank", Query: "git", Limit: 5, Time: 1_100_000})
	expectReady(t, dec)

	var response RankResponse
	if err := dec.Decode(&response); err != nil {
		t.Fatalf("decoding rank response: %v", err)
	}
	if response.ID != "req_001" {
		t.Errorf("response ID = %q, want req_001", response.ID)
	}
	if response.Count != 1 || len(response.Pages) != 1 {
		t.Fatalf("rank returned %d pages, want 1: %+v", response.Count, response.Pages)
	}
	if response.Pages[0].Page != "p1" || response.Pages[0].Rank != 1 {
		t.Errorf("top result = %+v, want p1 at rank 1", response.Pages[0])
	}
}

func TestServerRankEmptyQuery(t *testing.T) {
	dec := newTestServer(t, Request{ID: "req_002", Cmd: "rank"})
	expectReady(t, dec)

	var errResp ErrorResponse
	if err := dec.Decode(&errResp); err != nil {
		t.Fatalf("decoding error response: %v", err)
	}
	if errResp.ID != "req_002" || errResp.Code != 400 {
		t.Errorf("error response = %+v, want id req_002 code 400", errResp)
	}
}

func TestServerUnknownCommand(t *testing.T) {
	dec := newTestServer(t, Request{ID: "req_003", Cmd: "explode"})
	expectReady(t, dec)

	var errResp ErrorResponse
	if err := dec.Decode(&errResp); err != nil {
		t.Fatalf("decoding error response: %v", err)
	}
	if errResp.Code != 400 {
		t.Errorf("unknown command code = %d, want 400", errResp.Code)
	}
}

func TestServerFeedbackEvents(t *testing.T) {
	dec := newTestServer(t,
		Request{ID: "v_001", Cmd: "visit", Page: "p2", Time: 1_099_000, Dwell: 12},
		Request{ID: "c_001", Cmd: "click", Page: "p2", Time: 1_099_500},
		Request{ID: "i_001", Cmd: "impression", Page: "p1"},
		Request{ID: "h_001", Cmd: "health"},
	)
	expectReady(t, dec)

	for _, wantID := range []string{"v_001", "c_001", "i_001", "h_001"} {
		var status StatusResponse
		if err := dec.Decode(&status); err != nil {
			t.Fatalf("decoding status for %s: %v", wantID, err)
		}
		if status.ID != wantID || status.Status != "ok" {
			t.Errorf("status = %+v, want id %s ok", status, wantID)
		}
	}
}

func TestServerFeedbackRequiresPage(t *testing.T) {
	for _, cmd := range []string{"visit", "click", "impression", "update_page"} {
		t.Run(cmd, func(t *testing.T) {
			dec := newTestServer(t, Request{ID: "x", Cmd: cmd})
			expectReady(t, dec)

			var errResp ErrorResponse
			if err := dec.Decode(&errResp); err != nil {
				t.Fatalf("decoding error response: %v", err)
			}
			if errResp.Code != 400 {
				t.Errorf("%s without page: code = %d, want 400", cmd, errResp.Code)
			}
		})
	}
}

func TestServerUpdatePageThenRank(t *testing.T) {
	dec := newTestServer(t,
		Request{ID: "u_001", Cmd: "update_page", Page: "p9", Title: "Gitea Mirror", URL: "gitea.local"},
		Request{ID: "v_001", Cmd: "visit", Page: "p9", Time: 1_099_900, Dwell: 5},
		Request{ID: "req_004", Cmd: "rank", Query: "gitea", Limit: 5, Time: 1_100_000},
	)
	expectReady(t, dec)

	var status StatusResponse
	if err := dec.Decode(&status); err != nil || status.Status != "ok" {
		t.Fatalf("update_page status: %+v err %v", status, err)
	}
	if err := dec.Decode(&status); err != nil || status.Status != "ok" {
		t.Fatalf("visit status: %+v err %v", status, err)
	}

	var response RankResponse
	if err := dec.Decode(&response); err != nil {
		t.Fatalf("decoding rank response: %v", err)
	}
	if response.Count != 1 || response.Pages[0].Page != "p9" {
		t.Errorf("rank after update_page = %+v, want p9", response.Pages)
	}
}
