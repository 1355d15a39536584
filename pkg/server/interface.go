/*
Package server implements msgpack IPC for the quick-launch ranking engine.

The server provides a minimal request/response interface over stdin/stdout so
a UI process (search bar, launcher popup) can query rankings and report
feedback through process communication. Messages are processed synchronously
with timing info included in responses.

# IPC

Each request carries an ID and a command. Ranking requests use:

	{"id": "req_001", "cmd": "rank", "q": "git", "l": 5}

The server responds with page IDs ordered by relevance:

	{"id": "req_001", "s": [{"p": "p1", "r": 1}, {"p": "p7", "r": 2}], "c": 2, "t": 145}

Feedback and catalog events mutate engine state and answer with a status:

	{"id": "v_001", "cmd": "visit", "page": "p1", "t": 1712345678, "dwell": 30}
	{"id": "c_001", "cmd": "click", "page": "p1"}
	{"id": "i_001", "cmd": "impression", "page": "p7"}
	{"id": "u_001", "cmd": "update_page", "page": "p9", "title": "Team Wiki", "url": "wiki.local/team"}

Unknown commands and malformed payloads get an error response with code 400.
The engine itself defines no wire format; this package is the transport shim
between it and the UI layer.
*/
package server

// Request is the single incoming message shape; fields beyond ID and Cmd are
// command-specific and optional.
type Request struct {
	ID  string `msgpack:"id"`
	Cmd string `msgpack:"cmd"`

	// rank
	Query string `msgpack:"q,omitempty"`
	Limit int    `msgpack:"l,omitempty"`

	// rank reference time / visit and click time (epoch seconds)
	Time int64 `msgpack:"t,omitempty"`

	// visit, click, impression, update_page
	Page  string  `msgpack:"page,omitempty"`
	Dwell float64 `msgpack:"dwell,omitempty"`

	// update_page
	Title    string   `msgpack:"title,omitempty"`
	URL      string   `msgpack:"url,omitempty"`
	Category string   `msgpack:"category,omitempty"`
	Tags     []string `msgpack:"tags,omitempty"`
}

// RankedPage is one result entry; rank starts at 1 for the best match.
type RankedPage struct {
	Page string `msgpack:"p"`
	Rank uint16 `msgpack:"r"`
}

// RankResponse answers a rank request. TimeTaken is microseconds.
type RankResponse struct {
	ID        string       `msgpack:"id"`
	Pages     []RankedPage `msgpack:"s"`
	Count     int          `msgpack:"c"`
	TimeTaken int64        `msgpack:"t"`
}

// StatusResponse answers mutation and health requests.
type StatusResponse struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`
}

// ErrorResponse holds basic error information for failed requests.
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
