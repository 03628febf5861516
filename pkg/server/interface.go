/*
Package server implements msgpack IPC for tap suggestion services.

The server reads a stream of msgpack encoded requests on stdin and writes one
msgpack response per request on stdout. Requests are processed synchronously
and every response echoes the request ID. Timing is reported in microseconds.

# IPC

Every request is a map with an "id" and an "op". Suggestion requests may omit
the op:

	{"id": "req_001", "p": "helo", "l": 8}

The typed string is mapped to taps through the configured keyboard layout, so
the neighbours of every key are tried as alternates. Clients that have their
own key model send the flat code layout instead, one row of stride codes per
tap, primary first and zero terminated:

	{"id": "req_002", "op": "suggest", "codes": [104, 103, 106, 0, 101, 119, 0], "stride": 4}

The response carries the ranked words with their scores:

	{"id": "req_001", "s": [{"w": "hello", "s": 3200, "r": 1}, {"w": "help", "s": 600, "r": 2}], "c": 2, "t": 145}

Dictionaries are addressed by handle. The dictionary given on the command line
is opened first and used when a request carries no handle:

	{"id": "o1", "op": "open", "path": "/usr/share/tapdict/fr.dict"}
	{"id": "v1", "op": "valid", "h": 2, "w": "bonjour"}
	{"id": "c1", "op": "close", "h": 2}

"info" lists the open dictionaries and "health" answers with a status. Failed
requests get an error message carrying an HTTP like code:

	{"id": "v1", "e": "unknown handle 2", "c": 404}

When watching is enabled, dictionaries opened from files are reloaded once
their file changes and swapped in without interrupting queries.
*/
package server

// Error codes carried by ErrorResponse.
const (
	CodeBadRequest    = 400
	CodeNotFound      = 404
	CodeUnprocessable = 422
	CodeInternal      = 500
)

// Request is any client message. Fields unused by an op are ignored.
type Request struct {
	ID     string `msgpack:"id"`
	Op     string `msgpack:"op,omitempty"`
	Handle int32  `msgpack:"h,omitempty"`

	// suggest
	Input       string `msgpack:"p,omitempty"`
	Codes       []int  `msgpack:"codes,omitempty"`
	Stride      int    `msgpack:"stride,omitempty"`
	Limit       int    `msgpack:"l,omitempty"`
	Skip        *int   `msgpack:"skip,omitempty"`
	Completions *bool  `msgpack:"x,omitempty"`

	// valid
	Word string `msgpack:"w,omitempty"`

	// open
	Path string `msgpack:"path,omitempty"`
}

// Suggestion is one ranked word.
type Suggestion struct {
	Word  string `msgpack:"w"`
	Score int    `msgpack:"s"`
	Rank  uint16 `msgpack:"r"`
}

// SuggestResponse answers suggest.
type SuggestResponse struct {
	ID          string       `msgpack:"id"`
	Suggestions []Suggestion `msgpack:"s"`
	Count       int          `msgpack:"c"`
	TimeTaken   int64        `msgpack:"t"`
}

// ValidResponse answers valid.
type ValidResponse struct {
	ID        string `msgpack:"id"`
	Valid     bool   `msgpack:"v"`
	TimeTaken int64  `msgpack:"t"`
}

// DictionaryInfo describes an open dictionary.
type DictionaryInfo struct {
	Handle       int32  `msgpack:"h"`
	Source       string `msgpack:"path,omitempty"`
	Words        int    `msgpack:"words"`
	Size         int    `msgpack:"size"`
	MaxFrequency int    `msgpack:"max_freq"`
}

// OpenResponse answers open.
type OpenResponse struct {
	ID         string         `msgpack:"id"`
	Dictionary DictionaryInfo `msgpack:"d"`
	TimeTaken  int64          `msgpack:"t"`
}

// InfoResponse answers info.
type InfoResponse struct {
	ID           string           `msgpack:"id"`
	Default      int32            `msgpack:"default"`
	Dictionaries []DictionaryInfo `msgpack:"dicts"`
	Cache        map[string]int   `msgpack:"cache"`
	Requests     int              `msgpack:"requests"`
}

// StatusResponse answers close and health, and announces readiness.
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// ErrorResponse reports a failed request.
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
