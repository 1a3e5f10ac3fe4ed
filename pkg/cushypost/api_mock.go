package cushypost

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockTransport is a scripted implementation of Transport for testing.
//
// Replies queued with Enqueue are served in order per "METHOD path"; the last
// reply of a queue is repeated once the queue drains. Requests without a
// queued reply fall through to OnRequest, then to canned defaults that mimic
// a healthy API.
type MockTransport struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnRequest func(ctx context.Context, req *Request) (*Response, error)

	mu     sync.Mutex
	queues map[string][]*Response
	calls  []*Request
}

// NewMockTransport creates a new mock transport with default behavior.
func NewMockTransport() *MockTransport {
	return &MockTransport{
		queues: make(map[string][]*Response),
	}
}

// Enqueue scripts replies for method and path (e.g. "POST", "cart/item").
func (m *MockTransport) Enqueue(method, path string, replies ...*Response) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := routeKey(method, path)
	m.queues[key] = append(m.queues[key], replies...)
	return m
}

// Calls returns every request received so far, in order.
func (m *MockTransport) Calls() []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Request(nil), m.calls...)
}

// CallsTo returns the requests received for method and path.
func (m *MockTransport) CallsTo(method, path string) []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Request
	for _, c := range m.calls {
		if c.Method == method && requestPath(c) == path {
			out = append(out, c)
		}
	}
	return out
}

// Do records the request and returns the scripted reply.
func (m *MockTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	m.mu.Lock()
	m.calls = append(m.calls, req)
	key := routeKey(req.Method, requestPath(req))
	var reply *Response
	if queue := m.queues[key]; len(queue) > 0 {
		reply = queue[0]
		if len(queue) > 1 {
			m.queues[key] = queue[1:]
		}
	}
	m.mu.Unlock()

	if m.SimulateErrors {
		return nil, fmt.Errorf("mock: simulated transport error")
	}
	if reply != nil {
		return cloneResponse(reply), nil
	}
	if m.OnRequest != nil {
		return m.OnRequest(ctx, req)
	}
	return defaultReply(req), nil
}

// JSONResponse builds a reply whose body is {"response": {"data": data}}.
func JSONResponse(status int, data any) *Response {
	body, err := json.Marshal(map[string]any{
		"response": map[string]any{"data": data},
	})
	if err != nil {
		panic(fmt.Sprintf("mock: marshal reply: %v", err))
	}
	return &Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       body,
	}
}

// StatusResponse builds an empty reply with the given status.
func StatusResponse(status int) *Response {
	return &Response{StatusCode: status, Header: http.Header{}}
}

// TokenResponse builds a successful login/refresh reply carrying tokens.
func TokenResponse(token, refreshToken string) *Response {
	resp := StatusResponse(http.StatusOK)
	resp.Header.Set(HeaderToken, token)
	resp.Header.Set(HeaderRefreshToken, refreshToken)
	return resp
}

func routeKey(method, path string) string {
	return method + " " + strings.TrimPrefix(path, "/")
}

func requestPath(req *Request) string {
	u, err := url.Parse(req.URL)
	if err != nil {
		return req.URL
	}
	return strings.TrimPrefix(u.Path, "/")
}

func cloneResponse(r *Response) *Response {
	return &Response{
		StatusCode: r.StatusCode,
		Header:     r.Header.Clone(),
		Body:       append([]byte(nil), r.Body...),
	}
}

// defaultReply answers like a healthy API with fixed Italian fixtures.
func defaultReply(req *Request) *Response {
	switch routeKey(req.Method, requestPath(req)) {
	case routeKey(http.MethodPost, pathLogin), routeKey(http.MethodPost, pathRefreshToken):
		return TokenResponse("mock-jwt-"+uuid.New().String()[:8], "mock-refresh-"+uuid.New().String()[:8])

	case routeKey(http.MethodPost, pathPlaceAutocomplete):
		var body placeAutocompleteRequest
		_ = json.Unmarshal(req.Body, &body)
		postcode, _, _ := strings.Cut(body.Sequence, " ")
		return JSONResponse(http.StatusOK, []LookupRecord{{
			ID:       "geo-" + body.CountryCode + "-" + postcode,
			Country:  body.CountryCode,
			Province: "MI",
			Region:   "Lombardia",
			Postcode: postcode,
			City:     "Milano",
			Location: GeoPoint{Type: "Point", Coordinates: []float64{9.19, 45.4642}},
		}})

	case routeKey(http.MethodPost, pathHolidays):
		return JSONResponse(http.StatusOK, []Holiday{})

	case routeKey(http.MethodPost, pathRate):
		option := map[string]any{
			"id":      "quote-" + uuid.New().String()[:8],
			"carrier": "BRT",
			"service": "Express",
			"price":   map[string]any{"total": 12.4, "currency": "EUR"},
		}
		return JSONResponse(http.StatusOK, map[string]any{
			"best_price": option,
			"best_time":  option,
			"list":       []any{option},
		})

	case routeKey(http.MethodPost, pathApprove):
		return JSONResponse(http.StatusOK, map[string]any{"state": orderStateWaitingForPayment})

	case routeKey(http.MethodPost, pathSearch):
		return JSONResponse(http.StatusOK, []ShipmentRecord{})

	case routeKey(http.MethodPost, pathCartBuy):
		sessionID := "cs_mock_" + uuid.New().String()[:8]
		return JSONResponse(http.StatusOK, cartBuyResponse{
			SessionID: sessionID,
			URL:       "https://checkout.example.com/pay/" + sessionID,
		})

	case routeKey(http.MethodGet, pathLabel):
		id := req.Query.Get("id")
		return JSONResponse(http.StatusOK, map[string]any{
			"id":     id,
			"format": "pdf",
			"url":    "https://labels.example.com/" + id + ".pdf",
		})

	default:
		return JSONResponse(http.StatusOK, nil)
	}
}

var _ Transport = (*MockTransport)(nil)
