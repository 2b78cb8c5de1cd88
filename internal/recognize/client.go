package recognize

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/datadigshawn/aiSpeech-2026/internal/timeline"
)

// Response is one NDJSON reply from a recognition daemon.
type Response struct {
	OK         bool                   `json:"ok"`
	SegmentID  string                 `json:"segmentId,omitempty"`
	Transcript string                 `json:"transcript,omitempty"`
	Confidence *float64               `json:"confidence,omitempty"`
	Tokens     []timeline.TokenOffset `json:"tokens,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Transient  *bool                  `json:"transient,omitempty"`
}

// Client talks to a recognition daemon over a Unix socket using NDJSON:
// one request line out, one response line back.
type Client struct {
	name    string
	conn    net.Conn
	scanner *bufio.Scanner
	mu      sync.Mutex
}

// Connect dials the daemon socket.
func Connect(socketPath, name string) (*Client, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect to recognition daemon: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB buffer

	return &Client{name: name, conn: conn, scanner: scanner}, nil
}

// Close shuts down the connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Name returns the back-end name used for report and event labeling.
func (c *Client) Name() string {
	return c.name
}

// Recognize sends one request line and reads one response line. Connection
// failures surface as transient errors so the pool retries them; an error
// reported by the daemon itself is transient only when the daemon says so.
func (c *Client) Recognize(ctx context.Context, req Request) (timeline.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.conn.SetDeadline(deadline); err != nil {
			return timeline.Result{}, fmt.Errorf("set deadline: %w", err)
		}
		defer c.conn.SetDeadline(time.Time{})
	}

	data, err := json.Marshal(req)
	if err != nil {
		return timeline.Result{}, fmt.Errorf("marshal request: %w", err)
	}

	data = append(data, '\n')
	if _, err := c.conn.Write(data); err != nil {
		return timeline.Result{}, Transient(fmt.Errorf("write request: %w", err))
	}

	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return timeline.Result{}, Transient(fmt.Errorf("read response: %w", err))
		}
		return timeline.Result{}, Transient(fmt.Errorf("connection closed"))
	}

	var resp Response
	if err := json.Unmarshal(c.scanner.Bytes(), &resp); err != nil {
		return timeline.Result{}, fmt.Errorf("unmarshal response: %w", err)
	}

	if !resp.OK {
		err := fmt.Errorf("recognition failed: %s", resp.Error)
		if resp.Transient != nil && *resp.Transient {
			return timeline.Result{}, Transient(err)
		}
		return timeline.Result{}, err
	}

	return timeline.Result{
		SegmentID:  req.SegmentID,
		Transcript: resp.Transcript,
		Confidence: resp.Confidence,
		Tokens:     resp.Tokens,
	}, nil
}
