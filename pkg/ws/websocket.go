// Package ws wraps a gorilla websocket connection with buffered, mutex-safe
// send semantics for streaming overlay events to frontends.
package ws

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"overlay/internal/app/metrics"
)

var ErrClosed = errors.New("ws is closed")

var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Message struct {
	MsgType int
	Message []byte
}

type Client struct {
	conn *websocket.Conn

	writeChan chan *Message
	readChan  chan *Message

	closed bool
	lock   sync.Mutex
}

func (ws *Client) Close() error {
	ws.lock.Lock()
	defer ws.lock.Unlock()

	if ws.closed {
		return nil
	}

	metrics.Overlay.WSConnections.Dec()
	ws.closed = true
	close(ws.writeChan)

	return ws.conn.Close()
}

func NewClient(conn *websocket.Conn) (client *Client, done chan struct{}) {
	client = &Client{
		conn: conn,

		writeChan: make(chan *Message, 64),
		readChan:  make(chan *Message),
	}

	metrics.Overlay.WSConnections.Inc()

	done = make(chan struct{})

	go func() {
		defer close(client.readChan)
		defer func() { _ = client.Close() }()

		for {
			msg := &Message{}
			var err error

			msg.MsgType, msg.Message, err = conn.ReadMessage()
			if err != nil {
				break
			}

			client.readChan <- msg
		}
	}()

	go func() {
		defer close(done)
		defer func() {
			for range client.writeChan {
			}
		}()

		for msg := range client.writeChan {
			if err := conn.WriteMessage(msg.MsgType, msg.Message); err != nil {
				break
			}
		}
	}()

	return client, done
}

func (ws *Client) Send(msg *Message) error {
	ws.lock.Lock()
	defer ws.lock.Unlock()

	if ws.closed {
		return ErrClosed
	}

	select {
	case ws.writeChan <- msg:
		return nil
	default:
		// a frontend that stopped reading must not stall the pipeline
		return ErrClosed
	}
}

func (ws *Client) SendJSON(msgType int, data []byte) error {
	return ws.Send(&Message{MsgType: msgType, Message: data})
}

func (ws *Client) Read() (*Message, error) {
	msg, ok := <-ws.readChan
	if !ok {
		return nil, ErrClosed
	}

	return msg, nil
}

// DrainRead discards inbound frames; overlay frontends are write-only
// consumers but the read pump must keep running for close detection.
func (ws *Client) DrainRead() {
	for {
		if _, err := ws.Read(); err != nil {
			return
		}
	}
}
