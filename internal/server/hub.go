package server

import (
	"context"

	"github.com/gorilla/websocket"
)

// Client is one websocket connection.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// message is addressed to a single client.
type message struct {
	client *Client
	data   []byte
}

// Hub fans broadcasts out to every registered client. It is the only writer
// of a client's send channel and the only one to close it.
type Hub struct {
	clients    map[*Client]bool
	register   chan message // data, if any, is the client's first message
	unregister chan *Client
	broadcast  chan []byte
	unicast    chan message
}

func newHub() *Hub {
	return &Hub{
		clients:    map[*Client]bool{},
		register:   make(chan message),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		unicast:    make(chan message, 64),
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		case m := <-h.register:
			h.clients[m.client] = true
			if m.data != nil {
				m.client.send <- m.data
			}
		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
			}
		case m := <-h.unicast:
			if !h.clients[m.client] {
				continue
			}
			select {
			case m.client.send <- m.data:
			default:
				h.drop(m.client)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// slow client
					h.drop(c)
				}
			}
		}
	}
}

func (c *Client) writer() {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
	c.conn.Close()
}
