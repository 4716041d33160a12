// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package wsclient subscribes to the MANA event stream.
package wsclient

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/manaproject/mana/api"
	"github.com/manaproject/mana/manaclient/common"
)

type Client struct {
	host   string
	scheme string
}

func NewClient(url string) (*Client, error) {
	var host string
	var scheme string

	switch {
	case strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "wss://"):
		host = strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "wss://")
		scheme = "wss"
	case strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "ws://"):
		host = strings.TrimPrefix(strings.TrimPrefix(url, "http://"), "ws://")
		scheme = "ws"
	default:
		return nil, fmt.Errorf("invalid url")
	}

	return &Client{
		host:   strings.TrimSuffix(host, "/"),
		scheme: scheme,
	}, nil
}

// Subscription is an open event stream.
type Subscription[T any] struct {
	EventChan <-chan common.EventWrapper[T]
	conn      *websocket.Conn
}

// Unsubscribe closes the stream. EventChan is closed once the reader exits.
func (s *Subscription[T]) Unsubscribe() error {
	return s.conn.Close()
}

// SubscribeEvents streams events from the position in query, see
// EventQuery.
func (c *Client) SubscribeEvents(query string) (*Subscription[*api.FilteredEvent], error) {
	conn, err := c.connect("/subscriptions/event", query)
	if err != nil {
		return nil, fmt.Errorf("unable to connect - %w", err)
	}
	return subscribe[api.FilteredEvent](conn), nil
}

// EventQuery builds the query of SubscribeEvents. A nil pos starts after
// the newest stored event. event filters by event name.
func EventQuery(pos *uint64, event string) string {
	q := url.Values{}
	if pos != nil {
		q.Set("pos", fmt.Sprint(*pos))
	}
	if event != "" {
		q.Set("event", event)
	}
	return q.Encode()
}

func subscribe[T any](conn *websocket.Conn) *Subscription[*T] {
	eventChan := make(chan common.EventWrapper[*T])

	go func() {
		defer close(eventChan)
		defer conn.Close()

		for {
			var data T
			if err := conn.ReadJSON(&data); err != nil {
				eventChan <- common.EventWrapper[*T]{Error: fmt.Errorf("%w: %w", common.ErrUnexpectedMsg, err)}
				return
			}
			eventChan <- common.EventWrapper[*T]{Data: &data}
		}
	}()

	return &Subscription[*T]{EventChan: eventChan, conn: conn}
}

func (c *Client) connect(endpoint, rawQuery string) (*websocket.Conn, error) {
	u := url.URL{
		Scheme:   c.scheme,
		Host:     c.host,
		Path:     endpoint,
		RawQuery: rawQuery,
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
