// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package subscriptions streams settlement events over websocket.
package subscriptions

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/manaproject/mana/api/restutil"
	"github.com/manaproject/mana/builtin/settlement"
	"github.com/manaproject/mana/eventdb"
	"github.com/manaproject/mana/log"
	"github.com/manaproject/mana/mana"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	readBatchSize = 256
	pongWait      = 60 * time.Second
	writeWait     = 10 * time.Second
)

type Subscriptions struct {
	db           *eventdb.EventDB
	upgrader     *websocket.Upgrader
	pingInterval time.Duration
	done         chan struct{}
}

type reader interface {
	Read(ctx context.Context) (msgs []any, hasMore bool, err error)
}

// New creates the handler. Origins are matched against allowedOrigins, "*"
// allows any.
func New(db *eventdb.EventDB, allowedOrigins []string, pingInterval time.Duration) *Subscriptions {
	return &Subscriptions{
		db: db,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		pingInterval: pingInterval,
		done:         make(chan struct{}),
	}
}

func (s *Subscriptions) parsePosition(req *http.Request) (uint64, error) {
	posStr := req.URL.Query().Get("pos")
	if posStr == "" {
		newest, err := s.db.NewestSeq()
		if err != nil {
			return 0, err
		}
		return newest + 1, nil
	}
	pos, err := strconv.ParseUint(posStr, 10, 64)
	if err != nil {
		return 0, restutil.BadRequest(errors.WithMessage(err, "pos"))
	}
	return pos, nil
}

func parseCriteria(req *http.Request) (*eventdb.Criteria, error) {
	query := req.URL.Query()
	var (
		criteria eventdb.Criteria
		set      bool
	)
	if addr := query.Get("addr"); addr != "" {
		a, err := mana.ParseAddress(addr)
		if err != nil {
			return nil, restutil.BadRequest(errors.WithMessage(err, "addr"))
		}
		criteria.Address = &a
		set = true
	}
	if name := query.Get("event"); name != "" {
		ev, ok := settlement.ABI.EventByName(name)
		if !ok {
			return nil, restutil.BadRequest(errors.Errorf("event: unknown %q", name))
		}
		id := ev.ID()
		criteria.Topics[0] = &id
		set = true
	}
	for i := 1; i < eventdb.MaxTopics; i++ {
		t := query.Get("t" + strconv.Itoa(i))
		if t == "" {
			continue
		}
		topic, err := mana.ParseBytes32(t)
		if err != nil {
			return nil, restutil.BadRequest(errors.WithMessagef(err, "t%d", i))
		}
		criteria.Topics[i] = &topic
		set = true
	}
	if !set {
		return nil, nil
	}
	return &criteria, nil
}

func (s *Subscriptions) handleSubject(w http.ResponseWriter, req *http.Request) error {
	pos, err := s.parsePosition(req)
	if err != nil {
		return err
	}
	criteria, err := parseCriteria(req)
	if err != nil {
		return err
	}

	conn, closed, err := s.setupConn(w, req)
	// since the conn is hijacked, errors are not returned to the client
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}
	err = s.pipe(conn, newEventReader(s.db, pos, criteria, readBatchSize), closed)
	s.closeConn(conn, err)
	return nil
}

func (s *Subscriptions) setupConn(w http.ResponseWriter, req *http.Request) (*websocket.Conn, chan struct{}, error) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return nil, nil, err
	}

	closed := make(chan struct{})
	// the client is not expected to send anything, read to handle control frames
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logger.Debug("websocket read", "err", err)
				return
			}
		}
	}()
	return conn, closed, nil
}

func (s *Subscriptions) closeConn(conn *websocket.Conn, err error) {
	var msg []byte
	if err != nil {
		msg = websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
	} else {
		msg = websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	}
	if err := conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
		logger.Debug("write close message", "err", err)
	}
	if err := conn.Close(); err != nil {
		logger.Debug("close websocket", "err", err)
	}
}

func (s *Subscriptions) pipe(conn *websocket.Conn, reader reader, closed chan struct{}) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	waiter := s.db.NewWaiter()
	for {
		msgs, hasMore, err := reader.Read(ctx)
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return err
			}
		}
		if hasMore {
			continue
		}
		for waiting := true; waiting; {
			select {
			case <-s.done:
				return errors.New("service shutdown")
			case <-closed:
				return nil
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return err
				}
			case <-waiter.C():
				waiting = false
			}
		}
	}
}

// Close stops all subscriptions.
func (s *Subscriptions) Close() {
	close(s.done)
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodGet).
		Name("WS /subscriptions/event").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubject))
}
