// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/berryfarm/farm/api/utils"
	"github.com/berryfarm/farm/berry"
	"github.com/berryfarm/farm/log"
	"github.com/berryfarm/farm/runtime"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 7) / 10

	outcomeBufferSize = 128
)

type Subscriptions struct {
	rt       *runtime.Runtime
	upgrader *websocket.Upgrader
	done     chan struct{}
	doneOnce sync.Once
	wg       sync.WaitGroup
}

func New(rt *runtime.Runtime, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		rt: rt,
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
		done: make(chan struct{}),
	}
}

// outcomeFilter selects outcomes by receiver and predecessor. Empty fields match all.
type outcomeFilter struct {
	receiver    berry.AccountID
	predecessor berry.AccountID
}

func parseFilter(req *http.Request) (*outcomeFilter, error) {
	var f outcomeFilter
	for _, p := range []struct {
		name string
		dst  *berry.AccountID
	}{
		{"receiver", &f.receiver},
		{"predecessor", &f.predecessor},
	} {
		if v := req.URL.Query().Get(p.name); v != "" {
			id, err := berry.ParseAccountID(v)
			if err != nil {
				return nil, utils.BadRequest(errors.WithMessage(err, p.name))
			}
			*p.dst = id
		}
	}
	return &f, nil
}

func (f *outcomeFilter) match(out *runtime.ReceiptOutcome) bool {
	if f.receiver != "" && f.receiver != out.Receiver {
		return false
	}
	if f.predecessor != "" && f.predecessor != out.Predecessor {
		return false
	}
	return true
}

func (s *Subscriptions) handleSubject(w http.ResponseWriter, req *http.Request) error {
	s.wg.Add(1)
	defer s.wg.Done()

	filter, err := parseFilter(req)
	if err != nil {
		return err
	}

	// subscribe before the handshake completes so no outcome is missed once the client is connected
	ch := make(chan *runtime.ReceiptOutcome, outcomeBufferSize)
	s.rt.SubscribeOutcomes(ch)
	defer s.rt.UnsubscribeOutcomes(ch)

	conn, err := s.upgrader.Upgrade(w, req, nil)
	// since the conn is hijacked here, no error should be returned in lines below
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}

	metricActiveCount().AddWithLabel(1, map[string]string{"subject": "receipts"})
	defer metricActiveCount().AddWithLabel(-1, map[string]string{"subject": "receipts"})

	err = s.pipe(conn, ch, filter)
	if err != nil {
		logger.Debug("error in websocket", "err", err)
	}

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err != nil {
		closeMsg = websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
	}
	conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeWait))
	conn.Close()
	return nil
}

func (s *Subscriptions) pipe(conn *websocket.Conn, ch <-chan *runtime.ReceiptOutcome, filter *outcomeFilter) error {
	closed := make(chan struct{})
	// start read loop to handle close event
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logger.Debug("websocket read err", "err", err)
				return
			}
		}
	}()

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case out := <-ch:
			if !filter.match(out) {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(out); err != nil {
				return err
			}
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		case <-s.done:
			return nil
		case <-closed:
			return nil
		}
	}
}

// Close terminates all subscriptions and waits for their handlers.
func (s *Subscriptions) Close() {
	s.doneOnce.Do(func() { close(s.done) })
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/receipts").
		Methods(http.MethodGet).
		Name("WS /subscriptions/receipts").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubject))
}
