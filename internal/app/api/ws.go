package api

import (
	"encoding/json"
	"net/http"

	gorilla "github.com/gorilla/websocket"

	"overlay/pkg/event"
	"overlay/pkg/slg"
	"overlay/pkg/ws"
)

// handleWS streams every normalized event to an overlay frontend. A client
// that stops reading is dropped rather than allowed to stall the pipeline.
func (api *API) handleWS(w http.ResponseWriter, r *http.Request) {
	logger := slg.GetSlog(r.Context())

	conn, err := ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("failed to upgrade websocket", "err", err)

		return
	}

	client, done := ws.NewClient(conn)
	defer func() { _ = client.Close() }()

	unsubs := make([]func(), 0, len(event.Kinds()))
	for _, kind := range event.Kinds() {
		unsubs = append(unsubs, api.processor.On(kind, func(e *event.Event) error {
			data, err := json.Marshal(e)
			if err != nil {
				logger.Error("failed to marshal event", "kind", e.Kind, "err", err)

				return nil
			}

			// Send errors mean this client is gone; never fail the
			// publish chain over it.
			_ = client.SendJSON(gorilla.TextMessage, data)

			return nil
		}))
	}
	defer func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}()

	go client.DrainRead()

	select {
	case <-done:
	case <-r.Context().Done():
	}
}
