package routes

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/websocket"
	"github.com/kataras/neffos"
)

// NewRealtimeServer returns the websocket server mounted at /ws/{id}. It is a
// placeholder transport: every inbound text frame is acknowledged back to the
// sender, nothing is persisted and nothing is routed to other connections.
// Transport errors just close the connection.
func NewRealtimeServer() *neffos.Server {
	return websocket.New(websocket.DefaultGorillaUpgrader, websocket.Events{
		websocket.OnNativeMessage: func(nsConn *websocket.NSConn, msg websocket.Message) error {
			nsConn.Conn.Write(websocket.Message{
				Body:     []byte("Message received: " + string(msg.Body)),
				IsNative: true,
			})
			return nil
		},
	})
}

// RealtimeConnectionID keys the connection by the {id} path parameter.
func RealtimeConnectionID(ctx iris.Context) string {
	return ctx.Params().Get("id")
}
