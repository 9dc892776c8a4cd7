package display

import (
	"context"
	"io"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/termlink/pkg/framework"
)

const viewerPage = `<!DOCTYPE html>
<html><head><title>termlink</title></head>
<body>
<p>` + Title + `</p>
<pre id="label"></pre>
<p>` + InputPrompt + `</p>
<form id="input"><input id="text" size="40"><button>Send</button></form>
<script>
var ws = new WebSocket((location.protocol == "https:" ? "wss://" : "ws://") + location.host + "/label");
ws.onmessage = function(ev) { document.getElementById("label").textContent = ev.data; };
document.getElementById("input").onsubmit = function(ev) {
  ev.preventDefault();
  var t = document.getElementById("text");
  ws.send(t.value);
  t.value = "";
};
</script>
</body></html>
`

// Viewer mirrors the label to websocket clients. Text received from a
// client is submitted through Input when it's set.
type Viewer struct {
	Addr  string
	Label *Label
	Input *TextArea
}

// Name implements Named.
func (v *Viewer) Name() string {
	return "viewer"
}

// Handler serves the page on / and the websocket on /label.
func (v *Viewer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/label", websocket.Handler(v.serve))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, viewerPage)
	})
	return mux
}

func (v *Viewer) serve(ws *websocket.Conn) {
	defer ws.Close()
	ch, cancel := v.Label.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var text string
			if err := websocket.Message.Receive(ws, &text); err != nil {
				return
			}
			if v.Input == nil {
				continue
			}
			if _, err := v.Input.SubmitText(text); err != nil {
				glog.Warningf("Viewer: submit failed: %v", err)
			}
		}
	}()

	glog.V(1).Infof("Viewer: client %s", ws.Request().RemoteAddr)
	text := v.Label.Text()
	for {
		if err := websocket.Message.Send(ws, text); err != nil {
			return
		}
		select {
		case <-done:
			return
		case text = <-ch:
		}
	}
}

// Run implements Runnable.
func (v *Viewer) Run(ctx context.Context) error {
	srv := &http.Server{Addr: v.Addr, Handler: v.Handler()}
	glog.Infof("Viewer: listening on %s", v.Addr)
	err := fx.RunWithContextCloser(ctx, srv, srv.ListenAndServe)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
