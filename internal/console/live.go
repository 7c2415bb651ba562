package console

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/emanuel-malungo/jomorais/internal/hook"
	"github.com/emanuel-malungo/jomorais/internal/listpage"
)

const (
	liveWriteWait    = 10 * time.Second
	liveMaxFrameSize = 4096
)

// liveCommand is sent by the list page as the user types, pages or filters.
type liveCommand struct {
	Type  string `json:"type"` // search | page | page_size | status | filter | refetch
	Key   string `json:"key,omitempty"`
	Value string `json:"value"`
}

// liveUpdate carries one hook state; HTML is the re-rendered table body.
type liveUpdate struct {
	Type   string `json:"type"`
	Status string `json:"status"`
	HTML   string `json:"html,omitempty"`
	Error  string `json:"error,omitempty"`
	Query  string `json:"query,omitempty"`
}

// live drives a list hook over a websocket: commands go to the hook setters,
// and every state change is pushed back as rendered HTML. The hook's
// debounce and stale-response guard apply unchanged.
func (r *resource[E]) live(c *Console) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		f := listpage.ParseFilter(ctx.Request.URL.Query(), c.cfg.Console.PageSize, r.filterKeys()...)

		conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
		if err != nil {
			c.logger.Debug("websocket upgrade failed", zap.String("resource", r.Slug), zap.Error(err))
			return
		}
		defer conn.Close()
		conn.SetReadLimit(liveMaxFrameSize)

		opts := []hook.Option{hook.WithParams(f.Params()), hook.WithLogger(c.logger)}
		if d := c.cfg.Console.SearchDebounce; d > 0 {
			opts = append(opts, hook.WithDebounce(d))
		}
		h := hook.New[E](r.api, opts...)
		defer h.Close()

		var writeMu sync.Mutex
		push := func(st hook.State[E]) {
			u := liveUpdate{Type: "state", Status: st.Status.String(), Error: st.Err}
			if st.Status == hook.Loaded || st.Status == hook.Errored {
				view := listpage.NewView(r.Title, r.base(), r.Columns, st, listpage.FilterFromParams(st.Params))
				html, err := c.renderFragment("table", gin.H{"Res": r.meta(), "View": view})
				if err != nil {
					c.logger.Error("render live table", zap.String("resource", r.Slug), zap.Error(err))
					return
				}
				u.HTML = html
				u.Query = view.Filter.Query().Encode()
			}

			writeMu.Lock()
			defer writeMu.Unlock()
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteJSON(u); err != nil {
				c.logger.Debug("websocket write failed", zap.String("resource", r.Slug), zap.Error(err))
			}
		}
		unsubscribe := h.Subscribe(push)
		defer unsubscribe()

		h.Refetch(ctx.Request.Context())

		for {
			var cmd liveCommand
			if err := conn.ReadJSON(&cmd); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					c.logger.Debug("websocket closed", zap.String("resource", r.Slug), zap.Error(err))
				}
				return
			}

			switch cmd.Type {
			case "search":
				h.SetSearch(cmd.Value)
			case "page":
				if n, err := strconv.Atoi(cmd.Value); err == nil {
					h.SetPage(n)
				}
			case "page_size":
				if n, err := strconv.Atoi(cmd.Value); err == nil {
					h.SetPageSize(n)
				}
			case "status":
				if cmd.Value == listpage.StatusAll {
					cmd.Value = ""
				}
				h.SetStatus(cmd.Value)
			case "filter":
				if r.allowsFilter(cmd.Key) {
					h.SetFilter(cmd.Key, cmd.Value)
				}
			case "refetch":
				h.Refetch(ctx.Request.Context())
			}
		}
	}
}

func (r *resource[E]) allowsFilter(key string) bool {
	for _, f := range r.Filters {
		if f.Key == key {
			return true
		}
	}
	return false
}
