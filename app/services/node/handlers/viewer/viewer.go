// Package viewer serves a page that shows the node's chain and streams its
// events.
package viewer

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"path"

	"github.com/RyanLatimer/Corundum/foundation/blockchain/state"
	"github.com/RyanLatimer/Corundum/foundation/web"
)

//go:embed assets
var assets embed.FS

// Handlers manages the viewer endpoints.
type Handlers struct {
	State *state.State
	index *template.Template
}

// New loads the page template.
func New(st *state.State) (*Handlers, error) {
	index, err := template.ParseFS(assets, "assets/index.html")
	if err != nil {
		return nil, fmt.Errorf("loading index template: %w", err)
	}

	return &Handlers{State: st, index: index}, nil
}

// Routes binds the viewer routes.
func (h *Handlers) Routes(app *web.App) {
	app.Handle(http.MethodGet, "", "/", h.Index)
	app.Handle(http.MethodGet, "", "/assets/*file", h.Assets)
}

// Index renders the page for this node.
func (h *Handlers) Index(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()

	data := struct {
		Host         string
		Miner        string
		Difficulty   uint16
		MiningReward uint64
	}{
		Host:         h.State.RetrieveHost(),
		Miner:        h.State.RetrieveMinerAddress(),
		Difficulty:   gen.Difficulty,
		MiningReward: gen.MiningReward,
	}

	if err := web.SetStatusCode(ctx, http.StatusOK); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return h.index.Execute(w, data)
}

// Assets serves the static files the page uses.
func (h *Handlers) Assets(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	name := path.Join("assets", path.Clean("/"+web.Param(r, "file")))

	if err := web.SetStatusCode(ctx, http.StatusOK); err != nil {
		return err
	}

	http.ServeFileFS(w, r, assets, name)
	return nil
}
