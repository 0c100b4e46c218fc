package web_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/RyanLatimer/Corundum/foundation/validate"
	"github.com/RyanLatimer/Corundum/foundation/web"
)

func Test_Handle(t *testing.T) {
	var order []string
	mw := func(name string) web.Middleware {
		return func(handler web.Handler) web.Handler {
			return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
				order = append(order, name)
				return handler(ctx, w, r)
			}
		}
	}

	shutdown := make(chan os.Signal, 1)
	app := web.NewApp(shutdown, mw("app"))

	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		v, err := web.GetValues(ctx)
		if err != nil {
			return err
		}

		resp := struct {
			Account string `json:"account"`
			TraceID string `json:"trace_id"`
		}{
			Account: web.Param(r, "account"),
			TraceID: v.TraceID,
		}

		return web.Respond(ctx, w, resp, http.StatusOK)
	}
	app.Handle(http.MethodGet, "v1", "/balance/:account", h, mw("route"))

	r := httptest.NewRequest(http.MethodGet, "/v1/balance/0xABC", nil)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Logf("got: %d", w.Code)
		t.Logf("exp: %d", http.StatusOK)
		t.Fatalf("Should receive a success status.")
	}

	var resp struct {
		Account string `json:"account"`
		TraceID string `json:"trace_id"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Should be able to decode the response: %s", err)
	}

	if resp.Account != "0xABC" {
		t.Logf("got: %s", resp.Account)
		t.Logf("exp: %s", "0xABC")
		t.Fatalf("Should receive the route parameter.")
	}

	if resp.TraceID == "" {
		t.Fatalf("Should receive a trace id.")
	}

	if strings.Join(order, ",") != "app,route" {
		t.Logf("got: %v", order)
		t.Logf("exp: %v", []string{"app", "route"})
		t.Fatalf("Should run the app middleware before the route middleware.")
	}
}

func Test_Shutdown(t *testing.T) {
	shutdown := make(chan os.Signal, 1)
	app := web.NewApp(shutdown)

	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.NewShutdownError("integrity issue")
	}
	app.Handle(http.MethodGet, "", "/fail", h)

	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	select {
	case <-shutdown:
	default:
		t.Fatalf("Should signal a shutdown for a shutdown error.")
	}
}

func Test_Decode(t *testing.T) {
	type request struct {
		To    string `json:"to" validate:"required"`
		Value uint64 `json:"value" validate:"required"`
	}

	tt := []struct {
		name   string
		body   string
		fields bool
		fail   bool
	}{
		{name: "valid", body: `{"to":"0xF01","value":10}`},
		{name: "missing", body: `{"to":"0xF01"}`, fields: true, fail: true},
		{name: "unknown", body: `{"to":"0xF01","value":10,"tip":1}`, fail: true},
		{name: "garbage", body: `{`, fail: true},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tst.body))

			var req request
			err := web.Decode(r, &req)

			if tst.fail != (err != nil) {
				t.Logf("got: %v", err)
				t.Logf("exp fail: %v", tst.fail)
				t.Fatalf("Should get the expected decode result.")
			}

			if tst.fields != validate.IsFieldErrors(err) {
				t.Logf("got: %v", err)
				t.Fatalf("Should get field errors only for validation failures.")
			}
		}

		t.Run(tst.name, f)
	}
}
