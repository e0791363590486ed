package api

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nerrad567/scmi-pinctrl/internal/infrastructure/config"
	"github.com/nerrad567/scmi-pinctrl/internal/infrastructure/logging"
	"github.com/nerrad567/scmi-pinctrl/internal/pinctrl"
)

// fakeTransport answers pin-control requests with canned success
// responses so handlers can be exercised without an SCMI agent.
type fakeTransport struct {
	muxFunction uint16
}

func (f *fakeTransport) Call(_ context.Context, _ uint8, messageID uint8, _ []byte) ([]byte, error) {
	ok := make([]byte, 4) // status = SUCCESS

	switch messageID {
	case 0x1: // protocol attributes: one pin range
		resp := append(ok, make([]byte, 4)...)
		binary.LittleEndian.PutUint32(resp[4:], 1)
		return resp, nil
	case 0x3: // describe: pins 0..63
		resp := append(ok, make([]byte, 4)...)
		binary.LittleEndian.PutUint16(resp[4:], 0)
		binary.LittleEndian.PutUint16(resp[6:], 64)
		return resp, nil
	case 0x4: // mux get
		resp := append(ok, make([]byte, 2)...)
		binary.LittleEndian.PutUint16(resp[4:], f.muxFunction)
		return resp, nil
	case 0x6: // config get: empty mask
		return append(ok, make([]byte, 8)...), nil
	default: // mux set, config set/append
		return ok, nil
	}
}

// newTestServer builds a router backed by a fake transport.
func newTestServer(t *testing.T, states []*pinctrl.ConfigNode) (http.Handler, *fakeTransport) {
	t.Helper()

	transport := &fakeTransport{muxFunction: 3}
	driver := pinctrl.New(transport)
	if err := driver.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	srv, err := New(Deps{
		Config:  config.APIConfig{Host: "127.0.0.1", Port: 8090},
		Logger:  logging.Default(),
		Driver:  driver,
		States:  states,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return srv.buildRouter(), transport
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if resp["version"] != "test" {
		t.Errorf("version = %v, want test", resp["version"])
	}
}

func TestHandleListPins(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/pins/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp pinListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.NumPins != 64 {
		t.Errorf("NumPins = %d, want 64", resp.NumPins)
	}
	if len(resp.Ranges) != 1 || resp.Ranges[0].NumPins != 64 {
		t.Errorf("Ranges = %+v, want one range of 64 pins", resp.Ranges)
	}
	if len(resp.Properties) == 0 {
		t.Error("expected property names to be reported")
	}
}

func TestHandleGetPin(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/pins/5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp pinDetailResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Function != 3 {
		t.Errorf("Function = %d, want 3", resp.Function)
	}
	if resp.Direction != "function" {
		t.Errorf("Direction = %q, want function", resp.Direction)
	}
}

func TestHandleGetPin_InvalidPin(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/pins/notanumber", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSetMux(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := doRequest(t, h, http.MethodPut, "/api/v1/pins/5/mux", `{"function":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleSetMux_FunctionTooWide(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := doRequest(t, h, http.MethodPut, "/api/v1/pins/5/mux", `{"function":70000}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleSetConfig(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := doRequest(t, h, http.MethodPut, "/api/v1/pins/5/config", `{"property":"slew-rate"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	// slew-rate's documented default argument
	if resp["arg"] != float64(4) {
		t.Errorf("arg = %v, want 4", resp["arg"])
	}
}

func TestHandleSetConfig_UnknownProperty(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := doRequest(t, h, http.MethodPut, "/api/v1/pins/5/config", `{"property":"nonsense"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleClaimRelease(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/pins/5/claim", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("claim status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	// A second claim on the same pin conflicts.
	rec = doRequest(t, h, http.MethodPost, "/api/v1/pins/5/claim", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate claim status = %d, want 409: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodPost, "/api/v1/pins/5/release", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("release status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	// Releasing an unclaimed pin is a 404.
	rec = doRequest(t, h, http.MethodPost, "/api/v1/pins/5/release", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("double release status = %d, want 404: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleStates(t *testing.T) {
	states := []*pinctrl.ConfigNode{
		{
			Name:       "uart2-default",
			PinMux:     []uint32{5<<4 | 2},
			Properties: []pinctrl.Property{{Name: "bias-pull-up"}},
		},
	}
	h, _ := newTestServer(t, states)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/states/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "uart2-default") {
		t.Errorf("state list missing uart2-default: %s", rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodPost, "/api/v1/states/uart2-default/apply", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("apply status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodPost, "/api/v1/states/missing/apply", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown state status = %d, want 404", rec.Code)
	}
}
