package kami

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/skylane-labs/skylane/internal/config"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Kami {
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	kc := &config.KamiEnvConfig{
		KamiHost: ts.Listener.Addr().(*net.TCPAddr).IP.String(),
		KamiPort: fmt.Sprint(ts.Listener.Addr().(*net.TCPAddr).Port),
	}
	k, err := NewKami(kc)
	if err != nil {
		t.Fatalf("new kami: %v", err)
	}
	k.BaseURL = ts.URL
	k.client.SetBaseURL(ts.URL)
	return k
}

func TestNewKami_NilConfig(t *testing.T) {
	if _, err := NewKami(nil); err == nil {
		t.Fatal("expected error when cfg is nil")
	}
}

func TestServeAxon_Success(t *testing.T) {
	k := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chain/serve-axon" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"statusCode":200,"success":true,"data":"0xabc","error":null}`))
	})

	res, err := k.ServeAxon(ServeAxonParams{})
	if err != nil {
		t.Fatalf("ServeAxon error: %v", err)
	}
	if res.Data != "0xabc" || !res.Success {
		t.Fatalf("unexpected response: %+v", res)
	}
}

func TestServeAxon_HTTPError(t *testing.T) {
	k := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad"))
	})
	if _, err := k.ServeAxon(ServeAxonParams{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestServeAxon_ResponseErrorField(t *testing.T) {
	k := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"statusCode":200,"success":false,"data":"","error":{"msg":"boom"}}`))
	})
	if _, err := k.ServeAxon(ServeAxonParams{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestGetMetagraph_Success(t *testing.T) {
	payload := `{"statusCode":200,"success":true,"data":{"netuid":98,"block":100,"numUids":2,"hotkeys":["hk-0","hk-1"],"coldkeys":["ck-0","ck-1"],"axons":[{"block":0,"version":0,"ip":"10.0.0.1","port":8080,"ipType":4,"protocol":0},{"block":0,"version":0,"ip":"","port":0,"ipType":0,"protocol":0}],"active":[true,true],"validatorPermit":[true,false],"alphaStake":[100,50],"taoStake":[0,100],"totalStake":[100,150]},"error":null}`
	k := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chain/subnet-metagraph/98" || r.Method != http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	})

	res, err := k.GetMetagraph(98)
	if err != nil {
		t.Fatalf("GetMetagraph error: %v", err)
	}
	if res.Data.Netuid != 98 || len(res.Data.Hotkeys) != 2 {
		t.Fatalf("unexpected response: %+v", res.Data)
	}
	if res.Data.Axons[0].IP != "10.0.0.1" || res.Data.Axons[0].Port != 8080 {
		t.Fatalf("unexpected axon: %+v", res.Data.Axons[0])
	}
}

func TestGetLatestBlock_Success(t *testing.T) {
	k := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chain/latest-block" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"statusCode":200,"success":true,"data":{"parentHash":"0xdef","blockNumber":12345},"error":null}`))
	})

	res, err := k.GetLatestBlock()
	if err != nil {
		t.Fatalf("GetLatestBlock error: %v", err)
	}
	if res.Data.BlockNumber != 12345 {
		t.Fatalf("unexpected response: %+v", res.Data)
	}
}

func TestSignMessage_Success(t *testing.T) {
	k := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/substrate/sign-message/sign" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"statusCode":200,"success":true,"data":{"signature":"0xsig"},"error":null}`))
	})

	res, err := k.SignMessage(SignMessageParams{Message: "hello"})
	if err != nil {
		t.Fatalf("SignMessage error: %v", err)
	}
	if res.Data.Signature != "0xsig" {
		t.Fatalf("unexpected response: %+v", res.Data)
	}
}

func TestSetWeights_Success(t *testing.T) {
	k := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chain/set-weights" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"statusCode":200,"success":true,"data":"0xhash","error":null}`))
	})

	res, err := k.SetWeights(SetWeightsParams{Netuid: 98, Dests: []int{0}, Weights: []int{65535}})
	if err != nil {
		t.Fatalf("SetWeights error: %v", err)
	}
	if res.Data != "0xhash" {
		t.Fatalf("unexpected response: %+v", res)
	}
}
