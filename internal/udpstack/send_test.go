package udpstack_test

import (
	"errors"
	"testing"

	"github.com/seregonwar/rtnetstack/internal/bufpool"
	"github.com/seregonwar/rtnetstack/internal/ndp"
	"github.com/seregonwar/rtnetstack/internal/neighbor"
	"github.com/seregonwar/rtnetstack/internal/platform"
	"github.com/seregonwar/rtnetstack/internal/route"
	"github.com/seregonwar/rtnetstack/internal/udpstack"
	"github.com/seregonwar/rtnetstack/internal/wire"
)

var (
	localAddr  = [wire.IPv6AddrSize]byte{0xfe, 0x80, 15: 0x10}
	localMAC   = [wire.MACSize]byte{0x00, 0xDE, 0xAD, 0xBE, 0xEF, 0x01}
	remoteAddr = [wire.IPv6AddrSize]byte{0x20, 0x01, 0x0d, 0xb8, 15: 1}
	remoteMAC  = [wire.MACSize]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
)

func newTestStack(t *testing.T) (*bufpool.Pool, *route.Table, *neighbor.Cache) {
	t.Helper()
	pool := bufpool.New(4)
	routes := route.New(4, 0)
	if _, err := routes.Insert(remoteAddr, 128, [wire.IPv6AddrSize]byte{}, false, 1, 0); err != nil {
		t.Fatalf("Insert route: %v", err)
	}
	neighbors := neighbor.New(4)
	neighbors.Insert(remoteAddr, remoteMAC, neighbor.StateReachable, 0)
	return pool, routes, neighbors
}

func TestSendSucceedsAndDeliversViaLoopback(t *testing.T) {
	pool, routes, neighbors := newTestStack(t)

	var captured []byte
	tx := platform.NewLoopbackTX(func(frame []byte) {
		captured = append([]byte(nil), frame...)
	})

	err := udpstack.Send(pool, routes, neighbors, tx, localMAC, localAddr, remoteAddr, 12345, 49152, []byte("hello from host"), bufpool.QoSNormal, 0)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(captured) == 0 {
		t.Fatal("expected a frame to reach the loopback")
	}

	// Every buffer must be freed after a completed send.
	for i := 0; i < pool.Capacity(); i++ {
		if pool.Get(i).InUse {
			t.Errorf("buffer %d still in use after send completed", i)
		}
	}
}

func TestSendRejectsOversizedPayload(t *testing.T) {
	pool, routes, neighbors := newTestStack(t)
	tx := platform.NewLoopbackTX(nil)

	payload := make([]byte, wire.MTU+1)
	err := udpstack.Send(pool, routes, neighbors, tx, localMAC, localAddr, remoteAddr, 12345, 49152, payload, bufpool.QoSNormal, 0)
	if !errors.Is(err, udpstack.ErrInvalidParam) {
		t.Errorf("expected ErrInvalidParam, got %v", err)
	}
}

func TestSendAcceptsMTUSizedPayload(t *testing.T) {
	pool, routes, neighbors := newTestStack(t)
	tx := platform.NewLoopbackTX(nil)

	payload := make([]byte, wire.MTU)
	if err := udpstack.Send(pool, routes, neighbors, tx, localMAC, localAddr, remoteAddr, 12345, 49152, payload, bufpool.QoSNormal, 0); err != nil {
		t.Fatalf("Send with MTU-sized payload: %v", err)
	}
}

func TestSendNoRouteWhenDestinationUnreachable(t *testing.T) {
	pool := bufpool.New(4)
	routes := route.New(4, 0)
	neighbors := neighbor.New(4)
	tx := platform.NewLoopbackTX(nil)

	unrouted := [wire.IPv6AddrSize]byte{0x30, 0x01, 15: 1}
	err := udpstack.Send(pool, routes, neighbors, tx, localMAC, localAddr, unrouted, 12345, 49152, []byte("x"), bufpool.QoSNormal, 0)
	if !errors.Is(err, ndp.ErrNoRoute) {
		t.Errorf("expected ndp.ErrNoRoute, got %v", err)
	}
}

func TestSendNoBufferWhenPoolExhausted(t *testing.T) {
	pool := bufpool.New(1)
	routes, neighbors := route.New(4, 0), neighbor.New(4)
	routes.Insert(remoteAddr, 128, [wire.IPv6AddrSize]byte{}, false, 1, 0)
	neighbors.Insert(remoteAddr, remoteMAC, neighbor.StateReachable, 0)
	tx := platform.NewLoopbackTX(nil)

	idx, err := pool.Allocate(bufpool.QoSNormal, 0)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	defer pool.Free(idx)

	err = udpstack.Send(pool, routes, neighbors, tx, localMAC, localAddr, remoteAddr, 12345, 49152, []byte("x"), bufpool.QoSNormal, 0)
	if !errors.Is(err, bufpool.ErrNoBuffer) {
		t.Errorf("expected bufpool.ErrNoBuffer, got %v", err)
	}
}

func TestRegistryDeliversToRegisteredPort(t *testing.T) {
	var reg udpstack.Registry
	var gotPayload []byte
	var gotPort uint16

	if ok := reg.Register(53, func(payload []byte, src [wire.IPv6AddrSize]byte, srcPort uint16) {
		gotPayload = payload
		gotPort = srcPort
	}); !ok {
		t.Fatal("Register failed")
	}

	if ok := reg.Deliver(53, []byte("reply"), remoteAddr, 12345); !ok {
		t.Fatal("expected Deliver to find the registered callback")
	}
	if string(gotPayload) != "reply" || gotPort != 12345 {
		t.Errorf("unexpected delivery: payload=%q port=%d", gotPayload, gotPort)
	}
}

func TestRegistryDeliverMissReturnsFalse(t *testing.T) {
	var reg udpstack.Registry
	if ok := reg.Deliver(9999, []byte("x"), remoteAddr, 1); ok {
		t.Error("expected Deliver to report no registration")
	}
}
