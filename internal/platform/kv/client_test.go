package kv

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/janisto/hello-kube/internal/config"
)

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), config.Redis{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := mr.Get("k"); got != "v" {
		t.Fatalf("expected value in miniredis, got %q", got)
	}
}

func TestConnectSelectsDatabase(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), config.Redis{Addr: mr.Addr(), DB: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := mr.DB(3).Get("k"); got != "v" {
		t.Fatalf("expected value in db 3, got %q", got)
	}
}

func TestConnectWithPassword(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("secret")

	if _, err := Connect(context.Background(), config.Redis{Addr: mr.Addr(), Password: "wrong"}); err == nil {
		t.Fatal("expected error for wrong password")
	}

	client, err := Connect(context.Background(), config.Redis{Addr: mr.Addr(), Password: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = client.Close()
}

func TestConnectNotConfigured(t *testing.T) {
	if _, err := Connect(context.Background(), config.Redis{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestConnectUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := Connect(context.Background(), config.Redis{Addr: addr}); err == nil {
		t.Fatal("expected error for unreachable redis")
	}
}

func TestCheckReportsOutage(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), config.Redis{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	check := Check(client)
	if err := check(context.Background()); err != nil {
		t.Fatalf("expected healthy check, got %v", err)
	}
	mr.Close()
	if err := check(context.Background()); err == nil {
		t.Fatal("expected check to fail after redis stopped")
	}
}
