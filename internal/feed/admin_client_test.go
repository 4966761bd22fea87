package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAdminClient_ChannelAdmins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/channels/-1001/admins" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"channelId":-1001,"adminIds":[777,888]}`))
	}))
	defer server.Close()

	client := NewAdminClient(server.URL, nil)
	ids, err := client.ChannelAdmins(context.Background(), -1001)
	if err != nil {
		t.Fatalf("ChannelAdmins: %v", err)
	}
	if len(ids) != 2 || ids[0] != 777 || ids[1] != 888 {
		t.Errorf("admin IDs = %v, want [777 888]", ids)
	}
}

func TestAdminClient_ChannelAdminsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "channel not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewAdminClient(server.URL, nil)
	if _, err := client.ChannelAdmins(context.Background(), -1001); err == nil {
		t.Error("expected error on non-200 status")
	}
}
