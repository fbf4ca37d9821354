package mcp

import (
	"context"
	"testing"

	"tableflip.dev/notiq/pkg/app"
)

type recordingNotifier struct {
	methods []string
}

func (n *recordingNotifier) SendNotificationToAllClients(method string, _ map[string]any) {
	n.methods = append(n.methods, method)
}

func TestAnnounceChanges(t *testing.T) {
	svc := newService(t)
	n := &recordingNotifier{}
	stop := announceChanges(svc.App, n)

	if _, err := svc.App.AddTask(context.Background(), app.TaskInput{Title: "Quiz", Course: "MATH"}); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if len(n.methods) != 1 || n.methods[0] != "notifications/resources/list_changed" {
		t.Fatalf("unexpected notifications %v", n.methods)
	}

	stop()
	if _, err := svc.App.AddTask(context.Background(), app.TaskInput{Title: "Essay", Course: "ENG"}); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if len(n.methods) != 1 {
		t.Fatalf("notified after stop: %v", n.methods)
	}
}
