package notification

import (
	"errors"
	"testing"
)

type mockNotification struct {
	titles   []string
	messages []string
	err      error
}

func (m *mockNotification) notify(title, message string, icon any) error {
	m.titles = append(m.titles, title)
	m.messages = append(m.messages, message)
	return m.err
}

func TestSend(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		message     string
		mockErr     error
		expectError bool
	}{
		{"successful notification", "Title", "Message", nil, false},
		{"notification error", "Title", "Message", errors.New("no dbus"), true},
		{"empty message", "Title", "", nil, false},
		{"unicode content", "通知", "S → ε", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockNotification{err: tt.mockErr}
			SetNotifier(mock.notify)
			defer ResetNotifier()

			err := Send(tt.title, tt.message)

			if tt.expectError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if len(mock.titles) != 1 {
				t.Fatalf("expected 1 call, got %d", len(mock.titles))
			}
			if mock.titles[0] != tt.title || mock.messages[0] != tt.message {
				t.Errorf("expected %q/%q, got %q/%q", tt.title, tt.message, mock.titles[0], mock.messages[0])
			}
		})
	}
}

func TestDerivationsComplete(t *testing.T) {
	mock := &mockNotification{}
	SetNotifier(mock.notify)
	defer ResetNotifier()

	if err := DerivationsComplete("arith", "id + id * id", true); err != nil {
		t.Fatalf("DerivationsComplete failed: %v", err)
	}
	if err := DerivationsComplete("abab", "abab", false); err != nil {
		t.Fatalf("DerivationsComplete failed: %v", err)
	}
	want := []string{
		`arith: both derivations of "id + id * id" are complete, with different parse trees`,
		`abab: both derivations of "abab" are complete`,
	}
	for i, w := range want {
		if mock.messages[i] != w {
			t.Errorf("message %d: expected %q, got %q", i, w, mock.messages[i])
		}
		if mock.titles[i] != Title {
			t.Errorf("title %d: expected %q, got %q", i, Title, mock.titles[i])
		}
	}
}
