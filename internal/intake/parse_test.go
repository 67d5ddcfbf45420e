package intake

import (
	"errors"
	"testing"

	"gramsetu-backend/internal/complaints"
)

func TestParseSMS_Valid(t *testing.T) {
	req, err := ParseSMS("+919876543210", "156Complaint# no water in our village since monday ")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if req.Text != "no water in our village since monday" {
		t.Fatalf("unexpected text: %q", req.Text)
	}
	if req.CitizenID != "+919876543210" || req.Channel != complaints.ChannelSMS {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestParseSMS_WrongKeyword(t *testing.T) {
	if _, err := ParseSMS("+919876543210", "HELP no water"); !errors.Is(err, ErrBadSMSFormat) {
		t.Fatalf("expected ErrBadSMSFormat, got %v", err)
	}
}

func TestParseSMS_EmptyText(t *testing.T) {
	if _, err := ParseSMS("+919876543210", "156Complaint#   "); !errors.Is(err, ErrBadSMSFormat) {
		t.Fatalf("expected ErrBadSMSFormat, got %v", err)
	}
}

func TestParseSMS_MissingSender(t *testing.T) {
	if _, err := ParseSMS("", "156Complaint#no water"); err == nil {
		t.Fatalf("expected error for missing sender")
	}
}

func TestParseUSSD_WithLocation(t *testing.T) {
	req, err := ParseUSSD("+919876543210", "water#no supply for two days#ward 4")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if req.Text != "water: no supply for two days (location: ward 4)" {
		t.Fatalf("unexpected text: %q", req.Text)
	}
	if req.Channel != complaints.ChannelUSSD {
		t.Fatalf("unexpected channel: %q", req.Channel)
	}
}

func TestParseUSSD_WithoutLocation(t *testing.T) {
	req, err := ParseUSSD("+919876543210", "electricity#transformer burnt out")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if req.Text != "electricity: transformer burnt out" {
		t.Fatalf("unexpected text: %q", req.Text)
	}
}

func TestParseUSSD_BadSegments(t *testing.T) {
	for _, input := range []string{"", "justtext", "a#b#c#d", "#missing topic", "topic#"} {
		if _, err := ParseUSSD("+919876543210", input); !errors.Is(err, ErrBadUSSDFormat) {
			t.Fatalf("input %q: expected ErrBadUSSDFormat, got %v", input, err)
		}
	}
}
