package intake

import (
	"errors"
	"fmt"
	"strings"

	"gramsetu-backend/internal/complaints"
)

// Channel adapters for low-connectivity intake. Parsing only: every
// channel reduces to a complaints.SubmitRequest and the single pipeline
// entry point. Business decisions are not made here.

var (
	ErrBadSMSFormat  = errors.New("intake: sms body must be 156Complaint#<text>")
	ErrBadUSSDFormat = errors.New("intake: ussd input must be <topic>#<text>#<location>")
)

// smsPrefix is the shortcode keyword citizens put in front of the text.
const smsPrefix = "156Complaint#"

// ParseSMS converts an inbound SMS into a submission. The sender's phone
// number becomes the citizen ID.
func ParseSMS(sender, body string) (complaints.SubmitRequest, error) {
	sender = strings.TrimSpace(sender)
	body = strings.TrimSpace(body)
	if sender == "" {
		return complaints.SubmitRequest{}, errors.New("intake: sms sender is required")
	}
	if !strings.HasPrefix(body, smsPrefix) {
		return complaints.SubmitRequest{}, ErrBadSMSFormat
	}
	text := strings.TrimSpace(strings.TrimPrefix(body, smsPrefix))
	if text == "" {
		return complaints.SubmitRequest{}, ErrBadSMSFormat
	}
	return complaints.SubmitRequest{
		Text:      text,
		CitizenID: sender,
		Channel:   complaints.ChannelSMS,
	}, nil
}

// ParseUSSD converts a <topic>#<text>#<location> menu submission.
// Topic and location are folded into the complaint text so the classifier
// sees them; the location segment is optional.
func ParseUSSD(sender, input string) (complaints.SubmitRequest, error) {
	sender = strings.TrimSpace(sender)
	if sender == "" {
		return complaints.SubmitRequest{}, errors.New("intake: ussd sender is required")
	}
	parts := strings.Split(strings.TrimSpace(input), "#")
	if len(parts) < 2 || len(parts) > 3 {
		return complaints.SubmitRequest{}, ErrBadUSSDFormat
	}
	topic := strings.TrimSpace(parts[0])
	text := strings.TrimSpace(parts[1])
	if topic == "" || text == "" {
		return complaints.SubmitRequest{}, ErrBadUSSDFormat
	}
	full := fmt.Sprintf("%s: %s", topic, text)
	if len(parts) == 3 {
		if loc := strings.TrimSpace(parts[2]); loc != "" {
			full = fmt.Sprintf("%s (location: %s)", full, loc)
		}
	}
	return complaints.SubmitRequest{
		Text:      full,
		CitizenID: sender,
		Channel:   complaints.ChannelUSSD,
	}, nil
}
